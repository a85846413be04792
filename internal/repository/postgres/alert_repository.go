package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type alertRepository struct {
	db *DB
}

func NewAlertRepository(db *DB) repository.AlertRepository {
	return &alertRepository{db: db}
}

const alertSelect = `
	SELECT a.id, a.fecha_calculo, a.tipo_alerta, a.nivel, a.referencia,
	       COALESCE(p.nombre, '') AS producto_nombre,
	       a.bodega_codigo,
	       COALESCE(w.nombre, '') AS almacen_nombre,
	       a.stock_actual, a.dias_inventario, a.venta_diaria,
	       a.marca_categoria, a.marca_clasificacion, a.mensaje, a.estado,
	       a.fecha_generacion, a.fecha_actualizacion, a.usuario_accion
	FROM alertas a
	LEFT JOIN productos p ON p.referencia = a.referencia
	LEFT JOIN almacenes w ON w.codigo = a.bodega_codigo`

func (r *alertRepository) ListAlerts(ctx context.Context, filter domain.ListFilter) ([]domain.Alert, error) {
	where, args := buildListFilterClause(filter, "a", listColumns{typ: "tipo_alerta", level: "nivel"}, 1)
	args = append(args, clampLimit(filter.Limit))

	query := alertSelect + where + fmt.Sprintf(`
		ORDER BY %s, a.fecha_calculo DESC, a.dias_inventario ASC NULLS LAST, a.id
		LIMIT $%d`, severityOrder("a.nivel"), len(args))

	alerts := []domain.Alert{}
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("error listing alerts: %w", err)
	}
	return alerts, nil
}

func (r *alertRepository) AlertSummary(ctx context.Context, calcDate *time.Time) ([]domain.AlertSummary, error) {
	query := `
		SELECT tipo_alerta, nivel, COUNT(*) AS cantidad
		FROM alertas
		WHERE estado = $1 AND ($2::date IS NULL OR fecha_calculo = $2::date)
		GROUP BY tipo_alerta, nivel
		ORDER BY tipo_alerta, ` + severityOrder("nivel")

	out := []domain.AlertSummary{}
	if err := r.db.SelectContext(ctx, &out, query, domain.StatusPending, calcDate); err != nil {
		return nil, fmt.Errorf("error getting alert summary: %w", err)
	}
	return out, nil
}

func (r *alertRepository) UpdateAlertStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.Alert, error) {
	var alert domain.Alert
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := transition(ctx, tx, "alertas", domain.AlertLifecycle, upd); err != nil {
			return err
		}
		return tx.GetContext(ctx, &alert, alertSelect+` WHERE a.id = $1`, upd.ID)
	})
	if err != nil {
		return nil, err
	}
	return &alert, nil
}
