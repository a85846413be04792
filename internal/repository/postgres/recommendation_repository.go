package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type recommendationRepository struct {
	db *DB
}

func NewRecommendationRepository(db *DB) repository.RecommendationRepository {
	return &recommendationRepository{db: db}
}

const transferSelect = `
	SELECT t.id, t.fecha_calculo, t.referencia,
	       COALESCE(p.nombre, '') AS producto_nombre,
	       t.bodega_origen, t.bodega_destino, t.regional_destino, t.cantidad_sugerida,
	       t.dias_inv_origen, t.dias_inv_destino, t.marca_categoria, t.marca_clasificacion,
	       t.prioridad, t.estado, t.fecha_generacion, t.fecha_actualizacion, t.usuario_accion
	FROM recomendaciones_traslado t
	LEFT JOIN productos p ON p.referencia = t.referencia`

const purchaseSelect = `
	SELECT c.id, c.fecha_calculo, c.referencia,
	       COALESCE(p.nombre, '') AS producto_nombre,
	       c.marca_codigo, c.marca_categoria, c.marca_clasificacion, c.stock_actual_red,
	       c.venta_proyectada, c.cantidad_sugerida, c.dias_cobertura_actual,
	       c.dias_cobertura_objetivo, c.costo_unitario_estimado, c.valor_compra_estimado,
	       c.fecha_sugerida_pedido, c.fecha_estimada_llegada, c.prioridad, c.estado,
	       c.fecha_generacion, c.fecha_actualizacion, c.usuario_accion
	FROM recomendaciones_compra c
	LEFT JOIN productos p ON p.referencia = c.referencia`

func (r *recommendationRepository) ListTransfers(ctx context.Context, filter domain.ListFilter) ([]domain.TransferRecommendation, error) {
	where, args := buildListFilterClause(filter, "t", listColumns{priority: "prioridad"}, 1)
	args = append(args, clampLimit(filter.Limit))

	query := transferSelect + where + fmt.Sprintf(`
		ORDER BY %s, t.fecha_calculo DESC, t.dias_inv_destino ASC NULLS LAST, t.id
		LIMIT $%d`, severityOrder("t.prioridad"), len(args))

	out := []domain.TransferRecommendation{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("error listing transfers: %w", err)
	}
	return out, nil
}

func (r *recommendationRepository) ListPurchases(ctx context.Context, filter domain.ListFilter) ([]domain.PurchaseRecommendation, error) {
	where, args := buildListFilterClause(filter, "c", listColumns{priority: "prioridad"}, 1)
	args = append(args, clampLimit(filter.Limit))

	query := purchaseSelect + where + fmt.Sprintf(`
		ORDER BY %s, c.fecha_calculo DESC, c.fecha_sugerida_pedido ASC, c.id
		LIMIT $%d`, severityOrder("c.prioridad"), len(args))

	out := []domain.PurchaseRecommendation{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("error listing purchases: %w", err)
	}
	return out, nil
}

func (r *recommendationRepository) UpdateTransferStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.TransferRecommendation, error) {
	var rec domain.TransferRecommendation
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := transition(ctx, tx, "recomendaciones_traslado", domain.TransferLifecycle, upd); err != nil {
			return err
		}
		return tx.GetContext(ctx, &rec, transferSelect+` WHERE t.id = $1`, upd.ID)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recommendationRepository) UpdatePurchaseStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.PurchaseRecommendation, error) {
	var rec domain.PurchaseRecommendation
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := transition(ctx, tx, "recomendaciones_compra", domain.PurchaseLifecycle, upd); err != nil {
			return err
		}
		return tx.GetContext(ctx, &rec, purchaseSelect+` WHERE c.id = $1`, upd.ID)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
