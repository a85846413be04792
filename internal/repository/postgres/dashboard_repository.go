package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

type dashboardRepository struct {
	db *DB
}

func NewDashboardRepository(db *DB) repository.DashboardRepository {
	return &dashboardRepository{db: db}
}

const warehouseMetricSelect = `
	SELECT m.fecha_calculo, m.referencia, m.bodega_codigo, m.stock_actual, m.valor_stock,
	       m.venta_ultimos_7_dias, m.venta_ultimos_30_dias, m.venta_ultimos_90_dias,
	       m.venta_diaria_promedio, m.dias_inventario, m.rotacion_mensual, m.punto_reorden,
	       m.stock_seguridad, m.stock_maximo, m.estado_stock, m.requiere_traslado, m.requiere_compra
	FROM metricas_producto_almacen m`

// GetKPIs aggregates the dashboard header
func (r *dashboardRepository) GetKPIs(ctx context.Context) (*domain.KPIs, error) {
	kpis := &domain.KPIs{}

	// 1. Current inventory
	inventoryQuery := `
		SELECT COUNT(DISTINCT referencia) AS total_productos,
		       COUNT(DISTINCT bodega_codigo) AS total_almacenes,
		       COALESCE(SUM(cantidad), 0) AS total_unidades,
		       COALESCE(SUM(cantidad * valor_costo), 0) AS valor_inventario
		FROM inventario_actual
		WHERE cantidad > 0
	`
	if err := r.db.GetContext(ctx, &kpis.Inventory, inventoryQuery); err != nil {
		log.Error().Err(err).Msg("dashboard: failed to fetch inventory totals")
		return nil, fmt.Errorf("failed to get inventory kpis: %w", err)
	}

	// 2. Sales of the trailing 30 days at sales warehouses
	salesQuery := `
		SELECT COUNT(DISTINCT (v.prefijo, v.numero_documento)) AS transacciones,
		       COALESCE(SUM(v.cantidad), 0) AS unidades,
		       COALESCE(SUM(v.valor_total), 0) AS valor
		FROM ventas v
		JOIN almacenes w ON w.codigo = v.bodega_codigo
		WHERE v.fecha > CURRENT_DATE - 30 AND w.tipo = $1
	`
	if err := r.db.GetContext(ctx, &kpis.Sales30d, salesQuery, domain.WarehouseTypeSales); err != nil {
		log.Error().Err(err).Msg("dashboard: failed to fetch sales totals")
		return nil, fmt.Errorf("failed to get sales kpis: %w", err)
	}

	// 3. Pending alerts
	alertQuery := `
		SELECT COUNT(*) FILTER (WHERE tipo_alerta IN ($2, $3)) AS criticas,
		       COUNT(*) FILTER (WHERE tipo_alerta = $4) AS bajas,
		       COUNT(*) FILTER (WHERE tipo_alerta = $5) AS sobreinventario,
		       COUNT(*) AS total
		FROM alertas
		WHERE estado = $1
	`
	if err := r.db.GetContext(ctx, &kpis.Alerts, alertQuery, domain.StatusPending,
		domain.AlertStockCritical, domain.AlertOutOfStock, domain.AlertStockLow, domain.AlertOverstock); err != nil {
		log.Error().Err(err).Msg("dashboard: failed to fetch alert counts")
		return nil, fmt.Errorf("failed to get alert kpis: %w", err)
	}

	// 4. Pending recommendations
	pendingQuery := `
		SELECT (SELECT COUNT(*) FROM recomendaciones_traslado WHERE estado = $1),
		       (SELECT COUNT(*) FROM recomendaciones_compra WHERE estado = $1)
	`
	if err := r.db.QueryRowxContext(ctx, pendingQuery, domain.StatusPending).
		Scan(&kpis.PendingTransfers, &kpis.PendingPurchases); err != nil {
		return nil, fmt.Errorf("failed to get pending recommendations: %w", err)
	}

	latest, err := r.LatestCalcDate(ctx)
	if err != nil {
		return nil, err
	}
	kpis.LatestCalculation = latest

	return kpis, nil
}

// LatestCalcDate returns the newest calculation date with metrics, nil when none
func (r *dashboardRepository) LatestCalcDate(ctx context.Context) (*time.Time, error) {
	var latest *time.Time
	if err := r.db.GetContext(ctx, &latest, `SELECT MAX(fecha_calculo) FROM metricas_producto_almacen`); err != nil {
		return nil, fmt.Errorf("failed to get latest calculation date: %w", err)
	}
	return latest, nil
}

func (r *dashboardRepository) ListWarehouseOverview(ctx context.Context, calcDate time.Time) ([]domain.WarehouseOverview, error) {
	query := `
		SELECT w.codigo, w.nombre, w.tipo, w.regional, w.es_cedi,
		       COUNT(m.referencia) FILTER (WHERE m.stock_actual > 0) AS productos,
		       COALESCE(SUM(m.stock_actual), 0) AS unidades,
		       COALESCE(SUM(m.valor_stock), 0) AS valor_inventario,
		       AVG(m.dias_inventario) AS dias_inv_promedio
		FROM almacenes w
		LEFT JOIN metricas_producto_almacen m
		       ON m.bodega_codigo = w.codigo AND m.fecha_calculo = $2::date
		WHERE w.activo AND w.tipo = $1
		GROUP BY w.codigo, w.nombre, w.tipo, w.regional, w.es_cedi
		ORDER BY w.regional, w.nombre
	`
	out := []domain.WarehouseOverview{}
	if err := r.db.SelectContext(ctx, &out, query, domain.WarehouseTypeSales, calcDate); err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	return out, nil
}

func (r *dashboardRepository) WarehouseInventory(ctx context.Context, code string, calcDate time.Time, limit int) ([]domain.ProductWarehouseMetric, error) {
	query := warehouseMetricSelect + `
		WHERE m.bodega_codigo = $1 AND m.fecha_calculo = $2::date
		ORDER BY m.dias_inventario ASC NULLS LAST, m.referencia
		LIMIT $3
	`
	out := []domain.ProductWarehouseMetric{}
	if err := r.db.SelectContext(ctx, &out, query, code, calcDate, clampLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to get warehouse inventory: %w", err)
	}
	return out, nil
}

func (r *dashboardRepository) ProductNetwork(ctx context.Context, reference string, calcDate time.Time) (*domain.ProductNetwork, error) {
	out := &domain.ProductNetwork{Warehouses: []domain.ProductWarehouseMetric{}}

	err := r.db.GetContext(ctx, &out.Product,
		`SELECT referencia, nombre, COALESCE(marca_codigo, '') AS marca_codigo, activo FROM productos WHERE referencia = $1`,
		reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", reference, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	var network domain.ProductNetworkMetric
	err = r.db.GetContext(ctx, &network, `
		SELECT fecha_calculo, referencia, stock_total, valor_stock, venta_ultimos_7_dias,
		       venta_ultimos_30_dias, venta_ultimos_90_dias, venta_diaria_red, dias_inventario_red,
		       almacenes_con_stock, desviacion_stock, valor_venta_30_dias, clasificacion_abc
		FROM metricas_producto_red
		WHERE referencia = $1 AND fecha_calculo = $2::date
	`, reference, calcDate)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to get network metric: %w", err)
	default:
		out.Network = &network
	}

	query := warehouseMetricSelect + `
		WHERE m.referencia = $1 AND m.fecha_calculo = $2::date
		ORDER BY m.bodega_codigo
	`
	if err := r.db.SelectContext(ctx, &out.Warehouses, query, reference, calcDate); err != nil {
		return nil, fmt.Errorf("failed to get product warehouses: %w", err)
	}
	return out, nil
}

func (r *dashboardRepository) RegionalMetrics(ctx context.Context, calcDate time.Time) ([]domain.RegionalMetric, error) {
	query := `
		SELECT fecha_calculo, regional, almacenes, stock_total, valor_stock,
		       venta_ultimos_30_dias, productos_bajo_stock, productos_sobre_stock
		FROM metricas_regionales
		WHERE fecha_calculo = $1::date
		ORDER BY regional
	`
	out := []domain.RegionalMetric{}
	if err := r.db.SelectContext(ctx, &out, query, calcDate); err != nil {
		return nil, fmt.Errorf("failed to get regional metrics: %w", err)
	}
	return out, nil
}
