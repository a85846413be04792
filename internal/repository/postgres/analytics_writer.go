package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type analyticsWriter struct {
	db *DB
}

func NewAnalyticsWriter(db *DB) repository.AnalyticsWriter {
	return &analyticsWriter{db: db}
}

var (
	warehouseMetricColumns = []string{
		"fecha_calculo", "referencia", "bodega_codigo", "stock_actual", "valor_stock",
		"venta_ultimos_7_dias", "venta_ultimos_30_dias", "venta_ultimos_90_dias",
		"venta_diaria_promedio", "dias_inventario", "rotacion_mensual", "punto_reorden",
		"stock_seguridad", "stock_maximo", "estado_stock", "requiere_traslado", "requiere_compra",
	}
	networkMetricColumns = []string{
		"fecha_calculo", "referencia", "stock_total", "valor_stock",
		"venta_ultimos_7_dias", "venta_ultimos_30_dias", "venta_ultimos_90_dias",
		"venta_diaria_red", "dias_inventario_red", "almacenes_con_stock",
		"desviacion_stock", "valor_venta_30_dias", "clasificacion_abc",
	}
	regionalMetricColumns = []string{
		"fecha_calculo", "regional", "almacenes", "stock_total", "valor_stock",
		"venta_ultimos_30_dias", "productos_bajo_stock", "productos_sobre_stock",
	}
	alertColumns = []string{
		"fecha_calculo", "tipo_alerta", "nivel", "referencia", "bodega_codigo",
		"stock_actual", "dias_inventario", "venta_diaria", "marca_categoria",
		"marca_clasificacion", "mensaje", "estado",
	}
	transferColumns = []string{
		"fecha_calculo", "referencia", "bodega_origen", "bodega_destino", "regional_destino",
		"cantidad_sugerida", "dias_inv_origen", "dias_inv_destino", "marca_categoria",
		"marca_clasificacion", "prioridad", "estado",
	}
	purchaseColumns = []string{
		"fecha_calculo", "referencia", "marca_codigo", "marca_categoria", "marca_clasificacion",
		"stock_actual_red", "venta_proyectada", "cantidad_sugerida", "dias_cobertura_actual",
		"dias_cobertura_objetivo", "costo_unitario_estimado", "valor_compra_estimado",
		"fecha_sugerida_pedido", "fecha_estimada_llegada", "prioridad", "estado",
	}
)

// SaveBatch replaces the metrics of the date and re-emits its alerts and
// recommendations inside one transaction guarded by an advisory lock.
//
// Metrics are fully replaced. Alerts and recommendations still PENDIENTE are
// replaced too; rows an operator already acted upon are kept and their new
// duplicates are dropped by the per-date unique keys.
func (w *analyticsWriter) SaveBatch(ctx context.Context, batch repository.AnalyticsBatch) (repository.WriteSummary, error) {
	var summary repository.WriteSummary
	date := domain.TruncateDate(batch.CalcDate)

	err := w.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var locked bool
		if err := tx.GetContext(ctx, &locked,
			`SELECT pg_try_advisory_xact_lock(hashtext('inventory-analytics'), hashtext($1))`,
			date.Format(domain.DateLayout)); err != nil {
			return fmt.Errorf("failed to take run lock: %w", err)
		}
		if !locked {
			return domain.ErrRunInProgress
		}

		// 1. Metrics: full replacement
		for _, table := range []string{"metricas_producto_almacen", "metricas_producto_red", "metricas_regionales"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE fecha_calculo = $1::date`, date); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		if _, err := repository.BulkInsert(ctx, tx, "metricas_producto_almacen", warehouseMetricColumns, warehouseMetricRows(batch.WarehouseMetrics), ""); err != nil {
			return err
		}
		if _, err := repository.BulkInsert(ctx, tx, "metricas_producto_red", networkMetricColumns, networkMetricRows(batch.NetworkMetrics), ""); err != nil {
			return err
		}
		if _, err := repository.BulkInsert(ctx, tx, "metricas_regionales", regionalMetricColumns, regionalMetricRows(batch.RegionalMetrics), ""); err != nil {
			return err
		}

		// 2. Alerts and recommendations: replace pending, keep acted-upon
		for _, table := range []string{"alertas", "recomendaciones_traslado", "recomendaciones_compra"} {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM `+table+` WHERE fecha_calculo = $1::date AND estado = $2`,
				date, domain.StatusPending); err != nil {
				return fmt.Errorf("failed to clear pending %s: %w", table, err)
			}
		}

		n, err := repository.BulkInsert(ctx, tx, "alertas", alertColumns, alertRows(batch.Alerts), "ON CONFLICT ON CONSTRAINT uq_alerta_dia DO NOTHING")
		if err != nil {
			return err
		}
		summary.Alerts = int(n)

		n, err = repository.BulkInsert(ctx, tx, "recomendaciones_traslado", transferColumns, transferRows(batch.Transfers), "ON CONFLICT ON CONSTRAINT uq_traslado_dia DO NOTHING")
		if err != nil {
			return err
		}
		summary.Transfers = int(n)

		n, err = repository.BulkInsert(ctx, tx, "recomendaciones_compra", purchaseColumns, purchaseRows(batch.Purchases), "ON CONFLICT ON CONSTRAINT uq_compra_dia DO NOTHING")
		if err != nil {
			return err
		}
		summary.Purchases = int(n)

		return nil
	})
	return summary, err
}

func warehouseMetricRows(metrics []domain.ProductWarehouseMetric) [][]interface{} {
	rows := make([][]interface{}, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []interface{}{
			m.CalcDate, m.Reference, m.WarehouseCode, m.Stock, m.StockValue,
			m.Sales7, m.Sales30, m.Sales90,
			m.AvgDailySales, m.DaysOfInventory, m.MonthlyRotation, m.ReorderPoint,
			m.SafetyStock, m.MaxStock, string(m.StockStatus), m.RequiresTransfer, m.RequiresPurchase,
		})
	}
	return rows
}

func networkMetricRows(metrics []domain.ProductNetworkMetric) [][]interface{} {
	rows := make([][]interface{}, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []interface{}{
			m.CalcDate, m.Reference, m.TotalStock, m.StockValue,
			m.Sales7, m.Sales30, m.Sales90,
			m.DailySales, m.DaysOfInventory, m.WarehousesWithStock,
			m.StockDeviation, m.SalesValue30, m.ABCClass,
		})
	}
	return rows
}

func regionalMetricRows(metrics []domain.RegionalMetric) [][]interface{} {
	rows := make([][]interface{}, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []interface{}{
			m.CalcDate, m.Region, m.Warehouses, m.TotalStock, m.StockValue,
			m.Sales30, m.ProductsShort, m.ProductsOver,
		})
	}
	return rows
}

func alertRows(alerts []domain.Alert) [][]interface{} {
	rows := make([][]interface{}, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, []interface{}{
			a.CalcDate, string(a.Type), string(a.Level), a.Reference, a.WarehouseCode,
			a.Stock, a.DaysOfInventory, a.DailySales, string(a.BrandCategory),
			string(a.BrandClassification), a.Message, a.Status,
		})
	}
	return rows
}

func transferRows(transfers []domain.TransferRecommendation) [][]interface{} {
	rows := make([][]interface{}, 0, len(transfers))
	for _, t := range transfers {
		rows = append(rows, []interface{}{
			t.CalcDate, t.Reference, t.Origin, t.Destination, t.DestinationRegion,
			t.Quantity, t.OriginDays, t.DestinationDays, string(t.BrandCategory),
			string(t.BrandClassification), string(t.Priority), t.Status,
		})
	}
	return rows
}

func purchaseRows(purchases []domain.PurchaseRecommendation) [][]interface{} {
	rows := make([][]interface{}, 0, len(purchases))
	for _, p := range purchases {
		rows = append(rows, []interface{}{
			p.CalcDate, p.Reference, p.BrandCode, string(p.BrandCategory), string(p.BrandClassification),
			p.NetworkStock, p.ProjectedSales, p.Quantity, p.CurrentCoverageDays,
			p.TargetCoverageDays, p.UnitCost, p.EstimatedValue,
			p.OrderDate, p.ExpectedArrival, string(p.Priority), p.Status,
		})
	}
	return rows
}
