package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	defaultSalesWindowDays = 30
	maxSalesWindowDays     = 730
	defaultTopProducts     = 20
	maxTopProducts         = 200
)

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) repository.SalesRepository {
	return &salesRepository{db: db}
}

func clampWindow(days int) int {
	switch {
	case days <= 0:
		return defaultSalesWindowDays
	case days > maxSalesWindowDays:
		return maxSalesWindowDays
	default:
		return days
	}
}

// trendBucket returns the date_trunc unit of an interval. Unknown intervals
// fall back to days.
func trendBucket(interval string) string {
	switch interval {
	case domain.IntervalWeek:
		return "week"
	case domain.IntervalMonth:
		return "month"
	default:
		return "day"
	}
}

// SalesTrend buckets the ventas of sales warehouses for the trailing days
func (r *salesRepository) SalesTrend(ctx context.Context, interval string, days int) ([]domain.SalesTrendPoint, error) {
	days = clampWindow(days)
	bucket := trendBucket(interval)

	query := fmt.Sprintf(`
		WITH bucketed AS (
			SELECT date_trunc('%s', v.fecha)::date AS bucket,
			       v.prefijo, v.numero_documento, v.cantidad, v.valor_total
			FROM ventas v
			JOIN almacenes w ON w.codigo = v.bodega_codigo
			WHERE v.fecha > CURRENT_DATE - $1::int AND w.tipo = $2
		)
		SELECT to_char(bucket, 'YYYY-MM-DD') AS fecha,
		       COUNT(DISTINCT (prefijo, numero_documento)) AS transacciones,
		       COALESCE(SUM(cantidad), 0) AS unidades,
		       COALESCE(SUM(valor_total), 0) AS valor
		FROM bucketed
		GROUP BY bucket
		ORDER BY bucket
	`, bucket)

	var points []domain.SalesTrendPoint
	if err := sqlx.SelectContext(ctx, r.db, &points, query, days, domain.WarehouseTypeSales); err != nil {
		return nil, fmt.Errorf("failed to get sales trend: %w", err)
	}
	log.Debug().Str("bucket", bucket).Int("days", days).Int("points", len(points)).Msg("sales: trend fetched")

	if points == nil {
		points = []domain.SalesTrendPoint{}
	}
	return points, nil
}

// TopProducts ranks products by units sold at sales warehouses
func (r *salesRepository) TopProducts(ctx context.Context, days, limit int) ([]domain.TopProduct, error) {
	days = clampWindow(days)
	if limit <= 0 {
		limit = defaultTopProducts
	}
	if limit > maxTopProducts {
		limit = maxTopProducts
	}

	query := `
		SELECT v.referencia,
		       COALESCE(p.nombre, '') AS nombre,
		       COALESCE(p.marca_codigo, '') AS marca_codigo,
		       SUM(v.cantidad) AS unidades_vendidas,
		       COALESCE(SUM(v.valor_total), 0) AS valor_vendido,
		       COUNT(DISTINCT v.bodega_codigo) AS almacenes_venta
		FROM ventas v
		JOIN almacenes w ON w.codigo = v.bodega_codigo
		LEFT JOIN productos p ON p.referencia = v.referencia
		WHERE v.fecha > CURRENT_DATE - $1::int AND w.tipo = $2
		GROUP BY v.referencia, p.nombre, p.marca_codigo
		ORDER BY unidades_vendidas DESC, v.referencia
		LIMIT $3
	`
	var out []domain.TopProduct
	if err := sqlx.SelectContext(ctx, r.db, &out, query, days, domain.WarehouseTypeSales, limit); err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	if out == nil {
		out = []domain.TopProduct{}
	}
	return out, nil
}

func (r *salesRepository) LatestCalcDate(ctx context.Context) (*time.Time, error) {
	var latest *time.Time
	if err := r.db.GetContext(ctx, &latest, `SELECT MAX(fecha_calculo) FROM metricas_producto_almacen`); err != nil {
		return nil, fmt.Errorf("failed to get latest calculation date: %w", err)
	}
	return latest, nil
}
