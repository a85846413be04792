package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

// brandSortColumns whitelists the sortable columns of the brand listing.
var brandSortColumns = map[string]string{
	"codigo":              "b.codigo",
	"nombre":              "b.nombre",
	"clasificacion":       "b.clasificacion",
	"lead_time_proveedor": "b.lead_time_proveedor",
	"venta_30_dias":       "venta_30_dias",
	"valor_stock":         "valor_stock",
	"dias_inv_promedio":   "dias_inv_promedio",
	"productos_agotados":  "productos_agotados",
}

// normalizeBrandQuery clamps paging and falls back to the highest stock value first.
func normalizeBrandQuery(q domain.BrandPerformanceQuery) (domain.BrandPerformanceQuery, string) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	col, ok := brandSortColumns[q.SortField]
	if !ok {
		q.SortField = "valor_stock"
		col = brandSortColumns[q.SortField]
		if q.SortDirection == "" {
			q.SortDirection = "desc"
		}
	}
	q.SortDirection = strings.ToLower(q.SortDirection)
	if q.SortDirection != "asc" && q.SortDirection != "desc" {
		q.SortDirection = "asc"
	}
	return q, col
}

// BrandPerformance pages the per-brand totals of the metrics at calcDate
func (r *salesRepository) BrandPerformance(ctx context.Context, calcDate time.Time, q domain.BrandPerformanceQuery) (*domain.BrandPerformanceResponse, error) {
	q, sortCol := normalizeBrandQuery(q)
	offset := (q.Page - 1) * q.PageSize

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM marcas`); err != nil {
		return nil, fmt.Errorf("failed to count brands: %w", err)
	}

	query := fmt.Sprintf(`
		WITH brand_metrics AS (
			SELECT p.marca_codigo,
			       COUNT(DISTINCT m.referencia) AS productos,
			       COALESCE(SUM(m.venta_ultimos_30_dias), 0) AS venta_30_dias,
			       COALESCE(SUM(m.valor_stock), 0) AS valor_stock,
			       AVG(m.dias_inventario) AS dias_inv_promedio,
			       COUNT(DISTINCT m.referencia) FILTER (WHERE m.estado_stock = $2) AS productos_agotados
			FROM metricas_producto_almacen m
			JOIN productos p ON p.referencia = m.referencia
			WHERE m.fecha_calculo = $1::date
			GROUP BY p.marca_codigo
		),
		pending AS (
			SELECT marca_codigo, COUNT(*) AS compras_pendientes
			FROM recomendaciones_compra
			WHERE estado = $3
			GROUP BY marca_codigo
		)
		SELECT b.codigo, b.nombre, b.categoria, b.clasificacion, b.lead_time_proveedor,
		       COALESCE(bm.productos, 0) AS productos,
		       COALESCE(bm.venta_30_dias, 0) AS venta_30_dias,
		       COALESCE(bm.valor_stock, 0) AS valor_stock,
		       bm.dias_inv_promedio,
		       COALESCE(bm.productos_agotados, 0) AS productos_agotados,
		       COALESCE(pe.compras_pendientes, 0) AS compras_pendientes
		FROM marcas b
		LEFT JOIN brand_metrics bm ON bm.marca_codigo = b.codigo
		LEFT JOIN pending pe ON pe.marca_codigo = b.codigo
		ORDER BY %s %s NULLS LAST, b.codigo ASC
		LIMIT $4 OFFSET $5
	`, sortCol, q.SortDirection)

	var rows []domain.BrandPerformance
	if err := sqlx.SelectContext(ctx, r.db, &rows, query,
		calcDate, domain.StockOut, domain.StatusPending, q.PageSize, offset); err != nil {
		return nil, fmt.Errorf("failed to get brand performance: %w", err)
	}
	if rows == nil {
		rows = []domain.BrandPerformance{}
	}

	totalPages := (total + q.PageSize - 1) / q.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return &domain.BrandPerformanceResponse{
		Items:      rows,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}
