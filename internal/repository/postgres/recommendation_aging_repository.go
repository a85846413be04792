package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// agingBucketExpr groups days since generation into the ranges reported by the
// aging listing.
const agingBucketExpr = `CASE
	        WHEN dias <= 7 THEN '0-7'
	        WHEN dias <= 14 THEN '8-14'
	        WHEN dias <= 30 THEN '15-30'
	        ELSE '31+'
	    END`

// RecommendationAging counts open recommendations (pending or approved) by
// how long ago they were generated.
func (r *salesRepository) RecommendationAging(ctx context.Context) ([]domain.RecommendationAging, error) {
	query := fmt.Sprintf(`
		WITH open_recs AS (
			SELECT '%s' AS tipo,
			       (CURRENT_DATE - fecha_generacion::date) AS dias,
			       cantidad_sugerida,
			       0::numeric AS valor
			FROM recomendaciones_traslado
			WHERE estado = ANY($1)
			UNION ALL
			SELECT '%s' AS tipo,
			       (CURRENT_DATE - fecha_generacion::date) AS dias,
			       cantidad_sugerida,
			       valor_compra_estimado AS valor
			FROM recomendaciones_compra
			WHERE estado = ANY($1)
		)
		SELECT tipo,
		       %s AS rango_dias,
		       COUNT(*) AS cantidad,
		       COALESCE(SUM(cantidad_sugerida), 0) AS cantidad_sugerida,
		       COALESCE(SUM(valor), 0) AS valor_estimado,
		       MAX(dias) AS dias_max
		FROM open_recs
		GROUP BY tipo, rango_dias
		ORDER BY tipo, MIN(dias)
	`, domain.RecommendationTransfer, domain.RecommendationPurchase, agingBucketExpr)

	open := pq.Array([]string{domain.StatusPending, domain.StatusApproved})
	var out []domain.RecommendationAging
	if err := sqlx.SelectContext(ctx, r.db, &out, query, open); err != nil {
		return nil, fmt.Errorf("failed to get recommendation aging: %w", err)
	}
	if out == nil {
		out = []domain.RecommendationAging{}
	}
	return out, nil
}
