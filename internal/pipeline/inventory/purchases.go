package inventory

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// purchaseRankCap is the worst matrix rank still allowed to raise an URGENTE order.
const purchaseRankCap = 3

// purchasePriority ranks network coverage against the brand's total lead time.
func (p Policy) purchasePriority(days *float64, brand domain.Brand, rank int) domain.Priority {
	lead := float64(brand.SupplierLeadTime + brand.LeadTimeToCEDI)
	var pr domain.Priority
	switch {
	case days == nil || *days < lead:
		pr = domain.PriorityUrgent
	case *days < lead+float64(p.OrderMarginDays):
		pr = domain.PriorityHigh
	case *days < float64(brand.CoverageDays):
		pr = domain.PriorityMedium
	default:
		pr = domain.PriorityLow
	}
	if pr == domain.PriorityUrgent && rank > purchaseRankCap {
		pr = domain.PriorityHigh
	}
	return pr
}

// GeneratePurchases proposes replenishment from suppliers for products whose
// network coverage is below target, or whose deficits transfers could not cover.
//
//	cantidad        = max(0, ceil(coverage_total × venta_diaria_red − stock_red))
//	fecha_pedido    = D + max(0, floor(dias_red − lead_proveedor − lead_cedi − margin))
//	fecha_llegada   = fecha_pedido + lead_proveedor + lead_cedi
func GeneratePurchases(
	date time.Time,
	network []domain.ProductNetworkMetric,
	unmet map[metricKey]float64,
	unitCosts map[string]decimal.Decimal,
	refs *ReferenceData,
	policy Policy,
) []domain.PurchaseRecommendation {
	unmetByRef := make(map[string]float64)
	for _, k := range sortedKeys(unmet) {
		unmetByRef[k.Reference] += unmet[k]
	}

	type candidate struct {
		rec  domain.PurchaseRecommendation
		rank int
	}
	var candidates []candidate

	for _, nm := range network {
		brand, _ := refs.BrandFor(nm.Reference)
		if brand.Category != domain.CategoryPrincipal && !policy.PurchaseAllCategories {
			continue
		}

		target := brand.CoverageTotal()
		deficit := unmetByRef[nm.Reference]
		belowTarget := nm.DailySales > 0 && nm.DaysOfInventory != nil && *nm.DaysOfInventory < float64(target)
		if !belowTarget && deficit <= 0 {
			continue
		}

		qty := math.Max(0, math.Ceil(float64(target)*nm.DailySales-nm.TotalStock))
		if deficit > 0 {
			qty = math.Max(qty, math.Ceil(deficit))
		}
		if qty <= 0 {
			continue
		}

		lead := brand.SupplierLeadTime + brand.LeadTimeToCEDI
		orderDate := date
		if nm.DaysOfInventory != nil {
			slack := math.Floor(*nm.DaysOfInventory - float64(lead) - float64(policy.OrderMarginDays))
			if slack > 0 {
				orderDate = date.AddDate(0, 0, int(slack))
			}
		}

		cost := unitCosts[nm.Reference]
		rank := refs.Rank(brand)
		candidates = append(candidates, candidate{
			rank: rank,
			rec: domain.PurchaseRecommendation{
				CalcDate:            date,
				Reference:           nm.Reference,
				BrandCode:           brand.Code,
				BrandCategory:       brand.Category,
				BrandClassification: brand.Classification,
				NetworkStock:        nm.TotalStock,
				ProjectedSales:      nm.DailySales * window30,
				Quantity:            qty,
				CurrentCoverageDays: nm.DaysOfInventory,
				TargetCoverageDays:  target,
				UnitCost:            cost,
				EstimatedValue:      cost.Mul(decimal.NewFromFloat(qty)).Round(2),
				OrderDate:           orderDate,
				ExpectedArrival:     orderDate.AddDate(0, 0, lead),
				Priority:            policy.purchasePriority(nm.DaysOfInventory, brand, rank),
				Status:              domain.StatusPending,
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.rec.Priority != b.rec.Priority {
			return a.rec.Priority.Less(b.rec.Priority)
		}
		return a.rec.Reference < b.rec.Reference
	})

	out := make([]domain.PurchaseRecommendation, len(candidates))
	for i, c := range candidates {
		out[i] = c.rec
	}
	return out
}
