package inventory

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
)

// need is a sales warehouse below its reorder point.
type need struct {
	metric    domain.ProductWarehouseMetric
	brand     domain.Brand
	rank      int
	remaining float64
	received  float64
}

// donor is a warehouse holding stock above its own threshold.
type donor struct {
	metric  domain.ProductWarehouseMetric
	surplus float64
}

// transferRule maps urgency to a priority. Rules are evaluated in order and the
// first match wins; a rule with maxDays 0 matches any day count.
type transferRule struct {
	maxDays       float64
	topRankOnly   bool
	principalOnly bool
	priority      domain.Priority
}

func (p Policy) transferRules() []transferRule {
	return []transferRule{
		{maxDays: p.CriticalDays, topRankOnly: true, priority: domain.PriorityUrgent},
		{maxDays: p.LowDays, principalOnly: true, priority: domain.PriorityHigh},
		{maxDays: p.LowDays, priority: domain.PriorityMedium},
		{priority: domain.PriorityLow},
	}
}

func (p Policy) transferPriority(days float64, brand domain.Brand, rank int) domain.Priority {
	for _, r := range p.transferRules() {
		if r.maxDays > 0 && !(days < r.maxDays) {
			continue
		}
		if r.topRankOnly && rank != 1 {
			continue
		}
		if r.principalOnly && brand.Category != domain.CategoryPrincipal {
			continue
		}
		return r.priority
	}
	return domain.PriorityLow
}

// SurplusOf returns how many units the warehouse can give away under the
// policy. A donor is never drawn below its own reorder point.
func (p Policy) SurplusOf(m domain.ProductWarehouseMetric) float64 {
	threshold := m.MaxStock
	if p.Surplus == SurplusAboveReorder {
		threshold = m.ReorderPoint + p.SurplusUnits
	}
	return math.Max(m.Stock-math.Max(threshold, m.ReorderPoint), 0)
}

// isDonor reports whether the warehouse holds enough cover to give stock away.
// Rows without sales have unlimited cover.
func (p Policy) isDonor(m domain.ProductWarehouseMetric, brand domain.Brand) bool {
	if m.DaysOfInventory == nil {
		return true
	}
	floor := p.DonorMinDays
	if floor <= 0 {
		floor = float64(brand.CoverageDays)
	}
	return *m.DaysOfInventory >= floor
}

// isNeed reports whether a metric row is a sales warehouse that must be replenished.
func (p Policy) isNeed(m domain.ProductWarehouseMetric, refs *ReferenceData) bool {
	return refs.IsSalesWarehouse(m.WarehouseCode) &&
		m.AvgDailySales > 0 &&
		m.DaysOfInventory != nil && *m.DaysOfInventory < p.AlertHorizonDays &&
		m.Stock < m.ReorderPoint
}

// TransferPlan is the outcome of matching deficits against surpluses.
type TransferPlan struct {
	Transfers []domain.TransferRecommendation
	// Unmet is the deficit left per (product, warehouse) after transfers.
	Unmet map[metricKey]float64
}

// GenerateTransfers matches each deficit with sibling surpluses greedily.
//
// Needs are served by priority rank, then fewest days, then reference and
// warehouse. Donors are drawn by largest surplus first. Each donor's remaining
// surplus is decremented, so no warehouse ever gives more than its surplus.
// Donors must hold at least DonorMinDays of cover. The receiver is also never
// topped up beyond the donor's own days of inventory minus TransferBufferDays.
func GenerateTransfers(date time.Time, metrics []domain.ProductWarehouseMetric, refs *ReferenceData, policy Policy) TransferPlan {
	needsByRef := make(map[string][]*need)
	needKeys := make(map[metricKey]bool)
	for _, m := range metrics {
		if !policy.isNeed(m, refs) {
			continue
		}
		brand, _ := refs.BrandFor(m.Reference)
		n := &need{metric: m, brand: brand, rank: refs.Rank(brand), remaining: m.ReorderPoint - m.Stock}
		needsByRef[m.Reference] = append(needsByRef[m.Reference], n)
		needKeys[metricKey{m.Reference, m.WarehouseCode}] = true
	}

	donorsByRef := make(map[string][]*donor)
	for _, m := range metrics {
		if needKeys[metricKey{m.Reference, m.WarehouseCode}] || len(needsByRef[m.Reference]) == 0 {
			continue
		}
		if !refs.CountsForInventory(m.WarehouseCode) {
			continue
		}
		if brand, _ := refs.BrandFor(m.Reference); !policy.isDonor(m, brand) {
			continue
		}
		if s := policy.SurplusOf(m); s >= 1 {
			donorsByRef[m.Reference] = append(donorsByRef[m.Reference], &donor{metric: m, surplus: s})
		}
	}

	var needs []*need
	for _, ns := range needsByRef {
		needs = append(needs, ns...)
	}
	sort.Slice(needs, func(i, j int) bool {
		a, b := needs[i], needs[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if *a.metric.DaysOfInventory != *b.metric.DaysOfInventory {
			return *a.metric.DaysOfInventory < *b.metric.DaysOfInventory
		}
		if a.metric.Reference != b.metric.Reference {
			return a.metric.Reference < b.metric.Reference
		}
		return a.metric.WarehouseCode < b.metric.WarehouseCode
	})
	for _, ds := range donorsByRef {
		sort.Slice(ds, func(i, j int) bool {
			if ds[i].surplus != ds[j].surplus {
				return ds[i].surplus > ds[j].surplus
			}
			return ds[i].metric.WarehouseCode < ds[j].metric.WarehouseCode
		})
	}

	plan := TransferPlan{Unmet: make(map[metricKey]float64)}
	for _, n := range needs {
		dest, _ := refs.Warehouse(n.metric.WarehouseCode)
		for _, d := range donorsByRef[n.metric.Reference] {
			if n.remaining < 1 {
				break
			}
			qty := math.Min(d.surplus, n.remaining)
			if d.metric.DaysOfInventory != nil {
				ceiling := (*d.metric.DaysOfInventory-policy.TransferBufferDays)*n.metric.AvgDailySales - (n.metric.Stock + n.received)
				qty = math.Min(qty, ceiling)
			}
			qty = math.Floor(qty)
			if qty < 1 {
				continue
			}

			d.surplus -= qty
			n.remaining -= qty
			n.received += qty
			plan.Transfers = append(plan.Transfers, domain.TransferRecommendation{
				CalcDate:            date,
				Reference:           n.metric.Reference,
				Origin:              d.metric.WarehouseCode,
				Destination:         n.metric.WarehouseCode,
				DestinationRegion:   dest.Region,
				Quantity:            qty,
				OriginDays:          d.metric.DaysOfInventory,
				DestinationDays:     n.metric.DaysOfInventory,
				BrandCategory:       n.brand.Category,
				BrandClassification: n.brand.Classification,
				Priority:            policy.transferPriority(*n.metric.DaysOfInventory, n.brand, n.rank),
				Status:              domain.StatusPending,
			})
		}
		if n.remaining > 0 {
			plan.Unmet[metricKey{n.metric.Reference, n.metric.WarehouseCode}] = n.remaining
		}
	}
	return plan
}
