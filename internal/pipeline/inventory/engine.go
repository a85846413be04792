package inventory

import (
	"sort"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Engine is the pure part of a run: facts and reference data in, rows out.
// It performs no I/O, so identical inputs always give identical results.
type Engine struct {
	policy     Policy
	calculator *InventoryCalculator
}

// NewEngine creates an engine for the given policy.
func NewEngine(policy Policy) *Engine {
	return &Engine{
		policy:     policy,
		calculator: NewInventoryCalculator(policy),
	}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// Compute runs metrics, recommendations and alerts for one calculation date.
func (e *Engine) Compute(date time.Time, refs *ReferenceData, facts Facts) Result {
	date = domain.TruncateDate(date)
	res := Result{CalcDate: date}

	sales := make([]domain.DailySales, len(facts.Sales))
	copy(sales, facts.Sales)
	sort.SliceStable(sales, func(i, j int) bool {
		a, b := sales[i], sales[j]
		if a.Reference != b.Reference {
			return a.Reference < b.Reference
		}
		if a.WarehouseCode != b.WarehouseCode {
			return a.WarehouseCode < b.WarehouseCode
		}
		return a.Date.Before(b.Date)
	})
	windows := aggregateSales(date, sales, refs)

	if facts.SnapshotDate == nil {
		log.Warn().Str("fecha", date.Format(domain.DateLayout)).Msg("no inventory snapshot at or before date; warehouse metrics skipped")
	}

	// 1. Per (product, warehouse) metrics from the snapshot
	snapshot := make(map[metricKey]domain.InventorySnapshot, len(facts.Snapshot))
	for _, snap := range facts.Snapshot {
		key := metricKey{Reference: snap.Reference, Warehouse: snap.WarehouseCode}
		if _, ok := refs.Warehouse(snap.WarehouseCode); !ok {
			res.SkippedRows++
			log.Warn().Str("bodega", snap.WarehouseCode).Str("referencia", snap.Reference).Msg("snapshot row for unknown warehouse skipped")
			continue
		}
		if !refs.CountsForInventory(snap.WarehouseCode) {
			continue
		}
		if _, dup := snapshot[key]; dup {
			res.SkippedRows++
			log.Warn().Str("bodega", snap.WarehouseCode).Str("referencia", snap.Reference).Msg("duplicate snapshot row skipped")
			continue
		}
		snapshot[key] = snap
	}

	for _, key := range sortedKeys(snapshot) {
		snap := snapshot[key]
		brand, known := refs.BrandFor(snap.Reference)
		if !known {
			log.Debug().Str("referencia", snap.Reference).Msg("product or brand not registered; default brand parameters used")
		}
		var window salesWindow
		if w, ok := windows[key]; ok {
			window = *w
		}
		res.WarehouseMetrics = append(res.WarehouseMetrics, e.calculator.Calculate(date, snap, window, brand))
	}

	// 2. Network and regional aggregates
	var unitCosts map[string]decimal.Decimal
	res.NetworkMetrics, unitCosts = aggregateNetwork(date, res.WarehouseMetrics, snapshot, windows, e.policy.ABCCutoffs)
	res.RegionalMetrics = aggregateRegions(date, res.WarehouseMetrics, refs)

	// 3. Transfers first, purchases cover whatever transfers could not
	plan := GenerateTransfers(date, res.WarehouseMetrics, refs, e.policy)
	res.Transfers = plan.Transfers
	res.Purchases = GeneratePurchases(date, res.NetworkMetrics, plan.Unmet, unitCosts, refs, e.policy)

	// 4. Settle the warehouse flags
	receivers := make(map[metricKey]bool, len(res.Transfers))
	for _, t := range res.Transfers {
		receivers[metricKey{t.Reference, t.Destination}] = true
	}
	purchased := make(map[string]bool, len(res.Purchases))
	for _, p := range res.Purchases {
		purchased[p.Reference] = true
	}
	for i := range res.WarehouseMetrics {
		m := &res.WarehouseMetrics[i]
		key := metricKey{m.Reference, m.WarehouseCode}
		m.RequiresTransfer = receivers[key]
		_, short := plan.Unmet[key]
		m.RequiresPurchase = short && purchased[m.Reference]
	}

	// 5. Alerts
	res.Alerts = GenerateAlerts(date, res.WarehouseMetrics, refs, e.policy)

	return res
}
