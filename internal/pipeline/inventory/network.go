package inventory

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// networkAccumulator sums one product across every analysed warehouse.
type networkAccumulator struct {
	stock      float64
	value      decimal.Decimal
	sales      salesWindow
	perStock   []float64
	withStock  int
	hasActive  bool
	costWeight decimal.Decimal
	costUnits  float64
}

// aggregateNetwork builds one network row per product with stock or sales.
// Sales come from the full window map, so warehouses without a snapshot row
// still contribute demand.
func aggregateNetwork(
	date time.Time,
	metrics []domain.ProductWarehouseMetric,
	snapshot map[metricKey]domain.InventorySnapshot,
	sales map[metricKey]*salesWindow,
	cutoffs []float64,
) ([]domain.ProductNetworkMetric, map[string]decimal.Decimal) {
	acc := make(map[string]*networkAccumulator)
	get := func(ref string) *networkAccumulator {
		a, ok := acc[ref]
		if !ok {
			a = &networkAccumulator{}
			acc[ref] = a
		}
		return a
	}

	for _, m := range metrics {
		a := get(m.Reference)
		a.stock += m.Stock
		a.value = a.value.Add(m.StockValue)
		if m.Stock > 0 {
			a.withStock++
			a.perStock = append(a.perStock, m.Stock)
			a.hasActive = true
			if snap, ok := snapshot[metricKey{m.Reference, m.WarehouseCode}]; ok {
				a.costWeight = a.costWeight.Add(snap.UnitCost.Mul(decimal.NewFromFloat(m.Stock)))
				a.costUnits += m.Stock
			}
		}
	}
	for _, key := range sortedKeys(sales) {
		w := sales[key]
		a := get(key.Reference)
		a.sales.Units7 += w.Units7
		a.sales.Units30 += w.Units30
		a.sales.Units90 += w.Units90
		a.sales.Value30 = a.sales.Value30.Add(w.Value30)
		if w.Units90 != 0 {
			a.hasActive = true
		}
	}

	refs := make([]string, 0, len(acc))
	values := make(map[string]decimal.Decimal, len(acc))
	for ref, a := range acc {
		if !a.hasActive {
			continue
		}
		refs = append(refs, ref)
		values[ref] = a.sales.Value30
	}
	sort.Strings(refs)
	classes := ClassifyABC(values, cutoffs)

	unitCosts := make(map[string]decimal.Decimal, len(refs))
	out := make([]domain.ProductNetworkMetric, 0, len(refs))
	for _, ref := range refs {
		a := acc[ref]
		daily := a.sales.Units30 / window30
		out = append(out, domain.ProductNetworkMetric{
			CalcDate:            date,
			Reference:           ref,
			TotalStock:          a.stock,
			StockValue:          a.value,
			Sales7:              a.sales.Units7,
			Sales30:             a.sales.Units30,
			Sales90:             a.sales.Units90,
			DailySales:          daily,
			DaysOfInventory:     DaysOfInventory(a.stock, daily),
			WarehousesWithStock: a.withStock,
			StockDeviation:      coefficientOfVariation(a.perStock),
			SalesValue30:        a.sales.Value30.Round(2),
			ABCClass:            classes[ref],
		})
		if a.costUnits > 0 {
			unitCosts[ref] = a.costWeight.Div(decimal.NewFromFloat(a.costUnits)).Round(2)
		}
	}
	return out, unitCosts
}

// sortedKeys orders (product, warehouse) keys so float sums are reproducible.
func sortedKeys[V any](m map[metricKey]V) []metricKey {
	keys := make([]metricKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Reference != keys[j].Reference {
			return keys[i].Reference < keys[j].Reference
		}
		return keys[i].Warehouse < keys[j].Warehouse
	})
	return keys
}

// coefficientOfVariation is the population standard deviation over the mean,
// nil when the mean is zero or there is nothing to compare.
func coefficientOfVariation(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return nil
	}
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	cv := roundFloat(math.Sqrt(sq/float64(len(values)))/mean, 4)
	return &cv
}

// aggregateRegions rolls warehouse metrics up per region.
func aggregateRegions(date time.Time, metrics []domain.ProductWarehouseMetric, refs *ReferenceData) []domain.RegionalMetric {
	byRegion := make(map[string]*domain.RegionalMetric)
	warehouses := make(map[string]map[string]bool)

	for _, m := range metrics {
		w, ok := refs.Warehouse(m.WarehouseCode)
		if !ok {
			continue
		}
		r, ok := byRegion[w.Region]
		if !ok {
			r = &domain.RegionalMetric{CalcDate: date, Region: w.Region}
			byRegion[w.Region] = r
			warehouses[w.Region] = make(map[string]bool)
		}
		warehouses[w.Region][w.Code] = true
		r.TotalStock += m.Stock
		r.StockValue = r.StockValue.Add(m.StockValue)
		r.Sales30 += m.Sales30
		switch m.StockStatus {
		case domain.StockCritical, domain.StockLow:
			r.ProductsShort++
		case domain.StockOver, domain.StockExcess:
			r.ProductsOver++
		}
	}

	regions := make([]string, 0, len(byRegion))
	for region := range byRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	out := make([]domain.RegionalMetric, 0, len(regions))
	for _, region := range regions {
		r := byRegion[region]
		r.Warehouses = len(warehouses[region])
		out = append(out, *r)
	}
	return out
}
