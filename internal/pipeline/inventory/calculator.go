package inventory

import (
	"math"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Trailing window lengths in days, ending on the calculation date inclusive.
const (
	window7  = 7
	window30 = 30
	window90 = 90
)

// salesWindow accumulates sold units over the trailing windows.
type salesWindow struct {
	Units7  float64
	Units30 float64
	Units90 float64
	Value30 decimal.Decimal
}

func (w *salesWindow) add(age int, qty float64, value decimal.Decimal) {
	if age < window90 {
		w.Units90 += qty
	}
	if age < window30 {
		w.Units30 += qty
		w.Value30 = w.Value30.Add(value)
	}
	if age < window7 {
		w.Units7 += qty
	}
}

// aggregateSales buckets daily sales into windows per (product, warehouse).
// Rows dated after the calculation date, or older than the longest window, are
// ignored, as are warehouses whose type is excluded from sales analysis.
func aggregateSales(date time.Time, sales []domain.DailySales, refs *ReferenceData) map[metricKey]*salesWindow {
	out := make(map[metricKey]*salesWindow)
	for _, s := range sales {
		day := domain.TruncateDate(s.Date)
		age := int(date.Sub(day) / (24 * time.Hour))
		if age < 0 || age >= window90 {
			continue
		}
		if !refs.CountsForSales(s.WarehouseCode) {
			continue
		}
		key := metricKey{Reference: s.Reference, Warehouse: s.WarehouseCode}
		w, ok := out[key]
		if !ok {
			w = &salesWindow{}
			out[key] = w
		}
		w.add(age, s.Quantity, s.Value)
	}
	return out
}

// InventoryCalculator derives the per-(product, warehouse) metrics.
type InventoryCalculator struct {
	policy Policy
}

// NewInventoryCalculator creates a new inventory calculator
func NewInventoryCalculator(policy Policy) *InventoryCalculator {
	return &InventoryCalculator{policy: policy}
}

// Calculate computes all metrics for a snapshot row. Flags are left false; they
// are settled once recommendations are known.
func (ic *InventoryCalculator) Calculate(date time.Time, snap domain.InventorySnapshot, sales salesWindow, brand domain.Brand) domain.ProductWarehouseMetric {
	m := domain.ProductWarehouseMetric{
		CalcDate:      date,
		Reference:     snap.Reference,
		WarehouseCode: snap.WarehouseCode,
		Stock:         snap.Quantity,
		StockValue:    decimal.NewFromFloat(snap.Quantity).Mul(snap.UnitCost).Round(2),
		Sales7:        sales.Units7,
		Sales30:       sales.Units30,
		Sales90:       sales.Units90,
	}

	// 1. Average daily demand over the 30 day window
	m.AvgDailySales = sales.Units30 / window30

	// 2. Days of inventory; undefined without demand
	m.DaysOfInventory = DaysOfInventory(snap.Quantity, m.AvgDailySales)

	// 3. Monthly rotation; undefined without stock
	if snap.Quantity > 0 {
		rot := sales.Units30 / snap.Quantity
		m.MonthlyRotation = &rot
	}

	// 4. Safety stock, reorder point and max stock
	f := ic.policy.FactorsFor(brand.Code)
	m.SafetyStock = m.AvgDailySales * f.SafetyDays
	m.ReorderPoint = m.AvgDailySales*float64(brand.LeadTimeToCEDI)*f.SafetyFactor + m.SafetyStock
	m.MaxStock = m.AvgDailySales * float64(brand.CoverageDays)

	// 5. Stock status ladder
	m.StockStatus = ic.Classify(snap.Quantity, m.DaysOfInventory, brand.CoverageDays)

	return m
}

// Classify applies the estado_stock ladder. Every comparison is a strict <, so
// a value sitting exactly on a threshold falls into the next, safer bucket.
func (ic *InventoryCalculator) Classify(stock float64, days *float64, coverage int) domain.StockStatus {
	if days == nil {
		if stock > 0 {
			return domain.StockNoDemand
		}
		return domain.StockOut
	}

	d := *days
	target := float64(coverage)
	switch {
	case d < ic.policy.CriticalDays:
		return domain.StockCritical
	case d < ic.policy.LowDays:
		return domain.StockLow
	case target*ic.policy.OverstockFactor < d:
		return domain.StockExcess
	case target < d:
		return domain.StockOver
	default:
		return domain.StockNormal
	}
}

// DaysOfInventory returns stock/demand, or nil when there is no demand. Negative
// stock counts as zero so the result is never negative.
func DaysOfInventory(stock, dailySales float64) *float64 {
	if dailySales <= 0 {
		return nil
	}
	d := math.Max(stock, 0) / dailySales
	return &d
}
