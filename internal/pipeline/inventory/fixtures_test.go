package inventory

import (
	"testing"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

var calcDate = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

func testWarehouseTypes() []domain.WarehouseType {
	return []domain.WarehouseType{
		{Name: "Venta", IncludeInSales: true, IncludeInInventory: true},
		{Name: "Reserva", IncludeInSales: false, IncludeInInventory: true},
		{Name: "Laboratorio", IncludeInSales: false, IncludeInInventory: true},
	}
}

func testWarehouses() []domain.Warehouse {
	return []domain.Warehouse{
		{Code: "W1", Name: "Centro", Type: "Venta", Region: "ANTIOQUIA", Active: true},
		{Code: "W2", Name: "Norte", Type: "Venta", Region: "ANTIOQUIA", Active: true},
		{Code: "W3", Name: "Sur", Type: "Venta", Region: "VALLE", Active: true},
		{Code: "R1", Name: "Reserva", Type: "Reserva", Region: "ANTIOQUIA", Active: true},
		{Code: "LAB", Name: "Laboratorio", Type: "Laboratorio", Region: "ANTIOQUIA", Active: true},
		{Code: "OLD", Name: "Cerrado", Type: "Venta", Region: "VALLE", Active: false},
	}
}

func testBrands() []domain.Brand {
	return []domain.Brand{
		{Code: "ACME", Category: domain.CategoryPrincipal, Classification: domain.ClassA, CoverageDays: 30, SupplierLeadTime: 10, LeadTimeToCEDI: 15},
		{Code: "GEN", Category: domain.CategoryOthers, Classification: domain.ClassC, CoverageDays: 30, SupplierLeadTime: 10, LeadTimeToCEDI: 15},
		{Code: "SLOW", Category: domain.CategoryPrincipal, Classification: domain.ClassD, CoverageDays: 30, SupplierLeadTime: 10, LeadTimeToCEDI: 15},
		{Code: "MID", Category: domain.CategoryPrincipal, Classification: domain.ClassB, CoverageDays: 30, SupplierLeadTime: 10, LeadTimeToCEDI: 15},
	}
}

func testProducts() []domain.Product {
	return []domain.Product{
		{Reference: "P1", BrandCode: "ACME", Active: true},
		{Reference: "P2", BrandCode: "GEN", Active: true},
		{Reference: "P3", BrandCode: "SLOW", Active: true},
		{Reference: "P4", BrandCode: "ACME", Active: true},
		{Reference: "P5", BrandCode: "MID", Active: true},
	}
}

func testRefs(t *testing.T) *ReferenceData {
	t.Helper()
	return NewReferenceData(testWarehouses(), testWarehouseTypes(), testBrands(), testProducts(), nil, DefaultPolicy().DefaultBrand)
}

// spreadSales records units evenly over the 30 days ending on calcDate.
func spreadSales(ref, wh string, units float64, unitPrice int64) []domain.DailySales {
	perDay := units / 30
	out := make([]domain.DailySales, 0, 30)
	for i := 0; i < 30; i++ {
		out = append(out, domain.DailySales{
			Reference:     ref,
			WarehouseCode: wh,
			Date:          calcDate.AddDate(0, 0, -i),
			Quantity:      perDay,
			Value:         decimal.NewFromFloat(perDay).Mul(decimal.NewFromInt(unitPrice)),
		})
	}
	return out
}

func snapshotRow(ref, wh string, qty float64, cost int64) domain.InventorySnapshot {
	return domain.InventorySnapshot{
		SnapshotDate:  calcDate,
		WarehouseCode: wh,
		Reference:     ref,
		Quantity:      qty,
		UnitCost:      decimal.NewFromInt(cost),
	}
}

func findMetric(metrics []domain.ProductWarehouseMetric, ref, wh string) (domain.ProductWarehouseMetric, bool) {
	for _, m := range metrics {
		if m.Reference == ref && m.WarehouseCode == wh {
			return m, true
		}
	}
	return domain.ProductWarehouseMetric{}, false
}

// metricFor runs the calculator for a single row with sales spread over 30 days.
func metricFor(t *testing.T, refs *ReferenceData, policy Policy, ref, wh string, stock, units30 float64) domain.ProductWarehouseMetric {
	t.Helper()
	brand, _ := refs.BrandFor(ref)
	window := salesWindow{Units30: units30, Units90: units30}
	return NewInventoryCalculator(policy).Calculate(calcDate, snapshotRow(ref, wh, stock, 10), window, brand)
}
