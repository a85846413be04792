package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
)

// levelShiftForRank raises the base level for the top-ranked brands and lowers
// it for the tail of the matrix.
func levelShiftForRank(rank int) int {
	switch {
	case rank <= 1:
		return -1
	case rank >= 4:
		return 1
	default:
		return 0
	}
}

// stockAlert classifies a row on the days-of-inventory ladder. ok is false when
// the row is outside the alert horizon.
func (p Policy) stockAlert(m domain.ProductWarehouseMetric) (domain.AlertType, domain.AlertLevel, bool) {
	if m.AvgDailySales <= 0 || m.DaysOfInventory == nil || !(*m.DaysOfInventory < p.AlertHorizonDays) {
		return "", "", false
	}
	d := *m.DaysOfInventory
	switch {
	case m.Stock <= 0:
		return domain.AlertOutOfStock, domain.LevelCritical, true
	case d < p.CriticalDays:
		return domain.AlertStockCritical, domain.LevelCritical, true
	case d < p.LowDays:
		return domain.AlertStockLow, domain.LevelHigh, true
	default:
		return domain.AlertStockMedium, domain.LevelMedium, true
	}
}

// GenerateAlerts emits threshold alerts for sales warehouses only.
func GenerateAlerts(date time.Time, metrics []domain.ProductWarehouseMetric, refs *ReferenceData, policy Policy) []domain.Alert {
	var out []domain.Alert

	for _, m := range metrics {
		if !refs.IsSalesWarehouse(m.WarehouseCode) {
			continue
		}
		brand, _ := refs.BrandFor(m.Reference)
		shift := levelShiftForRank(refs.Rank(brand))

		newAlert := func(t domain.AlertType, base domain.AlertLevel, msg string) domain.Alert {
			return domain.Alert{
				CalcDate:            date,
				Type:                t,
				Level:               base.Shift(shift),
				Reference:           m.Reference,
				WarehouseCode:       m.WarehouseCode,
				Stock:               m.Stock,
				DaysOfInventory:     m.DaysOfInventory,
				DailySales:          m.AvgDailySales,
				BrandCategory:       brand.Category,
				BrandClassification: brand.Classification,
				Message:             msg,
				Status:              domain.StatusPending,
			}
		}

		if t, lvl, ok := policy.stockAlert(m); ok {
			var msg string
			if t == domain.AlertOutOfStock {
				msg = fmt.Sprintf("Sin stock disponible. Venta diaria: %s uds. Reabastecer de inmediato.",
					formatNumber(m.AvgDailySales, 2))
			} else {
				msg = fmt.Sprintf("Stock para %s días. Venta diaria: %s uds. Se recomienda reabastecer.",
					formatNumber(*m.DaysOfInventory, 1), formatNumber(m.AvgDailySales, 2))
			}
			out = append(out, newAlert(t, lvl, msg))
		}

		target := float64(brand.CoverageDays)
		if m.AvgDailySales > 0 && m.DaysOfInventory != nil && *m.DaysOfInventory > target*policy.OverstockFactor {
			lvl := domain.LevelMedium
			if *m.DaysOfInventory > 2*target*policy.OverstockFactor {
				lvl = domain.LevelHigh
			}
			msg := fmt.Sprintf("Stock para %s días (objetivo: %d). Considerar traslado a otro almacén.",
				formatNumber(*m.DaysOfInventory, 0), brand.CoverageDays)
			out = append(out, newAlert(domain.AlertOverstock, lvl, msg))
		}

		lowRotation := m.Sales90 < policy.LowRotation90d ||
			(m.MonthlyRotation != nil && *m.MonthlyRotation < policy.LowRotationRate)
		if m.Stock > 0 && lowRotation && brand.Classification != domain.ClassD {
			lvl := domain.LevelMedium
			msg := fmt.Sprintf("Solo %s uds vendidas en 90 días. Evaluar promoción o descontinuar.",
				formatNumber(m.Sales90, 0))
			if m.Sales90 == 0 {
				lvl = domain.LevelHigh
				msg = "Sin movimiento en 90 días. Valor en stock: " + formatMoney(m.StockValue)
			}
			out = append(out, newAlert(domain.AlertLowRotation, lvl, msg))
		}
	}

	severity := map[domain.AlertLevel]int{
		domain.LevelCritical: 0, domain.LevelHigh: 1, domain.LevelMedium: 2, domain.LevelLow: 3,
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if severity[a.Level] != severity[b.Level] {
			return severity[a.Level] < severity[b.Level]
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Reference != b.Reference {
			return a.Reference < b.Reference
		}
		return a.WarehouseCode < b.WarehouseCode
	})
	return out
}

// AlertCounts tallies alerts per type, used for notification summaries.
func AlertCounts(alerts []domain.Alert) map[domain.AlertType]int {
	counts := make(map[domain.AlertType]int)
	for _, a := range alerts {
		counts[a.Type]++
	}
	return counts
}
