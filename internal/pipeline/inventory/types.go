package inventory

import (
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/config"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SurplusMode selects how a donor warehouse's transferable surplus is measured.
type SurplusMode string

const (
	// SurplusAboveMax treats everything above stock_maximo as surplus.
	SurplusAboveMax SurplusMode = "stock_maximo"
	// SurplusAboveReorder treats everything above punto_reorden plus a unit buffer as surplus.
	SurplusAboveReorder SurplusMode = "reorder_point"
)

// ReorderFactors parameterise punto_reorden and stock_seguridad:
//
//	stock_seguridad = promedio × SafetyDays
//	punto_reorden   = promedio × lead_time_a_cedi × SafetyFactor + stock_seguridad
type ReorderFactors struct {
	SafetyFactor float64
	SafetyDays   float64
}

// Policy holds every tunable of a calculation run. It is immutable for the run.
type Policy struct {
	CriticalDays     float64
	LowDays          float64
	AlertHorizonDays float64
	OverstockFactor  float64

	LowRotation90d  float64
	LowRotationRate float64

	Reorder      ReorderFactors
	BrandReorder map[string]ReorderFactors

	Surplus            SurplusMode
	SurplusUnits       float64
	TransferBufferDays float64
	// DonorMinDays is the least days of inventory a donor must hold; 0 means
	// the donor brand's coverage target.
	DonorMinDays float64

	OrderMarginDays       int
	PurchaseAllCategories bool

	// ABCCutoffs are ascending cumulative value shares; len+1 classes are produced.
	ABCCutoffs []float64

	DefaultBrand domain.Brand
}

// DefaultPolicy mirrors the configuration defaults.
func DefaultPolicy() Policy {
	return Policy{
		CriticalDays:     3,
		LowDays:          7,
		AlertHorizonDays: 15,
		OverstockFactor:  1.5,
		LowRotation90d:   3,
		LowRotationRate:  0.5,
		Reorder:          ReorderFactors{SafetyFactor: 1, SafetyDays: 7},
		BrandReorder:     map[string]ReorderFactors{},
		Surplus:          SurplusAboveMax,
		OrderMarginDays:  7,
		ABCCutoffs:       []float64{0.80, 0.95},
		DefaultBrand:     defaultBrand(30, 15),
	}
}

func defaultBrand(coverage, leadTime int) domain.Brand {
	return domain.Brand{
		Category:       domain.CategoryOthers,
		Classification: domain.ClassC,
		CoverageDays:   coverage,
		LeadTimeToCEDI: leadTime,
	}
}

// PolicyFromConfig builds a Policy from the analytics configuration section.
func PolicyFromConfig(cfg config.AnalyticsConfig) Policy {
	p := DefaultPolicy()
	p.CriticalDays = cfg.CriticalDays
	p.LowDays = cfg.LowDays
	p.AlertHorizonDays = cfg.AlertHorizonDays
	p.OverstockFactor = cfg.OverstockFactor
	p.LowRotation90d = cfg.LowRotation90d
	p.LowRotationRate = cfg.LowRotationRate
	p.Reorder = ReorderFactors{SafetyFactor: cfg.SafetyFactor, SafetyDays: cfg.SafetyDays}
	p.Surplus = SurplusMode(cfg.SurplusPolicy)
	p.SurplusUnits = cfg.SurplusUnits
	p.TransferBufferDays = cfg.SurplusBufferDays
	p.DonorMinDays = cfg.DonorMinDays
	p.OrderMarginDays = cfg.OrderMarginDays
	p.PurchaseAllCategories = cfg.PurchaseAll
	if len(cfg.ABCCutoffs) > 0 {
		p.ABCCutoffs = cfg.ABCCutoffs
	}
	p.DefaultBrand = defaultBrand(cfg.DefaultCoverage, cfg.DefaultLeadTime)

	for code, o := range cfg.BrandOverrides {
		f := p.Reorder
		if o.SafetyFactor != nil {
			f.SafetyFactor = *o.SafetyFactor
		}
		if o.SafetyDays != nil {
			f.SafetyDays = *o.SafetyDays
		}
		p.BrandReorder[code] = f
	}
	return p
}

// Validate checks the policy is internally consistent.
func (p Policy) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.CriticalDays, validation.Required, validation.Min(0.0)),
		validation.Field(&p.LowDays, validation.Required, validation.Min(p.CriticalDays)),
		validation.Field(&p.AlertHorizonDays, validation.Required, validation.Min(p.LowDays)),
		validation.Field(&p.OverstockFactor, validation.Required, validation.Min(1.0)),
		validation.Field(&p.Surplus, validation.Required, validation.In(SurplusAboveMax, SurplusAboveReorder)),
		validation.Field(&p.SurplusUnits, validation.Min(0.0)),
		validation.Field(&p.TransferBufferDays, validation.Min(0.0)),
		validation.Field(&p.DonorMinDays, validation.Min(0.0)),
		validation.Field(&p.OrderMarginDays, validation.Min(0)),
		validation.Field(&p.ABCCutoffs, validation.Required, validation.By(ascendingShares)),
		validation.Field(&p.DefaultBrand, validation.By(func(v interface{}) error {
			b := v.(domain.Brand)
			return validation.Validate(b.CoverageDays, validation.Required, validation.Min(1))
		})),
	)
}

func ascendingShares(v interface{}) error {
	cutoffs, _ := v.([]float64)
	prev := 0.0
	for _, c := range cutoffs {
		if c <= prev || c > 1 {
			return validation.NewError("validation_abc_cutoffs", "must be ascending shares in (0, 1]")
		}
		prev = c
	}
	return nil
}

// FactorsFor returns the reorder factors of a brand, falling back to the global ones.
func (p Policy) FactorsFor(brandCode string) ReorderFactors {
	if f, ok := p.BrandReorder[brandCode]; ok {
		return f
	}
	return p.Reorder
}

// Facts are the raw inputs of one calculation date.
type Facts struct {
	// Sales holds per-day sums for the trailing window ending on the calculation date.
	Sales []domain.DailySales
	// Snapshot is the latest inventario_snapshot at or before the calculation date.
	Snapshot     []domain.InventorySnapshot
	SnapshotDate *time.Time
}

// Result is everything one run writes for its calculation date.
type Result struct {
	CalcDate         time.Time
	WarehouseMetrics []domain.ProductWarehouseMetric
	NetworkMetrics   []domain.ProductNetworkMetric
	RegionalMetrics  []domain.RegionalMetric
	Alerts           []domain.Alert
	Transfers        []domain.TransferRecommendation
	Purchases        []domain.PurchaseRecommendation
	SkippedRows      int
}

// metricKey identifies a (product, warehouse) pair.
type metricKey struct {
	Reference string
	Warehouse string
}
