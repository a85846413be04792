package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
)

// ReferenceRepository reads the registries a run is computed against.
type ReferenceRepository interface {
	ListWarehouses(ctx context.Context) ([]domain.Warehouse, error)
	ListWarehouseTypes(ctx context.Context) ([]domain.WarehouseType, error)
	ListBrands(ctx context.Context) ([]domain.Brand, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListPriorityRules(ctx context.Context) ([]domain.PriorityRule, error)
}

// FactsRepository reads sales and inventory facts.
type FactsRepository interface {
	// DailySales returns per-day sums of ventas with from <= fecha <= to.
	DailySales(ctx context.Context, from, to time.Time) ([]domain.DailySales, error)
	// LatestSnapshotDate returns the newest fecha_snapshot <= date, nil if none.
	LatestSnapshotDate(ctx context.Context, date time.Time) (*time.Time, error)
	Snapshot(ctx context.Context, date time.Time) ([]domain.InventorySnapshot, error)
}

// AnalyticsBatch is everything one run writes for its calculation date.
type AnalyticsBatch struct {
	CalcDate         time.Time
	WarehouseMetrics []domain.ProductWarehouseMetric
	NetworkMetrics   []domain.ProductNetworkMetric
	RegionalMetrics  []domain.RegionalMetric
	Alerts           []domain.Alert
	Transfers        []domain.TransferRecommendation
	Purchases        []domain.PurchaseRecommendation
}

// WriteSummary counts the rows that were actually inserted. Alerts and
// recommendations already acted upon for the date are kept, so their new
// duplicates are not counted.
type WriteSummary struct {
	Alerts    int
	Transfers int
	Purchases int
}

// AnalyticsWriter persists a batch atomically. It fails with
// domain.ErrRunInProgress when another writer holds the date.
type AnalyticsWriter interface {
	SaveBatch(ctx context.Context, batch AnalyticsBatch) (WriteSummary, error)
}

type AlertRepository interface {
	ListAlerts(ctx context.Context, filter domain.ListFilter) ([]domain.Alert, error)
	AlertSummary(ctx context.Context, calcDate *time.Time) ([]domain.AlertSummary, error)
	UpdateAlertStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.Alert, error)
}

type RecommendationRepository interface {
	ListTransfers(ctx context.Context, filter domain.ListFilter) ([]domain.TransferRecommendation, error)
	ListPurchases(ctx context.Context, filter domain.ListFilter) ([]domain.PurchaseRecommendation, error)
	UpdateTransferStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.TransferRecommendation, error)
	UpdatePurchaseStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.PurchaseRecommendation, error)
}

type DashboardRepository interface {
	GetKPIs(ctx context.Context) (*domain.KPIs, error)
	LatestCalcDate(ctx context.Context) (*time.Time, error)
	ListWarehouseOverview(ctx context.Context, calcDate time.Time) ([]domain.WarehouseOverview, error)
	WarehouseInventory(ctx context.Context, code string, calcDate time.Time, limit int) ([]domain.ProductWarehouseMetric, error)
	ProductNetwork(ctx context.Context, reference string, calcDate time.Time) (*domain.ProductNetwork, error)
	RegionalMetrics(ctx context.Context, calcDate time.Time) ([]domain.RegionalMetric, error)
}

// SalesRepository serves the sales and brand analytics of the dashboard.
type SalesRepository interface {
	// SalesTrend buckets the ventas of sales warehouses over the trailing days.
	SalesTrend(ctx context.Context, interval string, days int) ([]domain.SalesTrendPoint, error)
	TopProducts(ctx context.Context, days, limit int) ([]domain.TopProduct, error)
	BrandPerformance(ctx context.Context, calcDate time.Time, q domain.BrandPerformanceQuery) (*domain.BrandPerformanceResponse, error)
	RecommendationAging(ctx context.Context) ([]domain.RecommendationAging, error)
	LatestCalcDate(ctx context.Context) (*time.Time, error)
}
