package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/cache"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/notify"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/pipeline"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PipelineName identifies the analytics pipeline in analytics_runs.
const PipelineName = "inventory_analytics"

const postCommitTimeout = 30 * time.Second

// Exporter uploads the output of a committed run.
type Exporter interface {
	Export(ctx context.Context, date time.Time, alerts []domain.Alert, transfers []domain.TransferRecommendation, purchases []domain.PurchaseRecommendation) ([]string, error)
}

// Dependencies wires the pipeline to storage and side channels. Locker,
// Cache and Notifier default to noops; Exporter is optional.
type Dependencies struct {
	References repository.ReferenceRepository
	Facts      repository.FactsRepository
	Writer     repository.AnalyticsWriter
	Locker     cache.RunLocker
	Cache      cache.DashboardCache
	Notifier   notify.Notifier
	Exporter   Exporter
}

// AnalyticsPipeline implements pipeline.Pipeline for the daily inventory run.
type AnalyticsPipeline struct {
	engine *Engine
	deps   Dependencies
}

var _ pipeline.Pipeline = (*AnalyticsPipeline)(nil)

// NewAnalyticsPipeline validates the policy and builds the pipeline.
func NewAnalyticsPipeline(policy Policy, deps Dependencies) (*AnalyticsPipeline, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analytics policy: %w", err)
	}
	if deps.References == nil || deps.Facts == nil || deps.Writer == nil {
		return nil, errors.New("analytics pipeline needs reference, facts and writer repositories")
	}
	if deps.Locker == nil {
		deps.Locker = cache.NewNoopRunLocker()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewNoopDashboardCache()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewNoopNotifier()
	}
	return &AnalyticsPipeline{engine: NewEngine(policy), deps: deps}, nil
}

// Name returns the unique identifier of this pipeline.
func (p *AnalyticsPipeline) Name() string {
	return PipelineName
}

// Execute loads the facts of date, computes every output and replaces the
// date's rows in one transaction. Side channels run only after commit.
func (p *AnalyticsPipeline) Execute(ctx context.Context, date time.Time) (pipeline.RunStats, error) {
	date = domain.TruncateDate(date)
	logger := log.With().Str("pipeline", PipelineName).Str("fecha", date.Format(domain.DateLayout)).Logger()

	release, err := p.deps.Locker.Acquire(ctx, date)
	if err != nil {
		return pipeline.RunStats{}, err
	}
	defer release()

	refs, err := p.loadReferences(ctx)
	if err != nil {
		return pipeline.RunStats{}, err
	}

	facts, err := p.loadFacts(ctx, date)
	if err != nil {
		return pipeline.RunStats{}, err
	}
	if facts.SnapshotDate == nil {
		logger.Warn().Err(domain.ErrMissingSnapshot).Msg("computing without inventory")
	} else if !facts.SnapshotDate.Equal(date) {
		logger.Info().Str("fecha_snapshot", facts.SnapshotDate.Format(domain.DateLayout)).Msg("using earlier inventory snapshot")
	}

	start := time.Now()
	res := p.engine.Compute(date, refs, facts)
	logger.Debug().Dur("took", time.Since(start)).Int("metricas", len(res.WarehouseMetrics)).Msg("computed")

	written, err := p.deps.Writer.SaveBatch(ctx, repository.AnalyticsBatch{
		CalcDate:         date,
		WarehouseMetrics: res.WarehouseMetrics,
		NetworkMetrics:   res.NetworkMetrics,
		RegionalMetrics:  res.RegionalMetrics,
		Alerts:           res.Alerts,
		Transfers:        res.Transfers,
		Purchases:        res.Purchases,
	})
	if err != nil {
		return pipeline.RunStats{}, fmt.Errorf("save analytics for %s: %w", date.Format(domain.DateLayout), err)
	}

	stats := pipeline.RunStats{
		WarehouseMetrics: len(res.WarehouseMetrics),
		NetworkMetrics:   len(res.NetworkMetrics),
		RegionalMetrics:  len(res.RegionalMetrics),
		Alerts:           written.Alerts,
		Transfers:        written.Transfers,
		Purchases:        written.Purchases,
		SkippedRows:      res.SkippedRows,
	}

	p.afterCommit(ctx, res)
	return stats, nil
}

func (p *AnalyticsPipeline) loadReferences(ctx context.Context) (*ReferenceData, error) {
	warehouses, err := p.deps.References.ListWarehouses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load warehouses: %w", err)
	}
	types, err := p.deps.References.ListWarehouseTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load warehouse types: %w", err)
	}
	brands, err := p.deps.References.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("load brands: %w", err)
	}
	products, err := p.deps.References.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	rules, err := p.deps.References.ListPriorityRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load priority matrix: %w", err)
	}
	refs := NewReferenceData(warehouses, types, brands, products, rules, p.engine.Policy().DefaultBrand)
	for _, code := range refs.UnrankedBrands() {
		log.Warn().Str("marca", code).Msg("brand missing from priority matrix, ranked last")
	}
	return refs, nil
}

func (p *AnalyticsPipeline) loadFacts(ctx context.Context, date time.Time) (Facts, error) {
	var facts Facts

	sales, err := p.deps.Facts.DailySales(ctx, date.AddDate(0, 0, -(window90-1)), date)
	if err != nil {
		return facts, fmt.Errorf("load sales: %w", err)
	}
	facts.Sales = sales

	snapDate, err := p.deps.Facts.LatestSnapshotDate(ctx, date)
	if err != nil {
		return facts, fmt.Errorf("find inventory snapshot: %w", err)
	}
	if snapDate == nil {
		return facts, nil
	}

	snapshot, err := p.deps.Facts.Snapshot(ctx, *snapDate)
	if err != nil {
		return facts, fmt.Errorf("load inventory snapshot %s: %w", snapDate.Format(domain.DateLayout), err)
	}
	facts.Snapshot = snapshot
	facts.SnapshotDate = snapDate
	return facts, nil
}

// afterCommit runs the best effort side channels. Their failures are logged
// and never fail the run, whose data is already committed.
func (p *AnalyticsPipeline) afterCommit(ctx context.Context, res Result) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), postCommitTimeout)
	defer cancel()

	fecha := res.CalcDate.Format(domain.DateLayout)

	if err := p.deps.Cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Str("fecha", fecha).Msg("failed to invalidate dashboard cache")
	}

	if err := p.deps.Notifier.Notify(ctx, Summarize(res)); err != nil {
		log.Warn().Err(err).Str("fecha", fecha).Msg("failed to publish run summary")
	}

	if p.deps.Exporter != nil {
		keys, err := p.deps.Exporter.Export(ctx, res.CalcDate, res.Alerts, res.Transfers, res.Purchases)
		if err != nil {
			log.Warn().Err(err).Str("fecha", fecha).Msg("failed to export run")
		} else {
			log.Info().Strs("keys", keys).Str("fecha", fecha).Msg("run exported")
		}
	}
}

// Summarize builds the notification payload of a run.
func Summarize(res Result) notify.RunSummary {
	value := decimal.Zero
	for _, pr := range res.Purchases {
		value = value.Add(pr.EstimatedValue)
	}
	return notify.RunSummary{
		CalcDate:      res.CalcDate.Format(domain.DateLayout),
		Alerts:        AlertCounts(res.Alerts),
		TotalAlerts:   len(res.Alerts),
		Transfers:     len(res.Transfers),
		Purchases:     len(res.Purchases),
		PurchaseValue: value,
	}
}
