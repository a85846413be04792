package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/notify"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReferences struct {
	err   error
	rules []domain.PriorityRule
}

func (f fakeReferences) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	return testWarehouses(), f.err
}
func (f fakeReferences) ListWarehouseTypes(ctx context.Context) ([]domain.WarehouseType, error) {
	return testWarehouseTypes(), nil
}
func (f fakeReferences) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return testBrands(), nil
}
func (f fakeReferences) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return testProducts(), nil
}
func (f fakeReferences) ListPriorityRules(ctx context.Context) ([]domain.PriorityRule, error) {
	return f.rules, nil
}

type fakeFacts struct {
	facts     Facts
	from, to  time.Time
	askedSnap time.Time
}

func (f *fakeFacts) DailySales(ctx context.Context, from, to time.Time) ([]domain.DailySales, error) {
	f.from, f.to = from, to
	return f.facts.Sales, nil
}

func (f *fakeFacts) LatestSnapshotDate(ctx context.Context, date time.Time) (*time.Time, error) {
	return f.facts.SnapshotDate, nil
}

func (f *fakeFacts) Snapshot(ctx context.Context, date time.Time) ([]domain.InventorySnapshot, error) {
	f.askedSnap = date
	return f.facts.Snapshot, nil
}

type fakeWriter struct {
	batches []repository.AnalyticsBatch
	err     error
}

func (f *fakeWriter) SaveBatch(ctx context.Context, batch repository.AnalyticsBatch) (repository.WriteSummary, error) {
	if f.err != nil {
		return repository.WriteSummary{}, f.err
	}
	f.batches = append(f.batches, batch)
	return repository.WriteSummary{Alerts: len(batch.Alerts), Transfers: len(batch.Transfers), Purchases: len(batch.Purchases)}, nil
}

type fakeLocker struct {
	held     bool
	released int
}

func (f *fakeLocker) Acquire(ctx context.Context, date time.Time) (func(), error) {
	if f.held {
		return nil, fmt.Errorf("%s: %w", date.Format(domain.DateLayout), domain.ErrRunInProgress)
	}
	return func() { f.released++ }, nil
}

type fakeCache struct{ invalidations int }

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}
func (f *fakeCache) Set(ctx context.Context, key string, value interface{}) error { return nil }
func (f *fakeCache) InvalidateAll(ctx context.Context) error {
	f.invalidations++
	return nil
}

type fakeNotifier struct {
	summaries []notify.RunSummary
	err       error
}

func (f *fakeNotifier) Notify(ctx context.Context, summary notify.RunSummary) error {
	f.summaries = append(f.summaries, summary)
	return f.err
}

type fakeExporter struct{ dates []time.Time }

func (f *fakeExporter) Export(ctx context.Context, date time.Time, alerts []domain.Alert, transfers []domain.TransferRecommendation, purchases []domain.PurchaseRecommendation) ([]string, error) {
	f.dates = append(f.dates, date)
	return []string{"exports/x.csv"}, nil
}

type pipelineHarness struct {
	facts    *fakeFacts
	writer   *fakeWriter
	locker   *fakeLocker
	cache    *fakeCache
	notifier *fakeNotifier
	exporter *fakeExporter
	pipeline *AnalyticsPipeline
}

func newHarness(t *testing.T, facts Facts) *pipelineHarness {
	t.Helper()
	h := &pipelineHarness{
		facts:    &fakeFacts{facts: facts},
		writer:   &fakeWriter{},
		locker:   &fakeLocker{},
		cache:    &fakeCache{},
		notifier: &fakeNotifier{},
		exporter: &fakeExporter{},
	}
	p, err := NewAnalyticsPipeline(DefaultPolicy(), Dependencies{
		References: fakeReferences{},
		Facts:      h.facts,
		Writer:     h.writer,
		Locker:     h.locker,
		Cache:      h.cache,
		Notifier:   h.notifier,
		Exporter:   h.exporter,
	})
	require.NoError(t, err)
	h.pipeline = p
	return h
}

func TestAnalyticsPipelineExecute(t *testing.T) {
	h := newHarness(t, scenarioFacts())

	stats, err := h.pipeline.Execute(context.Background(), calcDate.Add(13*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, calcDate.AddDate(0, 0, -89), h.facts.from)
	assert.Equal(t, calcDate, h.facts.to)
	assert.Equal(t, calcDate, h.facts.askedSnap)

	require.Len(t, h.writer.batches, 1)
	batch := h.writer.batches[0]
	assert.Equal(t, calcDate, batch.CalcDate)
	assert.Len(t, batch.WarehouseMetrics, 3)
	assert.Len(t, batch.Transfers, 1)
	assert.Len(t, batch.Purchases, 1)

	assert.Equal(t, 3, stats.WarehouseMetrics)
	assert.Equal(t, 1, stats.NetworkMetrics)
	assert.Equal(t, 1, stats.Transfers)
	assert.Equal(t, 1, stats.Purchases)
	assert.Equal(t, len(batch.Alerts), stats.Alerts)
	assert.Equal(t, 1, stats.SkippedRows)

	assert.Equal(t, 1, h.locker.released)
	assert.Equal(t, 1, h.cache.invalidations)
	require.Len(t, h.notifier.summaries, 1)
	summary := h.notifier.summaries[0]
	assert.Equal(t, "2024-06-30", summary.CalcDate)
	assert.Equal(t, 1, summary.Purchases)
	assert.True(t, summary.PurchaseValue.Equal(batch.Purchases[0].EstimatedValue))
	assert.Equal(t, []time.Time{calcDate}, h.exporter.dates)
}

func TestAnalyticsPipelineLocked(t *testing.T) {
	h := newHarness(t, scenarioFacts())
	h.locker.held = true

	_, err := h.pipeline.Execute(context.Background(), calcDate)
	assert.ErrorIs(t, err, domain.ErrRunInProgress)
	assert.Empty(t, h.writer.batches)
	assert.Empty(t, h.notifier.summaries)
}

func TestAnalyticsPipelineWriteFailure(t *testing.T) {
	h := newHarness(t, scenarioFacts())
	h.writer.err = errors.New("connection reset")

	_, err := h.pipeline.Execute(context.Background(), calcDate)
	assert.ErrorContains(t, err, "connection reset")
	assert.Zero(t, h.cache.invalidations, "side channels only after commit")
	assert.Empty(t, h.notifier.summaries)
	assert.Empty(t, h.exporter.dates)
	assert.Equal(t, 1, h.locker.released)
}

func TestAnalyticsPipelineNotifierFailureIsIgnored(t *testing.T) {
	h := newHarness(t, scenarioFacts())
	h.notifier.err = errors.New("sns down")

	_, err := h.pipeline.Execute(context.Background(), calcDate)
	require.NoError(t, err)
	assert.Len(t, h.writer.batches, 1)
}

func TestAnalyticsPipelineWithoutSnapshot(t *testing.T) {
	facts := scenarioFacts()
	facts.SnapshotDate = nil
	h := newHarness(t, facts)

	stats, err := h.pipeline.Execute(context.Background(), calcDate)
	require.NoError(t, err)
	assert.Zero(t, stats.WarehouseMetrics)
	assert.True(t, h.facts.askedSnap.IsZero())
	require.Len(t, h.writer.batches, 1)
}

func TestAnalyticsPipelineReferenceFailure(t *testing.T) {
	p, err := NewAnalyticsPipeline(DefaultPolicy(), Dependencies{
		References: fakeReferences{err: errors.New("boom")},
		Facts:      &fakeFacts{},
		Writer:     &fakeWriter{},
	})
	require.NoError(t, err)

	_, err = p.Execute(context.Background(), calcDate)
	assert.ErrorContains(t, err, "load warehouses")
}

func TestNewAnalyticsPipelineValidation(t *testing.T) {
	policy := DefaultPolicy()
	policy.LowDays = 1

	_, err := NewAnalyticsPipeline(policy, Dependencies{References: fakeReferences{}, Facts: &fakeFacts{}, Writer: &fakeWriter{}})
	assert.Error(t, err)

	_, err = NewAnalyticsPipeline(DefaultPolicy(), Dependencies{})
	assert.Error(t, err)
}

func TestLoadReferencesWarnsOnUnrankedBrands(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	p, err := NewAnalyticsPipeline(DefaultPolicy(), Dependencies{
		References: fakeReferences{rules: []domain.PriorityRule{
			{Category: domain.CategoryPrincipal, Classification: domain.ClassA, Rank: 1},
		}},
		Facts:  &fakeFacts{},
		Writer: &fakeWriter{},
	})
	require.NoError(t, err)

	refs, err := p.loadReferences(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"GEN", "MID", "SLOW"}, refs.UnrankedBrands())
	out := buf.String()
	for _, code := range []string{"GEN", "MID", "SLOW"} {
		assert.Contains(t, out, `"marca":"`+code+`"`)
	}
	assert.NotContains(t, out, `"marca":"ACME"`)
	assert.Equal(t, 2, refs.Rank(domain.Brand{Category: domain.CategoryOthers, Classification: domain.ClassC}))
}
