package service

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

// mapCache is an in-memory DashboardCache that stores values untouched.
type mapCache struct {
	values        map[string]interface{}
	invalidations int
}

func newMapCache() *mapCache { return &mapCache{values: map[string]interface{}{}} }

func (c *mapCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	switch d := dest.(type) {
	case **domain.KPIs:
		*d = v.(*domain.KPIs)
	case *[]domain.WarehouseOverview:
		*d = v.([]domain.WarehouseOverview)
	case *[]domain.RegionalMetric:
		*d = v.([]domain.RegionalMetric)
	case *[]domain.SalesTrendPoint:
		*d = v.([]domain.SalesTrendPoint)
	case *[]domain.TopProduct:
		*d = v.([]domain.TopProduct)
	case **domain.BrandPerformanceResponse:
		*d = v.(*domain.BrandPerformanceResponse)
	}
	return true, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}) error {
	c.values[key] = value
	return nil
}

func (c *mapCache) InvalidateAll(ctx context.Context) error {
	c.invalidations++
	c.values = map[string]interface{}{}
	return nil
}

type fakeDashboardRepo struct {
	latest      *time.Time
	kpiCalls    int
	overviewFor []time.Time
}

func (f *fakeDashboardRepo) GetKPIs(ctx context.Context) (*domain.KPIs, error) {
	f.kpiCalls++
	return &domain.KPIs{PendingTransfers: 3}, nil
}

func (f *fakeDashboardRepo) LatestCalcDate(ctx context.Context) (*time.Time, error) {
	return f.latest, nil
}

func (f *fakeDashboardRepo) ListWarehouseOverview(ctx context.Context, calcDate time.Time) ([]domain.WarehouseOverview, error) {
	f.overviewFor = append(f.overviewFor, calcDate)
	return []domain.WarehouseOverview{{Code: "W1"}}, nil
}

func (f *fakeDashboardRepo) WarehouseInventory(ctx context.Context, code string, calcDate time.Time, limit int) ([]domain.ProductWarehouseMetric, error) {
	return []domain.ProductWarehouseMetric{{WarehouseCode: code, CalcDate: calcDate}}, nil
}

func (f *fakeDashboardRepo) ProductNetwork(ctx context.Context, reference string, calcDate time.Time) (*domain.ProductNetwork, error) {
	return &domain.ProductNetwork{Product: domain.Product{Reference: reference}}, nil
}

func (f *fakeDashboardRepo) RegionalMetrics(ctx context.Context, calcDate time.Time) ([]domain.RegionalMetric, error) {
	return []domain.RegionalMetric{{Region: "ANTIOQUIA", CalcDate: calcDate}}, nil
}

func TestDashboardServiceCachesKPIs(t *testing.T) {
	repo := &fakeDashboardRepo{}
	svc := NewDashboardService(repo, newMapCache())

	for i := 0; i < 3; i++ {
		kpis, err := svc.GetKPIs(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, kpis.PendingTransfers)
	}
	assert.Equal(t, 1, repo.kpiCalls)
}

func TestDashboardServiceResolvesLatestDate(t *testing.T) {
	t.Run("nothing calculated", func(t *testing.T) {
		svc := NewDashboardService(&fakeDashboardRepo{}, nil)
		out, err := svc.ListWarehouses(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, out)

		inv, err := svc.WarehouseInventory(context.Background(), "W1", nil, 10)
		require.NoError(t, err)
		assert.Empty(t, inv)
	})

	t.Run("latest date used", func(t *testing.T) {
		latest := testDate
		repo := &fakeDashboardRepo{latest: &latest}
		svc := NewDashboardService(repo, nil)

		out, err := svc.ListWarehouses(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, out, 1)
		assert.Equal(t, []time.Time{testDate}, repo.overviewFor)
	})

	t.Run("explicit date truncated", func(t *testing.T) {
		repo := &fakeDashboardRepo{}
		svc := NewDashboardService(repo, nil)
		explicit := testDate.Add(15 * time.Hour)

		regions, err := svc.RegionalMetrics(context.Background(), &explicit)
		require.NoError(t, err)
		require.Len(t, regions, 1)
		assert.Equal(t, testDate, regions[0].CalcDate)
	})
}

type fakeAlertRepo struct {
	updates []domain.StatusUpdate
}

func (f *fakeAlertRepo) ListAlerts(ctx context.Context, filter domain.ListFilter) ([]domain.Alert, error) {
	return nil, nil
}

func (f *fakeAlertRepo) AlertSummary(ctx context.Context, calcDate *time.Time) ([]domain.AlertSummary, error) {
	return nil, nil
}

func (f *fakeAlertRepo) UpdateAlertStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.Alert, error) {
	f.updates = append(f.updates, upd)
	return &domain.Alert{ID: upd.ID, Status: upd.Status}, nil
}

func TestAlertServiceUpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		upd     domain.StatusUpdate
		wantErr bool
	}{
		{name: "seen", upd: domain.StatusUpdate{ID: 7, Status: "vista", User: " ana "}},
		{name: "attended", upd: domain.StatusUpdate{ID: 7, Status: domain.StatusAttended}},
		{name: "missing id", upd: domain.StatusUpdate{Status: domain.StatusSeen}, wantErr: true},
		{name: "empty status", upd: domain.StatusUpdate{ID: 7}, wantErr: true},
		{name: "recommendation state", upd: domain.StatusUpdate{ID: 7, Status: domain.StatusApproved}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeAlertRepo{}
			c := newMapCache()
			svc := NewAlertService(repo, c)

			alert, err := svc.UpdateStatus(context.Background(), tt.upd)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				assert.Empty(t, repo.updates)
				return
			}
			require.NoError(t, err)
			require.Len(t, repo.updates, 1)
			assert.Equal(t, alert.Status, repo.updates[0].Status)
			assert.Equal(t, 1, c.invalidations)
		})
	}

	repo := &fakeAlertRepo{}
	_, err := NewAlertService(repo, nil).UpdateStatus(context.Background(), domain.StatusUpdate{ID: 1, Status: "vista", User: " ana "})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUpdate{ID: 1, Status: domain.StatusSeen, User: "ana"}, repo.updates[0])
}

type fakeRecommendationRepo struct {
	transfers []domain.StatusUpdate
	purchases []domain.StatusUpdate
}

func (f *fakeRecommendationRepo) ListTransfers(ctx context.Context, filter domain.ListFilter) ([]domain.TransferRecommendation, error) {
	return nil, nil
}

func (f *fakeRecommendationRepo) ListPurchases(ctx context.Context, filter domain.ListFilter) ([]domain.PurchaseRecommendation, error) {
	return nil, nil
}

func (f *fakeRecommendationRepo) UpdateTransferStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.TransferRecommendation, error) {
	f.transfers = append(f.transfers, upd)
	return &domain.TransferRecommendation{ID: upd.ID, Status: upd.Status}, nil
}

func (f *fakeRecommendationRepo) UpdatePurchaseStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.PurchaseRecommendation, error) {
	f.purchases = append(f.purchases, upd)
	return &domain.PurchaseRecommendation{ID: upd.ID, Status: upd.Status}, nil
}

func TestRecommendationServiceStatusSets(t *testing.T) {
	repo := &fakeRecommendationRepo{}
	svc := NewRecommendationService(repo, nil)
	ctx := context.Background()

	_, err := svc.UpdateTransferStatus(ctx, domain.StatusUpdate{ID: 1, Status: "aprobada"})
	require.NoError(t, err)
	_, err = svc.UpdateTransferStatus(ctx, domain.StatusUpdate{ID: 1, Status: domain.StatusOrdered})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdatePurchaseStatus(ctx, domain.StatusUpdate{ID: 2, Status: domain.StatusOrdered})
	require.NoError(t, err)
	_, err = svc.UpdatePurchaseStatus(ctx, domain.StatusUpdate{ID: 2, Status: domain.StatusExecuted})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Len(t, repo.transfers, 1)
	assert.Len(t, repo.purchases, 1)
}

func TestRunServiceRejectsFutureDates(t *testing.T) {
	svc := NewRunService(nil, nil, "inventory_analytics")
	_, err := svc.Trigger(context.Background(), domain.Today().AddDate(0, 0, 2))
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

type listingRunStore struct {
	pipeline.RunStore
	filter pipeline.RunFilter
}

func (s *listingRunStore) ListRuns(ctx context.Context, filter pipeline.RunFilter) ([]pipeline.Run, error) {
	s.filter = filter
	return []pipeline.Run{{ID: "r1"}}, nil
}

func TestRunServiceList(t *testing.T) {
	store := &listingRunStore{}
	svc := NewRunService(nil, store, "inventory_analytics")

	runs, err := svc.List(context.Background(), nil, "failed", 5)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, pipeline.RunFilter{PipelineName: "inventory_analytics", Status: pipeline.StatusFailed, Limit: 5}, store.filter)
}
