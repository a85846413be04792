package service

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSalesRepo struct {
	latest     *time.Time
	intervals  []string
	trendCalls int
	topCalls   int
	brandDates []time.Time
}

func (f *fakeSalesRepo) SalesTrend(ctx context.Context, interval string, days int) ([]domain.SalesTrendPoint, error) {
	f.trendCalls++
	f.intervals = append(f.intervals, interval)
	return []domain.SalesTrendPoint{{Date: "2024-06-30", Units: 4}}, nil
}

func (f *fakeSalesRepo) TopProducts(ctx context.Context, days, limit int) ([]domain.TopProduct, error) {
	f.topCalls++
	return []domain.TopProduct{{Reference: "P1"}}, nil
}

func (f *fakeSalesRepo) BrandPerformance(ctx context.Context, calcDate time.Time, q domain.BrandPerformanceQuery) (*domain.BrandPerformanceResponse, error) {
	f.brandDates = append(f.brandDates, calcDate)
	return &domain.BrandPerformanceResponse{Items: []domain.BrandPerformance{{Code: "M1"}}, Total: 1, Page: q.Page, PageSize: q.PageSize, TotalPages: 1}, nil
}

func (f *fakeSalesRepo) RecommendationAging(ctx context.Context) ([]domain.RecommendationAging, error) {
	return nil, nil
}

func (f *fakeSalesRepo) LatestCalcDate(ctx context.Context) (*time.Time, error) {
	return f.latest, nil
}

func TestSalesServiceTrend(t *testing.T) {
	repo := &fakeSalesRepo{}
	svc := NewSalesService(repo, newMapCache())
	ctx := context.Background()

	_, err := svc.SalesTrend(ctx, "semana", 60)
	require.NoError(t, err)
	_, err = svc.SalesTrend(ctx, "WEEK", 60)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.trendCalls, "equivalent intervals share a cache entry")
	assert.Equal(t, []string{domain.IntervalWeek}, repo.intervals)

	_, err = svc.SalesTrend(ctx, "hora", 60)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, repo.trendCalls)
}

func TestSalesServiceTopProductsCached(t *testing.T) {
	repo := &fakeSalesRepo{}
	svc := NewSalesService(repo, newMapCache())

	for i := 0; i < 2; i++ {
		out, err := svc.TopProducts(context.Background(), 30, 10)
		require.NoError(t, err)
		require.Len(t, out, 1)
	}
	assert.Equal(t, 1, repo.topCalls)

	_, err := svc.TopProducts(context.Background(), 30, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.topCalls)
}

func TestSalesServiceBrandPerformance(t *testing.T) {
	q := domain.BrandPerformanceQuery{Page: 1, PageSize: 20}

	t.Run("nothing calculated", func(t *testing.T) {
		repo := &fakeSalesRepo{}
		out, err := NewSalesService(repo, nil).BrandPerformance(context.Background(), nil, q)
		require.NoError(t, err)
		assert.Empty(t, out.Items)
		assert.NotNil(t, out.Items)
		assert.Empty(t, repo.brandDates)
	})

	t.Run("latest date used", func(t *testing.T) {
		repo := &fakeSalesRepo{latest: &testDate}
		out, err := NewSalesService(repo, nil).BrandPerformance(context.Background(), nil, q)
		require.NoError(t, err)
		assert.Equal(t, 1, out.Total)
		assert.Equal(t, []time.Time{testDate}, repo.brandDates)
	})

	t.Run("explicit date truncated", func(t *testing.T) {
		repo := &fakeSalesRepo{}
		at := testDate.Add(15 * time.Hour)
		_, err := NewSalesService(repo, nil).BrandPerformance(context.Background(), &at, q)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{testDate}, repo.brandDates)
	})
}
