package service

import (
	"context"
	"strconv"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/cache"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
)

// SalesService serves the sales trend, product ranking and brand listings.
type SalesService struct {
	repo  repository.SalesRepository
	cache cache.DashboardCache
}

func NewSalesService(repo repository.SalesRepository, cacheImpl cache.DashboardCache) *SalesService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &SalesService{repo: repo, cache: cacheImpl}
}

func (s *SalesService) SalesTrend(ctx context.Context, interval string, days int) ([]domain.SalesTrendPoint, error) {
	interval, err := domain.ParseInterval(interval)
	if err != nil {
		return nil, err
	}
	key := cache.DashboardKey("ventas_tendencia", map[string]string{
		"intervalo": interval,
		"dias":      strconv.Itoa(days),
	})
	return cached(ctx, s.cache, key, func() ([]domain.SalesTrendPoint, error) {
		return s.repo.SalesTrend(ctx, interval, days)
	})
}

func (s *SalesService) TopProducts(ctx context.Context, days, limit int) ([]domain.TopProduct, error) {
	key := cache.DashboardKey("top_productos", map[string]string{
		"dias":  strconv.Itoa(days),
		"limit": strconv.Itoa(limit),
	})
	return cached(ctx, s.cache, key, func() ([]domain.TopProduct, error) {
		return s.repo.TopProducts(ctx, days, limit)
	})
}

// BrandPerformance pages the brands at date, or at the latest calculation date
// when date is nil. An empty page is returned before the first run.
func (s *SalesService) BrandPerformance(ctx context.Context, date *time.Time, q domain.BrandPerformanceQuery) (*domain.BrandPerformanceResponse, error) {
	calcDate := date
	if calcDate == nil {
		latest, err := s.repo.LatestCalcDate(ctx)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return &domain.BrandPerformanceResponse{Items: []domain.BrandPerformance{}, Page: 1, PageSize: q.PageSize, TotalPages: 1}, nil
		}
		calcDate = latest
	}
	d := domain.TruncateDate(*calcDate)

	key := cache.DashboardKey("marcas_desempeno", map[string]string{
		"fecha":     d.Format(domain.DateLayout),
		"page":      strconv.Itoa(q.Page),
		"page_size": strconv.Itoa(q.PageSize),
		"sort":      q.SortField,
		"dir":       q.SortDirection,
	})
	return cached(ctx, s.cache, key, func() (*domain.BrandPerformanceResponse, error) {
		return s.repo.BrandPerformance(ctx, d, q)
	})
}

// RecommendationAging is read uncached since operators act on it.
func (s *SalesService) RecommendationAging(ctx context.Context) ([]domain.RecommendationAging, error) {
	return s.repo.RecommendationAging(ctx)
}
