package service

import (
	"context"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/cache"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

type DashboardService struct {
	repo  repository.DashboardRepository
	cache cache.DashboardCache
}

func NewDashboardService(repo repository.DashboardRepository, cacheImpl cache.DashboardCache) *DashboardService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &DashboardService{repo: repo, cache: cacheImpl}
}

// cached serves key from the cache, falling back to load. Cache failures are
// logged and never fail the request.
func cached[T any](ctx context.Context, c cache.DashboardCache, key string, load func() (T, error)) (T, error) {
	var out T
	if ok, err := c.Get(ctx, key, &out); err == nil && ok {
		return out, nil
	} else if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dashboard: cache get failed")
	}

	out, err := load()
	if err != nil {
		return out, err
	}

	if err := c.Set(ctx, key, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dashboard: cache set failed")
	}
	return out, nil
}

func (s *DashboardService) GetKPIs(ctx context.Context) (*domain.KPIs, error) {
	return cached(ctx, s.cache, cache.DashboardKey("kpis", nil), func() (*domain.KPIs, error) {
		return s.repo.GetKPIs(ctx)
	})
}

// resolveDate returns date, or the latest calculation date when date is nil.
// It returns nil when nothing has been calculated yet.
func (s *DashboardService) resolveDate(ctx context.Context, date *time.Time) (*time.Time, error) {
	if date != nil {
		d := domain.TruncateDate(*date)
		return &d, nil
	}
	return s.repo.LatestCalcDate(ctx)
}

func (s *DashboardService) ListWarehouses(ctx context.Context, date *time.Time) ([]domain.WarehouseOverview, error) {
	calcDate, err := s.resolveDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if calcDate == nil {
		return []domain.WarehouseOverview{}, nil
	}

	key := cache.DashboardKey("almacenes", map[string]string{"fecha": calcDate.Format(domain.DateLayout)})
	return cached(ctx, s.cache, key, func() ([]domain.WarehouseOverview, error) {
		return s.repo.ListWarehouseOverview(ctx, *calcDate)
	})
}

func (s *DashboardService) WarehouseInventory(ctx context.Context, code string, date *time.Time, limit int) ([]domain.ProductWarehouseMetric, error) {
	calcDate, err := s.resolveDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if calcDate == nil {
		return []domain.ProductWarehouseMetric{}, nil
	}
	return s.repo.WarehouseInventory(ctx, code, *calcDate, limit)
}

func (s *DashboardService) ProductNetwork(ctx context.Context, reference string, date *time.Time) (*domain.ProductNetwork, error) {
	calcDate, err := s.resolveDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if calcDate == nil {
		now := domain.Today()
		calcDate = &now
	}
	return s.repo.ProductNetwork(ctx, reference, *calcDate)
}

func (s *DashboardService) RegionalMetrics(ctx context.Context, date *time.Time) ([]domain.RegionalMetric, error) {
	calcDate, err := s.resolveDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if calcDate == nil {
		return []domain.RegionalMetric{}, nil
	}

	key := cache.DashboardKey("regionales", map[string]string{"fecha": calcDate.Format(domain.DateLayout)})
	return cached(ctx, s.cache, key, func() ([]domain.RegionalMetric, error) {
		return s.repo.RegionalMetrics(ctx, *calcDate)
	})
}
