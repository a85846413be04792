package service

import (
	"context"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/cache"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

type AlertService struct {
	repo  repository.AlertRepository
	cache cache.DashboardCache
}

func NewAlertService(repo repository.AlertRepository, cacheImpl cache.DashboardCache) *AlertService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &AlertService{repo: repo, cache: cacheImpl}
}

func (s *AlertService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Alert, error) {
	return s.repo.ListAlerts(ctx, filter)
}

func (s *AlertService) Summary(ctx context.Context, date *time.Time) ([]domain.AlertSummary, error) {
	return s.repo.AlertSummary(ctx, date)
}

// UpdateStatus applies an operator transition. Pending counts feed the KPIs,
// so the dashboard cache is dropped afterwards.
func (s *AlertService) UpdateStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.Alert, error) {
	if err := validateStatusUpdate(&upd, domain.AlertLifecycle); err != nil {
		return nil, err
	}

	alert, err := s.repo.UpdateAlertStatus(ctx, upd)
	if err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Int64("id", upd.ID).Msg("alerts: cache invalidation failed")
	}
	log.Info().Int64("id", upd.ID).Str("estado", upd.Status).Str("usuario", upd.User).Msg("alert status updated")
	return alert, nil
}
