package service

import (
	"context"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/cache"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

type RecommendationService struct {
	repo  repository.RecommendationRepository
	cache cache.DashboardCache
}

func NewRecommendationService(repo repository.RecommendationRepository, cacheImpl cache.DashboardCache) *RecommendationService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &RecommendationService{repo: repo, cache: cacheImpl}
}

func (s *RecommendationService) ListTransfers(ctx context.Context, filter domain.ListFilter) ([]domain.TransferRecommendation, error) {
	return s.repo.ListTransfers(ctx, filter)
}

func (s *RecommendationService) ListPurchases(ctx context.Context, filter domain.ListFilter) ([]domain.PurchaseRecommendation, error) {
	return s.repo.ListPurchases(ctx, filter)
}

func (s *RecommendationService) UpdateTransferStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.TransferRecommendation, error) {
	if err := validateStatusUpdate(&upd, domain.TransferLifecycle); err != nil {
		return nil, err
	}
	rec, err := s.repo.UpdateTransferStatus(ctx, upd)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "transfer", upd)
	return rec, nil
}

func (s *RecommendationService) UpdatePurchaseStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.PurchaseRecommendation, error) {
	if err := validateStatusUpdate(&upd, domain.PurchaseLifecycle); err != nil {
		return nil, err
	}
	rec, err := s.repo.UpdatePurchaseStatus(ctx, upd)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "purchase", upd)
	return rec, nil
}

func (s *RecommendationService) invalidate(ctx context.Context, kind string, upd domain.StatusUpdate) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Str("kind", kind).Int64("id", upd.ID).Msg("recommendations: cache invalidation failed")
	}
	log.Info().Str("kind", kind).Int64("id", upd.ID).Str("estado", upd.Status).Str("usuario", upd.User).Msg("recommendation status updated")
}
