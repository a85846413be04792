package handlers

import (
	"context"
	"net/http"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

type RecommendationService interface {
	ListTransfers(ctx context.Context, filter domain.ListFilter) ([]domain.TransferRecommendation, error)
	ListPurchases(ctx context.Context, filter domain.ListFilter) ([]domain.PurchaseRecommendation, error)
	UpdateTransferStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.TransferRecommendation, error)
	UpdatePurchaseStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.PurchaseRecommendation, error)
}

type RecommendationHandler struct {
	service RecommendationService
}

func NewRecommendationHandler(service RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// pendingListFilter defaults listings to rows still awaiting action.
func pendingListFilter(c *gin.Context) (domain.ListFilter, error) {
	filter, err := parseListFilter(c)
	if err != nil {
		return filter, err
	}
	if filter.Status == "" {
		filter.Status = domain.StatusPending
	}
	return filter, nil
}

func (h *RecommendationHandler) ListTransfers(c *gin.Context) {
	filter, err := pendingListFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.service.ListTransfers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total": len(out)})
}

func (h *RecommendationHandler) ListPurchases(c *gin.Context) {
	filter, err := pendingListFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.service.ListPurchases(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total": len(out)})
}

func (h *RecommendationHandler) UpdateTransferStatus(c *gin.Context) {
	upd, err := bindStatusUpdate(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rec, err := h.service.UpdateTransferStatus(c.Request.Context(), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *RecommendationHandler) UpdatePurchaseStatus(c *gin.Context) {
	upd, err := bindStatusUpdate(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rec, err := h.service.UpdatePurchaseStatus(c.Request.Context(), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
