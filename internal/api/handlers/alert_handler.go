package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

type AlertService interface {
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Alert, error)
	Summary(ctx context.Context, date *time.Time) ([]domain.AlertSummary, error)
	UpdateStatus(ctx context.Context, upd domain.StatusUpdate) (*domain.Alert, error)
}

type AlertHandler struct {
	service AlertService
}

func NewAlertHandler(service AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

func (h *AlertHandler) List(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if filter.Status == "" {
		filter.Status = domain.StatusPending
	}

	alerts, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts, "total": len(alerts)})
}

func (h *AlertHandler) Summary(c *gin.Context) {
	date, err := parseDateQuery(c, "fecha")
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (h *AlertHandler) UpdateStatus(c *gin.Context) {
	upd, err := bindStatusUpdate(c)
	if err != nil {
		respondError(c, err)
		return
	}
	alert, err := h.service.UpdateStatus(c.Request.Context(), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}
