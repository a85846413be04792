package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

type DashboardService interface {
	GetKPIs(ctx context.Context) (*domain.KPIs, error)
	ListWarehouses(ctx context.Context, date *time.Time) ([]domain.WarehouseOverview, error)
	WarehouseInventory(ctx context.Context, code string, date *time.Time, limit int) ([]domain.ProductWarehouseMetric, error)
	ProductNetwork(ctx context.Context, reference string, date *time.Time) (*domain.ProductNetwork, error)
	RegionalMetrics(ctx context.Context, date *time.Time) ([]domain.RegionalMetric, error)
}

type DashboardHandler struct {
	service DashboardService
}

func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) GetKPIs(c *gin.Context) {
	kpis, err := h.service.GetKPIs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

func (h *DashboardHandler) ListWarehouses(c *gin.Context) {
	date, err := parseDateQuery(c, "fecha")
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.service.ListWarehouses(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total": len(out)})
}

func (h *DashboardHandler) WarehouseInventory(c *gin.Context) {
	date, err := parseDateQuery(c, "fecha")
	if err != nil {
		respondError(c, err)
		return
	}
	code := strings.TrimSpace(c.Param("codigo"))
	out, err := h.service.WarehouseInventory(c.Request.Context(), code, date, parseLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bodega_codigo": code, "data": out, "total": len(out)})
}

func (h *DashboardHandler) ProductNetwork(c *gin.Context) {
	date, err := parseDateQuery(c, "fecha")
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.service.ProductNetwork(c.Request.Context(), strings.TrimSpace(c.Param("referencia")), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) RegionalMetrics(c *gin.Context) {
	date, err := parseDateQuery(c, "fecha")
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.service.RegionalMetrics(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total": len(out)})
}
