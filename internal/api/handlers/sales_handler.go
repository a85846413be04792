package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

type SalesService interface {
	SalesTrend(ctx context.Context, interval string, days int) ([]domain.SalesTrendPoint, error)
	TopProducts(ctx context.Context, days, limit int) ([]domain.TopProduct, error)
	BrandPerformance(ctx context.Context, date *time.Time, q domain.BrandPerformanceQuery) (*domain.BrandPerformanceResponse, error)
	RecommendationAging(ctx context.Context) ([]domain.RecommendationAging, error)
}

type SalesHandler struct {
	service SalesService
}

func NewSalesHandler(service SalesService) *SalesHandler {
	return &SalesHandler{service: service}
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}

// DailySales returns the sales trend, bucketed by ?intervalo=day|week|month
func (h *SalesHandler) DailySales(c *gin.Context) {
	days := parsePositiveIntWithDefault(c.Query("dias"), 30)
	out, err := h.service.SalesTrend(c.Request.Context(), c.Query("intervalo"), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "dias": days})
}

func (h *SalesHandler) TopProducts(c *gin.Context) {
	days := parsePositiveIntWithDefault(c.Query("dias"), 30)
	limit := parsePositiveIntWithDefault(c.Query("limit"), 20)
	out, err := h.service.TopProducts(c.Request.Context(), days, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total": len(out), "dias": days})
}

func (h *SalesHandler) BrandPerformance(c *gin.Context) {
	date, err := parseDateQuery(c, "fecha")
	if err != nil {
		respondError(c, err)
		return
	}
	q := domain.BrandPerformanceQuery{
		Page:          parsePositiveIntWithDefault(c.Query("page"), 1),
		PageSize:      parsePositiveIntWithDefault(c.Query("page_size"), 20),
		SortField:     strings.TrimSpace(c.Query("sort_field")),
		SortDirection: strings.ToLower(strings.TrimSpace(c.Query("sort_direction"))),
	}
	out, err := h.service.BrandPerformance(c.Request.Context(), date, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *SalesHandler) RecommendationAging(c *gin.Context) {
	out, err := h.service.RecommendationAging(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
