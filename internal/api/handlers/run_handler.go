package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RunService interface {
	Trigger(ctx context.Context, date time.Time) (*pipeline.Run, error)
	List(ctx context.Context, date *time.Time, status string, limit int) ([]pipeline.Run, error)
	Get(ctx context.Context, id string) (*pipeline.Run, error)
	Metrics(ctx context.Context, days int) (*pipeline.RunMetrics, error)
}

type RunHandler struct {
	service RunService
}

func NewRunHandler(service RunService) *RunHandler {
	return &RunHandler{service: service}
}

type triggerRequest struct {
	Date string `json:"fecha"`
}

// Trigger runs the calculation synchronously. The body is optional and
// defaults to today.
func (h *RunHandler) Trigger(c *gin.Context) {
	var req triggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
			return
		}
	}

	date := domain.Today()
	if strings.TrimSpace(req.Date) != "" {
		d, err := domain.ParseDate(strings.TrimSpace(req.Date))
		if err != nil {
			respondError(c, err)
			return
		}
		date = d
	}

	run, err := h.service.Trigger(c.Request.Context(), date)
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "run": run})
		return
	case err != nil && run != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "run failed", "run": run})
		return
	case err != nil:
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *RunHandler) List(c *gin.Context) {
	date, err := parseDateQuery(c, "fecha")
	if err != nil {
		respondError(c, err)
		return
	}
	runs, err := h.service.List(c.Request.Context(), date, strings.ToLower(c.Query("estado")), parseLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": runs, "total": len(runs)})
}

func (h *RunHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(c, fmt.Errorf("%w: run id must be a uuid", domain.ErrInvalidInput))
		return
	}
	run, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *RunHandler) Metrics(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("dias", "7"))
	metrics, err := h.service.Metrics(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}
