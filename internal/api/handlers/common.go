package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// statusRequest is the body of the PATCH .../estado endpoints.
type statusRequest struct {
	Status string `json:"estado" binding:"required"`
	User   string `json:"usuario"`
}

// respondError maps domain sentinels to HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrRunInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidDate), errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter.
func parseDateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", domain.ErrInvalidInput)
	}
	return id, nil
}

// parseListFilter reads the query parameters shared by the listings.
func parseListFilter(c *gin.Context) (domain.ListFilter, error) {
	date, err := parseDateQuery(c, "fecha")
	if err != nil {
		return domain.ListFilter{}, err
	}
	return domain.ListFilter{
		CalcDate: date,
		Type:     strings.TrimSpace(c.Query("tipo")),
		Level:    strings.TrimSpace(c.Query("nivel")),
		Priority: strings.TrimSpace(c.Query("prioridad")),
		Status:   c.Query("estado"),
		Limit:    parseLimit(c),
	}, nil
}

// bindStatusUpdate reads the transition body for the row in the path.
func bindStatusUpdate(c *gin.Context) (domain.StatusUpdate, error) {
	id, err := parseID(c)
	if err != nil {
		return domain.StatusUpdate{}, err
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return domain.StatusUpdate{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return domain.StatusUpdate{ID: id, Status: req.Status, User: req.User}, nil
}
