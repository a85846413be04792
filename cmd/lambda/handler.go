package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/pipeline"
	"github.com/rs/zerolog/log"
)

// Event is the scheduled invocation payload. Fecha defaults to today.
type Event struct {
	Fecha string `json:"fecha"`
}

// Response mirrors an API Gateway proxy result so the function can also sit
// behind a gateway.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type runResult struct {
	Fecha        string         `json:"fecha"`
	RunID        string         `json:"run_id"`
	Metricas     int            `json:"metricas_calculadas"`
	Alertas      map[string]int `json:"alertas"`
	Traslados    int            `json:"recomendaciones_traslado"`
	Compras      int            `json:"recomendaciones_compra"`
	DuracionSegs float64        `json:"duracion_segundos"`
}

type dateRunner interface {
	ProcessDate(ctx context.Context, date time.Time, trigger pipeline.Trigger) (*pipeline.Run, error)
}

type alertSummarizer interface {
	AlertSummary(ctx context.Context, calcDate *time.Time) ([]domain.AlertSummary, error)
}

type handler struct {
	runner dateRunner
	alerts alertSummarizer
	today  func() time.Time
}

func (h *handler) Handle(ctx context.Context, ev Event) (Response, error) {
	date := h.today()
	if ev.Fecha != "" {
		parsed, err := domain.ParseDate(ev.Fecha)
		if err != nil {
			return errorResponse(http.StatusBadRequest, err), nil
		}
		date = parsed
	}

	run, err := h.runner.ProcessDate(ctx, date, pipeline.TriggerScheduled)
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		return errorResponse(http.StatusConflict, err), nil
	case err != nil:
		log.Error().Err(err).Str("fecha", date.Format(domain.DateLayout)).Msg("analytics run failed")
		return errorResponse(http.StatusInternalServerError, err), nil
	}

	result := runResult{
		Fecha:        date.Format(domain.DateLayout),
		RunID:        run.ID,
		Metricas:     run.WarehouseMetrics,
		Alertas:      map[string]int{"total": run.Alerts},
		Traslados:    run.Transfers,
		Compras:      run.Purchases,
		DuracionSegs: run.Duration().Seconds(),
	}

	summary, err := h.alerts.AlertSummary(ctx, &date)
	if err != nil {
		log.Warn().Err(err).Msg("failed to summarize alerts")
	}
	for _, s := range summary {
		result.Alertas[strings.ToLower(string(s.Type))] += s.Count
	}

	log.Info().Interface("resultado", result).Msg("analytics run completed")
	return jsonResponse(http.StatusOK, result), nil
}

func jsonResponse(status int, v interface{}) Response {
	body, err := json.Marshal(v)
	if err != nil {
		return Response{StatusCode: http.StatusInternalServerError, Body: `{"error":"failed to encode response"}`}
	}
	return Response{StatusCode: status, Body: string(body)}
}

func errorResponse(status int, err error) Response {
	return jsonResponse(status, map[string]string{"error": err.Error()})
}
