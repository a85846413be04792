package pipeline

import (
	"context"
	"time"
)

// Pipeline defines the interface that every dated calculation must implement
type Pipeline interface {
	// Name returns the unique identifier for this pipeline
	Name() string

	// Execute performs the whole calculation for one date and persists it
	Execute(ctx context.Context, date time.Time) (RunStats, error)
}

// RunStats counts the rows a run produced
type RunStats struct {
	WarehouseMetrics int `json:"metricas_almacen" db:"warehouse_metrics"`
	NetworkMetrics   int `json:"metricas_red" db:"network_metrics"`
	RegionalMetrics  int `json:"metricas_regionales" db:"regional_metrics"`
	Alerts           int `json:"alertas" db:"alerts"`
	Transfers        int `json:"traslados" db:"transfers"`
	Purchases        int `json:"compras" db:"purchases"`
	SkippedRows      int `json:"filas_omitidas" db:"skipped_rows"`
}

// RunConfig holds configuration for running a pipeline
type RunConfig struct {
	Name          string
	WorkerCount   int           // Number of dates processed concurrently
	RetryAttempts int           // Number of attempts before a failed date is abandoned
	RetryBackoff  time.Duration // Backoff duration between retries
}

// DefaultRunConfig returns sensible defaults
func DefaultRunConfig(name string) RunConfig {
	return RunConfig{
		Name:          name,
		WorkerCount:   4,
		RetryAttempts: 3,
		RetryBackoff:  30 * time.Second,
	}
}

// RunStatus represents the current state of a pipeline run
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	// StatusSkipped marks a run that found another run for the same date in progress.
	StatusSkipped RunStatus = "skipped"
)

// Trigger tells what started a run
type Trigger string

const (
	TriggerCLI       Trigger = "cli"
	TriggerAPI       Trigger = "api"
	TriggerScheduled Trigger = "scheduled"
	TriggerRetry     Trigger = "retry"
	TriggerBackfill  Trigger = "backfill"
)

// Run tracks a single execution of a pipeline for a specific date
type Run struct {
	ID           string     `json:"id" db:"id"`
	PipelineName string     `json:"pipeline" db:"pipeline_name"`
	CalcDate     time.Time  `json:"fecha_calculo" db:"calc_date"`
	Status       RunStatus  `json:"estado" db:"status"`
	Trigger      Trigger    `json:"origen" db:"trigger"`
	Attempt      int        `json:"intento" db:"attempt"`
	StartedAt    time.Time  `json:"inicio" db:"started_at"`
	CompletedAt  *time.Time `json:"fin,omitempty" db:"completed_at"`
	ErrorMessage *string    `json:"error,omitempty" db:"error_message"`
	RunStats
}

// Duration is the wall time of a finished run, zero while it is running
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// RunFilter narrows run listings
type RunFilter struct {
	PipelineName string
	CalcDate     *time.Time
	Status       RunStatus
	Limit        int
}

// RunMetrics holds aggregate figures for monitoring
type RunMetrics struct {
	Runs            int64      `json:"runs" db:"runs"`
	Failed          int64      `json:"fallidas" db:"failed"`
	Alerts          int64      `json:"alertas" db:"alerts"`
	LastCompletedAt *time.Time `json:"ultima_ejecucion,omitempty" db:"last_completed_at"`
}
