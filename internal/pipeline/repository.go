package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

// RunStore persists run tracking rows. Writes go straight to the pool, never
// through a calculation transaction, so a failed run is still recorded.
type RunStore interface {
	CreateRun(ctx context.Context, run *Run) error
	FinishRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	RetryCandidates(ctx context.Context, pipelineName string, maxAttempts int) ([]Run, error)
	GetRunMetrics(ctx context.Context, pipelineName string, since time.Time) (*RunMetrics, error)
}

// Repository handles database operations for run tracking
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new run repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const runColumns = `
	id, pipeline_name, calc_date, status, trigger, attempt, started_at,
	completed_at, error_message, warehouse_metrics, network_metrics,
	regional_metrics, alerts, transfers, purchases, skipped_rows`

// CreateRun inserts a new run row
func (r *Repository) CreateRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO analytics_runs (
			id, pipeline_name, calc_date, status, trigger, attempt, started_at
		) VALUES (:id, :pipeline_name, :calc_date, :status, :trigger, :attempt, :started_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// FinishRun stores the final status, counts and error of a run
func (r *Repository) FinishRun(ctx context.Context, run *Run) error {
	query := `
		UPDATE analytics_runs
		SET status = :status, completed_at = :completed_at, error_message = :error_message,
		    warehouse_metrics = :warehouse_metrics, network_metrics = :network_metrics,
		    regional_metrics = :regional_metrics, alerts = :alerts, transfers = :transfers,
		    purchases = :purchases, skipped_rows = :skipped_rows
		WHERE id = :id
	`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID
func (r *Repository) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := r.db.GetContext(ctx, &run, `SELECT `+runColumns+` FROM analytics_runs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns runs newest first
func (r *Repository) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.PipelineName != "" {
		args = append(args, filter.PipelineName)
		conditions = append(conditions, fmt.Sprintf("pipeline_name = $%d", len(args)))
	}
	if filter.CalcDate != nil {
		args = append(args, *filter.CalcDate)
		conditions = append(conditions, fmt.Sprintf("calc_date = $%d::date", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + runColumns + ` FROM analytics_runs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d", len(args))

	runs := []Run{}
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// RetryCandidates returns the latest failed run of every date that has not
// completed since and has attempts left.
func (r *Repository) RetryCandidates(ctx context.Context, pipelineName string, maxAttempts int) ([]Run, error) {
	query := `
		SELECT ` + runColumns + `
		FROM (
			SELECT DISTINCT ON (calc_date) *
			FROM analytics_runs
			WHERE pipeline_name = $1 AND status <> $2
			ORDER BY calc_date, started_at DESC
		) latest
		WHERE status = $3 AND attempt < $4
		ORDER BY calc_date
	`
	runs := []Run{}
	err := r.db.SelectContext(ctx, &runs, query, pipelineName, StatusSkipped, StatusFailed, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to get retry candidates: %w", err)
	}
	return runs, nil
}

// GetRunMetrics retrieves aggregate figures for a pipeline
func (r *Repository) GetRunMetrics(ctx context.Context, pipelineName string, since time.Time) (*RunMetrics, error) {
	query := `
		SELECT
			COUNT(*) AS runs,
			COUNT(CASE WHEN status = $2 THEN 1 END) AS failed,
			COALESCE(SUM(alerts), 0) AS alerts,
			MAX(completed_at) FILTER (WHERE status = $3) AS last_completed_at
		FROM analytics_runs
		WHERE pipeline_name = $1 AND started_at >= $4
	`
	var m RunMetrics
	if err := r.db.GetContext(ctx, &m, query, pipelineName, StatusFailed, StatusCompleted, since); err != nil {
		return nil, fmt.Errorf("failed to get run metrics: %w", err)
	}
	return &m, nil
}
