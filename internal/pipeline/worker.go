package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Worker runs a pipeline for single dates and records every attempt
type Worker struct {
	pipeline Pipeline
	config   RunConfig
	repo     RunStore
	now      func() time.Time
}

// NewWorker creates a new pipeline worker
func NewWorker(pipeline Pipeline, config RunConfig, repo RunStore) *Worker {
	return &Worker{
		pipeline: pipeline,
		config:   config,
		repo:     repo,
		now:      time.Now,
	}
}

// ProcessDate executes the pipeline for one date. The returned run is always
// populated once it has been recorded, even when the pipeline fails.
func (w *Worker) ProcessDate(ctx context.Context, date time.Time, trigger Trigger) (*Run, error) {
	return w.process(ctx, date, trigger, 1)
}

func (w *Worker) process(ctx context.Context, date time.Time, trigger Trigger, attempt int) (*Run, error) {
	date = domain.TruncateDate(date)
	logger := log.With().
		Str("pipeline", w.pipeline.Name()).
		Str("fecha", date.Format(domain.DateLayout)).
		Int("attempt", attempt).
		Logger()

	run := &Run{
		ID:           uuid.NewString(),
		PipelineName: w.pipeline.Name(),
		CalcDate:     date,
		Status:       StatusRunning,
		Trigger:      trigger,
		Attempt:      attempt,
		StartedAt:    w.now(),
	}
	if err := w.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	logger.Info().Str("run_id", run.ID).Msg("starting run")

	stats, execErr := w.pipeline.Execute(ctx, date)

	completed := w.now()
	run.CompletedAt = &completed
	run.RunStats = stats
	switch {
	case execErr == nil:
		run.Status = StatusCompleted
	case errors.Is(execErr, domain.ErrRunInProgress):
		run.Status = StatusSkipped
	default:
		run.Status = StatusFailed
	}
	if execErr != nil {
		msg := execErr.Error()
		run.ErrorMessage = &msg
	}

	// The calculation context may already be cancelled; record the outcome anyway.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := w.repo.FinishRun(finishCtx, run); err != nil {
		logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to record run outcome")
		if execErr == nil {
			execErr = err
		}
	}

	event := logger.Info()
	if run.Status == StatusFailed {
		event = logger.Error().Err(execErr)
	} else if run.Status == StatusSkipped {
		event = logger.Warn()
	}
	event.
		Str("run_id", run.ID).
		Str("status", string(run.Status)).
		Dur("duration", run.Duration()).
		Int("alerts", stats.Alerts).
		Int("transfers", stats.Transfers).
		Int("purchases", stats.Purchases).
		Msg("run finished")

	return run, execErr
}

// RetryFailed re-executes dates whose latest run failed and still has attempts
// left. It returns the number of dates that completed on retry.
func (w *Worker) RetryFailed(ctx context.Context) (int, error) {
	candidates, err := w.repo.RetryCandidates(ctx, w.pipeline.Name(), w.config.RetryAttempts)
	if err != nil {
		return 0, fmt.Errorf("failed to get retry candidates: %w", err)
	}

	if len(candidates) == 0 {
		log.Info().Str("pipeline", w.pipeline.Name()).Msg("no failed runs to retry")
		return 0, nil
	}

	log.Info().Str("pipeline", w.pipeline.Name()).Int("count", len(candidates)).Msg("retrying failed runs")

	var (
		recovered int
		errs      []error
	)
	for i, prev := range candidates {
		if i > 0 && w.config.RetryBackoff > 0 {
			select {
			case <-ctx.Done():
				return recovered, ctx.Err()
			case <-time.After(w.config.RetryBackoff):
			}
		}
		run, err := w.process(ctx, prev.CalcDate, TriggerRetry, prev.Attempt+1)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prev.CalcDate.Format(domain.DateLayout), err))
			continue
		}
		if run.Status == StatusCompleted {
			recovered++
		}
	}

	return recovered, errors.Join(errs...)
}
