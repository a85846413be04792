package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/pipeline"
)

// RunService triggers analytics runs and reads their history.
type RunService struct {
	worker *pipeline.Worker
	store  pipeline.RunStore
	name   string
}

func NewRunService(worker *pipeline.Worker, store pipeline.RunStore, pipelineName string) *RunService {
	return &RunService{worker: worker, store: store, name: pipelineName}
}

// Trigger runs the pipeline synchronously for date. A locked date comes back
// as domain.ErrRunInProgress together with the recorded skipped run.
func (s *RunService) Trigger(ctx context.Context, date time.Time) (*pipeline.Run, error) {
	if date.After(domain.Today()) {
		return nil, fmt.Errorf("%w: %s is in the future", domain.ErrInvalidDate, date.Format(domain.DateLayout))
	}
	return s.worker.ProcessDate(ctx, date, pipeline.TriggerAPI)
}

func (s *RunService) List(ctx context.Context, date *time.Time, status string, limit int) ([]pipeline.Run, error) {
	return s.store.ListRuns(ctx, pipeline.RunFilter{
		PipelineName: s.name,
		CalcDate:     date,
		Status:       pipeline.RunStatus(status),
		Limit:        limit,
	})
}

func (s *RunService) Get(ctx context.Context, id string) (*pipeline.Run, error) {
	return s.store.GetRun(ctx, id)
}

// Metrics aggregates the runs of the trailing days.
func (s *RunService) Metrics(ctx context.Context, days int) (*pipeline.RunMetrics, error) {
	if days <= 0 {
		days = 7
	}
	return s.store.GetRunMetrics(ctx, s.name, time.Now().AddDate(0, 0, -days))
}
