package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Orchestrator coordinates running a Pipeline over a set of calculation dates.
type Orchestrator struct {
	cfg    RunConfig
	worker *Worker
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(p Pipeline, cfg RunConfig, repo RunStore) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		worker: NewWorker(p, cfg, repo),
	}
}

// Worker exposes the underlying single-date worker.
func (o *Orchestrator) Worker() *Worker {
	return o.worker
}

// Run executes the pipeline once per distinct date, WorkerCount dates at a
// time. A failing date does not stop the others; every failure is returned.
func (o *Orchestrator) Run(ctx context.Context, dates []time.Time, trigger Trigger) ([]*Run, error) {
	dates = uniqueDates(dates)
	if len(dates) == 0 {
		return nil, nil
	}

	limit := o.cfg.WorkerCount
	if limit < 1 {
		limit = 1
	}

	var (
		mu   sync.Mutex
		runs = make([]*Run, len(dates))
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, date := range dates {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			run, err := o.worker.ProcessDate(gctx, date, trigger)
			runs[i] = run
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("failed to process %s: %w", date.Format(domain.DateLayout), err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	log.Info().
		Str("pipeline", o.cfg.Name).
		Int("dates", len(dates)).
		Int("failed", len(errs)).
		Msg("orchestrated run finished")

	return runs, errors.Join(errs...)
}

// DateRange lists every calendar date from..to inclusive.
func DateRange(from, to time.Time) []time.Time {
	from, to = domain.TruncateDate(from), domain.TruncateDate(to)
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func uniqueDates(dates []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = domain.TruncateDate(d)
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
