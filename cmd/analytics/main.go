package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/app"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/config"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/pipeline"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/pipeline/inventory"
	"github.com/andresuchdata/inventory-analytics/backend-go/pkg/logger"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type appKey struct{}

func main() {
	cliApp := &cli.App{
		Name:  "analytics",
		Usage: "Run the inventory analytics pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Calculate metrics, alerts and recommendations for one date",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "Calculation date (YYYY-MM-DD), defaults to today"},
				},
				Before: connect,
				After:  disconnect,
				Action: runDate,
			},
			{
				Name:  "backfill",
				Usage: "Run every date of a range, several dates at a time",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "First date (YYYY-MM-DD)", Required: true},
					&cli.StringFlag{Name: "to", Usage: "Last date (YYYY-MM-DD), defaults to today"},
					&cli.IntFlag{Name: "workers", Usage: "Dates processed concurrently", Value: 0},
				},
				Before: connect,
				After:  disconnect,
				Action: backfill,
			},
			{
				Name:  "retry",
				Usage:  "Re-run dates whose latest run failed",
				Before: connect,
				After:  disconnect,
				Action: func(c *cli.Context) error {
					a := fromContext(c)
					recovered, err := a.Worker().RetryFailed(c.Context)
					log.Info().Int("recovered", recovered).Msg("retry finished")
					return err
				},
			},
			{
				Name:  "runs",
				Usage: "List recent runs",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "Only runs of this calculation date"},
					&cli.StringFlag{Name: "status", Usage: "running, completed, failed or skipped"},
					&cli.IntFlag{Name: "limit", Value: 20},
				},
				Before: connect,
				After:  disconnect,
				Action: listRuns,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("analytics command failed")
		os.Exit(1)
	}
}

func setupLogging(c *cli.Context) error {
	cfg := config.Load()
	logger.Configure(cfg.Log.Pretty)
	logger.SetLevel(c.String("log-level"))
	return nil
}

// connect builds the application and stores it in the command context.
func connect(c *cli.Context) error {
	a, err := app.New(c.Context, config.Load())
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, appKey{}, a)
	return nil
}

func disconnect(c *cli.Context) error {
	if a, ok := c.Context.Value(appKey{}).(*app.App); ok && a != nil {
		a.Close()
	}
	return nil
}

func fromContext(c *cli.Context) *app.App {
	return c.Context.Value(appKey{}).(*app.App)
}

func parseDateFlag(c *cli.Context, name string) (time.Time, error) {
	raw := c.String(name)
	if raw == "" {
		return domain.Today(), nil
	}
	return domain.ParseDate(raw)
}

func runDate(c *cli.Context) error {
	date, err := parseDateFlag(c, "date")
	if err != nil {
		return err
	}

	run, err := fromContext(c).Worker().ProcessDate(c.Context, date, pipeline.TriggerCLI)
	if run != nil {
		printRuns(c, []pipeline.Run{*run})
	}
	if errors.Is(err, domain.ErrRunInProgress) {
		return cli.Exit("another run for this date is in progress", 2)
	}
	return err
}

func backfill(c *cli.Context) error {
	from, err := domain.ParseDate(c.String("from"))
	if err != nil {
		return err
	}
	to, err := parseDateFlag(c, "to")
	if err != nil {
		return err
	}
	if to.Before(from) {
		return fmt.Errorf("--to %s is before --from %s", to.Format(domain.DateLayout), from.Format(domain.DateLayout))
	}

	a := fromContext(c)
	orchestrator := a.Orchestrator
	if workers := c.Int("workers"); workers > 0 {
		runCfg := pipeline.DefaultRunConfig(inventory.PipelineName)
		runCfg.WorkerCount = workers
		orchestrator = pipeline.NewOrchestrator(a.Pipeline, runCfg, a.Runs)
	}

	runs, err := orchestrator.Run(c.Context, pipeline.DateRange(from, to), pipeline.TriggerBackfill)
	var done []pipeline.Run
	for _, r := range runs {
		if r != nil {
			done = append(done, *r)
		}
	}
	printRuns(c, done)
	return err
}

func listRuns(c *cli.Context) error {
	filter := pipeline.RunFilter{
		PipelineName: inventory.PipelineName,
		Status:       pipeline.RunStatus(c.String("status")),
		Limit:        c.Int("limit"),
	}
	if raw := c.String("date"); raw != "" {
		date, err := domain.ParseDate(raw)
		if err != nil {
			return err
		}
		filter.CalcDate = &date
	}

	runs, err := fromContext(c).Runs.ListRuns(c.Context, filter)
	if err != nil {
		return err
	}
	printRuns(c, runs)
	return nil
}

func printRuns(c *cli.Context, runs []pipeline.Run) {
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FECHA\tESTADO\tORIGEN\tINTENTO\tMETRICAS\tALERTAS\tTRASLADOS\tCOMPRAS\tDURACION\tID")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
			r.CalcDate.Format(domain.DateLayout), r.Status, r.Trigger, r.Attempt,
			r.WarehouseMetrics, r.Alerts, r.Transfers, r.Purchases,
			r.Duration().Round(time.Millisecond), r.ID)
		if r.ErrorMessage != nil {
			fmt.Fprintf(w, "\terror: %s\n", *r.ErrorMessage)
		}
	}
	w.Flush()
}
