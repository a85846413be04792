// Package app wires configuration, storage and side channels into the
// analytics pipeline and the API services shared by every entrypoint.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/api"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/cache"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/config"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/notify"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/pipeline"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/pipeline/inventory"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/service"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/storage"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type App struct {
	Config       *config.Config
	DB           *postgres.DB
	Redis        *redis.Client
	Runs         *pipeline.Repository
	Alerts       repository.AlertRepository
	Pipeline     *inventory.AnalyticsPipeline
	Orchestrator *pipeline.Orchestrator

	dashboardCache cache.DashboardCache
}

// New connects to Postgres (resolving Secrets Manager credentials first) and,
// when enabled, Redis. An unreachable Redis degrades to the noop cache and
// the Postgres advisory lock.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := config.ResolveDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to resolve database credentials: %w", err)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:         cfg,
		DB:             db,
		Runs:           pipeline.NewRepository(db.DB),
		Alerts:         postgres.NewAlertRepository(db),
		dashboardCache: cache.NewNoopDashboardCache(),
	}

	locker := cache.NewNoopRunLocker()
	if cfg.Cache.Enabled {
		client, err := cache.NewRedisClient(cfg.Cache)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, continuing without cache")
		} else {
			a.Redis = client
			a.dashboardCache = cache.NewDashboardCache(client, cache.TTLFromConfig(cfg.Cache))
			locker = cache.NewRunLocker(client, time.Duration(cfg.Analytics.LockTTLSeconds)*time.Second)
		}
	}

	notifier, err := newNotifier(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := inventory.Dependencies{
		References: postgres.NewReferenceRepository(db),
		Facts:      postgres.NewFactsRepository(db),
		Writer:     postgres.NewAnalyticsWriter(db),
		Locker:     locker,
		Cache:      a.dashboardCache,
		Notifier:   notifier,
	}
	if cfg.Analytics.ExportEnabled {
		store, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create export storage: %w", err)
		}
		deps.Exporter = storage.NewRunExporter(store)
	}

	a.Pipeline, err = inventory.NewAnalyticsPipeline(inventory.PolicyFromConfig(cfg.Analytics), deps)
	if err != nil {
		a.Close()
		return nil, err
	}

	runCfg := pipeline.DefaultRunConfig(inventory.PipelineName)
	if cfg.Analytics.Workers > 0 {
		runCfg.WorkerCount = cfg.Analytics.Workers
	}
	a.Orchestrator = pipeline.NewOrchestrator(a.Pipeline, runCfg, a.Runs)
	return a, nil
}

// newNotifier only loads AWS credentials when an SNS topic is configured.
func newNotifier(ctx context.Context, cfg *config.Config) (notify.Notifier, error) {
	var publisher notify.SNSPublisher
	if cfg.Notify.SNSTopicARN != "" {
		awsCfg, err := config.NewAWSConfig(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}
		publisher = sns.NewFromConfig(awsCfg)
	}
	return notify.New(cfg.Notify, publisher), nil
}

// Worker runs the pipeline for single dates.
func (a *App) Worker() *pipeline.Worker {
	return a.Orchestrator.Worker()
}

// Services builds the API services over the shared connections.
func (a *App) Services() *api.Services {
	health := map[string]api.HealthCheck{
		"postgres": a.DB.PingContext,
	}
	if a.Redis != nil {
		health["redis"] = func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}
	}

	return &api.Services{
		Dashboard:       service.NewDashboardService(postgres.NewDashboardRepository(a.DB), a.dashboardCache),
		Alerts:          service.NewAlertService(a.Alerts, a.dashboardCache),
		Recommendations: service.NewRecommendationService(postgres.NewRecommendationRepository(a.DB), a.dashboardCache),
		Runs:            service.NewRunService(a.Worker(), a.Runs, inventory.PipelineName),
		Sales:           service.NewSalesService(postgres.NewSalesRepository(a.DB), a.dashboardCache),
		Health:          health,
	}
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}
}
