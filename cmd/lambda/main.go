package main

import (
	"context"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/app"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/config"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/pkg/logger"
	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg := config.Load()

	// CloudWatch expects one JSON object per line.
	logger.Configure(false)
	logger.SetLevel(cfg.Log.Level)

	// Connections are opened once per container and reused across invocations.
	application, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Close()

	h := &handler{
		runner: application.Worker(),
		alerts: application.Alerts,
		today:  domain.Today,
	}
	lambda.Start(h.Handle)
}
