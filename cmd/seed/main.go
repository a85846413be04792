package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/config"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/drive"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/ingest"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/storage"
	"github.com/andresuchdata/inventory-analytics/backend-go/pkg/logger"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func initDB(c *cli.Context) error {
	cfg := config.Load()
	if url := c.String("db-url"); url != "" {
		db, err := postgres.Open(url, cfg.Database.MaxOpenConns, cfg.Database.MaxConcurrency)
		if err != nil {
			return err
		}
		c.Context = context.WithValue(c.Context, dbKey{}, db)
		return nil
	}

	if err := config.ResolveDatabase(c.Context, cfg); err != nil {
		return fmt.Errorf("failed to resolve database credentials: %w", err)
	}
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, dbKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) *postgres.DB {
	return c.Context.Value(dbKey{}).(*postgres.DB)
}

func main() {
	cfg := config.Load()
	logger.Configure(cfg.Log.Pretty)
	logger.SetLevel(cfg.Log.Level)

	dbURL := &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string; DB_* settings are used when empty",
		EnvVars: []string{"DATABASE_URL"},
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Prepare the database and load feed files",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply pending schema migrations",
				Flags:  []cli.Flag{dbURL},
				Before: initDB,
				After:  closeDB,
				Action: migrate,
			},
			{
				Name:  "load",
				Usage: "Load reference data, sales and inventory snapshots from feed files",
				Flags: []cli.Flag{
					dbURL,
					&cli.StringFlag{
						Name:  "source",
						Usage: "Where the feed files live: local, s3 or drive",
						Value: "local",
					},
					&cli.StringFlag{
						Name:    "dir",
						Usage:   "Directory with feed files (local source)",
						Value:   "./data/feeds",
						EnvVars: []string{"FEED_DIR"},
					},
					&cli.StringFlag{
						Name:    "prefix",
						Usage:   "Object key prefix (s3 source)",
						Value:   "feeds/",
						EnvVars: []string{"FEED_PREFIX"},
					},
					&cli.StringFlag{
						Name:  "folder",
						Usage: "Drive folder id (drive source); defaults to DRIVE_FOLDER_ID",
						Value: cfg.Drive.FolderID,
					},
					&cli.StringFlag{
						Name:  "folder-path",
						Usage: "Drive folder path from the root, used instead of --folder",
					},
					&cli.StringFlag{
						Name:  "download-dir",
						Usage: "Where remote feed files are downloaded",
						Value: "./data/tmp/feeds",
					},
					&cli.BoolFlag{
						Name:  "migrate",
						Usage: "Apply pending migrations before loading",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: load,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("seed command failed")
		os.Exit(1)
	}
}

func migrate(c *cli.Context) error {
	applied, err := dbFrom(c).Migrate(c.Context)
	if err != nil {
		return err
	}
	log.Info().Strs("applied", applied).Msg("migrations complete")
	return nil
}

func load(c *cli.Context) error {
	db := dbFrom(c)
	if c.Bool("migrate") {
		if err := migrate(c); err != nil {
			return err
		}
	}

	src, err := newSource(c)
	if err != nil {
		return err
	}

	loader := ingest.NewLoader(repository.NewIngestRepository(db.DB))
	stats, err := loader.Run(c.Context, src)
	if err != nil {
		return err
	}

	for _, f := range stats.Files {
		fmt.Fprintf(c.App.Writer, "%-40s %-14s parsed=%-8d written=%-8d skipped=%d\n",
			filepath.Base(f.Path), f.Kind, f.Parsed, f.Written, len(f.Skipped))
	}
	fmt.Fprintf(c.App.Writer, "inventario_actual rows: %d (%s)\n", stats.CurrentInventory, stats.Duration)
	return nil
}

func newSource(c *cli.Context) (ingest.Source, error) {
	cfg := config.Load()
	switch c.String("source") {
	case "local":
		return ingest.LocalSource{Dir: c.String("dir")}, nil

	case "s3":
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			return nil, err
		}
		return ingest.StorageSource{
			Store:       client,
			Prefix:      c.String("prefix"),
			DownloadDir: c.String("download-dir"),
		}, nil

	case "drive":
		if cfg.Drive.CredentialsJSON == "" {
			return nil, fmt.Errorf("DRIVE_CREDENTIALS_JSON is required for the drive source")
		}
		svc, err := drive.NewService(c.Context, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, err
		}
		folderID := c.String("folder")
		if path := c.String("folder-path"); path != "" {
			if folderID, err = svc.FindFolderByPath(c.Context, path); err != nil {
				return nil, err
			}
		}
		return drive.NewDownloader(svc, folderID, c.String("download-dir")), nil

	default:
		return nil, fmt.Errorf("unknown source %q: use local, s3 or drive", c.String("source"))
	}
}
