package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Store is the write side of the feed loader. repository.IngestRepository
// implements it.
type Store interface {
	UpsertWarehouseTypes(ctx context.Context, types []domain.WarehouseType) (int64, error)
	UpsertWarehouses(ctx context.Context, warehouses []domain.Warehouse) (int64, error)
	UpsertBrands(ctx context.Context, brands []domain.Brand) (int64, error)
	UpsertProducts(ctx context.Context, products []domain.Product) (int64, error)
	InsertSales(ctx context.Context, sales []domain.Sale) (int64, error)
	UpsertSnapshot(ctx context.Context, snapshot []domain.InventorySnapshot) (int64, error)
	RefreshCurrentInventory(ctx context.Context) (int64, error)
}

// Source fetches feed files to local paths.
type Source interface {
	Fetch(ctx context.Context) ([]string, error)
}

// FileResult reports the outcome of one feed file.
type FileResult struct {
	Path    string
	Kind    Kind
	Parsed  int
	Written int64
	Skipped []RowError
}

// Stats summarizes a load.
type Stats struct {
	Files            []FileResult
	Ignored          []string
	CurrentInventory int64
	Duration         time.Duration
}

// Written sums the rows written for kind.
func (s *Stats) Written(kind Kind) int64 {
	var n int64
	for _, f := range s.Files {
		if f.Kind == kind {
			n += f.Written
		}
	}
	return n
}

// Loader parses feed files and writes them in foreign key order.
type Loader struct {
	store       Store
	parallelism int
}

func NewLoader(store Store) *Loader {
	return &Loader{store: store, parallelism: runtime.NumCPU()}
}

// Run fetches the files of src and loads them.
func (l *Loader) Run(ctx context.Context, src Source) (*Stats, error) {
	paths, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed files: %w", err)
	}
	return l.Load(ctx, paths)
}

// Load parses paths concurrently and writes them one file at a time. Unknown
// file names are ignored. inventario_actual is rebuilt when any snapshot was
// loaded.
func (l *Loader) Load(ctx context.Context, paths []string) (*Stats, error) {
	start := time.Now()
	plan, ignored := planFiles(paths)
	for _, p := range ignored {
		log.Warn().Str("file", filepath.Base(p)).Msg("ingest: unrecognized feed file, skipping")
	}
	stats := &Stats{Ignored: ignored}
	if len(plan) == 0 {
		stats.Duration = time.Since(start)
		return stats, nil
	}

	parsed := make([]parsedFile, len(plan))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, l.parallelism))
	for i, f := range plan {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pf, err := parse(f)
			if err != nil {
				return err
			}
			parsed[i] = pf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshots := false
	for _, pf := range parsed {
		written, err := pf.write(ctx, l.store)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", filepath.Base(pf.file.Path), err)
		}
		res := FileResult{
			Path:    pf.file.Path,
			Kind:    pf.file.Kind,
			Parsed:  pf.rows,
			Written: written,
			Skipped: pf.skipped,
		}
		stats.Files = append(stats.Files, res)
		logFile(res)
		if pf.file.Kind == KindInventory {
			snapshots = true
		}
	}

	if snapshots {
		n, err := l.store.RefreshCurrentInventory(ctx)
		if err != nil {
			return nil, err
		}
		stats.CurrentInventory = n
	}

	stats.Duration = time.Since(start)
	log.Info().
		Int("files", len(stats.Files)).
		Int("ignored", len(stats.Ignored)).
		Int64("inventario_actual", stats.CurrentInventory).
		Dur("duration", stats.Duration).
		Msg("ingest: load complete")
	return stats, nil
}

func logFile(res FileResult) {
	evt := log.Info()
	if len(res.Skipped) > 0 {
		evt = log.Warn()
	}
	evt.Str("file", filepath.Base(res.Path)).
		Str("kind", string(res.Kind)).
		Int("parsed", res.Parsed).
		Int64("written", res.Written).
		Int("skipped", len(res.Skipped)).
		Msg("ingest: file loaded")
	for i, rowErr := range res.Skipped {
		if i == maxLoggedRowErrors {
			break
		}
		log.Debug().Str("file", filepath.Base(res.Path)).Int("line", rowErr.Line).Err(rowErr.Err).Msg("ingest: row skipped")
	}
}

const maxLoggedRowErrors = 20

// parsedFile holds the rows of one file until it is its turn to be written.
type parsedFile struct {
	file    File
	rows    int
	skipped []RowError
	write   func(ctx context.Context, s Store) (int64, error)
}

func parse(f File) (parsedFile, error) {
	pf := parsedFile{file: f}
	switch f.Kind {
	case KindWarehouseTypes:
		return collect(pf, warehouseTypeParser, func(s Store) writeFunc[domain.WarehouseType] { return s.UpsertWarehouseTypes })
	case KindWarehouses:
		return collect(pf, warehouseParser, func(s Store) writeFunc[domain.Warehouse] { return s.UpsertWarehouses })
	case KindBrands:
		return collect(pf, brandParser, func(s Store) writeFunc[domain.Brand] { return s.UpsertBrands })
	case KindProducts:
		return collect(pf, productParser, func(s Store) writeFunc[domain.Product] { return s.UpsertProducts })
	case KindSales:
		return collect(pf, saleParser, func(s Store) writeFunc[domain.Sale] { return s.InsertSales })
	case KindInventory:
		return collect(pf, snapshotParser(f.SnapshotDate), func(s Store) writeFunc[domain.InventorySnapshot] { return s.UpsertSnapshot })
	default:
		return pf, fmt.Errorf("unsupported feed kind %q", f.Kind)
	}
}

type writeFunc[T any] func(ctx context.Context, rows []T) (int64, error)

func collect[T any](pf parsedFile, p parser[T], method func(Store) writeFunc[T]) (parsedFile, error) {
	rows, skipped, err := parseFile(pf.file.Path, p)
	if err != nil {
		return pf, err
	}
	pf.rows = len(rows)
	pf.skipped = skipped
	pf.write = func(ctx context.Context, s Store) (int64, error) {
		if len(rows) == 0 {
			return 0, nil
		}
		return method(s)(ctx, rows)
	}
	return pf, nil
}
