package ingest

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// LocalSource reads feed files from a directory.
type LocalSource struct {
	Dir string
}

func (s LocalSource) Fetch(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsFeedFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(s.Dir, e.Name()))
	}
	return paths, nil
}

// StorageSource downloads feed files under Prefix of an S3-compatible bucket
// into DownloadDir.
type StorageSource struct {
	Store       storage.ObjectStorage
	Prefix      string
	DownloadDir string
}

func (s StorageSource) Fetch(ctx context.Context) ([]string, error) {
	if s.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(s.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure download dir %s: %w", s.DownloadDir, err)
	}

	prefix := strings.TrimSpace(s.Prefix)
	objects, err := s.Store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects for prefix %s: %w", prefix, err)
	}

	var paths []string
	for _, obj := range objects {
		name := path.Base(obj.Key)
		if !IsFeedFile(name) {
			continue
		}
		dest := filepath.Join(s.DownloadDir, name)
		if err := s.Store.DownloadObject(ctx, obj.Key, dest); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", obj.Key, err)
		}
		log.Debug().Str("key", obj.Key).Int64("size", obj.Size).Msg("ingest: downloaded feed object")
		paths = append(paths, dest)
	}
	return paths, nil
}
