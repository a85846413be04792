package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/ingest"
	"github.com/rs/zerolog/log"
)

// fileService is the part of Service the downloader needs.
type fileService interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, f *File, w io.Writer) error
}

// Downloader pulls the feed files of a Drive folder into a local directory.
// It implements ingest.Source.
type Downloader struct {
	service     fileService
	FolderID    string
	DownloadDir string
}

var _ ingest.Source = (*Downloader)(nil)

func NewDownloader(s *Service, folderID, downloadDir string) *Downloader {
	return &Downloader{service: s, FolderID: folderID, DownloadDir: downloadDir}
}

// Fetch downloads CSV and XLSX files, and Google Sheets exported as XLSX.
// Other files are skipped.
func (d *Downloader) Fetch(ctx context.Context) ([]string, error) {
	if d.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(d.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.service.ListFiles(ctx, d.FolderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := localName(f)
		if name == "" {
			continue
		}
		localPath := filepath.Join(d.DownloadDir, name)
		if err := d.download(ctx, f, localPath); err != nil {
			return nil, err
		}
		log.Debug().Str("file", f.Name).Str("path", localPath).Msg("drive: downloaded feed file")
		localPaths = append(localPaths, localPath)
	}
	return localPaths, nil
}

func (d *Downloader) download(ctx context.Context, f *File, localPath string) error {
	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	if err := d.service.DownloadFile(ctx, f, out); err != nil {
		out.Close()
		_ = os.Remove(localPath)
		return fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	return out.Close()
}

// localName is the name a Drive file is saved under, empty when it is not a feed.
func localName(f *File) string {
	if f.MimeType == spreadsheetMimeType {
		return strings.TrimSuffix(f.Name, filepath.Ext(f.Name)) + ".xlsx"
	}
	if ingest.IsFeedFile(f.Name) {
		return filepath.Base(f.Name)
	}
	return ""
}
