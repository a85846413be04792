package drive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDrive struct {
	files    []*File
	contents map[string]string
	failOn   string
}

func (f *fakeDrive) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	return f.files, nil
}

func (f *fakeDrive) DownloadFile(ctx context.Context, file *File, w io.Writer) error {
	if file.ID == f.failOn {
		return errors.New("boom")
	}
	_, err := io.WriteString(w, f.contents[file.ID])
	return err
}

func TestDownloaderFetch(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeDrive{
		files: []*File{
			{ID: "1", Name: "ventas.csv", MimeType: "text/csv"},
			{ID: "2", Name: "notas.txt", MimeType: "text/plain"},
			{ID: "3", Name: "inventario_2024-03-01", MimeType: spreadsheetMimeType},
			{ID: "4", Name: "marcas.XLSX", MimeType: xlsxMimeType},
		},
		contents: map[string]string{"1": "a,b\n", "3": "sheet", "4": "book"},
	}
	d := &Downloader{service: fake, FolderID: "folder", DownloadDir: dir}

	paths, err := d.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "ventas.csv"),
		filepath.Join(dir, "inventario_2024-03-01.xlsx"),
		filepath.Join(dir, "marcas.XLSX"),
	}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestDownloaderFetchErrors(t *testing.T) {
	t.Run("download dir required", func(t *testing.T) {
		d := &Downloader{service: &fakeDrive{}}
		_, err := d.Fetch(context.Background())
		assert.Error(t, err)
	})

	t.Run("failed download removes partial file", func(t *testing.T) {
		dir := t.TempDir()
		fake := &fakeDrive{
			files:  []*File{{ID: "1", Name: "ventas.csv"}},
			failOn: "1",
		}
		d := &Downloader{service: fake, DownloadDir: dir}
		_, err := d.Fetch(context.Background())
		require.Error(t, err)
		_, statErr := os.Stat(filepath.Join(dir, "ventas.csv"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		fake := &fakeDrive{files: []*File{{ID: "1", Name: "ventas.csv"}}}
		d := &Downloader{service: fake, DownloadDir: t.TempDir()}
		_, err := d.Fetch(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `O\'Brien`, escapeQuery("O'Brien"))
	assert.Equal(t, `a\\b`, escapeQuery(`a\b`))
}
