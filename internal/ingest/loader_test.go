package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	calls      []string
	warehouses []domain.Warehouse
	sales      []domain.Sale
	snapshots  []domain.InventorySnapshot
	failSales  bool
}

func (f *fakeStore) UpsertWarehouseTypes(ctx context.Context, types []domain.WarehouseType) (int64, error) {
	f.calls = append(f.calls, "tipos_almacen")
	return int64(len(types)), nil
}

func (f *fakeStore) UpsertWarehouses(ctx context.Context, warehouses []domain.Warehouse) (int64, error) {
	f.calls = append(f.calls, "almacenes")
	f.warehouses = append(f.warehouses, warehouses...)
	return int64(len(warehouses)), nil
}

func (f *fakeStore) UpsertBrands(ctx context.Context, brands []domain.Brand) (int64, error) {
	f.calls = append(f.calls, "marcas")
	return int64(len(brands)), nil
}

func (f *fakeStore) UpsertProducts(ctx context.Context, products []domain.Product) (int64, error) {
	f.calls = append(f.calls, "productos")
	return int64(len(products)), nil
}

func (f *fakeStore) InsertSales(ctx context.Context, sales []domain.Sale) (int64, error) {
	f.calls = append(f.calls, "ventas")
	if f.failSales {
		return 0, errors.New("constraint violation")
	}
	f.sales = append(f.sales, sales...)
	// one line was already loaded
	return int64(len(sales) - 1), nil
}

func (f *fakeStore) UpsertSnapshot(ctx context.Context, snapshot []domain.InventorySnapshot) (int64, error) {
	f.calls = append(f.calls, "inventario:"+snapshot[0].SnapshotDate.Format(domain.DateLayout))
	f.snapshots = append(f.snapshots, snapshot...)
	return int64(len(snapshot)), nil
}

func (f *fakeStore) RefreshCurrentInventory(ctx context.Context) (int64, error) {
	f.calls = append(f.calls, "inventario_actual")
	return 7, nil
}

func feedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "inventario_2024-03-02.csv", "bodega_codigo,referencia,cantidad,valor_costo\nB01,R1,4,10\n")
	writeFile(t, dir, "inventario_2024-03-01.csv", "bodega_codigo,referencia,cantidad,valor_costo\nB01,R1,5,10\n")
	writeFile(t, dir, "ventas.csv", "prefijo,numero_documento,fecha,bodega_codigo,referencia,cantidad,valor_total\n"+
		"FV,1,2024-03-01,B01,R1,1,10\nFV,2,2024-03-01,B01,R1,2,20\nFV,3,,B01,R1,2,20\n")
	writeFile(t, dir, "productos.csv", "referencia,nombre,marca_codigo\nR1,Lente,M1\n")
	writeFile(t, dir, "marcas.csv", "codigo,nombre\nM1,Marca\n")
	writeFile(t, dir, "almacenes.csv", "codigo,nombre\nB01,Centro\n")
	writeFile(t, dir, "LEEME.csv", "x\n1\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archivo"), 0o755))
	return dir
}

func TestLoaderRunLocal(t *testing.T) {
	dir := feedDir(t)
	store := &fakeStore{}
	loader := NewLoader(store)

	stats, err := loader.Run(context.Background(), LocalSource{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"almacenes", "marcas", "productos", "ventas",
		"inventario:2024-03-01", "inventario:2024-03-02",
		"inventario_actual",
	}, store.calls)
	assert.Equal(t, []string{filepath.Join(dir, "LEEME.csv")}, stats.Ignored)
	assert.Len(t, stats.Files, 6)
	assert.EqualValues(t, 1, stats.Written(KindSales))
	assert.EqualValues(t, 2, stats.Written(KindInventory))
	assert.EqualValues(t, 7, stats.CurrentInventory)

	for _, f := range stats.Files {
		if f.Kind == KindSales {
			assert.Equal(t, 2, f.Parsed)
			require.Len(t, f.Skipped, 1)
			assert.Equal(t, 4, f.Skipped[0].Line)
		}
	}
}

func TestLoaderSkipsRefreshWithoutSnapshots(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "almacenes.csv", "codigo\nB01\nB02\n")
	store := &fakeStore{}

	stats, err := NewLoader(store).Run(context.Background(), LocalSource{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"almacenes"}, store.calls)
	assert.Zero(t, stats.CurrentInventory)
	assert.Len(t, store.warehouses, 2)
}

func TestLoaderEmptyFileWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "productos.csv", "referencia,nombre\n")
	store := &fakeStore{}

	stats, err := NewLoader(store).Run(context.Background(), LocalSource{Dir: dir})
	require.NoError(t, err)
	assert.Empty(t, store.calls)
	require.Len(t, stats.Files, 1)
	assert.Zero(t, stats.Files[0].Written)
}

func TestLoaderErrors(t *testing.T) {
	t.Run("parse error stops before writing", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "almacenes.csv", "codigo\nB01\n")
		writeFile(t, dir, "ventas.csv", "prefijo,referencia\nFV,R1\n")
		store := &fakeStore{}

		_, err := NewLoader(store).Run(context.Background(), LocalSource{Dir: dir})
		require.Error(t, err)
		assert.Empty(t, store.calls)
	})

	t.Run("write error stops the load", func(t *testing.T) {
		store := &fakeStore{failSales: true}
		_, err := NewLoader(store).Run(context.Background(), LocalSource{Dir: feedDir(t)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ventas.csv")
		assert.NotContains(t, store.calls, "inventario_actual")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := NewLoader(&fakeStore{}).Run(context.Background(), LocalSource{Dir: filepath.Join(t.TempDir(), "nope")})
		assert.Error(t, err)
	})
}

type memoryObjects struct {
	objects map[string]string
}

func (m *memoryObjects) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for key, body := range m.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(body))})
		}
	}
	return out, nil
}

func (m *memoryObjects) DownloadObject(ctx context.Context, key, destPath string) error {
	return os.WriteFile(destPath, []byte(m.objects[key]), 0o644)
}

func (m *memoryObjects) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	m.objects[key] = string(data)
	return nil
}

func TestStorageSource(t *testing.T) {
	objects := &memoryObjects{objects: map[string]string{
		"feeds/almacenes.csv":      "codigo\nB01\n",
		"feeds/readme.md":          "docs",
		"exports/2024-03-01/x.csv": "a\n",
	}}
	dir := filepath.Join(t.TempDir(), "downloads")
	src := StorageSource{Store: objects, Prefix: " feeds/ ", DownloadDir: dir}

	paths, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "almacenes.csv")}, paths)

	store := &fakeStore{}
	_, err = NewLoader(store).Load(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, []domain.Warehouse{{Code: "B01", Name: "B01", Type: domain.WarehouseTypeSales, Active: true}}, store.warehouses)

	_, err = StorageSource{Store: objects}.Fetch(context.Background())
	assert.Error(t, err)
}
