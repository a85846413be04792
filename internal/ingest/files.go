package ingest

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
)

// Kind identifies which table a feed file loads.
type Kind string

const (
	KindWarehouseTypes Kind = "tipos_almacen"
	KindWarehouses     Kind = "almacenes"
	KindBrands         Kind = "marcas"
	KindProducts       Kind = "productos"
	KindSales          Kind = "ventas"
	KindInventory      Kind = "inventario"
)

// loadOrder follows the foreign keys between the tables.
var loadOrder = []Kind{
	KindWarehouseTypes,
	KindWarehouses,
	KindBrands,
	KindProducts,
	KindSales,
	KindInventory,
}

// File is a feed file recognized by its name.
type File struct {
	Path string
	Kind Kind
	// SnapshotDate is set for inventory files only.
	SnapshotDate time.Time
}

// IsFeedFile reports whether name has an extension the loader can read.
func IsFeedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// Classify maps a file name to its kind. Names are matched case-insensitively
// either exactly ("ventas.csv") or as a prefix followed by an underscore
// ("ventas_2024_01.csv"). Inventory files must carry the snapshot date:
// inventario_YYYY-MM-DD.
func Classify(path string) (File, bool) {
	if !IsFeedFile(path) {
		return File{}, false
	}
	base := filepath.Base(path)
	name := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	for _, kind := range loadOrder {
		prefix := string(kind)
		if name != prefix && !strings.HasPrefix(name, prefix+"_") {
			continue
		}
		f := File{Path: path, Kind: kind}
		if kind == KindInventory {
			suffix := strings.TrimPrefix(name, prefix+"_")
			date, err := domain.ParseDate(suffix)
			if err != nil {
				return File{}, false
			}
			f.SnapshotDate = date
		}
		return f, true
	}
	return File{}, false
}

// planFiles classifies paths and sorts them in load order. Inventory files go
// oldest first so the newest snapshot is written last.
func planFiles(paths []string) (plan []File, ignored []string) {
	rank := make(map[Kind]int, len(loadOrder))
	for i, k := range loadOrder {
		rank[k] = i
	}

	for _, p := range paths {
		f, ok := Classify(p)
		if !ok {
			ignored = append(ignored, p)
			continue
		}
		plan = append(plan, f)
	}

	sort.SliceStable(plan, func(i, j int) bool {
		a, b := plan[i], plan[j]
		if a.Kind != b.Kind {
			return rank[a.Kind] < rank[b.Kind]
		}
		if !a.SnapshotDate.Equal(b.SnapshotDate) {
			return a.SnapshotDate.Before(b.SnapshotDate)
		}
		return filepath.Base(a.Path) < filepath.Base(b.Path)
	})
	return plan, ignored
}
