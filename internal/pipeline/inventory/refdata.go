package inventory

import (
	"sort"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
)

// ReferenceData is the immutable lookup of warehouses, types, brands, products
// and the priority matrix. It is built once per run and never re-queried per row.
type ReferenceData struct {
	warehouses   map[string]domain.Warehouse
	types        map[string]domain.WarehouseType
	brands       map[string]domain.Brand
	products     map[string]domain.Product
	matrix       domain.PriorityMatrix
	defaultBrand domain.Brand
}

// NewReferenceData indexes the registries. Brands without coverage days take
// the default brand's coverage so the ladder always has a target.
func NewReferenceData(
	warehouses []domain.Warehouse,
	types []domain.WarehouseType,
	brands []domain.Brand,
	products []domain.Product,
	rules []domain.PriorityRule,
	defaultBrand domain.Brand,
) *ReferenceData {
	r := &ReferenceData{
		warehouses:   make(map[string]domain.Warehouse, len(warehouses)),
		types:        make(map[string]domain.WarehouseType, len(types)),
		brands:       make(map[string]domain.Brand, len(brands)),
		products:     make(map[string]domain.Product, len(products)),
		matrix:       domain.NewPriorityMatrix(rules),
		defaultBrand: defaultBrand,
	}
	for _, w := range warehouses {
		r.warehouses[w.Code] = w
	}
	for _, t := range types {
		r.types[t.Name] = t
	}
	for _, b := range brands {
		if b.CoverageDays <= 0 {
			b.CoverageDays = defaultBrand.CoverageDays
		}
		if b.Category == "" {
			b.Category = defaultBrand.Category
		}
		if b.Classification == "" {
			b.Classification = defaultBrand.Classification
		}
		r.brands[b.Code] = b
	}
	for _, p := range products {
		r.products[p.Reference] = p
	}
	return r
}

// Warehouse looks up an active warehouse by code.
func (r *ReferenceData) Warehouse(code string) (domain.Warehouse, bool) {
	w, ok := r.warehouses[code]
	if !ok || !w.Active {
		return domain.Warehouse{}, false
	}
	return w, true
}

func (r *ReferenceData) warehouseType(w domain.Warehouse) domain.WarehouseType {
	if t, ok := r.types[w.Type]; ok {
		return t
	}
	// Unregistered types only count as sales when they are literally Venta.
	return domain.WarehouseType{
		Name:               w.Type,
		IncludeInSales:     w.Type == domain.WarehouseTypeSales,
		IncludeInInventory: true,
	}
}

// CountsForSales reports whether sales recorded at the warehouse feed demand.
func (r *ReferenceData) CountsForSales(code string) bool {
	w, ok := r.Warehouse(code)
	if !ok {
		return false
	}
	return r.warehouseType(w).IncludeInSales
}

// CountsForInventory reports whether stock held at the warehouse is analysed.
func (r *ReferenceData) CountsForInventory(code string) bool {
	w, ok := r.Warehouse(code)
	if !ok {
		return false
	}
	return r.warehouseType(w).IncludeInInventory
}

// IsSalesWarehouse reports whether the warehouse type is Venta.
func (r *ReferenceData) IsSalesWarehouse(code string) bool {
	w, ok := r.Warehouse(code)
	return ok && w.Type == domain.WarehouseTypeSales
}

// BrandFor resolves the brand of a product, falling back to the default brand
// for unknown products or brands. The second value reports whether it was found.
func (r *ReferenceData) BrandFor(reference string) (domain.Brand, bool) {
	p, ok := r.products[reference]
	if !ok || p.BrandCode == "" {
		return r.defaultBrand, false
	}
	b, ok := r.brands[p.BrandCode]
	if !ok {
		fallback := r.defaultBrand
		fallback.Code = p.BrandCode
		return fallback, false
	}
	return b, true
}

// Rank returns the priority matrix rank of a brand.
func (r *ReferenceData) Rank(b domain.Brand) int {
	return r.matrix.Rank(b.Category, b.Classification)
}

// UnrankedBrands lists brand codes whose (category, classification) pair is
// missing from the priority matrix.
func (r *ReferenceData) UnrankedBrands() []string {
	var out []string
	for code, b := range r.brands {
		if !r.matrix.Contains(b.Category, b.Classification) {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}
