package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/andresuchdata/inventory-analytics/backend-go/internal/repository"
)

type referenceRepository struct {
	db *DB
}

func NewReferenceRepository(db *DB) repository.ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	var out []domain.Warehouse
	query := `SELECT codigo, nombre, tipo, regional, es_cedi, activo FROM almacenes ORDER BY codigo`
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("error listing warehouses: %w", err)
	}
	return out, nil
}

func (r *referenceRepository) ListWarehouseTypes(ctx context.Context) ([]domain.WarehouseType, error) {
	var out []domain.WarehouseType
	query := `
		SELECT nombre, incluir_en_analisis_ventas, incluir_en_analisis_inventario, descripcion
		FROM tipos_almacen
		ORDER BY nombre
	`
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("error listing warehouse types: %w", err)
	}
	return out, nil
}

func (r *referenceRepository) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	var out []domain.Brand
	query := `
		SELECT codigo, nombre, categoria, clasificacion, periodicidad_compra_dias,
		       dias_cobertura_stock, lead_time_proveedor, lead_time_a_cedi
		FROM marcas
		ORDER BY codigo
	`
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("error listing brands: %w", err)
	}
	return out, nil
}

func (r *referenceRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	query := `SELECT referencia, nombre, COALESCE(marca_codigo, '') AS marca_codigo, activo FROM productos ORDER BY referencia`
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	return out, nil
}

func (r *referenceRepository) ListPriorityRules(ctx context.Context) ([]domain.PriorityRule, error) {
	var out []domain.PriorityRule
	query := `SELECT categoria, clasificacion, prioridad FROM matriz_prioridad ORDER BY prioridad, categoria, clasificacion`
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("error listing priority matrix: %w", err)
	}
	return out, nil
}

type factsRepository struct {
	db *DB
}

func NewFactsRepository(db *DB) repository.FactsRepository {
	return &factsRepository{db: db}
}

func (r *factsRepository) DailySales(ctx context.Context, from, to time.Time) ([]domain.DailySales, error) {
	var out []domain.DailySales
	query := `
		SELECT referencia, bodega_codigo, fecha,
		       SUM(cantidad) AS cantidad,
		       SUM(valor_total) AS valor
		FROM ventas
		WHERE fecha BETWEEN $1::date AND $2::date
		GROUP BY referencia, bodega_codigo, fecha
		ORDER BY referencia, bodega_codigo, fecha
	`
	if err := r.db.SelectContext(ctx, &out, query, from, to); err != nil {
		return nil, fmt.Errorf("error loading daily sales: %w", err)
	}
	return out, nil
}

func (r *factsRepository) LatestSnapshotDate(ctx context.Context, date time.Time) (*time.Time, error) {
	var latest *time.Time
	query := `SELECT MAX(fecha_snapshot) FROM inventario_snapshot WHERE fecha_snapshot <= $1::date`
	if err := r.db.GetContext(ctx, &latest, query, date); err != nil {
		return nil, fmt.Errorf("error finding snapshot date: %w", err)
	}
	return latest, nil
}

func (r *factsRepository) Snapshot(ctx context.Context, date time.Time) ([]domain.InventorySnapshot, error) {
	var out []domain.InventorySnapshot
	query := `
		SELECT fecha_snapshot, bodega_codigo, referencia, cantidad, valor_costo
		FROM inventario_snapshot
		WHERE fecha_snapshot = $1::date
		ORDER BY referencia, bodega_codigo
	`
	if err := r.db.SelectContext(ctx, &out, query, date); err != nil {
		return nil, fmt.Errorf("error loading snapshot: %w", err)
	}
	return out, nil
}
