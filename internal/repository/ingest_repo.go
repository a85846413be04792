package repository

import (
	"context"
	"fmt"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

// IngestRepository loads feed rows into the reference and fact tables.
type IngestRepository struct {
	db *sqlx.DB
}

func NewIngestRepository(db *sqlx.DB) *IngestRepository {
	return &IngestRepository{db: db}
}

func (r *IngestRepository) UpsertWarehouses(ctx context.Context, warehouses []domain.Warehouse) (int64, error) {
	rows := make([][]interface{}, 0, len(warehouses))
	for _, w := range dedupe(warehouses, func(w domain.Warehouse) string { return w.Code }) {
		rows = append(rows, []interface{}{w.Code, w.Name, w.Type, w.Region, w.IsDistributionCenter, w.Active})
	}
	n, err := BulkInsert(ctx, r.db, "almacenes",
		[]string{"codigo", "nombre", "tipo", "regional", "es_cedi", "activo"}, rows, `
		ON CONFLICT (codigo) DO UPDATE SET
			nombre = EXCLUDED.nombre,
			tipo = EXCLUDED.tipo,
			regional = EXCLUDED.regional,
			es_cedi = EXCLUDED.es_cedi,
			activo = EXCLUDED.activo`)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert warehouses: %w", err)
	}
	return n, nil
}

func (r *IngestRepository) UpsertWarehouseTypes(ctx context.Context, types []domain.WarehouseType) (int64, error) {
	rows := make([][]interface{}, 0, len(types))
	for _, t := range dedupe(types, func(t domain.WarehouseType) string { return t.Name }) {
		rows = append(rows, []interface{}{t.Name, t.IncludeInSales, t.IncludeInInventory, t.Description})
	}
	n, err := BulkInsert(ctx, r.db, "tipos_almacen",
		[]string{"nombre", "incluir_en_analisis_ventas", "incluir_en_analisis_inventario", "descripcion"}, rows, `
		ON CONFLICT (nombre) DO UPDATE SET
			incluir_en_analisis_ventas = EXCLUDED.incluir_en_analisis_ventas,
			incluir_en_analisis_inventario = EXCLUDED.incluir_en_analisis_inventario,
			descripcion = EXCLUDED.descripcion`)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert warehouse types: %w", err)
	}
	return n, nil
}

func (r *IngestRepository) UpsertBrands(ctx context.Context, brands []domain.Brand) (int64, error) {
	rows := make([][]interface{}, 0, len(brands))
	for _, b := range dedupe(brands, func(b domain.Brand) string { return b.Code }) {
		rows = append(rows, []interface{}{
			b.Code, b.Name, string(b.Category), string(b.Classification),
			b.PurchaseCycleDays, b.CoverageDays, b.SupplierLeadTime, b.LeadTimeToCEDI,
		})
	}
	n, err := BulkInsert(ctx, r.db, "marcas",
		[]string{"codigo", "nombre", "categoria", "clasificacion", "periodicidad_compra_dias",
			"dias_cobertura_stock", "lead_time_proveedor", "lead_time_a_cedi"}, rows, `
		ON CONFLICT (codigo) DO UPDATE SET
			nombre = EXCLUDED.nombre,
			categoria = EXCLUDED.categoria,
			clasificacion = EXCLUDED.clasificacion,
			periodicidad_compra_dias = EXCLUDED.periodicidad_compra_dias,
			dias_cobertura_stock = EXCLUDED.dias_cobertura_stock,
			lead_time_proveedor = EXCLUDED.lead_time_proveedor,
			lead_time_a_cedi = EXCLUDED.lead_time_a_cedi`)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert brands: %w", err)
	}
	return n, nil
}

// UpsertProducts stores products; an empty brand code is kept as NULL.
func (r *IngestRepository) UpsertProducts(ctx context.Context, products []domain.Product) (int64, error) {
	rows := make([][]interface{}, 0, len(products))
	for _, p := range dedupe(products, func(p domain.Product) string { return p.Reference }) {
		var brand interface{}
		if p.BrandCode != "" {
			brand = p.BrandCode
		}
		rows = append(rows, []interface{}{p.Reference, p.Name, brand, p.Active})
	}
	n, err := BulkInsert(ctx, r.db, "productos",
		[]string{"referencia", "nombre", "marca_codigo", "activo"}, rows, `
		ON CONFLICT (referencia) DO UPDATE SET
			nombre = EXCLUDED.nombre,
			marca_codigo = EXCLUDED.marca_codigo,
			activo = EXCLUDED.activo`)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert products: %w", err)
	}
	return n, nil
}

// saleKey identifies a document line; a line appears once whatever warehouse
// it was recorded at.
func saleKey(s domain.Sale) string {
	return s.Prefix + "|" + s.DocumentNumber + "|" + s.Reference
}

var saleColumns = []string{"prefijo", "numero_documento", "referencia", "bodega_codigo", "fecha",
	"cantidad", "valor_unitario", "valor_total", "costo", "utilidad"}

func saleRows(sales []domain.Sale) [][]interface{} {
	rows := make([][]interface{}, 0, len(sales))
	for _, s := range dedupe(sales, saleKey) {
		rows = append(rows, []interface{}{
			s.Prefix, s.DocumentNumber, s.Reference, s.WarehouseCode, s.Date,
			s.Quantity, s.UnitValue, s.TotalValue, s.Cost, s.Profit,
		})
	}
	return rows
}

// InsertSales appends document lines; lines already loaded are ignored.
func (r *IngestRepository) InsertSales(ctx context.Context, sales []domain.Sale) (int64, error) {
	n, err := BulkInsert(ctx, r.db, "ventas", saleColumns, saleRows(sales),
		"ON CONFLICT (prefijo, numero_documento, referencia) DO NOTHING")
	if err != nil {
		return 0, fmt.Errorf("failed to insert sales: %w", err)
	}
	return n, nil
}

// UpsertSnapshot stores one inventory snapshot, replacing rows already loaded.
func (r *IngestRepository) UpsertSnapshot(ctx context.Context, snapshot []domain.InventorySnapshot) (int64, error) {
	key := func(s domain.InventorySnapshot) string {
		return s.SnapshotDate.Format(domain.DateLayout) + "|" + s.WarehouseCode + "|" + s.Reference
	}
	rows := make([][]interface{}, 0, len(snapshot))
	for _, s := range dedupe(snapshot, key) {
		rows = append(rows, []interface{}{s.SnapshotDate, s.WarehouseCode, s.Reference, s.Quantity, s.UnitCost})
	}
	n, err := BulkInsert(ctx, r.db, "inventario_snapshot",
		[]string{"fecha_snapshot", "bodega_codigo", "referencia", "cantidad", "valor_costo"}, rows, `
		ON CONFLICT (fecha_snapshot, bodega_codigo, referencia) DO UPDATE SET
			cantidad = EXCLUDED.cantidad,
			valor_costo = EXCLUDED.valor_costo`)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return n, nil
}

// RefreshCurrentInventory rebuilds inventario_actual from the newest snapshot.
func (r *IngestRepository) RefreshCurrentInventory(ctx context.Context) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventario_actual`); err != nil {
		return 0, fmt.Errorf("failed to clear current inventory: %w", err)
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO inventario_actual (bodega_codigo, referencia, cantidad, valor_costo, fecha_actualizacion)
		SELECT bodega_codigo, referencia, cantidad, valor_costo, NOW()
		FROM inventario_snapshot
		WHERE fecha_snapshot = (SELECT MAX(fecha_snapshot) FROM inventario_snapshot)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh current inventory: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// dedupe keeps the last row per key, preserving first-seen order. Postgres
// rejects an upsert that touches the same row twice in one statement.
func dedupe[T any](rows []T, key func(T) string) []T {
	index := make(map[string]int, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if i, ok := index[k]; ok {
			out[i] = row
			continue
		}
		index[k] = len(out)
		out = append(out, row)
	}
	return out
}
