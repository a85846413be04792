// backend-go/internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseTypeSales is the only warehouse type whose sales drive demand and alerts.
const WarehouseTypeSales = "Venta"

// WarehouseType holds the analysis flags of a warehouse type (tipos_almacen).
type WarehouseType struct {
	Name               string `json:"nombre" db:"nombre"`
	IncludeInSales     bool   `json:"incluir_en_analisis_ventas" db:"incluir_en_analisis_ventas"`
	IncludeInInventory bool   `json:"incluir_en_analisis_inventario" db:"incluir_en_analisis_inventario"`
	Description        string `json:"descripcion" db:"descripcion"`
}

// Warehouse represents a row of almacenes
type Warehouse struct {
	Code                 string `json:"codigo" db:"codigo"`
	Name                 string `json:"nombre" db:"nombre"`
	Type                 string `json:"tipo" db:"tipo"`
	Region               string `json:"regional" db:"regional"`
	IsDistributionCenter bool   `json:"es_cedi" db:"es_cedi"`
	Active               bool   `json:"activo" db:"activo"`
}

// Brand represents a row of marcas with its purchasing parameters
type Brand struct {
	Code              string         `json:"codigo" db:"codigo"`
	Name              string         `json:"nombre" db:"nombre"`
	Category          Category       `json:"categoria" db:"categoria"`
	Classification    Classification `json:"clasificacion" db:"clasificacion"`
	PurchaseCycleDays int            `json:"periodicidad_compra_dias" db:"periodicidad_compra_dias"`
	CoverageDays      int            `json:"dias_cobertura_stock" db:"dias_cobertura_stock"`
	SupplierLeadTime  int            `json:"lead_time_proveedor" db:"lead_time_proveedor"`
	LeadTimeToCEDI    int            `json:"lead_time_a_cedi" db:"lead_time_a_cedi"`
}

// CoverageTotal is the target coverage plus the lead time to the distribution center.
func (b Brand) CoverageTotal() int {
	return b.CoverageDays + b.LeadTimeToCEDI
}

// Product represents a row of productos
type Product struct {
	Reference string `json:"referencia" db:"referencia"`
	Name      string `json:"nombre" db:"nombre"`
	BrandCode string `json:"marca_codigo" db:"marca_codigo"`
	Active    bool   `json:"activo" db:"activo"`
}

// Sale is a single document line of ventas
type Sale struct {
	Prefix         string          `json:"prefijo" db:"prefijo"`
	DocumentNumber string          `json:"numero_documento" db:"numero_documento"`
	Date           time.Time       `json:"fecha" db:"fecha"`
	WarehouseCode  string          `json:"bodega_codigo" db:"bodega_codigo"`
	Reference      string          `json:"referencia" db:"referencia"`
	Quantity       float64         `json:"cantidad" db:"cantidad"`
	UnitValue      decimal.Decimal `json:"valor_unitario" db:"valor_unitario"`
	TotalValue     decimal.Decimal `json:"valor_total" db:"valor_total"`
	Cost           decimal.Decimal `json:"costo" db:"costo"`
	Profit         decimal.Decimal `json:"utilidad" db:"utilidad"`
}

// DailySales is the per-day aggregate of ventas for one product in one warehouse.
type DailySales struct {
	Reference     string          `db:"referencia"`
	WarehouseCode string          `db:"bodega_codigo"`
	Date          time.Time       `db:"fecha"`
	Quantity      float64         `db:"cantidad"`
	Value         decimal.Decimal `db:"valor"`
}

// InventorySnapshot is one row of inventario_snapshot
type InventorySnapshot struct {
	SnapshotDate  time.Time       `json:"fecha_snapshot" db:"fecha_snapshot"`
	WarehouseCode string          `json:"bodega_codigo" db:"bodega_codigo"`
	Reference     string          `json:"referencia" db:"referencia"`
	Quantity      float64         `json:"cantidad" db:"cantidad"`
	UnitCost      decimal.Decimal `json:"valor_costo" db:"valor_costo"`
}

// CurrentInventory is one row of inventario_actual
type CurrentInventory struct {
	WarehouseCode string          `json:"bodega_codigo" db:"bodega_codigo"`
	Reference     string          `json:"referencia" db:"referencia"`
	Quantity      float64         `json:"cantidad" db:"cantidad"`
	UnitCost      decimal.Decimal `json:"valor_costo" db:"valor_costo"`
	UpdatedAt     time.Time       `json:"fecha_actualizacion" db:"fecha_actualizacion"`
}
