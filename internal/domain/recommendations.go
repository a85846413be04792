package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Alert is one row of alertas.
type Alert struct {
	ID                  int64          `json:"id" db:"id"`
	CalcDate            time.Time      `json:"fecha_calculo" db:"fecha_calculo"`
	Type                AlertType      `json:"tipo_alerta" db:"tipo_alerta"`
	Level               AlertLevel     `json:"nivel" db:"nivel"`
	Reference           string         `json:"referencia" db:"referencia"`
	ProductName         string         `json:"producto_nombre,omitempty" db:"producto_nombre"`
	WarehouseCode       string         `json:"bodega_codigo" db:"bodega_codigo"`
	WarehouseName       string         `json:"almacen_nombre,omitempty" db:"almacen_nombre"`
	Stock               float64        `json:"stock_actual" db:"stock_actual"`
	DaysOfInventory     *float64       `json:"dias_inventario" db:"dias_inventario"`
	DailySales          float64        `json:"venta_diaria" db:"venta_diaria"`
	BrandCategory       Category       `json:"marca_categoria" db:"marca_categoria"`
	BrandClassification Classification `json:"marca_clasificacion" db:"marca_clasificacion"`
	Message             string         `json:"mensaje" db:"mensaje"`
	Status              string         `json:"estado" db:"estado"`
	GeneratedAt         time.Time      `json:"fecha_generacion" db:"fecha_generacion"`
	UpdatedAt           *time.Time     `json:"fecha_actualizacion,omitempty" db:"fecha_actualizacion"`
	ActionUser          *string        `json:"usuario_accion,omitempty" db:"usuario_accion"`
}

// TransferRecommendation moves units from a surplus warehouse (origen) to a
// warehouse in deficit (destino). One row of recomendaciones_traslado.
type TransferRecommendation struct {
	ID                  int64          `json:"id" db:"id"`
	CalcDate            time.Time      `json:"fecha_calculo" db:"fecha_calculo"`
	Reference           string         `json:"referencia" db:"referencia"`
	ProductName         string         `json:"producto_nombre,omitempty" db:"producto_nombre"`
	Origin              string         `json:"bodega_origen" db:"bodega_origen"`
	Destination         string         `json:"bodega_destino" db:"bodega_destino"`
	DestinationRegion   string         `json:"regional_destino" db:"regional_destino"`
	Quantity            float64        `json:"cantidad_sugerida" db:"cantidad_sugerida"`
	OriginDays          *float64       `json:"dias_inv_origen" db:"dias_inv_origen"`
	DestinationDays     *float64       `json:"dias_inv_destino" db:"dias_inv_destino"`
	BrandCategory       Category       `json:"marca_categoria" db:"marca_categoria"`
	BrandClassification Classification `json:"marca_clasificacion" db:"marca_clasificacion"`
	Priority            Priority       `json:"prioridad" db:"prioridad"`
	Status              string         `json:"estado" db:"estado"`
	GeneratedAt         time.Time      `json:"fecha_generacion" db:"fecha_generacion"`
	UpdatedAt           *time.Time     `json:"fecha_actualizacion,omitempty" db:"fecha_actualizacion"`
	ActionUser          *string        `json:"usuario_accion,omitempty" db:"usuario_accion"`
}

// PurchaseRecommendation is one row of recomendaciones_compra.
type PurchaseRecommendation struct {
	ID                  int64           `json:"id" db:"id"`
	CalcDate            time.Time       `json:"fecha_calculo" db:"fecha_calculo"`
	Reference           string          `json:"referencia" db:"referencia"`
	ProductName         string          `json:"producto_nombre,omitempty" db:"producto_nombre"`
	BrandCode           string          `json:"marca_codigo" db:"marca_codigo"`
	BrandCategory       Category        `json:"marca_categoria" db:"marca_categoria"`
	BrandClassification Classification  `json:"marca_clasificacion" db:"marca_clasificacion"`
	NetworkStock        float64         `json:"stock_actual_red" db:"stock_actual_red"`
	ProjectedSales      float64         `json:"venta_proyectada" db:"venta_proyectada"`
	Quantity            float64         `json:"cantidad_sugerida" db:"cantidad_sugerida"`
	CurrentCoverageDays *float64        `json:"dias_cobertura_actual" db:"dias_cobertura_actual"`
	TargetCoverageDays  int             `json:"dias_cobertura_objetivo" db:"dias_cobertura_objetivo"`
	UnitCost            decimal.Decimal `json:"costo_unitario_estimado" db:"costo_unitario_estimado"`
	EstimatedValue      decimal.Decimal `json:"valor_compra_estimado" db:"valor_compra_estimado"`
	OrderDate           time.Time       `json:"fecha_sugerida_pedido" db:"fecha_sugerida_pedido"`
	ExpectedArrival     time.Time       `json:"fecha_estimada_llegada" db:"fecha_estimada_llegada"`
	Priority            Priority        `json:"prioridad" db:"prioridad"`
	Status              string          `json:"estado" db:"estado"`
	GeneratedAt         time.Time       `json:"fecha_generacion" db:"fecha_generacion"`
	UpdatedAt           *time.Time      `json:"fecha_actualizacion,omitempty" db:"fecha_actualizacion"`
	ActionUser          *string         `json:"usuario_accion,omitempty" db:"usuario_accion"`
}
