package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductWarehouseMetric is one row of metricas_producto_almacen.
type ProductWarehouseMetric struct {
	CalcDate         time.Time       `json:"fecha_calculo" db:"fecha_calculo"`
	Reference        string          `json:"referencia" db:"referencia"`
	WarehouseCode    string          `json:"bodega_codigo" db:"bodega_codigo"`
	Stock            float64         `json:"stock_actual" db:"stock_actual"`
	StockValue       decimal.Decimal `json:"valor_stock" db:"valor_stock"`
	Sales7           float64         `json:"venta_ultimos_7_dias" db:"venta_ultimos_7_dias"`
	Sales30          float64         `json:"venta_ultimos_30_dias" db:"venta_ultimos_30_dias"`
	Sales90          float64         `json:"venta_ultimos_90_dias" db:"venta_ultimos_90_dias"`
	AvgDailySales    float64         `json:"venta_diaria_promedio" db:"venta_diaria_promedio"`
	DaysOfInventory  *float64        `json:"dias_inventario" db:"dias_inventario"`
	MonthlyRotation  *float64        `json:"rotacion_mensual" db:"rotacion_mensual"`
	ReorderPoint     float64         `json:"punto_reorden" db:"punto_reorden"`
	SafetyStock      float64         `json:"stock_seguridad" db:"stock_seguridad"`
	MaxStock         float64         `json:"stock_maximo" db:"stock_maximo"`
	StockStatus      StockStatus     `json:"estado_stock" db:"estado_stock"`
	RequiresTransfer bool            `json:"requiere_traslado" db:"requiere_traslado"`
	RequiresPurchase bool            `json:"requiere_compra" db:"requiere_compra"`
}

// ProductNetworkMetric is one row of metricas_producto_red.
type ProductNetworkMetric struct {
	CalcDate            time.Time       `json:"fecha_calculo" db:"fecha_calculo"`
	Reference           string          `json:"referencia" db:"referencia"`
	TotalStock          float64         `json:"stock_total" db:"stock_total"`
	StockValue          decimal.Decimal `json:"valor_stock" db:"valor_stock"`
	Sales7              float64         `json:"venta_ultimos_7_dias" db:"venta_ultimos_7_dias"`
	Sales30             float64         `json:"venta_ultimos_30_dias" db:"venta_ultimos_30_dias"`
	Sales90             float64         `json:"venta_ultimos_90_dias" db:"venta_ultimos_90_dias"`
	DailySales          float64         `json:"venta_diaria_red" db:"venta_diaria_red"`
	DaysOfInventory     *float64        `json:"dias_inventario_red" db:"dias_inventario_red"`
	WarehousesWithStock int             `json:"almacenes_con_stock" db:"almacenes_con_stock"`
	StockDeviation      *float64        `json:"desviacion_stock" db:"desviacion_stock"`
	SalesValue30        decimal.Decimal `json:"valor_venta_30_dias" db:"valor_venta_30_dias"`
	ABCClass            string          `json:"clasificacion_abc" db:"clasificacion_abc"`
}

// RegionalMetric is one row of metricas_regionales.
type RegionalMetric struct {
	CalcDate      time.Time       `json:"fecha_calculo" db:"fecha_calculo"`
	Region        string          `json:"regional" db:"regional"`
	Warehouses    int             `json:"almacenes" db:"almacenes"`
	TotalStock    float64         `json:"stock_total" db:"stock_total"`
	StockValue    decimal.Decimal `json:"valor_stock" db:"valor_stock"`
	Sales30       float64         `json:"venta_ultimos_30_dias" db:"venta_ultimos_30_dias"`
	ProductsShort int             `json:"productos_bajo_stock" db:"productos_bajo_stock"`
	ProductsOver  int             `json:"productos_sobre_stock" db:"productos_sobre_stock"`
}
