package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryKPI summarises inventario_actual
type InventoryKPI struct {
	Products   int             `json:"total_productos" db:"total_productos"`
	Warehouses int             `json:"total_almacenes" db:"total_almacenes"`
	Units      float64         `json:"total_unidades" db:"total_unidades"`
	Value      decimal.Decimal `json:"valor_inventario" db:"valor_inventario"`
}

// SalesKPI summarises the trailing 30 days of ventas
type SalesKPI struct {
	Transactions int             `json:"transacciones" db:"transacciones"`
	Units        float64         `json:"unidades" db:"unidades"`
	Value        decimal.Decimal `json:"valor" db:"valor"`
}

// AlertKPI counts pending alerts by type
type AlertKPI struct {
	Critical  int `json:"criticas" db:"criticas"`
	Low       int `json:"bajas" db:"bajas"`
	Overstock int `json:"sobreinventario" db:"sobreinventario"`
	Total     int `json:"total" db:"total"`
}

// KPIs is the dashboard header payload
type KPIs struct {
	Inventory         InventoryKPI `json:"inventario"`
	Sales30d          SalesKPI     `json:"ventas_30d"`
	Alerts            AlertKPI     `json:"alertas"`
	PendingTransfers  int          `json:"traslados_pendientes"`
	PendingPurchases  int          `json:"compras_pendientes"`
	LatestCalculation *time.Time   `json:"ultima_fecha_calculo"`
}

// AlertSummary counts pending alerts per (type, level)
type AlertSummary struct {
	Type  AlertType  `json:"tipo_alerta" db:"tipo_alerta"`
	Level AlertLevel `json:"nivel" db:"nivel"`
	Count int        `json:"cantidad" db:"cantidad"`
}

// WarehouseOverview aggregates the latest metrics of one sales warehouse
type WarehouseOverview struct {
	Code                 string          `json:"codigo" db:"codigo"`
	Name                 string          `json:"nombre" db:"nombre"`
	Type                 string          `json:"tipo" db:"tipo"`
	Region               string          `json:"regional" db:"regional"`
	IsDistributionCenter bool            `json:"es_cedi" db:"es_cedi"`
	Products             int             `json:"productos" db:"productos"`
	Units                float64         `json:"unidades" db:"unidades"`
	Value                decimal.Decimal `json:"valor_inventario" db:"valor_inventario"`
	AvgDaysOfInventory   *float64        `json:"dias_inv_promedio" db:"dias_inv_promedio"`
}

// ListFilter is shared by the alert and recommendation listings
type ListFilter struct {
	CalcDate *time.Time
	Type     string
	Level    string
	Priority string
	Status   string
	Limit    int
}

// StatusUpdate is a lifecycle transition requested by an operator
type StatusUpdate struct {
	ID     int64
	Status string
	User   string
}

// ProductNetwork is the network row of a product plus its per-warehouse breakdown
type ProductNetwork struct {
	Product    Product                  `json:"producto"`
	Network    *ProductNetworkMetric    `json:"red"`
	Warehouses []ProductWarehouseMetric `json:"almacenes"`
}
