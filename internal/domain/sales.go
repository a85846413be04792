package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Trend bucket sizes accepted by the sales trend.
const (
	IntervalDay   = "day"
	IntervalWeek  = "week"
	IntervalMonth = "month"
)

// ParseInterval normalizes a bucket size, defaulting to IntervalDay.
func ParseInterval(raw string) (string, error) {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case "", "dia", IntervalDay:
		return IntervalDay, nil
	case "semana", IntervalWeek:
		return IntervalWeek, nil
	case "mes", IntervalMonth:
		return IntervalMonth, nil
	default:
		return "", fmt.Errorf("%w: unknown interval %q", ErrInvalidInput, raw)
	}
}

// SalesTrendPoint aggregates the ventas of sales warehouses in one bucket
type SalesTrendPoint struct {
	Date         string          `json:"fecha" db:"fecha"`
	Transactions int             `json:"transacciones" db:"transacciones"`
	Units        float64         `json:"unidades" db:"unidades"`
	Value        decimal.Decimal `json:"valor" db:"valor"`
}

// TopProduct ranks a product by units sold over a trailing window
type TopProduct struct {
	Reference  string          `json:"referencia" db:"referencia"`
	Name       string          `json:"nombre" db:"nombre"`
	BrandCode  string          `json:"marca_codigo" db:"marca_codigo"`
	Units      float64         `json:"unidades_vendidas" db:"unidades_vendidas"`
	Value      decimal.Decimal `json:"valor_vendido" db:"valor_vendido"`
	Warehouses int             `json:"almacenes_venta" db:"almacenes_venta"`
}

// BrandPerformance summarises one brand at a calculation date
type BrandPerformance struct {
	Code               string          `json:"codigo" db:"codigo"`
	Name               string          `json:"nombre" db:"nombre"`
	Category           Category        `json:"categoria" db:"categoria"`
	Classification     Classification  `json:"clasificacion" db:"clasificacion"`
	SupplierLeadTime   int             `json:"lead_time_proveedor" db:"lead_time_proveedor"`
	Products           int             `json:"productos" db:"productos"`
	Sales30d           float64         `json:"venta_30_dias" db:"venta_30_dias"`
	StockValue         decimal.Decimal `json:"valor_stock" db:"valor_stock"`
	AvgDaysOfInventory *float64        `json:"dias_inv_promedio" db:"dias_inv_promedio"`
	OutOfStock         int             `json:"productos_agotados" db:"productos_agotados"`
	PendingPurchases   int             `json:"compras_pendientes" db:"compras_pendientes"`
}

// BrandPerformanceQuery pages and sorts the brand listing
type BrandPerformanceQuery struct {
	Page          int
	PageSize      int
	SortField     string
	SortDirection string
}

// BrandPerformanceResponse is one page of brands
type BrandPerformanceResponse struct {
	Items      []BrandPerformance `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// RecommendationAging counts pending recommendations by days since generation
type RecommendationAging struct {
	Kind     string          `json:"tipo" db:"tipo"`
	Bucket   string          `json:"rango_dias" db:"rango_dias"`
	Count    int             `json:"cantidad" db:"cantidad"`
	Quantity float64         `json:"cantidad_sugerida" db:"cantidad_sugerida"`
	Value    decimal.Decimal `json:"valor_estimado" db:"valor_estimado"`
	MaxDays  int             `json:"dias_max" db:"dias_max"`
}

// Recommendation kinds reported by the aging listing
const (
	RecommendationTransfer = "TRASLADO"
	RecommendationPurchase = "COMPRA"
)
