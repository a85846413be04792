package domain

import "strings"

// StockStatus is the estado_stock label of a warehouse metric.
type StockStatus string

const (
	StockCritical StockStatus = "CRITICO"
	StockLow      StockStatus = "BAJO"
	StockNormal   StockStatus = "NORMAL"
	StockOver     StockStatus = "SOBRE"
	StockExcess   StockStatus = "EXCESO"
	StockNoDemand StockStatus = "SIN_MOVIMIENTO"
	StockOut      StockStatus = "AGOTADO"
)

type Category string

const (
	CategoryPrincipal Category = "PRINCIPAL"
	CategoryOthers    Category = "OTRAS"
)

type Classification string

const (
	ClassA Classification = "A"
	ClassB Classification = "B"
	ClassC Classification = "C"
	ClassD Classification = "D"
)

type AlertType string

const (
	AlertStockCritical AlertType = "STOCK_CRITICO"
	AlertStockLow      AlertType = "STOCK_BAJO"
	AlertStockMedium   AlertType = "STOCK_MEDIO"
	AlertOutOfStock    AlertType = "SIN_STOCK"
	AlertOverstock     AlertType = "SOBREINVENTARIO"
	AlertLowRotation   AlertType = "BAJA_ROTACION"
)

// AlertLevel is ordered from most to least severe.
type AlertLevel string

const (
	LevelCritical AlertLevel = "CRITICO"
	LevelHigh     AlertLevel = "ALTO"
	LevelMedium   AlertLevel = "MEDIO"
	LevelLow      AlertLevel = "BAJO"
)

var alertLevels = []AlertLevel{LevelCritical, LevelHigh, LevelMedium, LevelLow}

// Shift moves the level by steps (negative is more severe), clamped to the scale.
func (l AlertLevel) Shift(steps int) AlertLevel {
	idx := 0
	for i, lv := range alertLevels {
		if lv == l {
			idx = i
			break
		}
	}
	idx += steps
	if idx < 0 {
		idx = 0
	}
	if idx >= len(alertLevels) {
		idx = len(alertLevels) - 1
	}
	return alertLevels[idx]
}

// Priority of a recommendation, ordered from most to least urgent.
type Priority string

const (
	PriorityUrgent Priority = "URGENTE"
	PriorityHigh   Priority = "ALTA"
	PriorityMedium Priority = "MEDIA"
	PriorityLow    Priority = "BAJA"
)

var priorityOrder = map[Priority]int{
	PriorityUrgent: 0,
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    3,
}

// Less reports whether p is more urgent than other.
func (p Priority) Less(other Priority) bool {
	return priorityOrder[p] < priorityOrder[other]
}

// Lifecycle states shared by alerts and recommendations.
const (
	StatusPending  = "PENDIENTE"
	StatusSeen     = "VISTA"
	StatusAttended = "ATENDIDA"
	StatusIgnored  = "IGNORADA"

	StatusApproved = "APROBADA"
	StatusExecuted = "EJECUTADA"
	StatusRejected = "RECHAZADA"

	StatusOrdered   = "INCLUIDA_EN_PEDIDO"
	StatusDiscarded = "DESCARTADA"
)

// Lifecycle maps a state to the states it may move to.
type Lifecycle map[string][]string

var (
	AlertLifecycle = Lifecycle{
		StatusPending: {StatusSeen, StatusAttended, StatusIgnored},
		StatusSeen:    {StatusAttended, StatusIgnored},
	}
	TransferLifecycle = Lifecycle{
		StatusPending:  {StatusApproved, StatusRejected},
		StatusApproved: {StatusExecuted, StatusRejected},
	}
	PurchaseLifecycle = Lifecycle{
		StatusPending: {StatusOrdered, StatusDiscarded},
	}
)

// CanTransition reports whether from -> to is allowed (case-insensitive).
func (l Lifecycle) CanTransition(from, to string) bool {
	for _, next := range l[strings.ToUpper(from)] {
		if next == strings.ToUpper(to) {
			return true
		}
	}
	return false
}

// States lists every state named by the lifecycle.
func (l Lifecycle) States() []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, from := range []string{StatusPending, StatusSeen, StatusApproved} {
		if next, ok := l[from]; ok {
			add(from)
			for _, n := range next {
				add(n)
			}
		}
	}
	return out
}
