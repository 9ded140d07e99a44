package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento del libro de inventario.
const (
	EventTypeCreate  = "create"
	EventTypeAdjust  = "adjust"
	EventTypeConsume = "consume"
	EventTypeDiscard = "discard"
)

// InventoryEvent hecho inmutable sobre un lote. Solo se agrega; nunca se modifica ni se borra.
// Delta es nil en ajustes que no tocaron la cantidad. En ajustes con cantidad, Delta
// registra la cantidad nueva del lote (no la diferencia).
type InventoryEvent struct {
	ID        string
	BatchID   string
	Type      string
	Delta     *decimal.Decimal
	Note      string
	Actor     string
	CreatedAt time.Time
}
