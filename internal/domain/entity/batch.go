package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote de inventario.
const (
	BatchStatusInStock   = "in_stock"
	BatchStatusConsumed  = "consumed"
	BatchStatusDiscarded = "discarded"
)

// DefaultLocation ubicación asignada cuando el ingreso no indica ninguna.
const DefaultLocation = "fridge"

// InventoryBatch representa un lote físico de un alimento con su propia cantidad y vencimiento.
// ItemNameSnapshot conserva el nombre aunque el ítem del catálogo cambie o se elimine.
// Quantity solo se modifica a través de las operaciones del libro de inventario.
type InventoryBatch struct {
	ID               string
	ItemID           *int64
	ItemNameSnapshot string
	Quantity         decimal.Decimal // >= 0
	Unit             string
	PurchaseDate     *time.Time
	ExpireDate       *time.Time
	Location         string
	Status           string
	SourceType       string // manual, image, ...
	SourceRefID      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// InStock indica si el lote sigue disponible.
func (b *InventoryBatch) InStock() bool {
	return b.Status == BatchStatusInStock
}

// ExpiringBatch lote en stock anotado con los días restantes hasta su vencimiento.
type ExpiringBatch struct {
	InventoryBatch
	DaysLeft int
}
