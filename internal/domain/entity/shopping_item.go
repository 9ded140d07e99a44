package entity

import "github.com/shopspring/decimal"

// Orígenes de una línea de la lista de compras.
const (
	ShoppingSourceMenuEngine   = "menu_engine"
	ShoppingSourcePlannerHTTP  = "planner_http"
	ShoppingSourcePlannerLocal = "planner_local"
)

// ShoppingReason metadatos de por qué se sugiere comprar un ítem.
type ShoppingReason struct {
	Gap    decimal.Decimal `json:"gap"`
	Source string          `json:"source"`
}

// ShoppingListItem línea derivada de un menú. Tras crearse solo cambia Checked.
type ShoppingListItem struct {
	ID               string
	MenuID           string
	ItemID           *int64
	ItemNameSnapshot string
	NeedQty          decimal.Decimal // redondeado a un decimal
	Unit             string
	Reason           ShoppingReason
	Checked          bool
}
