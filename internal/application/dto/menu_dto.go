package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/pkg/dates"
)

// GenerateMenuRequest body para POST /api/menus.
type GenerateMenuRequest struct {
	Days        int                    `json:"days" validate:"gte=1,lte=14"`
	Servings    int                    `json:"servings" validate:"gte=1,lte=20"`
	Constraints entity.MenuConstraints `json:"constraints"`
	Planner     string                 `json:"planner,omitempty"`
}

// MenuItemResponse franja del menú.
type MenuItemResponse struct {
	Date       string          `json:"date"`
	MealType   string          `json:"meal_type"`
	RecipeID   int64           `json:"recipe_id"`
	RecipeName string          `json:"recipe_name"`
	Explain    []string        `json:"explain"`
	Nutrition  json.RawMessage `json:"nutrition,omitempty"`
}

// MenuResponse menú con sus franjas.
type MenuResponse struct {
	ID          string                 `json:"menu_id"`
	Days        int                    `json:"days"`
	Servings    int                    `json:"servings"`
	Constraints entity.MenuConstraints `json:"constraints"`
	Planner     string                 `json:"planner"`
	GeneratedAt time.Time              `json:"generated_at"`
	Items       []MenuItemResponse     `json:"items"`
}

// ShoppingItemResponse línea de la lista de compras.
type ShoppingItemResponse struct {
	ID       string                `json:"id"`
	MenuID   string                `json:"menu_id"`
	ItemID   *int64                `json:"item_id"`
	ItemName string                `json:"item_name"`
	NeedQty  decimal.Decimal       `json:"need_qty"`
	Unit     string                `json:"unit"`
	Reason   entity.ShoppingReason `json:"reason"`
	Checked  bool                  `json:"checked"`
}

// GenerateMenuResponse menú generado, su lista de compras y qué planificador lo atendió.
type GenerateMenuResponse struct {
	Menu         MenuResponse           `json:"menu"`
	ShoppingList []ShoppingItemResponse `json:"shopping_list"`
	Meta         backend.Meta           `json:"meta"`
}

// SetCheckedRequest body para PATCH /api/shopping-items/:id.
type SetCheckedRequest struct {
	Checked *bool `json:"checked" validate:"required"`
}

// MenuFromEntity convierte un menú de dominio.
func MenuFromEntity(m *entity.MenuPlan) MenuResponse {
	items := make([]MenuItemResponse, 0, len(m.Items))
	for _, it := range m.Items {
		d := it.Date
		explain := it.Explain
		if explain == nil {
			explain = []string{}
		}
		items = append(items, MenuItemResponse{
			Date: dates.Format(&d), MealType: it.MealType, RecipeID: it.RecipeID,
			RecipeName: it.RecipeName, Explain: explain, Nutrition: it.Nutrition,
		})
	}
	constraints := m.Constraints
	if constraints.AllergensExclude == nil {
		constraints.AllergensExclude = []string{}
	}
	return MenuResponse{
		ID: m.ID, Days: m.Days, Servings: m.Servings, Constraints: constraints,
		Planner: m.Planner, GeneratedAt: m.GeneratedAt, Items: items,
	}
}

// ShoppingItemFromEntity convierte una línea de compra.
func ShoppingItemFromEntity(it *entity.ShoppingListItem) ShoppingItemResponse {
	return ShoppingItemResponse{
		ID: it.ID, MenuID: it.MenuID, ItemID: it.ItemID, ItemName: it.ItemNameSnapshot,
		NeedQty: it.NeedQty, Unit: it.Unit, Reason: it.Reason, Checked: it.Checked,
	}
}

// ShoppingItemsFromEntities convierte una lista de líneas; nunca devuelve nil.
func ShoppingItemsFromEntities(list []*entity.ShoppingListItem) []ShoppingItemResponse {
	out := make([]ShoppingItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, ShoppingItemFromEntity(it))
	}
	return out
}

// ShoppingListFromValues convierte las líneas recién generadas; nunca devuelve nil.
func ShoppingListFromValues(list []entity.ShoppingListItem) []ShoppingItemResponse {
	out := make([]ShoppingItemResponse, 0, len(list))
	for i := range list {
		out = append(out, ShoppingItemFromEntity(&list[i]))
	}
	return out
}
