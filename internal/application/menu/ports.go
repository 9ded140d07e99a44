package menu

import (
	"context"


	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
)

// MenuTxRunner acceso transaccional para generar menús.
type MenuTxRunner interface {
	// ReadSnapshot ejecuta fn sobre una vista consistente y de solo lectura del catálogo y el inventario.
	ReadSnapshot(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		batchRepo repository.BatchRepository,
		recipeRepo repository.RecipeRepository,
	) error) error
	// RunMenu guarda menú y lista de compras en una sola transacción.
	RunMenu(ctx context.Context, fn func(
		menuRepo repository.MenuRepository,
		shoppingRepo repository.ShoppingRepository,
	) error) error
}

// RecipeSelector puerto de salida hacia un planificador externo (servicio HTTP o modelo local)
// que elige recetas entre los candidatos.
type RecipeSelector interface {
	Available() (bool, string)
	Select(ctx context.Context, req SelectionRequest) (*Selection, error)
}

// ShoppingListRenderer genera el documento imprimible de una lista de compras.
type ShoppingListRenderer interface {
	RenderShoppingList(menu *entity.MenuPlan, items []*entity.ShoppingListItem) ([]byte, error)
}

// SelectionRequest datos enviados al planificador externo.
type SelectionRequest struct {
	Days        int                    `json:"days"`
	Servings    int                    `json:"servings"`
	Constraints entity.MenuConstraints `json:"constraints"`
	Inventory   []InventoryEntry       `json:"inventory"`
	Candidates  []Candidate            `json:"candidates"`
	TopK        int                    `json:"top_k"`
}

// InventoryEntry lote en stock tal como lo ve el planificador externo. Las cantidades viajan
// como números JSON.
type InventoryEntry struct {
	ItemID     *int64  `json:"item_id"`
	ItemName   string  `json:"item_name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	ExpireDate *string `json:"expire_date"`
}

// Candidate receta preseleccionada por cobertura.
type Candidate struct {
	RecipeID    int64                 `json:"recipe_id"`
	Name        string                `json:"name"`
	Allergens   string                `json:"allergens"`
	Ingredients []CandidateIngredient `json:"ingredients"`
}

// CandidateIngredient ingrediente de un candidato con el nombre del catálogo.
type CandidateIngredient struct {
	ItemID   int64   `json:"item_id"`
	ItemName string  `json:"item_name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Selection respuesta del planificador externo.
type Selection struct {
	Selected []SelectedRecipe `json:"selected"`
}

// SelectedRecipe receta elegida con sus explicaciones.
type SelectedRecipe struct {
	RecipeID int64    `json:"recipe_id"`
	Explain  []string `json:"explain"`
}
