// Package catalog lee el archivo JSON de catálogo (ítems y recetas con sus ingredientes).
package catalog

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
)

// File formato del archivo de catálogo (STORE_SEED_FILE).
type File struct {
	Items   []Item   `json:"items"`
	Recipes []Recipe `json:"recipes"`
}

// Item entrada de catálogo.
type Item struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	DefaultUnit   string `json:"default_unit"`
	ShelfLifeDays *int   `json:"shelf_life_days"`
}

// Recipe receta con ingredientes embebidos.
type Recipe struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Tags        string          `json:"tags"`
	Allergens   string          `json:"allergens"`
	Steps       string          `json:"steps"`
	Nutrition   json.RawMessage `json:"nutrition"`
	Ingredients []Ingredient    `json:"ingredients"`
}

// Ingredient cantidad de un ítem en una receta.
type Ingredient struct {
	ItemID   int64           `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
	Optional bool            `json:"optional"`
}

// Decode lee y valida el catálogo: ids positivos y únicos, nombres no vacíos,
// ingredientes que apuntan a ítems existentes con cantidad positiva.
func Decode(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decodificar catálogo: %w", err)
	}
	items := make(map[int64]bool, len(f.Items))
	for _, it := range f.Items {
		if it.ID <= 0 || it.Name == "" || items[it.ID] {
			return nil, fmt.Errorf("catálogo: ítem inválido o repetido (id %d)", it.ID)
		}
		items[it.ID] = true
	}
	recipes := make(map[int64]bool, len(f.Recipes))
	for _, rc := range f.Recipes {
		if rc.ID <= 0 || rc.Name == "" || recipes[rc.ID] {
			return nil, fmt.Errorf("catálogo: receta inválida o repetida (id %d)", rc.ID)
		}
		recipes[rc.ID] = true
		for _, in := range rc.Ingredients {
			if !items[in.ItemID] || !in.Quantity.IsPositive() {
				return nil, fmt.Errorf("catálogo: receta %d con ingrediente inválido (ítem %d)", rc.ID, in.ItemID)
			}
		}
	}
	return &f, nil
}

// Entity ítem de dominio.
func (it Item) Entity() entity.Item {
	return entity.Item{
		ID: it.ID, Name: it.Name, Category: it.Category,
		DefaultUnit: it.DefaultUnit, ShelfLifeDays: it.ShelfLifeDays,
	}
}

// Entity receta de dominio y sus ingredientes.
func (rc Recipe) Entity() (entity.Recipe, []entity.RecipeIngredient) {
	ings := make([]entity.RecipeIngredient, 0, len(rc.Ingredients))
	for _, in := range rc.Ingredients {
		ings = append(ings, entity.RecipeIngredient{
			RecipeID: rc.ID, ItemID: in.ItemID, Quantity: in.Quantity, Unit: in.Unit, Optional: in.Optional,
		})
	}
	return entity.Recipe{
		ID: rc.ID, Name: rc.Name, Tags: rc.Tags, Allergens: rc.Allergens,
		Steps: rc.Steps, Nutrition: rc.Nutrition,
	}, ings
}
