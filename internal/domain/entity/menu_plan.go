package entity

import (
	"encoding/json"
	"time"
)

// Comidas del día que alterna el planificador.
const (
	MealLunch  = "lunch"
	MealDinner = "dinner"
)

// MealTypes orden de alternancia de las franjas.
var MealTypes = []string{MealLunch, MealDinner}

// MenuConstraints restricciones con las que se generó un menú.
type MenuConstraints struct {
	AllergensExclude []string `json:"allergens_exclude"`
	PreferExpiring   *bool    `json:"prefer_expiring,omitempty"` // nil = true
}

// PrefersExpiring aplica el valor por defecto (true).
func (c MenuConstraints) PrefersExpiring() bool {
	return c.PreferExpiring == nil || *c.PreferExpiring
}

// MenuPlan menú generado; es dueño exclusivo de sus ítems y de su lista de compras.
type MenuPlan struct {
	ID          string
	Days        int
	Servings    int
	Constraints MenuConstraints
	Planner     string
	GeneratedAt time.Time
	Items       []MenuPlanItem
}

// MenuPlanItem una franja (fecha + comida) asignada a una receta.
type MenuPlanItem struct {
	ID         string
	MenuID     string
	Date       time.Time
	MealType   string
	RecipeID   int64
	RecipeName string
	Explain    []string
	Nutrition  json.RawMessage
}
