package entity

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Recipe receta del catálogo. Allergens es una lista de tokens separados por coma.
type Recipe struct {
	ID        int64
	Name      string
	Tags      string
	Allergens string
	Steps     string
	Nutrition json.RawMessage
}

// AllergenSet devuelve los tokens de alérgenos sin espacios ni vacíos.
func (r *Recipe) AllergenSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Split(r.Allergens, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}

// RecipeIngredient cantidad requerida de un ítem en una receta.
// Optional es informativo: el puntaje lo trata igual que un ingrediente requerido.
type RecipeIngredient struct {
	RecipeID int64
	ItemID   int64
	Quantity decimal.Decimal
	Unit     string
	Optional bool
}
