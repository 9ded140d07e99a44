// Package menu contiene el puntaje de recetas contra el inventario (servicio de dominio puro).
//
// Puntaje = cobertura + bono_por_vencer*0.2 - Σfaltantes*0.05
//
// Las funciones no consultan la base de datos ni el reloj: reciben todo como argumento
// y devuelven siempre el mismo resultado para la misma entrada.
package menu

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/pkg/dates"
)

// Pesos y umbrales del puntaje.
const (
	ExpiringWindowDays = 3
	BonusWeight        = 0.2
	GapPenalty         = 0.05
)

// Gaps faltante por ítem (cantidad requerida - cantidad disponible), solo valores > 0.
type Gaps map[int64]decimal.Decimal

// Total suma de todos los faltantes.
func (g Gaps) Total() decimal.Decimal {
	total := decimal.Zero
	for _, q := range g {
		total = total.Add(q)
	}
	return total
}

// Merge suma los faltantes de other sobre g.
func (g Gaps) Merge(other Gaps) {
	for id, q := range other {
		g[id] = g[id].Add(q)
	}
}

// Scored receta evaluada contra el inventario.
type Scored struct {
	Recipe      *entity.Recipe
	Ingredients []entity.RecipeIngredient
	Coverage    float64
	Gaps        Gaps
	Bonus       float64
	Score       float64
}

// InventoryMap suma la cantidad disponible por ítem. Los lotes sin ítem se ignoran.
func InventoryMap(batches []*entity.InventoryBatch) map[int64]decimal.Decimal {
	onHand := make(map[int64]decimal.Decimal)
	for _, b := range batches {
		if b.ItemID == nil {
			continue
		}
		onHand[*b.ItemID] = onHand[*b.ItemID].Add(b.Quantity)
	}
	return onHand
}

// Coverage fracción de ingredientes cubiertos por el inventario y faltante de los demás.
// Una receta sin ingredientes tiene cobertura 0. El flag Optional no cambia el cálculo.
// Cada línea se compara sola contra el inventario; si un ítem se repite, su faltante es el
// de la última línea.
func Coverage(ings []entity.RecipeIngredient, onHand map[int64]decimal.Decimal) (float64, Gaps) {
	gaps := make(Gaps)
	if len(ings) == 0 {
		return 0, gaps
	}
	covered := 0
	for _, ing := range ings {
		have := onHand[ing.ItemID]
		if have.GreaterThanOrEqual(ing.Quantity) {
			covered++
			continue
		}
		gaps[ing.ItemID] = ing.Quantity.Sub(have)
	}
	return float64(covered) / float64(len(ings)), gaps
}

// ExpiringBonus premia recetas que usan lotes próximos a vencer: por cada ingrediente y cada
// lote de ese ítem con días restantes <= 3 suma max(0, 3 - díasRestantes).
func ExpiringBonus(ings []entity.RecipeIngredient, batches []*entity.InventoryBatch, today time.Time) float64 {
	bonus := 0.0
	for _, ing := range ings {
		for _, b := range batches {
			if b.ItemID == nil || *b.ItemID != ing.ItemID || b.ExpireDate == nil {
				continue
			}
			daysLeft := dates.DaysBetween(today, *b.ExpireDate)
			if daysLeft <= ExpiringWindowDays {
				bonus += float64(max(0, ExpiringWindowDays-daysLeft))
			}
		}
	}
	return bonus
}

// Score combina cobertura, bono y faltante. No se acota: puede ser negativo.
func Score(coverage, bonus float64, gaps Gaps) float64 {
	return coverage + bonus*BonusWeight - gaps.Total().InexactFloat64()*GapPenalty
}

// Evaluate calcula cobertura, faltantes, bono y puntaje de una receta.
// Con preferExpiring en false el bono es 0.
func Evaluate(
	recipe *entity.Recipe,
	ings []entity.RecipeIngredient,
	onHand map[int64]decimal.Decimal,
	batches []*entity.InventoryBatch,
	today time.Time,
	preferExpiring bool,
) Scored {
	coverage, gaps := Coverage(ings, onHand)
	bonus := 0.0
	if preferExpiring {
		bonus = ExpiringBonus(ings, batches, today)
	}
	return Scored{
		Recipe:      recipe,
		Ingredients: ings,
		Coverage:    coverage,
		Gaps:        gaps,
		Bonus:       bonus,
		Score:       Score(coverage, bonus, gaps),
	}
}

// HasExcludedAllergen indica si la receta contiene algún alérgeno del conjunto excluido.
func HasExcludedAllergen(r *entity.Recipe, exclude map[string]struct{}) bool {
	if len(exclude) == 0 {
		return false
	}
	for tok := range r.AllergenSet() {
		if _, ok := exclude[tok]; ok {
			return true
		}
	}
	return false
}

// ExclusionSet normaliza la lista de alérgenos a excluir (sin espacios ni vacíos).
func ExclusionSet(allergens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(allergens))
	for _, a := range allergens {
		r := entity.Recipe{Allergens: a}
		for tok := range r.AllergenSet() {
			set[tok] = struct{}{}
		}
	}
	return set
}
