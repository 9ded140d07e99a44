package menu

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	domainmenu "github.com/jhoicas/Despensa-api/internal/domain/menu"
	"github.com/jhoicas/Despensa-api/pkg/dates"
)

// IDs de los planificadores registrados.
const (
	PlannerGreedy = "greedy"
	PlannerHTTP   = "http"
	PlannerLocal  = "local"
)

// Request parámetros de generación de un menú.
type Request struct {
	Days        int
	Servings    int
	Constraints entity.MenuConstraints
	Planner     string
}

// Snapshot vista consistente de catálogo, recetas e inventario en stock al generar.
type Snapshot struct {
	Items       map[int64]*entity.Item
	Recipes     []*entity.Recipe
	Ingredients map[int64][]entity.RecipeIngredient
	Batches     []*entity.InventoryBatch
	Today       time.Time
}

// Plan resultado de un planificador, todavía sin persistir.
type Plan struct {
	Items  []entity.MenuPlanItem
	Gaps   domainmenu.Gaps
	Source string // origen de la lista de compras
}

// Planner estrategia de armado de menús registrable en el protocolo de backends.
type Planner interface {
	backend.Backend
	Plan(ctx context.Context, req Request, snap *Snapshot) (*Plan, error)
}

// slotCount franjas a llenar: días*2 acotado por los candidatos, mínimo 1.
func slotCount(days, candidates int) int {
	return max(1, min(days*len(entity.MealTypes), candidates))
}

// slotAt fecha y comida de la franja i (almuerzo/cena alternados, el día avanza cada 2).
func slotAt(today time.Time, i int) (time.Time, string) {
	n := len(entity.MealTypes)
	return dates.AddDays(today, i/n), entity.MealTypes[i%n]
}

// ── Greedy ───────────────────────────────────────────────────────────────────

// GreedyPlanner planificador base: puntúa todas las recetas y toma las mejores en una pasada.
type GreedyPlanner struct{}

// NewGreedyPlanner construye el planificador base.
func NewGreedyPlanner() *GreedyPlanner { return &GreedyPlanner{} }

func (p *GreedyPlanner) ID() string                  { return PlannerGreedy }
func (p *GreedyPlanner) Name() string                { return "Planificador voraz (cobertura de inventario)" }
func (p *GreedyPlanner) IsAvailable() (bool, string) { return true, "" }

// Plan excluye recetas con alérgenos vetados, ordena por puntaje (orden estable) y asigna
// cada receta a lo sumo una vez. Los faltantes de las recetas asignadas se suman por ítem.
// Sin recetas elegibles devuelve un plan vacío.
func (p *GreedyPlanner) Plan(_ context.Context, req Request, snap *Snapshot) (*Plan, error) {
	scored := ScoreRecipes(snap, req.Constraints, req.Constraints.PrefersExpiring())
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	plan := &Plan{Gaps: make(domainmenu.Gaps), Source: entity.ShoppingSourceMenuEngine}
	total := slotCount(req.Days, len(scored))
	used := make(map[int64]bool, total)
	idx := 0
	for len(plan.Items) < total {
		for idx < len(scored) && used[scored[idx].Recipe.ID] {
			idx++
		}
		if idx >= len(scored) {
			break
		}
		s := scored[idx]
		used[s.Recipe.ID] = true
		date, meal := slotAt(snap.Today, len(plan.Items))
		plan.Items = append(plan.Items, entity.MenuPlanItem{
			Date:       date,
			MealType:   meal,
			RecipeID:   s.Recipe.ID,
			RecipeName: s.Recipe.Name,
			Explain:    explain(s),
			Nutrition:  s.Recipe.Nutrition,
		})
		plan.Gaps.Merge(s.Gaps)
		idx++
	}
	return plan, nil
}

// ScoreRecipes evalúa todas las recetas no excluidas por alérgenos en el orden del catálogo.
func ScoreRecipes(snap *Snapshot, c entity.MenuConstraints, preferExpiring bool) []domainmenu.Scored {
	exclude := domainmenu.ExclusionSet(c.AllergensExclude)
	onHand := domainmenu.InventoryMap(snap.Batches)
	out := make([]domainmenu.Scored, 0, len(snap.Recipes))
	for _, r := range snap.Recipes {
		if domainmenu.HasExcludedAllergen(r, exclude) {
			continue
		}
		out = append(out, domainmenu.Evaluate(r, snap.Ingredients[r.ID], onHand, snap.Batches, snap.Today, preferExpiring))
	}
	return out
}

func explain(s domainmenu.Scored) []string {
	first := "Alta cobertura de inventario"
	if len(s.Gaps) > 0 {
		first = fmt.Sprintf("Cobertura %d%%, faltante reducido", int(math.Round(s.Coverage*100)))
	}
	second := "Usa ingredientes habituales"
	if s.Bonus > 0 {
		second = "Incluye lotes por vencer, acelera su consumo"
	}
	return []string{first, second}
}
