package menu

import (
	"context"
	"sort"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	domainmenu "github.com/jhoicas/Despensa-api/internal/domain/menu"
	"github.com/jhoicas/Despensa-api/pkg/dates"
)

// DefaultTopK candidatos enviados a un planificador externo.
const DefaultTopK = 10

var defaultExternalExplain = []string{"Recomendado por planificador externo", "Ajustado al inventario actual"}

// planSupport preparación y posproceso comunes a los planificadores externos:
// arma el payload, valida la selección y construye franjas y faltantes.
type planSupport struct {
	topK int
}

// request arma inventario y candidatos para el planificador externo.
func (s planSupport) request(req Request, snap *Snapshot) SelectionRequest {
	return SelectionRequest{
		Days:        req.Days,
		Servings:    req.Servings,
		Constraints: req.Constraints,
		Inventory:   s.inventory(snap),
		Candidates:  s.candidates(req, snap),
		TopK:        s.topK,
	}
}

func (s planSupport) inventory(snap *Snapshot) []InventoryEntry {
	out := make([]InventoryEntry, 0, len(snap.Batches))
	for _, b := range snap.Batches {
		e := InventoryEntry{ItemID: b.ItemID, ItemName: b.ItemNameSnapshot, Quantity: b.Quantity.InexactFloat64(), Unit: b.Unit}
		if b.ExpireDate != nil {
			d := dates.Format(b.ExpireDate)
			e.ExpireDate = &d
		}
		out = append(out, e)
	}
	return out
}

// candidates top-K por cobertura - 0.05*faltante (sin bono), conservando el orden del catálogo.
func (s planSupport) candidates(req Request, snap *Snapshot) []Candidate {
	scored := ScoreRecipes(snap, req.Constraints, false)
	ranked := make([]domainmenu.Scored, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	keep := make(map[int64]bool, s.topK)
	for i := 0; i < len(ranked) && i < s.topK; i++ {
		keep[ranked[i].Recipe.ID] = true
	}

	out := make([]Candidate, 0, len(keep))
	for _, sc := range scored {
		if !keep[sc.Recipe.ID] {
			continue
		}
		c := Candidate{RecipeID: sc.Recipe.ID, Name: sc.Recipe.Name, Allergens: sc.Recipe.Allergens}
		for _, ing := range sc.Ingredients {
			name := ""
			if it, ok := snap.Items[ing.ItemID]; ok {
				name = it.Name
			}
			c.Ingredients = append(c.Ingredients, CandidateIngredient{
				ItemID: ing.ItemID, ItemName: name, Quantity: ing.Quantity.InexactFloat64(), Unit: ing.Unit,
			})
		}
		out = append(out, c)
	}
	return out
}

// build valida la selección y arma el plan. Se descartan recetas desconocidas, repetidas
// o con alérgenos vetados; si no queda ninguna la respuesta es inválida.
func (s planSupport) build(backendID, source string, req Request, snap *Snapshot, sel *Selection) (*Plan, error) {
	if sel == nil || len(sel.Selected) == 0 {
		return nil, backend.NewError(backend.ErrResponseInvalidKind, backendID, "la respuesta no trae la lista selected")
	}
	recipes := make(map[int64]*entity.Recipe, len(snap.Recipes))
	for _, r := range snap.Recipes {
		recipes[r.ID] = r
	}
	exclude := domainmenu.ExclusionSet(req.Constraints.AllergensExclude)
	onHand := domainmenu.InventoryMap(snap.Batches)

	plan := &Plan{Gaps: make(domainmenu.Gaps), Source: source}
	limit := max(1, req.Days*len(entity.MealTypes))
	seen := make(map[int64]bool)
	valid := 0
	for _, pick := range sel.Selected {
		r, ok := recipes[pick.RecipeID]
		if !ok || seen[r.ID] || domainmenu.HasExcludedAllergen(r, exclude) {
			continue
		}
		seen[r.ID] = true
		valid++
		if len(plan.Items) >= limit {
			continue
		}
		explainLines := pick.Explain
		if len(explainLines) == 0 {
			explainLines = append([]string(nil), defaultExternalExplain...)
		}
		date, meal := slotAt(snap.Today, len(plan.Items))
		plan.Items = append(plan.Items, entity.MenuPlanItem{
			Date:       date,
			MealType:   meal,
			RecipeID:   r.ID,
			RecipeName: r.Name,
			Explain:    explainLines,
			Nutrition:  r.Nutrition,
		})
		_, gaps := domainmenu.Coverage(snap.Ingredients[r.ID], onHand)
		plan.Gaps.Merge(gaps)
	}
	if valid == 0 {
		return nil, backend.NewError(backend.ErrResponseInvalidKind, backendID, "ningún recipe_id válido en selected")
	}
	return plan, nil
}

// ExternalPlanner delega la elección de recetas en un RecipeSelector (HTTP o modelo local)
// y reutiliza planSupport para todo lo demás.
type ExternalPlanner struct {
	id       string
	name     string
	source   string
	selector RecipeSelector
	support  planSupport
}

// NewExternalPlanner construye un planificador externo. topK <= 0 usa DefaultTopK.
func NewExternalPlanner(id, name, source string, selector RecipeSelector, topK int) *ExternalPlanner {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ExternalPlanner{id: id, name: name, source: source, selector: selector, support: planSupport{topK: topK}}
}

func (p *ExternalPlanner) ID() string                  { return p.id }
func (p *ExternalPlanner) Name() string                { return p.name }
func (p *ExternalPlanner) IsAvailable() (bool, string) { return p.selector.Available() }

// Plan consulta al selector y arma el plan con las recetas válidas elegidas.
func (p *ExternalPlanner) Plan(ctx context.Context, req Request, snap *Snapshot) (*Plan, error) {
	sel, err := p.selector.Select(ctx, p.support.request(req, snap))
	if err != nil {
		return nil, err
	}
	return p.support.build(p.id, p.source, req, snap, sel)
}
