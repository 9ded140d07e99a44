package ai

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/Despensa-api/internal/application/menu"
	"github.com/jhoicas/Despensa-api/pkg/config"
)

// HTTPPlannerSelector implementa menu.RecipeSelector contra un servicio HTTP genérico.
// Envía {days, servings, constraints, inventory, candidates, top_k} y espera {"selected": [...]}.
type HTTPPlannerSelector struct {
	endpoint string
	poster   jsonPoster
}

var _ menu.RecipeSelector = (*HTTPPlannerSelector)(nil)

// NewHTTPPlannerSelector crea el adaptador a partir de PLANNER_HTTP_*.
func NewHTTPPlannerSelector(cfg config.EndpointConfig) *HTTPPlannerSelector {
	return &HTTPPlannerSelector{
		endpoint: cfg.Endpoint,
		poster:   newJSONPoster(menu.PlannerHTTP, cfg.Endpoint, cfg.HeadersJSON, "PLANNER_HTTP_HEADERS_JSON", cfg.Timeout),
	}
}

func (s *HTTPPlannerSelector) Available() (bool, string) {
	if s.endpoint == "" {
		return false, "PLANNER_HTTP_ENDPOINT no configurado"
	}
	return true, ""
}

func (s *HTTPPlannerSelector) Select(ctx context.Context, req menu.SelectionRequest) (*menu.Selection, error) {
	raw, err := s.poster.post(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeSelection(menu.PlannerHTTP, raw)
}

type selectionPayload struct {
	Selected *[]selectedPayload `json:"selected"`
}

type selectedPayload struct {
	RecipeID *int64          `json:"recipe_id"`
	Explain  json.RawMessage `json:"explain"`
}

// decodeSelection interpreta {"selected": [{recipe_id, explain}]}. Explain puede venir como
// lista o como texto suelto. Entradas sin recipe_id se descartan.
func decodeSelection(backendID string, raw []byte) (*menu.Selection, error) {
	var payload selectionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, invalid(backendID, "respuesta no es JSON válido: %v", err)
	}
	if payload.Selected == nil || len(*payload.Selected) == 0 {
		return nil, invalid(backendID, "la respuesta no trae la lista selected")
	}
	sel := &menu.Selection{Selected: make([]menu.SelectedRecipe, 0, len(*payload.Selected))}
	for _, p := range *payload.Selected {
		if p.RecipeID == nil {
			continue
		}
		sel.Selected = append(sel.Selected, menu.SelectedRecipe{
			RecipeID: *p.RecipeID,
			Explain:  explainLines(p.Explain),
		})
	}
	return sel, nil
}
