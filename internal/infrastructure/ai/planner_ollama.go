package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhoicas/Despensa-api/internal/application/menu"
	"github.com/jhoicas/Despensa-api/pkg/config"
)

// OllamaPlannerSelector implementa menu.RecipeSelector con un modelo local (Ollama /api/generate).
type OllamaPlannerSelector struct {
	endpoint string
	model    string
	client   ollamaClient
}

var _ menu.RecipeSelector = (*OllamaPlannerSelector)(nil)

// NewOllamaPlannerSelector crea el adaptador a partir de PLANNER_LOCAL_*.
func NewOllamaPlannerSelector(cfg config.ModelConfig) *OllamaPlannerSelector {
	return &OllamaPlannerSelector{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		client:   newOllamaClient(menu.PlannerLocal, cfg.Endpoint, cfg.Model, cfg.Timeout),
	}
}

func (s *OllamaPlannerSelector) Available() (bool, string) {
	if s.endpoint == "" {
		return false, "PLANNER_LOCAL_ENDPOINT no configurado"
	}
	if s.model == "" {
		return false, "PLANNER_LOCAL_MODEL no configurado"
	}
	return true, ""
}

func (s *OllamaPlannerSelector) Select(ctx context.Context, req menu.SelectionRequest) (*menu.Selection, error) {
	prompt, err := plannerPrompt(req)
	if err != nil {
		return nil, err
	}
	snippet, err := s.client.generate(ctx, prompt, nil)
	if err != nil {
		return nil, err
	}
	return decodeSelection(menu.PlannerLocal, []byte(snippet))
}

func plannerPrompt(req menu.SelectionRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("AI: serializar contexto del menú: %w", err)
	}
	var b strings.Builder
	b.WriteString("Eres un planificador de menús para el hogar. ")
	fmt.Fprintf(&b, "Elige hasta %d recetas (almuerzo y cena por día) entre los candidatos, ", req.Days*2)
	b.WriteString("priorizando las que usan ingredientes disponibles o próximos a vencer ")
	b.WriteString("y respetando los alérgenos excluidos.\n")
	b.WriteString("Responde SOLO con JSON válido, sin markdown, con este formato exacto:\n")
	b.WriteString(`{"selected":[{"recipe_id":1,"explain":["motivo 1","motivo 2"]}]}`)
	b.WriteString("\n\nContexto:\n")
	b.Write(data)
	return b.String(), nil
}
