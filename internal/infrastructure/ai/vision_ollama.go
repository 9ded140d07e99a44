package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
	"github.com/jhoicas/Despensa-api/internal/application/vision"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/pkg/config"
)

// DefaultLabelMap traducción de etiquetas comunes de modelos en inglés al catálogo.
var DefaultLabelMap = map[string]string{
	"apple":    "Manzana",
	"banana":   "Banano",
	"carrot":   "Zanahoria",
	"egg":      "Huevo",
	"milk":     "Leche",
	"onion":    "Cebolla",
	"tomato":   "Tomate",
	"cheese":   "Queso",
	"potato":   "Papa",
	"broccoli": "Brócoli",
}

// maxPromptLabels etiquetas sugeridas al modelo como vocabulario.
const maxPromptLabels = 60

// OllamaDetector detector con un modelo multimodal local (Ollama /api/generate con images).
type OllamaDetector struct {
	endpoint     string
	model        string
	labelMapJSON string
	images       vision.ImageStore
	client       ollamaClient
}

var _ vision.Detector = (*OllamaDetector)(nil)

// NewOllamaDetector crea el detector a partir de VISION_LOCAL_* y VISION_LABEL_MAP_JSON.
func NewOllamaDetector(cfg config.ModelConfig, labelMapJSON string, images vision.ImageStore) *OllamaDetector {
	return &OllamaDetector{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		labelMapJSON: labelMapJSON,
		images:       images,
		client:       newOllamaClient(vision.DetectorLocal, cfg.Endpoint, cfg.Model, cfg.Timeout),
	}
}

func (d *OllamaDetector) ID() string   { return vision.DetectorLocal }
func (d *OllamaDetector) Name() string { return "Modelo local de visión" }

func (d *OllamaDetector) IsAvailable() (bool, string) {
	if d.endpoint == "" {
		return false, "VISION_LOCAL_ENDPOINT no configurado"
	}
	if d.model == "" {
		return false, "VISION_LOCAL_MODEL no configurado"
	}
	return true, ""
}

// labelMap combina el mapa por defecto con el configurado (el configurado gana).
func (d *OllamaDetector) labelMap() (map[string]string, error) {
	out := make(map[string]string, len(DefaultLabelMap))
	for k, v := range DefaultLabelMap {
		out[k] = v
	}
	if strings.TrimSpace(d.labelMapJSON) == "" {
		return out, nil
	}
	var custom map[string]string
	if err := json.Unmarshal([]byte(d.labelMapJSON), &custom); err != nil {
		return nil, backend.WrapError(backend.ErrConfigKind, d.ID(),
			fmt.Errorf("VISION_LABEL_MAP_JSON inválido: %w", err))
	}
	for k, v := range custom {
		out[k] = v
	}
	return out, nil
}

type labelsPayload struct {
	Detections *[]labelPayload `json:"detections"`
}

type labelPayload struct {
	Label string  `json:"label"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func (d *OllamaDetector) Detect(ctx context.Context, in vision.DetectInput) ([]entity.Detection, error) {
	labelMap, err := d.labelMap()
	if err != nil {
		return nil, err
	}
	img, err := d.images.Load(ctx, in.ImageID)
	if err != nil {
		return nil, fmt.Errorf("imagen %s: %w", in.ImageID, err)
	}

	snippet, err := d.client.generate(ctx, visionPrompt(in.Catalog), []string{base64.StdEncoding.EncodeToString(img)})
	if err != nil {
		return nil, err
	}
	var payload labelsPayload
	if err := json.Unmarshal([]byte(snippet), &payload); err != nil {
		return nil, invalid(d.ID(), "JSON del modelo inválido: %v", err)
	}
	if payload.Detections == nil {
		return nil, invalid(d.ID(), "la respuesta no trae detections")
	}

	labels := make([]vision.LabelScore, 0, len(*payload.Detections))
	for _, p := range *payload.Detections {
		label := p.Label
		if label == "" {
			label = p.Name
		}
		labels = append(labels, vision.LabelScore{Label: label, Score: p.Score})
	}
	return vision.GroupLabels(in.ImageID, "local", labels, labelMap, in.Catalog, in.Today, in.TopK), nil
}

func visionPrompt(catalog *vision.Catalog) string {
	var b strings.Builder
	b.WriteString("Identifica los alimentos visibles en la imagen de la nevera. ")
	b.WriteString("Devuelve un elemento por cada unidad visible.\n")
	if catalog != nil && catalog.Len() > 0 {
		names := make([]string, 0, catalog.Len())
		for i, it := range catalog.Items() {
			if i == maxPromptLabels {
				break
			}
			names = append(names, it.Name)
		}
		fmt.Fprintf(&b, "Usa preferiblemente estos nombres: %s.\n", strings.Join(names, ", "))
	}
	b.WriteString("Responde SOLO con JSON válido, sin markdown, con este formato exacto:\n")
	b.WriteString(`{"detections":[{"label":"Huevo","score":0.9}]}`)
	return b.String()
}
