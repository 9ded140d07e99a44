package ai

import (
	"context"
	"encoding/json"
	"time"
)

// ollamaClient cliente mínimo de /api/generate (Ollama o servidores compatibles).
type ollamaClient struct {
	model  string
	poster jsonPoster
}

func newOllamaClient(backendID, endpoint, model string, timeout time.Duration) ollamaClient {
	return ollamaClient{model: model, poster: newJSONPoster(backendID, endpoint, "", "", timeout)}
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Images  []string      `json:"images,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// generate envía el prompt (y las imágenes en base64, si hay) y devuelve el JSON
// extraído del texto generado.
func (c ollamaClient) generate(ctx context.Context, prompt string, images []string) (string, error) {
	raw, err := c.poster.post(ctx, ollamaRequest{
		Model:   c.model,
		Prompt:  prompt,
		Images:  images,
		Stream:  false,
		Options: ollamaOptions{Temperature: 0.2},
	})
	if err != nil {
		return "", err
	}
	var resp ollamaResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", invalid(c.poster.backendID, "respuesta del modelo no es JSON: %v", err)
	}
	snippet := extractJSON(resp.Response)
	if snippet == "" {
		return "", invalid(c.poster.backendID, "el modelo no devolvió JSON (respuesta: %s)", truncate(resp.Response, 120))
	}
	return snippet, nil
}
