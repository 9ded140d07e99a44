package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Despensa-api/internal/application/vision"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/pkg/config"
)

// HTTPDetector detector de alimentos sobre un servicio HTTP genérico.
// Envía {image_id, image_base64, top_k} y espera {"detections": [...]}.
type HTTPDetector struct {
	endpoint string
	images   vision.ImageStore
	poster   jsonPoster
}

var _ vision.Detector = (*HTTPDetector)(nil)

// NewHTTPDetector crea el detector a partir de VISION_HTTP_*.
func NewHTTPDetector(cfg config.EndpointConfig, images vision.ImageStore) *HTTPDetector {
	return &HTTPDetector{
		endpoint: cfg.Endpoint,
		images:   images,
		poster:   newJSONPoster(vision.DetectorHTTP, cfg.Endpoint, cfg.HeadersJSON, "VISION_HTTP_HEADERS_JSON", cfg.Timeout),
	}
}

func (d *HTTPDetector) ID() string   { return vision.DetectorHTTP }
func (d *HTTPDetector) Name() string { return "Servicio HTTP de visión" }

func (d *HTTPDetector) IsAvailable() (bool, string) {
	if d.endpoint == "" {
		return false, "VISION_HTTP_ENDPOINT no configurado"
	}
	return true, ""
}

type detectRequest struct {
	ImageID     string `json:"image_id"`
	ImageBase64 string `json:"image_base64"`
	TopK        int    `json:"top_k"`
}

type detectResponse struct {
	Detections *[]detectionPayload `json:"detections"`
}

type detectionPayload struct {
	TempID            string   `json:"temp_id"`
	Name              string   `json:"name"`
	ItemName          string   `json:"item_name"`
	Confidence        *float64 `json:"confidence"`
	Quantity          *float64 `json:"quantity"`
	Unit              string   `json:"unit"`
	SuggestExpireDate string   `json:"suggest_expire_date"`
	SuggestExpireDays *int     `json:"suggest_expire_days"`
	Location          string   `json:"location"`
}

func (d *HTTPDetector) Detect(ctx context.Context, in vision.DetectInput) ([]entity.Detection, error) {
	img, err := d.images.Load(ctx, in.ImageID)
	if err != nil {
		return nil, fmt.Errorf("imagen %s: %w", in.ImageID, err)
	}
	raw, err := d.poster.post(ctx, detectRequest{
		ImageID:     in.ImageID,
		ImageBase64: base64.StdEncoding.EncodeToString(img),
		TopK:        in.TopK,
	})
	if err != nil {
		return nil, err
	}
	var resp detectResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, invalid(d.ID(), "respuesta no es JSON válido: %v", err)
	}
	if resp.Detections == nil {
		return nil, invalid(d.ID(), "la respuesta no trae detections")
	}

	out := make([]entity.Detection, 0, len(*resp.Detections))
	for idx, p := range *resp.Detections {
		name := p.Name
		if name == "" {
			name = p.ItemName
		}
		out = append(out, vision.Normalize(in.ImageID, idx, vision.ExternalDetection{
			TempID:            p.TempID,
			Name:              name,
			Confidence:        p.Confidence,
			Quantity:          p.Quantity,
			Unit:              p.Unit,
			SuggestExpireDate: p.SuggestExpireDate,
			SuggestExpireDays: p.SuggestExpireDays,
			Location:          p.Location,
		}, in.Catalog, in.Today))
		if in.TopK > 0 && len(out) == in.TopK {
			break
		}
	}
	return out, nil
}
