package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/pkg/dates"
)

// DetectRequest body para POST /api/vision/detect.
type DetectRequest struct {
	ImageID  string `json:"image_id" validate:"required,max=64"`
	Provider string `json:"provider,omitempty"`
	TopK     int    `json:"top_k,omitempty" validate:"gte=0,lte=50"`
}

// DetectionResponse alimento detectado, pendiente de confirmar.
type DetectionResponse struct {
	TempID            string          `json:"temp_id"`
	ItemID            *int64          `json:"item_id"`
	ItemName          string          `json:"item_name"`
	Confidence        float64         `json:"confidence"`
	Quantity          decimal.Decimal `json:"quantity"`
	Unit              string          `json:"unit"`
	SuggestExpireDate string          `json:"suggest_expire_date,omitempty"`
	Location          string          `json:"location"`
}

// DetectResponse detecciones con los metadatos de degradación.
type DetectResponse struct {
	ImageID    string              `json:"image_id"`
	Detections []DetectionResponse `json:"detections"`
	Meta       backend.Meta        `json:"meta"`
}

// DetectionsFromEntities convierte las detecciones; nunca devuelve nil.
func DetectionsFromEntities(list []entity.Detection) []DetectionResponse {
	out := make([]DetectionResponse, 0, len(list))
	for _, d := range list {
		out = append(out, DetectionResponse{
			TempID: d.TempID, ItemID: d.ItemID, ItemName: d.ItemName, Confidence: d.Confidence,
			Quantity: d.Quantity, Unit: d.Unit, SuggestExpireDate: dates.Format(d.SuggestExpireDate),
			Location: d.Location,
		})
	}
	return out
}
