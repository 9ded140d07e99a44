package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Detection alimento reconocido en una imagen, pendiente de confirmación para su ingreso.
type Detection struct {
	TempID            string          `json:"temp_id"`
	ItemID            *int64          `json:"item_id"`
	ItemName          string          `json:"item_name"`
	Confidence        float64         `json:"confidence"` // [0, 1]
	Quantity          decimal.Decimal `json:"quantity"`
	Unit              string          `json:"unit"`
	SuggestExpireDate *time.Time      `json:"suggest_expire_date"`
	Location          string          `json:"location"`
}
