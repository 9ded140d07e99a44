package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/pkg/dates"
)

// CreateBatchRequest body para POST /api/inventory/batches. Fechas en formato YYYY-MM-DD.
type CreateBatchRequest struct {
	ItemID       *int64          `json:"item_id,omitempty"`
	ItemName     string          `json:"item_name,omitempty" validate:"required_without=ItemID,max=120"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit,omitempty"`
	PurchaseDate string          `json:"purchase_date,omitempty"`
	ExpireDate   string          `json:"expire_date,omitempty"`
	Location     string          `json:"location,omitempty" validate:"max=40"`
	SourceType   string          `json:"source_type,omitempty"`
	SourceRefID  string          `json:"source_ref_id,omitempty"`
	Note         string          `json:"note,omitempty"`
}

// BulkCreateRequest body para POST /api/inventory/batches/bulk (detecciones confirmadas).
type BulkCreateRequest struct {
	SourceType  string            `json:"source_type,omitempty"`
	SourceRefID string            `json:"source_ref_id,omitempty"`
	Items       []BulkItemRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

// BulkItemRequest una detección confirmada. suggest_expire_date se acepta como alias de expire_date.
type BulkItemRequest struct {
	ItemID            *int64           `json:"item_id,omitempty"`
	ItemName          string           `json:"item_name,omitempty" validate:"required_without=ItemID,max=120"`
	Quantity          *decimal.Decimal `json:"quantity,omitempty"`
	Unit              string           `json:"unit,omitempty"`
	ExpireDate        string           `json:"expire_date,omitempty"`
	SuggestExpireDate string           `json:"suggest_expire_date,omitempty"`
	Location          string           `json:"location,omitempty" validate:"max=40"`
}

// AmountRequest body para consumir o descartar.
type AmountRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Note     string          `json:"note,omitempty" validate:"max=500"`
}

// AdjustBatchRequest body para PATCH /api/inventory/batches/:id. Campos ausentes no se tocan.
type AdjustBatchRequest struct {
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	Location   *string          `json:"location,omitempty"`
	ExpireDate *string          `json:"expire_date,omitempty"`
	Unit       *string          `json:"unit,omitempty"`
	Status     *string          `json:"status,omitempty"`
	Note       string           `json:"note,omitempty"`
}

// BatchResponse lote de inventario.
type BatchResponse struct {
	ID           string          `json:"batch_id"`
	ItemID       *int64          `json:"item_id"`
	ItemName     string          `json:"item_name_snapshot"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	PurchaseDate string          `json:"purchase_date,omitempty"`
	ExpireDate   string          `json:"expire_date,omitempty"`
	Location     string          `json:"location"`
	Status       string          `json:"status"`
	SourceType   string          `json:"source_type"`
	SourceRefID  string          `json:"source_ref_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ExpiringBatchResponse lote por vencer con los días restantes.
type ExpiringBatchResponse struct {
	BatchResponse
	DaysLeft int `json:"days_left"`
}

// EventResponse evento del libro de inventario.
type EventResponse struct {
	ID        string           `json:"event_id"`
	BatchID   string           `json:"batch_id"`
	Type      string           `json:"event_type"`
	Delta     *decimal.Decimal `json:"delta_quantity"`
	Note      string           `json:"note"`
	Actor     string           `json:"actor"`
	CreatedAt time.Time        `json:"created_at"`
}

// BatchFromEntity convierte un lote de dominio.
func BatchFromEntity(b *entity.InventoryBatch) BatchResponse {
	return BatchResponse{
		ID:           b.ID,
		ItemID:       b.ItemID,
		ItemName:     b.ItemNameSnapshot,
		Quantity:     b.Quantity,
		Unit:         b.Unit,
		PurchaseDate: dates.Format(b.PurchaseDate),
		ExpireDate:   dates.Format(b.ExpireDate),
		Location:     b.Location,
		Status:       b.Status,
		SourceType:   b.SourceType,
		SourceRefID:  b.SourceRefID,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// BatchesFromEntities convierte una lista de lotes; nunca devuelve nil.
func BatchesFromEntities(list []*entity.InventoryBatch) []BatchResponse {
	out := make([]BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, BatchFromEntity(b))
	}
	return out
}

// EventFromEntity convierte un evento de dominio.
func EventFromEntity(e *entity.InventoryEvent) EventResponse {
	return EventResponse{
		ID: e.ID, BatchID: e.BatchID, Type: e.Type, Delta: e.Delta,
		Note: e.Note, Actor: e.Actor, CreatedAt: e.CreatedAt,
	}
}

// EventsFromEntities convierte una lista de eventos; nunca devuelve nil.
func EventsFromEntities(list []*entity.InventoryEvent) []EventResponse {
	out := make([]EventResponse, 0, len(list))
	for _, e := range list {
		out = append(out, EventFromEntity(e))
	}
	return out
}

// ExpiringFromEntities convierte los lotes por vencer; nunca devuelve nil.
func ExpiringFromEntities(list []entity.ExpiringBatch) []ExpiringBatchResponse {
	out := make([]ExpiringBatchResponse, 0, len(list))
	for i := range list {
		out = append(out, ExpiringBatchResponse{
			BatchResponse: BatchFromEntity(&list[i].InventoryBatch),
			DaysLeft:      list[i].DaysLeft,
		})
	}
	return out
}
