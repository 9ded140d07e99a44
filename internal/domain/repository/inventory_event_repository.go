package repository

import (
	"context"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
)

// InventoryEventRepository libro de eventos (solo inserción).
type InventoryEventRepository interface {
	Append(ctx context.Context, e *entity.InventoryEvent) error
	// ListByBatch devuelve los eventos del lote en orden cronológico.
	ListByBatch(ctx context.Context, batchID string) ([]*entity.InventoryEvent, error)
	// ListRecent devuelve los últimos eventos, más recientes primero.
	ListRecent(ctx context.Context, limit int) ([]*entity.InventoryEvent, error)
}
