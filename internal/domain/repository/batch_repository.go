package repository

import (
	"context"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
)

// BatchFilter filtros opcionales del listado de lotes. Los campos vacíos no filtran.
type BatchFilter struct {
	Location string
	Status   string
	Keyword  string // coincidencia parcial sobre el nombre del lote
}

// BatchRepository persistencia de lotes de inventario.
type BatchRepository interface {
	Create(ctx context.Context, b *entity.InventoryBatch) error
	GetByID(ctx context.Context, id string) (*entity.InventoryBatch, error)
	// GetForUpdate obtiene el lote y bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryBatch, error)
	Update(ctx context.Context, b *entity.InventoryBatch) error
	// List ordena por vencimiento ascendente; los lotes sin vencimiento van al final.
	List(ctx context.Context, f BatchFilter) ([]*entity.InventoryBatch, error)
	ListInStock(ctx context.Context) ([]*entity.InventoryBatch, error)
}
