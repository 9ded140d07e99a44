package inventory

import (
	"context"

	"github.com/jhoicas/Despensa-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que el cambio de cantidad del lote y su evento se confirmen juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		eventRepo repository.InventoryEventRepository,
	) error) error
}
