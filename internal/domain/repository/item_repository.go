package repository

import (
	"context"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
)

// ItemRepository acceso de solo lectura al catálogo de alimentos.
type ItemRepository interface {
	List(ctx context.Context) ([]*entity.Item, error)
	GetByID(ctx context.Context, id int64) (*entity.Item, error)
}
