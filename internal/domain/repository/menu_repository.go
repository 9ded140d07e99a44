package repository

import (
	"context"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
)

// MenuRepository persistencia de menús con sus franjas.
type MenuRepository interface {
	// Create guarda el menú y todas sus franjas.
	Create(ctx context.Context, m *entity.MenuPlan) error
	GetByID(ctx context.Context, id string) (*entity.MenuPlan, error)
}

// ShoppingRepository persistencia de la lista de compras de cada menú.
type ShoppingRepository interface {
	CreateMany(ctx context.Context, items []entity.ShoppingListItem) error
	// ListByMenu ordena por marcado y luego por nombre.
	ListByMenu(ctx context.Context, menuID string) ([]*entity.ShoppingListItem, error)
	// SetChecked devuelve nil, nil si la línea no existe.
	SetChecked(ctx context.Context, id string, checked bool) (*entity.ShoppingListItem, error)
}
