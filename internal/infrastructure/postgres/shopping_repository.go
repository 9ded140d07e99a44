package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
)

var _ repository.ShoppingRepository = (*ShoppingRepo)(nil)

// ShoppingRepo listas de compras sobre PostgreSQL.
type ShoppingRepo struct {
	q Querier
}

// NewShoppingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShoppingRepository(q Querier) *ShoppingRepo {
	return &ShoppingRepo{q: q}
}

const shoppingColumns = `id, menu_id, item_id, item_name_snapshot, need_qty, unit, reason, checked`

func scanShopping(row pgx.Row) (*entity.ShoppingListItem, error) {
	var it entity.ShoppingListItem
	err := row.Scan(&it.ID, &it.MenuID, &it.ItemID, &it.ItemNameSnapshot, &it.NeedQty, &it.Unit, &it.Reason, &it.Checked)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// CreateMany inserta todas las líneas en un solo batch.
func (r *ShoppingRepo) CreateMany(ctx context.Context, items []entity.ShoppingListItem) error {
	if len(items) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, it := range items {
		b.Queue(`INSERT INTO shopping_list_items (`+shoppingColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, it.MenuID, it.ItemID, it.ItemNameSnapshot, it.NeedQty, it.Unit, it.Reason, it.Checked)
	}
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("create shopping items: %w", err)
	}
	return nil
}

// ListByMenu líneas del menú: pendientes primero, luego por nombre.
func (r *ShoppingRepo) ListByMenu(ctx context.Context, menuID string) ([]*entity.ShoppingListItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+shoppingColumns+` FROM shopping_list_items
		WHERE menu_id = $1 ORDER BY checked, item_name_snapshot, id`, menuID)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()
	var list []*entity.ShoppingListItem
	for rows.Next() {
		it, err := scanShopping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// SetChecked marca o desmarca una línea. Si no existe retorna (nil, nil).
func (r *ShoppingRepo) SetChecked(ctx context.Context, id string, checked bool) (*entity.ShoppingListItem, error) {
	it, err := scanShopping(r.q.QueryRow(ctx, `
		UPDATE shopping_list_items SET checked = $2 WHERE id = $1
		RETURNING `+shoppingColumns, id, checked))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("set checked: %w", err)
	}
	return it, nil
}
