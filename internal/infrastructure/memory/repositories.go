package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Despensa-api/internal/domain"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
	"github.com/jhoicas/Despensa-api/pkg/textnorm"
)

var (
	_ repository.ItemRepository           = (*ItemRepo)(nil)
	_ repository.BatchRepository          = (*BatchRepo)(nil)
	_ repository.InventoryEventRepository = (*EventRepo)(nil)
	_ repository.RecipeRepository         = (*RecipeRepo)(nil)
	_ repository.MenuRepository           = (*MenuRepo)(nil)
	_ repository.ShoppingRepository       = (*ShoppingRepo)(nil)
)

func copyBatch(b *entity.InventoryBatch) *entity.InventoryBatch {
	cp := *b
	return &cp
}

// ── Catálogo ─────────────────────────────────────────────────────────────────

// ItemRepo catálogo en memoria.
type ItemRepo struct{ s *Store }

func (r *ItemRepo) List(_ context.Context) ([]*entity.Item, error) {
	var out []*entity.Item
	r.s.read(func(st *state) {
		out = make([]*entity.Item, 0, len(st.items))
		for _, it := range st.items {
			cp := *it
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ItemRepo) GetByID(_ context.Context, id int64) (*entity.Item, error) {
	var out *entity.Item
	r.s.read(func(st *state) {
		if it, ok := st.items[id]; ok {
			cp := *it
			out = &cp
		}
	})
	return out, nil
}

// ── Lotes ────────────────────────────────────────────────────────────────────

// BatchRepo lotes en memoria.
type BatchRepo struct {
	s    *Store
	inTx bool
}

func (r *BatchRepo) Create(_ context.Context, b *entity.InventoryBatch) error {
	return r.s.write(r.inTx, func(st *state) error {
		if _, ok := st.batches[b.ID]; ok {
			return domain.ErrConflict
		}
		st.batches[b.ID] = copyBatch(b)
		return nil
	})
}

func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.InventoryBatch, error) {
	var out *entity.InventoryBatch
	r.s.read(func(st *state) {
		if b, ok := st.batches[id]; ok {
			out = copyBatch(b)
		}
	})
	return out, nil
}

// GetForUpdate en memoria el bloqueo lo da la transacción (txMu).
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryBatch, error) {
	return r.GetByID(ctx, id)
}

func (r *BatchRepo) Update(_ context.Context, b *entity.InventoryBatch) error {
	return r.s.write(r.inTx, func(st *state) error {
		if _, ok := st.batches[b.ID]; !ok {
			return domain.ErrNotFound
		}
		st.batches[b.ID] = copyBatch(b)
		return nil
	})
}

func (r *BatchRepo) List(_ context.Context, f repository.BatchFilter) ([]*entity.InventoryBatch, error) {
	var out []*entity.InventoryBatch
	r.s.read(func(st *state) {
		for _, b := range st.batches {
			if f.Location != "" && b.Location != f.Location {
				continue
			}
			if f.Status != "" && b.Status != f.Status {
				continue
			}
			if f.Keyword != "" && !textnorm.Contains(b.ItemNameSnapshot, f.Keyword) {
				continue
			}
			out = append(out, copyBatch(b))
		}
	})
	sortByExpiry(out)
	return out, nil
}

func (r *BatchRepo) ListInStock(ctx context.Context) ([]*entity.InventoryBatch, error) {
	return r.List(ctx, repository.BatchFilter{Status: entity.BatchStatusInStock})
}

// sortByExpiry vencimiento ascendente, sin vencimiento al final; desempata por alta e ID.
func sortByExpiry(bs []*entity.InventoryBatch) {
	sort.SliceStable(bs, func(i, j int) bool {
		a, b := bs[i], bs[j]
		switch {
		case a.ExpireDate == nil && b.ExpireDate != nil:
			return false
		case a.ExpireDate != nil && b.ExpireDate == nil:
			return true
		case a.ExpireDate != nil && !a.ExpireDate.Equal(*b.ExpireDate):
			return a.ExpireDate.Before(*b.ExpireDate)
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// ── Eventos ──────────────────────────────────────────────────────────────────

// EventRepo eventos en memoria (solo inserción).
type EventRepo struct {
	s    *Store
	inTx bool
}

func (r *EventRepo) Append(_ context.Context, e *entity.InventoryEvent) error {
	return r.s.write(r.inTx, func(st *state) error {
		cp := *e
		st.events = append(st.events, &cp)
		return nil
	})
}

func (r *EventRepo) ListByBatch(_ context.Context, batchID string) ([]*entity.InventoryEvent, error) {
	out := make([]*entity.InventoryEvent, 0)
	r.s.read(func(st *state) {
		for _, e := range st.events {
			if e.BatchID == batchID {
				cp := *e
				out = append(out, &cp)
			}
		}
	})
	return out, nil
}

func (r *EventRepo) ListRecent(_ context.Context, limit int) ([]*entity.InventoryEvent, error) {
	out := make([]*entity.InventoryEvent, 0, limit)
	r.s.read(func(st *state) {
		for i := len(st.events) - 1; i >= 0 && len(out) < limit; i-- {
			cp := *st.events[i]
			out = append(out, &cp)
		}
	})
	return out, nil
}

// ── Recetas ──────────────────────────────────────────────────────────────────

// RecipeRepo recetas en memoria.
type RecipeRepo struct{ s *Store }

func (r *RecipeRepo) List(_ context.Context) ([]*entity.Recipe, error) {
	var out []*entity.Recipe
	r.s.read(func(st *state) {
		out = make([]*entity.Recipe, 0, len(st.recipeOrder))
		for _, id := range st.recipeOrder {
			cp := *st.recipes[id]
			out = append(out, &cp)
		}
	})
	return out, nil
}

func (r *RecipeRepo) Ingredients(_ context.Context) (map[int64][]entity.RecipeIngredient, error) {
	out := make(map[int64][]entity.RecipeIngredient)
	r.s.read(func(st *state) {
		for id, ings := range st.ingredients {
			out[id] = append([]entity.RecipeIngredient(nil), ings...)
		}
	})
	return out, nil
}

func (r *RecipeRepo) Count(_ context.Context) (int, error) {
	n := 0
	r.s.read(func(st *state) { n = len(st.recipes) })
	return n, nil
}

// ── Menús ────────────────────────────────────────────────────────────────────

// MenuRepo menús en memoria. Los menús guardados no se modifican.
type MenuRepo struct {
	s    *Store
	inTx bool
}

func (r *MenuRepo) Create(_ context.Context, m *entity.MenuPlan) error {
	return r.s.write(r.inTx, func(st *state) error {
		if _, ok := st.menus[m.ID]; ok {
			return domain.ErrConflict
		}
		st.menus[m.ID] = copyMenu(m)
		return nil
	})
}

func (r *MenuRepo) GetByID(_ context.Context, id string) (*entity.MenuPlan, error) {
	var out *entity.MenuPlan
	r.s.read(func(st *state) {
		if m, ok := st.menus[id]; ok {
			out = copyMenu(m)
		}
	})
	return out, nil
}

func copyMenu(m *entity.MenuPlan) *entity.MenuPlan {
	cp := *m
	cp.Items = make([]entity.MenuPlanItem, len(m.Items))
	for i, it := range m.Items {
		it.Explain = append([]string(nil), it.Explain...)
		cp.Items[i] = it
	}
	cp.Constraints.AllergensExclude = append([]string(nil), m.Constraints.AllergensExclude...)
	return &cp
}

// ── Lista de compras ─────────────────────────────────────────────────────────

// ShoppingRepo líneas de compra en memoria.
type ShoppingRepo struct {
	s    *Store
	inTx bool
}

func (r *ShoppingRepo) CreateMany(_ context.Context, items []entity.ShoppingListItem) error {
	return r.s.write(r.inTx, func(st *state) error {
		for _, it := range items {
			cp := it
			st.shopping[it.ID] = &cp
		}
		return nil
	})
}

func (r *ShoppingRepo) ListByMenu(_ context.Context, menuID string) ([]*entity.ShoppingListItem, error) {
	out := make([]*entity.ShoppingListItem, 0)
	r.s.read(func(st *state) {
		for _, it := range st.shopping {
			if it.MenuID == menuID {
				cp := *it
				out = append(out, &cp)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Checked != out[j].Checked {
			return !out[i].Checked
		}
		if out[i].ItemNameSnapshot != out[j].ItemNameSnapshot {
			return out[i].ItemNameSnapshot < out[j].ItemNameSnapshot
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ShoppingRepo) SetChecked(_ context.Context, id string, checked bool) (*entity.ShoppingListItem, error) {
	var out *entity.ShoppingListItem
	err := r.s.write(r.inTx, func(st *state) error {
		it, ok := st.shopping[id]
		if !ok {
			return nil
		}
		it.Checked = checked
		cp := *it
		out = &cp
		return nil
	})
	return out, err
}
