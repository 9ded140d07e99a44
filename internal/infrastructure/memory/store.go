// Package memory implementa los repositorios sobre estructuras en memoria protegidas por mutex.
// Se usa con STORE_DRIVER=memory (demos, desarrollo) y en los tests de casos de uso.
package memory

import (
	"context"
	"io"
	"sync"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
	"github.com/jhoicas/Despensa-api/pkg/catalog"
)

// state datos del almacén. items, recipes e ingredients son de referencia y no cambian
// dentro de una transacción.
type state struct {
	items       map[int64]*entity.Item
	recipes     map[int64]*entity.Recipe
	recipeOrder []int64
	ingredients map[int64][]entity.RecipeIngredient
	batches     map[string]*entity.InventoryBatch
	events      []*entity.InventoryEvent
	menus       map[string]*entity.MenuPlan
	shopping    map[string]*entity.ShoppingListItem
}

func newState() *state {
	return &state{
		items:       make(map[int64]*entity.Item),
		recipes:     make(map[int64]*entity.Recipe),
		ingredients: make(map[int64][]entity.RecipeIngredient),
		batches:     make(map[string]*entity.InventoryBatch),
		menus:       make(map[string]*entity.MenuPlan),
		shopping:    make(map[string]*entity.ShoppingListItem),
	}
}

// clone copia lo mutable para poder restaurarlo en un Rollback.
func (s *state) clone() *state {
	c := *s
	c.batches = make(map[string]*entity.InventoryBatch, len(s.batches))
	for k, b := range s.batches {
		c.batches[k] = copyBatch(b)
	}
	c.events = append([]*entity.InventoryEvent(nil), s.events...)
	c.menus = make(map[string]*entity.MenuPlan, len(s.menus))
	for k, m := range s.menus {
		c.menus[k] = m
	}
	c.shopping = make(map[string]*entity.ShoppingListItem, len(s.shopping))
	for k, it := range s.shopping {
		cp := *it
		c.shopping[k] = &cp
	}
	return &c
}

// Store almacén en memoria. txMu serializa transacciones (y escrituras fuera de ellas);
// mu protege cada acceso individual a los mapas.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// AddItem agrega un ítem al catálogo.
func (s *Store) AddItem(it entity.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := it
	s.st.items[it.ID] = &cp
}

// AddRecipe agrega una receta con sus ingredientes.
func (s *Store) AddRecipe(r entity.Recipe, ings []entity.RecipeIngredient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := r
	if _, ok := s.st.recipes[r.ID]; !ok {
		s.st.recipeOrder = append(s.st.recipeOrder, r.ID)
	}
	s.st.recipes[r.ID] = &cp
	list := make([]entity.RecipeIngredient, len(ings))
	for i, ing := range ings {
		ing.RecipeID = r.ID
		list[i] = ing
	}
	s.st.ingredients[r.ID] = list
}

// LoadCatalog carga ítems y recetas desde el JSON de catálogo.
func (s *Store) LoadCatalog(r io.Reader) error {
	f, err := catalog.Decode(r)
	if err != nil {
		return err
	}
	for _, it := range f.Items {
		s.AddItem(it.Entity())
	}
	for _, rc := range f.Recipes {
		s.AddRecipe(rc.Entity())
	}
	return nil
}

// Items repositorio del catálogo.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Batches repositorio de lotes fuera de transacción.
func (s *Store) Batches() *BatchRepo { return &BatchRepo{s: s} }

// Events repositorio de eventos fuera de transacción.
func (s *Store) Events() *EventRepo { return &EventRepo{s: s} }

// Recipes repositorio de recetas.
func (s *Store) Recipes() *RecipeRepo { return &RecipeRepo{s: s} }

// Menus repositorio de menús fuera de transacción.
func (s *Store) Menus() *MenuRepo { return &MenuRepo{s: s} }

// Shopping repositorio de listas de compras fuera de transacción.
func (s *Store) Shopping() *ShoppingRepo { return &ShoppingRepo{s: s} }

// Run ejecuta fn en una transacción: si fn falla, se restaura el estado previo.
func (s *Store) Run(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	eventRepo repository.InventoryEventRepository,
) error) error {
	return s.tx(ctx, func() error {
		return fn(&BatchRepo{s: s, inTx: true}, &EventRepo{s: s, inTx: true})
	})
}

// RunMenu ejecuta fn con los repositorios de menú en una transacción.
func (s *Store) RunMenu(ctx context.Context, fn func(
	menuRepo repository.MenuRepository,
	shoppingRepo repository.ShoppingRepository,
) error) error {
	return s.tx(ctx, func() error {
		return fn(&MenuRepo{s: s, inTx: true}, &ShoppingRepo{s: s, inTx: true})
	})
}

// ReadSnapshot ejecuta fn sin escrituras concurrentes: todas las lecturas ven el mismo estado.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	batchRepo repository.BatchRepository,
	recipeRepo repository.RecipeRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(&ItemRepo{s: s}, &BatchRepo{s: s, inTx: true}, &RecipeRepo{s: s})
}

func (s *Store) tx(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	backup := s.st.clone()
	s.mu.RUnlock()

	if err := fn(); err != nil {
		s.mu.Lock()
		s.st = backup
		s.mu.Unlock()
		return err
	}
	return nil
}

// write aplica una mutación. Fuera de transacción toma txMu para no mezclarse con un Rollback.
func (s *Store) write(inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.st)
}
