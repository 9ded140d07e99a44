// Package menu arma menús a partir del inventario con planificadores intercambiables
// y deriva la lista de compras de cada menú.
package menu

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
	"github.com/jhoicas/Despensa-api/internal/domain"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
	"github.com/jhoicas/Despensa-api/pkg/dates"
)

// Límites de un pedido de menú.
const (
	MaxDays     = 14
	MaxServings = 20
)

// MenuUseCase genera y consulta menús y listas de compras.
// La generación se serializa por instancia y lee una vista consistente del inventario;
// nunca modifica el libro de inventario.
type MenuUseCase struct {
	txRunner     MenuTxRunner
	menuRepo     repository.MenuRepository
	shoppingRepo repository.ShoppingRepository
	planners     *backend.Registry[Planner]
	renderer     ShoppingListRenderer
	recorder     backend.Recorder
	logger       zerolog.Logger
	now          func() time.Time

	genMu sync.Mutex
}

// NewMenuUseCase construye el caso de uso. renderer puede ser nil si no se exporta PDF.
func NewMenuUseCase(
	txRunner MenuTxRunner,
	menuRepo repository.MenuRepository,
	shoppingRepo repository.ShoppingRepository,
	planners *backend.Registry[Planner],
	renderer ShoppingListRenderer,
	logger zerolog.Logger,
) *MenuUseCase {
	return &MenuUseCase{
		txRunner:     txRunner,
		menuRepo:     menuRepo,
		shoppingRepo: shoppingRepo,
		planners:     planners,
		renderer:     renderer,
		recorder:     backend.NopRecorder,
		logger:       logger.With().Str("component", "menu").Logger(),
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *MenuUseCase) WithClock(now func() time.Time) *MenuUseCase {
	uc.now = now
	return uc
}

// WithRecorder registra cada resolución de planificador (métricas).
func (uc *MenuUseCase) WithRecorder(r backend.Recorder) *MenuUseCase {
	uc.recorder = r
	return uc
}

// Result menú generado con su lista de compras y qué planificador lo atendió.
type Result struct {
	Menu         *entity.MenuPlan
	ShoppingList []entity.ShoppingListItem
	Meta         backend.Meta
}

// GenerateMenu arma un menú con el planificador pedido; ante cualquier fallo usa "greedy".
// Solo un fallo del planificador base se devuelve como error.
func (uc *MenuUseCase) GenerateMenu(ctx context.Context, req Request) (*Result, error) {
	if req.Days < 1 || req.Days > MaxDays || req.Servings < 1 || req.Servings > MaxServings {
		return nil, domain.ErrInvalidInput
	}
	if req.Constraints.AllergensExclude == nil {
		req.Constraints.AllergensExclude = []string{}
	}

	uc.genMu.Lock()
	defer uc.genMu.Unlock()

	snap, err := uc.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	ctx = uc.logger.WithContext(ctx)
	plan, meta, err := backend.Run(ctx, uc.planners, req.Planner, PlannerGreedy,
		func(ctx context.Context, p Planner) (*Plan, error) {
			return p.Plan(ctx, req, snap)
		})
	uc.recorder.Record("planner", meta, err)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	m := &entity.MenuPlan{
		ID:          uuid.New().String(),
		Days:        req.Days,
		Servings:    req.Servings,
		Constraints: req.Constraints,
		Planner:     meta.Used,
		GeneratedAt: now,
		Items:       plan.Items,
	}
	for i := range m.Items {
		m.Items[i].ID = uuid.New().String()
		m.Items[i].MenuID = m.ID
	}
	shopping := Aggregate(m.ID, plan.Gaps, snap.Items, plan.Source)

	err = uc.txRunner.RunMenu(ctx, func(menuRepo repository.MenuRepository, shoppingRepo repository.ShoppingRepository) error {
		if err := menuRepo.Create(ctx, m); err != nil {
			return err
		}
		if len(shopping) == 0 {
			return nil
		}
		return shoppingRepo.CreateMany(ctx, shopping)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("menu_id", m.ID).
		Str("planner", meta.Used).
		Bool("degraded", meta.Degraded).
		Int("items", len(m.Items)).
		Int("shopping_items", len(shopping)).
		Msg("menú generado")

	return &Result{Menu: m, ShoppingList: shopping, Meta: meta}, nil
}

// snapshot carga catálogo, recetas e inventario en stock en una sola lectura consistente.
func (uc *MenuUseCase) snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Today: dates.Day(uc.now())}
	err := uc.txRunner.ReadSnapshot(ctx, func(
		itemRepo repository.ItemRepository,
		batchRepo repository.BatchRepository,
		recipeRepo repository.RecipeRepository,
	) error {
		items, err := itemRepo.List(ctx)
		if err != nil {
			return err
		}
		snap.Items = make(map[int64]*entity.Item, len(items))
		for _, it := range items {
			snap.Items[it.ID] = it
		}
		if snap.Batches, err = batchRepo.ListInStock(ctx); err != nil {
			return err
		}
		if snap.Recipes, err = recipeRepo.List(ctx); err != nil {
			return err
		}
		snap.Ingredients, err = recipeRepo.Ingredients(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// GetMenu obtiene un menú con sus franjas.
func (uc *MenuUseCase) GetMenu(ctx context.Context, id string) (*entity.MenuPlan, error) {
	m, err := uc.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// ListPlanners describe los planificadores registrados y su disponibilidad.
func (uc *MenuUseCase) ListPlanners() []backend.Info {
	return uc.planners.List()
}

// ShoppingList líneas de compra del menú: pendientes primero, luego por nombre.
func (uc *MenuUseCase) ShoppingList(ctx context.Context, menuID string) ([]*entity.ShoppingListItem, error) {
	if _, err := uc.GetMenu(ctx, menuID); err != nil {
		return nil, err
	}
	return uc.shoppingRepo.ListByMenu(ctx, menuID)
}

// SetChecked marca o desmarca una línea de compra.
func (uc *MenuUseCase) SetChecked(ctx context.Context, id string, checked bool) (*entity.ShoppingListItem, error) {
	it, err := uc.shoppingRepo.SetChecked(ctx, id, checked)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, domain.ErrNotFound
	}
	return it, nil
}

// ShoppingListPDF genera el PDF imprimible de la lista de compras del menú.
func (uc *MenuUseCase) ShoppingListPDF(ctx context.Context, menuID string) ([]byte, error) {
	if uc.renderer == nil {
		return nil, domain.ErrNotFound
	}
	m, err := uc.GetMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	items, err := uc.shoppingRepo.ListByMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderShoppingList(m, items)
}
