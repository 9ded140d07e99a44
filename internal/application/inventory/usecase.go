package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despensa-api/internal/domain"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
	"github.com/jhoicas/Despensa-api/pkg/dates"
)

// Actores por defecto de los eventos.
const (
	ActorUser   = "user"
	ActorSystem = "system"
)

// LedgerUseCase libro de inventario: toda variación de cantidad de un lote pasa por aquí
// y deja un evento inmutable en la misma transacción (SELECT FOR UPDATE + Commit/Rollback).
type LedgerUseCase struct {
	txRunner   TxRunner
	batchRepo  repository.BatchRepository
	eventRepo  repository.InventoryEventRepository
	itemRepo   repository.ItemRepository
	recipeRepo repository.RecipeRepository
	now        func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	batchRepo repository.BatchRepository,
	eventRepo repository.InventoryEventRepository,
	itemRepo repository.ItemRepository,
	recipeRepo repository.RecipeRepository,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:   txRunner,
		batchRepo:  batchRepo,
		eventRepo:  eventRepo,
		itemRepo:   itemRepo,
		recipeRepo: recipeRepo,
		now:        time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// CreateBatchInput entrada para registrar un lote nuevo.
// Si ItemID está presente y ItemName vacío, el nombre y la unidad se toman del catálogo.
type CreateBatchInput struct {
	ItemID       *int64
	ItemName     string
	Quantity     decimal.Decimal
	Unit         string
	PurchaseDate *time.Time
	ExpireDate   *time.Time
	Location     string
	SourceType   string
	SourceRefID  string
	Note         string
	Actor        string
}

// CreateBatch registra un lote en stock y su evento "create" con delta +cantidad.
func (uc *LedgerUseCase) CreateBatch(ctx context.Context, in CreateBatchInput) (*entity.InventoryBatch, error) {
	if in.Quantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.fillFromCatalog(ctx, &in); err != nil {
		return nil, err
	}
	if in.ItemName == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.SourceType == "" {
		in.SourceType = "manual"
	}
	if in.Actor == "" {
		in.Actor = ActorUser
	}

	now := uc.now()
	batch := newBatch(in, now)
	event := newEvent(batch.ID, entity.EventTypeCreate, &batch.Quantity, in.Note, in.Actor, now)

	err := uc.txRunner.Run(ctx, func(batchRepo repository.BatchRepository, eventRepo repository.InventoryEventRepository) error {
		if err := batchRepo.Create(ctx, batch); err != nil {
			return err
		}
		return eventRepo.Append(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// BulkItem detección confirmada por el usuario para ingresar al inventario.
type BulkItem struct {
	ItemID     *int64
	ItemName   string
	Quantity   *decimal.Decimal
	Unit       string
	ExpireDate *time.Time
	Location   string
}

// BulkCreate ingresa varios lotes en una sola transacción (p. ej. desde una foto).
// Valores por defecto: cantidad 1, unidad del catálogo o "unit", compra hoy, ubicación "fridge".
func (uc *LedgerUseCase) BulkCreate(ctx context.Context, sourceType, sourceRefID string, items []BulkItem) ([]*entity.InventoryBatch, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if sourceType == "" {
		sourceType = "image"
	}
	now := uc.now()
	today := dates.Day(now)
	note := fmt.Sprintf("ingreso masivo (%s)", sourceType)

	batches := make([]*entity.InventoryBatch, 0, len(items))
	events := make([]*entity.InventoryEvent, 0, len(items))
	for _, it := range items {
		in := CreateBatchInput{
			ItemID:       it.ItemID,
			ItemName:     it.ItemName,
			Quantity:     decimal.NewFromInt(1),
			Unit:         it.Unit,
			PurchaseDate: &today,
			ExpireDate:   it.ExpireDate,
			Location:     it.Location,
			SourceType:   sourceType,
			SourceRefID:  sourceRefID,
		}
		if it.Quantity != nil {
			in.Quantity = *it.Quantity
		}
		if in.Quantity.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if err := uc.fillFromCatalog(ctx, &in); err != nil {
			return nil, err
		}
		if in.ItemName == "" {
			return nil, domain.ErrInvalidInput
		}
		b := newBatch(in, now)
		batches = append(batches, b)
		events = append(events, newEvent(b.ID, entity.EventTypeCreate, &b.Quantity, note, ActorSystem, now))
	}

	err := uc.txRunner.Run(ctx, func(batchRepo repository.BatchRepository, eventRepo repository.InventoryEventRepository) error {
		for i := range batches {
			if err := batchRepo.Create(ctx, batches[i]); err != nil {
				return err
			}
			if err := eventRepo.Append(ctx, events[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batches, nil
}

// Consume descuenta amount del lote. La cantidad nunca baja de cero; al llegar a cero el lote
// pasa a "consumed". El evento registra -|amount| aunque el descuento real haya sido menor.
// Devuelve nil, nil si el lote no existe.
func (uc *LedgerUseCase) Consume(ctx context.Context, batchID string, amount decimal.Decimal, note string) (*entity.InventoryEvent, error) {
	return uc.decrement(ctx, batchID, amount, note, entity.EventTypeConsume, entity.BatchStatusConsumed)
}

// Discard igual que Consume pero por descarte: estado "discarded" y evento "discard".
func (uc *LedgerUseCase) Discard(ctx context.Context, batchID string, amount decimal.Decimal, reason string) (*entity.InventoryEvent, error) {
	return uc.decrement(ctx, batchID, amount, reason, entity.EventTypeDiscard, entity.BatchStatusDiscarded)
}

func (uc *LedgerUseCase) decrement(ctx context.Context, batchID string, amount decimal.Decimal, note, eventType, zeroStatus string) (*entity.InventoryEvent, error) {
	amount = amount.Abs()
	if batchID == "" || amount.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	var event *entity.InventoryEvent
	err := uc.txRunner.Run(ctx, func(batchRepo repository.BatchRepository, eventRepo repository.InventoryEventRepository) error {
		// Bloquea la fila del lote para evitar condiciones de carrera
		batch, err := batchRepo.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return nil
		}
		now := uc.now()
		batch.Quantity = decimal.Max(decimal.Zero, batch.Quantity.Sub(amount))
		if batch.Quantity.IsZero() {
			batch.Status = zeroStatus
		}
		batch.UpdatedAt = now
		if err := batchRepo.Update(ctx, batch); err != nil {
			return err
		}
		delta := amount.Neg()
		event = newEvent(batch.ID, eventType, &delta, note, ActorUser, now)
		return eventRepo.Append(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// AdjustPatch cambios parciales de un lote. Los campos nil no se tocan.
type AdjustPatch struct {
	Quantity   *decimal.Decimal
	Location   *string
	ExpireDate *time.Time
	Unit       *string
	Status     *string
	Note       string
}

// Adjust aplica el parche y registra un evento "adjust" cuyo delta es la cantidad nueva
// (nil si el parche no incluye cantidad). Devuelve nil, nil si el lote no existe.
func (uc *LedgerUseCase) Adjust(ctx context.Context, batchID string, patch AdjustPatch) (*entity.InventoryBatch, error) {
	if batchID == "" {
		return nil, domain.ErrInvalidInput
	}
	if patch.Quantity != nil && patch.Quantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if patch.Status != nil && !validStatus(*patch.Status) {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.InventoryBatch
	err := uc.txRunner.Run(ctx, func(batchRepo repository.BatchRepository, eventRepo repository.InventoryEventRepository) error {
		batch, err := batchRepo.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return nil
		}
		now := uc.now()
		if patch.Quantity != nil {
			batch.Quantity = *patch.Quantity
		}
		if patch.Location != nil {
			batch.Location = *patch.Location
		}
		if patch.ExpireDate != nil {
			batch.ExpireDate = patch.ExpireDate
		}
		if patch.Unit != nil {
			batch.Unit = *patch.Unit
		}
		if patch.Status != nil {
			batch.Status = *patch.Status
		}
		// consumed/discarded solo con cantidad cero
		if !batch.InStock() && !batch.Quantity.IsZero() {
			return domain.ErrInvalidInput
		}
		batch.UpdatedAt = now
		if err := batchRepo.Update(ctx, batch); err != nil {
			return err
		}
		out = batch
		return eventRepo.Append(ctx, newEvent(batch.ID, entity.EventTypeAdjust, patch.Quantity, patch.Note, ActorUser, now))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// fillFromCatalog completa nombre y unidad desde el catálogo cuando hay ItemID.
func (uc *LedgerUseCase) fillFromCatalog(ctx context.Context, in *CreateBatchInput) error {
	if in.ItemID == nil || (in.ItemName != "" && in.Unit != "") {
		if in.Unit == "" {
			in.Unit = entity.DefaultUnit
		}
		return nil
	}
	item, err := uc.itemRepo.GetByID(ctx, *in.ItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	if in.ItemName == "" {
		in.ItemName = item.Name
	}
	if in.Unit == "" {
		in.Unit = item.UnitOrDefault()
	}
	return nil
}

func newBatch(in CreateBatchInput, now time.Time) *entity.InventoryBatch {
	location := in.Location
	if location == "" {
		location = entity.DefaultLocation
	}
	return &entity.InventoryBatch{
		ID:               uuid.New().String(),
		ItemID:           in.ItemID,
		ItemNameSnapshot: in.ItemName,
		Quantity:         in.Quantity,
		Unit:             in.Unit,
		PurchaseDate:     in.PurchaseDate,
		ExpireDate:       in.ExpireDate,
		Location:         location,
		Status:           entity.BatchStatusInStock,
		SourceType:       in.SourceType,
		SourceRefID:      in.SourceRefID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func newEvent(batchID, eventType string, delta *decimal.Decimal, note, actor string, now time.Time) *entity.InventoryEvent {
	var d *decimal.Decimal
	if delta != nil {
		v := *delta
		d = &v
	}
	return &entity.InventoryEvent{
		ID:        uuid.New().String(),
		BatchID:   batchID,
		Type:      eventType,
		Delta:     d,
		Note:      note,
		Actor:     actor,
		CreatedAt: now,
	}
}

func validStatus(s string) bool {
	switch s {
	case entity.BatchStatusInStock, entity.BatchStatusConsumed, entity.BatchStatusDiscarded:
		return true
	}
	return false
}
