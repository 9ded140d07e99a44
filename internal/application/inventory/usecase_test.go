package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Despensa-api/internal/application/inventory"
	"github.com/jhoicas/Despensa-api/internal/domain"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
	"github.com/jhoicas/Despensa-api/internal/infrastructure/memory"
)

var fixedNow = time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func daysFromNow(n int) *time.Time {
	d := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return &d
}

func newLedger(t *testing.T) (*inventory.LedgerUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.AddItem(entity.Item{ID: 1, Name: "Huevo", DefaultUnit: "pcs", ShelfLifeDays: ptr(14)})
	store.AddItem(entity.Item{ID: 2, Name: "Leche", DefaultUnit: "ml"})
	store.AddItem(entity.Item{ID: 3, Name: "Tomate"})
	store.AddRecipe(entity.Recipe{ID: 10, Name: "Tortilla"}, nil)
	uc := inventory.NewLedgerUseCase(store, store.Batches(), store.Events(), store.Items(), store.Recipes()).
		WithClock(func() time.Time { return fixedNow })
	return uc, store
}

func createBatch(t *testing.T, uc *inventory.LedgerUseCase, itemID int64, qty string, expire *time.Time) *entity.InventoryBatch {
	t.Helper()
	b, err := uc.CreateBatch(context.Background(), inventory.CreateBatchInput{
		ItemID: ptr(itemID), Quantity: dec(qty), ExpireDate: expire,
	})
	require.NoError(t, err)
	return b
}

// ── Alta ─────────────────────────────────────────────────────────────────────

func TestCreateBatch_FillsFromCatalogAndEmitsEvent(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	b := createBatch(t, uc, 1, "6", nil)

	assert.Equal(t, "Huevo", b.ItemNameSnapshot)
	assert.Equal(t, "pcs", b.Unit)
	assert.Equal(t, entity.DefaultLocation, b.Location)
	assert.Equal(t, entity.BatchStatusInStock, b.Status)

	events, err := uc.BatchEvents(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventTypeCreate, events[0].Type)
	require.NotNil(t, events[0].Delta)
	assert.True(t, events[0].Delta.Equal(dec("6")))
}

func TestCreateBatch_Validation(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	_, err := uc.CreateBatch(ctx, inventory.CreateBatchInput{ItemName: "Pan", Quantity: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateBatch(ctx, inventory.CreateBatchInput{Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateBatch(ctx, inventory.CreateBatchInput{ItemID: ptr(int64(99)), Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateBatch_FreeTextItemUsesGenericUnit(t *testing.T) {
	uc, _ := newLedger(t)
	b, err := uc.CreateBatch(context.Background(), inventory.CreateBatchInput{ItemName: "Salsa casera", Quantity: dec("1")})
	require.NoError(t, err)
	assert.Nil(t, b.ItemID)
	assert.Equal(t, entity.DefaultUnit, b.Unit)
}

func TestBulkCreate_AppliesDefaults(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	batches, err := uc.BulkCreate(ctx, "image", "img-42", []inventory.BulkItem{
		{ItemID: ptr(int64(1)), ExpireDate: daysFromNow(5)},
		{ItemID: ptr(int64(3)), Quantity: ptr(dec("2.5")), Location: "pantry"},
	})
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.True(t, batches[0].Quantity.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "pcs", batches[0].Unit)
	assert.Equal(t, "fridge", batches[0].Location)
	require.NotNil(t, batches[0].PurchaseDate)
	assert.Equal(t, "2026-04-10", batches[0].PurchaseDate.Format("2006-01-02"))
	assert.Equal(t, "img-42", batches[0].SourceRefID)

	assert.Equal(t, "unit", batches[1].Unit)
	assert.Equal(t, "pantry", batches[1].Location)

	events, err := uc.RecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, inventory.ActorSystem, events[0].Actor)
}

func TestBulkCreate_RollsBackOnInvalidItem(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	_, err := uc.BulkCreate(ctx, "image", "", []inventory.BulkItem{
		{ItemID: ptr(int64(1))},
		{ItemID: ptr(int64(404))},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	all, err := uc.ListBatches(ctx, repository.BatchFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

// ── Consumo y descarte ───────────────────────────────────────────────────────

func TestConsume_ClampsAtZeroAndRecordsRequestedAmount(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()
	b := createBatch(t, uc, 1, "2", nil)

	ev, err := uc.Consume(ctx, b.ID, dec("5"), "desayuno")
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, entity.EventTypeConsume, ev.Type)
	assert.True(t, ev.Delta.Equal(dec("-5")))

	got, err := uc.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero())
	assert.Equal(t, entity.BatchStatusConsumed, got.Status)

	rec, err := uc.Reconcile(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.True(t, rec.DeltaSum.Equal(dec("-3")))
}

func TestConsume_PartialKeepsInStock(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()
	b := createBatch(t, uc, 2, "1000", nil)

	ev, err := uc.Consume(ctx, b.ID, dec("-250"), "")
	require.NoError(t, err)
	assert.True(t, ev.Delta.Equal(dec("-250")), "el signo de la cantidad se ignora")

	got, _ := uc.GetBatch(ctx, b.ID)
	assert.True(t, got.Quantity.Equal(dec("750")))
	assert.Equal(t, entity.BatchStatusInStock, got.Status)
}

func TestConsume_MissingBatchReturnsNil(t *testing.T) {
	uc, _ := newLedger(t)
	ev, err := uc.Consume(context.Background(), "no-existe", dec("1"), "")
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestConsume_ZeroAmountIsInvalid(t *testing.T) {
	uc, _ := newLedger(t)
	b := createBatch(t, uc, 1, "2", nil)
	_, err := uc.Consume(context.Background(), b.ID, decimal.Zero, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDiscard_SetsDiscardedAtZero(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()
	b := createBatch(t, uc, 3, "3", daysFromNow(-1))

	ev, err := uc.Discard(ctx, b.ID, dec("3"), "podrido")
	require.NoError(t, err)
	assert.Equal(t, entity.EventTypeDiscard, ev.Type)
	assert.Equal(t, "podrido", ev.Note)

	got, _ := uc.GetBatch(ctx, b.ID)
	assert.Equal(t, entity.BatchStatusDiscarded, got.Status)
}

// ── Ajuste ───────────────────────────────────────────────────────────────────

func TestAdjust_RecordsNewQuantityAsDelta(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()
	b := createBatch(t, uc, 1, "6", nil)

	got, err := uc.Adjust(ctx, b.ID, inventory.AdjustPatch{Quantity: ptr(dec("4")), Location: ptr("freezer")})
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(dec("4")))
	assert.Equal(t, "freezer", got.Location)

	events, _ := uc.BatchEvents(ctx, b.ID)
	require.Len(t, events, 2)
	assert.Equal(t, entity.EventTypeAdjust, events[1].Type)
	assert.True(t, events[1].Delta.Equal(dec("4")))

	rec, err := uc.Reconcile(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.True(t, rec.Expected.Equal(dec("4")))
}

func TestAdjust_WithoutQuantityHasNilDelta(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()
	b := createBatch(t, uc, 1, "6", nil)

	_, err := uc.Adjust(ctx, b.ID, inventory.AdjustPatch{ExpireDate: daysFromNow(2)})
	require.NoError(t, err)

	events, _ := uc.BatchEvents(ctx, b.ID)
	require.Len(t, events, 2)
	assert.Nil(t, events[1].Delta)
}

func TestAdjust_Validation(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()
	b := createBatch(t, uc, 1, "6", nil)

	_, err := uc.Adjust(ctx, b.ID, inventory.AdjustPatch{Status: ptr("robado")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Adjust(ctx, b.ID, inventory.AdjustPatch{Quantity: ptr(dec("-1"))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := uc.Adjust(ctx, "no-existe", inventory.AdjustPatch{Location: ptr("x")})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAdjust_TerminalStatusRequiresZeroQuantity(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()
	b := createBatch(t, uc, 1, "6", nil)

	_, err := uc.Adjust(ctx, b.ID, inventory.AdjustPatch{Status: ptr(entity.BatchStatusConsumed)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Adjust(ctx, b.ID, inventory.AdjustPatch{Status: ptr(entity.BatchStatusDiscarded), Quantity: ptr(dec("2"))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	still, err := uc.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusInStock, still.Status)
	assert.True(t, still.Quantity.Equal(dec("6")))
	events, _ := uc.BatchEvents(ctx, b.ID)
	assert.Len(t, events, 1, "el ajuste rechazado no deja evento")

	got, err := uc.Adjust(ctx, b.ID, inventory.AdjustPatch{Status: ptr(entity.BatchStatusDiscarded), Quantity: ptr(dec("0"))})
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusDiscarded, got.Status)
}

// ── Consultas ────────────────────────────────────────────────────────────────

func TestListBatches_OrderAndFilters(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()
	noExpiry := createBatch(t, uc, 2, "1", nil)
	later := createBatch(t, uc, 1, "1", daysFromNow(7))
	sooner := createBatch(t, uc, 3, "1", daysFromNow(1))

	all, err := uc.ListBatches(ctx, repository.BatchFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{sooner.ID, later.ID, noExpiry.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	byKeyword, err := uc.ListBatches(ctx, repository.BatchFilter{Keyword: "LECH"})
	require.NoError(t, err)
	require.Len(t, byKeyword, 1)
	assert.Equal(t, noExpiry.ID, byKeyword[0].ID)

	_, err = uc.Consume(ctx, sooner.ID, dec("1"), "")
	require.NoError(t, err)
	inStock, err := uc.ListBatches(ctx, repository.BatchFilter{Status: entity.BatchStatusInStock})
	require.NoError(t, err)
	assert.Len(t, inStock, 2)
}

func TestExpiringWithin(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()
	createBatch(t, uc, 1, "1", daysFromNow(3))
	createBatch(t, uc, 2, "1", daysFromNow(-1))
	createBatch(t, uc, 3, "1", daysFromNow(4))
	createBatch(t, uc, 3, "1", nil)
	gone := createBatch(t, uc, 1, "1", daysFromNow(0))
	_, err := uc.Consume(ctx, gone.ID, dec("1"), "")
	require.NoError(t, err)

	list, err := uc.ExpiringWithin(ctx, 3)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, -1, list[0].DaysLeft)
	assert.Equal(t, 3, list[1].DaysLeft)
}

func TestSummary(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()
	createBatch(t, uc, 1, "1", daysFromNow(1))
	createBatch(t, uc, 2, "1", daysFromNow(10))

	s, err := uc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, s.ExpiringCount)
	assert.Equal(t, 2, s.InStockBatches)
	assert.Equal(t, 1, s.Recipes)
}

func TestBatchEvents_UnknownBatch(t *testing.T) {
	uc, _ := newLedger(t)
	_, err := uc.BatchEvents(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ── Conciliación ─────────────────────────────────────────────────────────────

func TestReplay_DetectsDrift(t *testing.T) {
	batch := &entity.InventoryBatch{ID: "b1", Quantity: dec("3")}
	events := []*entity.InventoryEvent{
		{Type: entity.EventTypeCreate, Delta: ptr(dec("5"))},
		{Type: entity.EventTypeConsume, Delta: ptr(dec("-1"))},
		{Type: entity.EventTypeAdjust},
	}
	rec := inventory.Replay(batch, events)
	assert.True(t, rec.Expected.Equal(dec("4")))
	assert.False(t, rec.Consistent)
	assert.Equal(t, 3, rec.Events)
}
