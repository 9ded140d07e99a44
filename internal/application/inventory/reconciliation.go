package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
)

// Reconciliation compara la cantidad actual de un lote con la que resulta de reproducir sus eventos.
// Es un chequeo informativo: una diferencia no bloquea ninguna operación.
type Reconciliation struct {
	BatchID    string          `json:"batch_id"`
	CreatedQty decimal.Decimal `json:"created_qty"`
	DeltaSum   decimal.Decimal `json:"delta_sum"` // suma cruda de create/consume/discard
	Expected   decimal.Decimal `json:"expected"`
	Actual     decimal.Decimal `json:"actual"`
	Events     int             `json:"events"`
	Consistent bool            `json:"consistent"`
}

// Reconcile reproduce los eventos en orden: create fija la base, consume/discard restan
// con piso en cero y un adjust con cantidad la reemplaza.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, batchID string) (*Reconciliation, error) {
	batch, err := uc.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	events, err := uc.eventRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return Replay(batch, events), nil
}

// Replay calcula la conciliación a partir de un lote y su historia.
func Replay(batch *entity.InventoryBatch, events []*entity.InventoryEvent) *Reconciliation {
	rec := &Reconciliation{
		BatchID:    batch.ID,
		CreatedQty: decimal.Zero,
		DeltaSum:   decimal.Zero,
		Expected:   decimal.Zero,
		Actual:     batch.Quantity,
		Events:     len(events),
	}
	for _, e := range events {
		if e.Delta == nil {
			continue
		}
		switch e.Type {
		case entity.EventTypeCreate:
			rec.CreatedQty = rec.CreatedQty.Add(*e.Delta)
			rec.DeltaSum = rec.DeltaSum.Add(*e.Delta)
			rec.Expected = rec.Expected.Add(*e.Delta)
		case entity.EventTypeConsume, entity.EventTypeDiscard:
			rec.DeltaSum = rec.DeltaSum.Add(*e.Delta)
			rec.Expected = decimal.Max(decimal.Zero, rec.Expected.Add(*e.Delta))
		case entity.EventTypeAdjust:
			rec.Expected = *e.Delta
		}
	}
	rec.Consistent = rec.Expected.Equal(rec.Actual)
	return rec
}
