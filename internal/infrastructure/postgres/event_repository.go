package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
)

var _ repository.InventoryEventRepository = (*EventRepo)(nil)

// EventRepo libro de eventos de inventario (solo INSERT y SELECT).
type EventRepo struct {
	q Querier
}

// NewEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEventRepository(q Querier) *EventRepo {
	return &EventRepo{q: q}
}

const eventColumns = `id, batch_id, type, delta, note, actor, created_at`

// Append agrega un evento al libro.
func (r *EventRepo) Append(ctx context.Context, e *entity.InventoryEvent) error {
	query := `INSERT INTO inventory_events (` + eventColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, e.ID, e.BatchID, e.Type, e.Delta, e.Note, e.Actor, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListByBatch eventos del lote en orden cronológico.
func (r *EventRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.InventoryEvent, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+eventColumns+` FROM inventory_events WHERE batch_id = $1 ORDER BY created_at, seq`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list events by batch: %w", err)
	}
	return collectEvents(rows)
}

// ListRecent últimos eventos, más recientes primero.
func (r *EventRepo) ListRecent(ctx context.Context, limit int) ([]*entity.InventoryEvent, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+eventColumns+` FROM inventory_events ORDER BY created_at DESC, seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]*entity.InventoryEvent, error) {
	defer rows.Close()
	var list []*entity.InventoryEvent
	for rows.Next() {
		var e entity.InventoryEvent
		if err := rows.Scan(&e.ID, &e.BatchID, &e.Type, &e.Delta, &e.Note, &e.Actor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
