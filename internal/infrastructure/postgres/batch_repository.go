package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Despensa-api/internal/domain"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
	"github.com/jhoicas/Despensa-api/pkg/textnorm"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo lotes de inventario sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `
	id, item_id, item_name_snapshot, quantity, unit, purchase_date, expire_date,
	location, status, source_type, source_ref_id, created_at, updated_at`

const batchOrder = ` ORDER BY expire_date ASC NULLS LAST, created_at, id`

func scanBatch(row pgx.Row) (*entity.InventoryBatch, error) {
	var b entity.InventoryBatch
	var sourceRef *string
	err := row.Scan(
		&b.ID, &b.ItemID, &b.ItemNameSnapshot, &b.Quantity, &b.Unit, &b.PurchaseDate, &b.ExpireDate,
		&b.Location, &b.Status, &b.SourceType, &sourceRef, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sourceRef != nil {
		b.SourceRefID = *sourceRef
	}
	return &b, nil
}

func collectBatches(rows pgx.Rows) ([]*entity.InventoryBatch, error) {
	defer rows.Close()
	var list []*entity.InventoryBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Create inserta un lote nuevo.
func (r *BatchRepo) Create(ctx context.Context, b *entity.InventoryBatch) error {
	query := `
		INSERT INTO inventory_batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.ItemID, b.ItemNameSnapshot, b.Quantity, b.Unit, b.PurchaseDate, b.ExpireDate,
		b.Location, b.Status, b.SourceType, nullString(b.SourceRefID), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create batch: %w", domain.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create batch: ítem inexistente: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote. Si no existe retorna (nil, nil).
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.InventoryBatch, error) {
	return r.get(ctx, `SELECT `+batchColumns+` FROM inventory_batches WHERE id = $1`, id)
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryBatch, error) {
	return r.get(ctx, `SELECT `+batchColumns+` FROM inventory_batches WHERE id = $1 FOR UPDATE`, id)
}

func (r *BatchRepo) get(ctx context.Context, query, id string) (*entity.InventoryBatch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// Update guarda los campos mutables del lote.
func (r *BatchRepo) Update(ctx context.Context, b *entity.InventoryBatch) error {
	query := `
		UPDATE inventory_batches
		SET quantity = $2, unit = $3, expire_date = $4, location = $5, status = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, b.ID, b.Quantity, b.Unit, b.ExpireDate, b.Location, b.Status, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List filtra por ubicación, estado y palabra clave (sin distinguir mayúsculas).
func (r *BatchRepo) List(ctx context.Context, f repository.BatchFilter) ([]*entity.InventoryBatch, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Location != "" {
		add("location = $%d", f.Location)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if kw := textnorm.Key(f.Keyword); kw != "" {
		add("lower(normalize(item_name_snapshot, NFKC)) LIKE $%d", likePattern(kw))
	}
	query := `SELECT ` + batchColumns + ` FROM inventory_batches`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := r.q.Query(ctx, query+batchOrder, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return collectBatches(rows)
}

// ListInStock lotes disponibles ordenados por vencimiento.
func (r *BatchRepo) ListInStock(ctx context.Context) ([]*entity.InventoryBatch, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+batchColumns+` FROM inventory_batches WHERE status = $1`+batchOrder,
		entity.BatchStatusInStock)
	if err != nil {
		return nil, fmt.Errorf("list in stock: %w", err)
	}
	return collectBatches(rows)
}
