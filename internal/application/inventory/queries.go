package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/Despensa-api/internal/domain"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
	"github.com/jhoicas/Despensa-api/pkg/dates"
)

// Ventana de "por vencer" usada en el tablero.
const SummaryExpiringDays = 3

// DefaultRecentEvents cantidad de eventos devueltos si no se indica límite.
const DefaultRecentEvents = 50

// ListBatches lista lotes por vencimiento ascendente (sin vencimiento al final).
func (uc *LedgerUseCase) ListBatches(ctx context.Context, f repository.BatchFilter) ([]*entity.InventoryBatch, error) {
	return uc.batchRepo.List(ctx, f)
}

// GetBatch obtiene un lote por ID.
func (uc *LedgerUseCase) GetBatch(ctx context.Context, id string) (*entity.InventoryBatch, error) {
	b, err := uc.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// ExpiringWithin lotes en stock con vencimiento conocido y días restantes <= days,
// ordenados por días restantes. Incluye los ya vencidos (días negativos).
func (uc *LedgerUseCase) ExpiringWithin(ctx context.Context, days int) ([]entity.ExpiringBatch, error) {
	batches, err := uc.batchRepo.ListInStock(ctx)
	if err != nil {
		return nil, err
	}
	today := uc.now()
	out := make([]entity.ExpiringBatch, 0)
	for _, b := range batches {
		if b.ExpireDate == nil {
			continue
		}
		left := dates.DaysBetween(today, *b.ExpireDate)
		if left <= days {
			out = append(out, entity.ExpiringBatch{InventoryBatch: *b, DaysLeft: left})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysLeft < out[j].DaysLeft })
	return out, nil
}

// RecentEvents últimos eventos del libro, más recientes primero.
func (uc *LedgerUseCase) RecentEvents(ctx context.Context, limit int) ([]*entity.InventoryEvent, error) {
	if limit <= 0 {
		limit = DefaultRecentEvents
	}
	return uc.eventRepo.ListRecent(ctx, limit)
}

// BatchEvents historia completa de un lote en orden cronológico.
func (uc *LedgerUseCase) BatchEvents(ctx context.Context, batchID string) ([]*entity.InventoryEvent, error) {
	if _, err := uc.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	return uc.eventRepo.ListByBatch(ctx, batchID)
}

// Summary indicadores del tablero.
type Summary struct {
	ExpiringCount  int `json:"kpi_expiring"`
	InStockBatches int `json:"kpi_batches"`
	Recipes        int `json:"kpi_recipes"`
}

// Summary calcula los indicadores: lotes por vencer (<= 3 días), lotes en stock y recetas.
func (uc *LedgerUseCase) Summary(ctx context.Context) (*Summary, error) {
	expiring, err := uc.ExpiringWithin(ctx, SummaryExpiringDays)
	if err != nil {
		return nil, err
	}
	inStock, err := uc.batchRepo.ListInStock(ctx)
	if err != nil {
		return nil, err
	}
	recipes, err := uc.recipeRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{ExpiringCount: len(expiring), InStockBatches: len(inStock), Recipes: recipes}, nil
}
