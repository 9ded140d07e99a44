package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despensa-api/internal/application/dto"
	"github.com/jhoicas/Despensa-api/internal/application/inventory"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
	"github.com/jhoicas/Despensa-api/pkg/dates"
)

const batchNotFound = "lote no encontrado"

// InventoryHandler maneja las peticiones HTTP del libro de inventario.
type InventoryHandler struct {
	uc *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// CreateBatch godoc
// @Summary      Registrar lote
// @Description  Crea un lote en stock y su evento "create". item_id completa nombre y unidad desde el catálogo.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "item_id o item_name, quantity, fechas YYYY-MM-DD"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/batches [post]
func (h *InventoryHandler) CreateBatch(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := parseBody(c, &in); err != nil {
		return bodyError(c, err)
	}
	purchase, err := dates.Parse(in.PurchaseDate)
	if err != nil {
		return invalidBody(c)
	}
	expire, err := dates.Parse(in.ExpireDate)
	if err != nil {
		return invalidBody(c)
	}
	b, err := h.uc.CreateBatch(c.Context(), inventory.CreateBatchInput{
		ItemID:       in.ItemID,
		ItemName:     in.ItemName,
		Quantity:     in.Quantity,
		Unit:         in.Unit,
		PurchaseDate: purchase,
		ExpireDate:   expire,
		Location:     in.Location,
		SourceType:   in.SourceType,
		SourceRefID:  in.SourceRefID,
		Note:         in.Note,
	})
	if err != nil {
		return writeError(c, err, "ítem no encontrado en el catálogo")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BatchFromEntity(b))
}

// BulkCreate godoc
// @Summary      Ingreso masivo
// @Description  Ingresa en una sola transacción las detecciones confirmadas de una foto.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkCreateRequest  true  "items confirmados"
// @Success      201   {object}  map[string][]dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/bulk [post]
func (h *InventoryHandler) BulkCreate(c *fiber.Ctx) error {
	var in dto.BulkCreateRequest
	if err := parseBody(c, &in); err != nil {
		return bodyError(c, err)
	}
	items := make([]inventory.BulkItem, 0, len(in.Items))
	for _, it := range in.Items {
		raw := it.ExpireDate
		if raw == "" {
			raw = it.SuggestExpireDate
		}
		expire, err := dates.Parse(raw)
		if err != nil {
			return invalidBody(c)
		}
		items = append(items, inventory.BulkItem{
			ItemID:     it.ItemID,
			ItemName:   it.ItemName,
			Quantity:   it.Quantity,
			Unit:       it.Unit,
			ExpireDate: expire,
			Location:   it.Location,
		})
	}
	batches, err := h.uc.BulkCreate(c.Context(), in.SourceType, in.SourceRefID, items)
	if err != nil {
		return writeError(c, err, "ítem no encontrado en el catálogo")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"created": dto.BatchesFromEntities(batches)})
}

// ListBatches godoc
// @Summary      Listar lotes
// @Description  Ordenados por vencimiento ascendente; los lotes sin vencimiento van al final.
// @Tags         inventory
// @Produce      json
// @Param        location  query  string  false  "fridge, freezer, pantry..."
// @Param        status    query  string  false  "in_stock, consumed, discarded"
// @Param        keyword   query  string  false  "Coincidencia parcial sobre el nombre"
// @Success      200  {object}  map[string][]dto.BatchResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/batches [get]
func (h *InventoryHandler) ListBatches(c *fiber.Ctx) error {
	list, err := h.uc.ListBatches(c.Context(), repository.BatchFilter{
		Location: c.Query("location"),
		Status:   c.Query("status"),
		Keyword:  c.Query("keyword"),
	})
	if err != nil {
		return writeError(c, err, batchNotFound)
	}
	return c.JSON(fiber.Map{"batches": dto.BatchesFromEntities(list)})
}

// AdjustBatch godoc
// @Summary      Ajustar lote
// @Description  Corrige cantidad, ubicación, vencimiento, unidad o estado y registra un evento "adjust".
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del lote (UUID)"
// @Param        body  body  dto.AdjustBatchRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/{id} [patch]
func (h *InventoryHandler) AdjustBatch(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.AdjustBatchRequest
	if err := parseBody(c, &in); err != nil {
		return bodyError(c, err)
	}
	patch := inventory.AdjustPatch{
		Quantity: in.Quantity,
		Location: in.Location,
		Unit:     in.Unit,
		Status:   in.Status,
		Note:     in.Note,
	}
	if in.ExpireDate != nil {
		expire, err := dates.Parse(*in.ExpireDate)
		if err != nil || expire == nil {
			return invalidBody(c)
		}
		patch.ExpireDate = expire
	}
	b, err := h.uc.Adjust(c.Context(), id, patch)
	if err != nil {
		return writeError(c, err, batchNotFound)
	}
	if b == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: batchNotFound})
	}
	return c.JSON(dto.BatchFromEntity(b))
}

// Consume godoc
// @Summary      Consumir del lote
// @Description  Descuenta la cantidad con piso en cero; en cero el lote pasa a "consumed".
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del lote (UUID)"
// @Param        body  body  dto.AmountRequest  true  "quantity > 0"
// @Success      200   {object}  dto.EventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/{id}/consume [post]
func (h *InventoryHandler) Consume(c *fiber.Ctx) error {
	return h.decrement(c, h.uc.Consume)
}

// Discard godoc
// @Summary      Descartar del lote
// @Description  Igual que consumir, pero en cero el lote pasa a "discarded".
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del lote (UUID)"
// @Param        body  body  dto.AmountRequest  true  "quantity > 0, note = motivo"
// @Success      200   {object}  dto.EventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/{id}/discard [post]
func (h *InventoryHandler) Discard(c *fiber.Ctx) error {
	return h.decrement(c, h.uc.Discard)
}

type decrementFunc func(ctx context.Context, batchID string, amount decimal.Decimal, note string) (*entity.InventoryEvent, error)

func (h *InventoryHandler) decrement(c *fiber.Ctx, op decrementFunc) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.AmountRequest
	if err := parseBody(c, &in); err != nil {
		return bodyError(c, err)
	}
	ev, err := op(c.Context(), id, in.Quantity, in.Note)
	if err != nil {
		return writeError(c, err, batchNotFound)
	}
	if ev == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: batchNotFound})
	}
	return c.JSON(dto.EventFromEntity(ev))
}

// BatchEvents godoc
// @Summary      Historia del lote
// @Tags         inventory
// @Produce      json
// @Param        id  path  string  true  "ID del lote (UUID)"
// @Success      200  {object}  map[string][]dto.EventResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/{id}/events [get]
func (h *InventoryHandler) BatchEvents(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	events, err := h.uc.BatchEvents(c.Context(), id)
	if err != nil {
		return writeError(c, err, batchNotFound)
	}
	return c.JSON(fiber.Map{"events": dto.EventsFromEntities(events)})
}

// Reconcile godoc
// @Summary      Conciliar lote
// @Description  Reproduce los eventos del lote y compara el resultado con la cantidad actual.
// @Tags         inventory
// @Produce      json
// @Param        id  path  string  true  "ID del lote (UUID)"
// @Success      200  {object}  inventory.Reconciliation
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/{id}/reconciliation [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	rec, err := h.uc.Reconcile(c.Context(), id)
	if err != nil {
		return writeError(c, err, batchNotFound)
	}
	return c.JSON(rec)
}

// RecentEvents godoc
// @Summary      Eventos recientes
// @Tags         inventory
// @Produce      json
// @Param        limit  query  int  false  "Máximo de eventos (por defecto 50)"
// @Success      200  {object}  map[string][]dto.EventResponse
// @Router       /api/inventory/events [get]
func (h *InventoryHandler) RecentEvents(c *fiber.Ctx) error {
	events, err := h.uc.RecentEvents(c.Context(), c.QueryInt("limit", inventory.DefaultRecentEvents))
	if err != nil {
		return writeError(c, err, batchNotFound)
	}
	return c.JSON(fiber.Map{"events": dto.EventsFromEntities(events)})
}

// Expiring godoc
// @Summary      Lotes por vencer
// @Description  Lotes en stock con vencimiento dentro de `days` días, incluidos los ya vencidos.
// @Tags         inventory
// @Produce      json
// @Param        days  query  int  false  "Ventana en días (por defecto 3)"
// @Success      200  {object}  map[string][]dto.ExpiringBatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/expiring [get]
func (h *InventoryHandler) Expiring(c *fiber.Ctx) error {
	days := c.QueryInt("days", inventory.SummaryExpiringDays)
	if days < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "days debe ser >= 0"})
	}
	list, err := h.uc.ExpiringWithin(c.Context(), days)
	if err != nil {
		return writeError(c, err, batchNotFound)
	}
	return c.JSON(fiber.Map{"batches": dto.ExpiringFromEntities(list)})
}

// Summary godoc
// @Summary      Indicadores del tablero
// @Tags         inventory
// @Produce      json
// @Success      200  {object}  inventory.Summary
// @Router       /api/inventory/summary [get]
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	s, err := h.uc.Summary(c.Context())
	if err != nil {
		return writeError(c, err, batchNotFound)
	}
	return c.JSON(s)
}
