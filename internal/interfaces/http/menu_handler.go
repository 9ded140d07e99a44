package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Despensa-api/internal/application/dto"
	"github.com/jhoicas/Despensa-api/internal/application/menu"
)

const menuNotFound = "menú no encontrado"

// MenuHandler maneja la generación de menús y sus listas de compras.
type MenuHandler struct {
	uc             *menu.MenuUseCase
	defaultPlanner string
}

// NewMenuHandler construye el handler. defaultPlanner se usa cuando el pedido no indica planificador.
func NewMenuHandler(uc *menu.MenuUseCase, defaultPlanner string) *MenuHandler {
	return &MenuHandler{uc: uc, defaultPlanner: defaultPlanner}
}

// Generate godoc
// @Summary      Generar menú
// @Description  Arma un menú de `days` días (almuerzo y cena) priorizando lo que ya hay y lo que vence pronto.
// @Description  Si el planificador pedido falla se usa "greedy" y meta.degraded=true. No modifica el inventario.
// @Tags         menus
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateMenuRequest  true  "days 1-14, servings 1-20, constraints, planner"
// @Success      201   {object}  dto.GenerateMenuResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/menus [post]
func (h *MenuHandler) Generate(c *fiber.Ctx) error {
	in := dto.GenerateMenuRequest{Days: 3, Servings: 2}
	if err := parseBody(c, &in); err != nil {
		return bodyError(c, err)
	}
	planner := in.Planner
	if planner == "" {
		planner = h.defaultPlanner
	}
	res, err := h.uc.GenerateMenu(c.Context(), menu.Request{
		Days:        in.Days,
		Servings:    in.Servings,
		Constraints: in.Constraints,
		Planner:     planner,
	})
	if err != nil {
		return writeError(c, err, menuNotFound)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.GenerateMenuResponse{
		Menu:         dto.MenuFromEntity(res.Menu),
		ShoppingList: dto.ShoppingListFromValues(res.ShoppingList),
		Meta:         res.Meta,
	})
}

// Planners godoc
// @Summary      Planificadores disponibles
// @Tags         menus
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/menus/planners [get]
func (h *MenuHandler) Planners(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"default": h.defaultPlanner, "planners": h.uc.ListPlanners()})
}

// GetByID godoc
// @Summary      Obtener menú
// @Tags         menus
// @Produce      json
// @Param        id  path  string  true  "ID del menú (UUID)"
// @Success      200  {object}  dto.MenuResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/menus/{id} [get]
func (h *MenuHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	m, err := h.uc.GetMenu(c.Context(), id)
	if err != nil {
		return writeError(c, err, menuNotFound)
	}
	return c.JSON(dto.MenuFromEntity(m))
}

// ShoppingList godoc
// @Summary      Lista de compras del menú
// @Description  Pendientes primero y luego por nombre.
// @Tags         menus
// @Produce      json
// @Param        id  path  string  true  "ID del menú (UUID)"
// @Success      200  {object}  map[string][]dto.ShoppingItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/menus/{id}/shopping-list [get]
func (h *MenuHandler) ShoppingList(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	items, err := h.uc.ShoppingList(c.Context(), id)
	if err != nil {
		return writeError(c, err, menuNotFound)
	}
	return c.JSON(fiber.Map{"items": dto.ShoppingItemsFromEntities(items)})
}

// ShoppingListPDF godoc
// @Summary      Lista de compras en PDF
// @Tags         menus
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del menú (UUID)"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/menus/{id}/shopping-list.pdf [get]
func (h *MenuHandler) ShoppingListPDF(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	pdf, err := h.uc.ShoppingListPDF(c.Context(), id)
	if err != nil {
		return writeError(c, err, menuNotFound)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="lista-compras-%s.pdf"`, id[:8]))
	return c.Send(pdf)
}

// SetChecked godoc
// @Summary      Marcar línea de compra
// @Tags         menus
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la línea (UUID)"
// @Param        body  body  dto.SetCheckedRequest  true  "checked"
// @Success      200   {object}  dto.ShoppingItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/shopping-items/{id} [patch]
func (h *MenuHandler) SetChecked(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.SetCheckedRequest
	if err := parseBody(c, &in); err != nil {
		return bodyError(c, err)
	}
	it, err := h.uc.SetChecked(c.Context(), id, *in.Checked)
	if err != nil {
		return writeError(c, err, "línea de compra no encontrada")
	}
	return c.JSON(dto.ShoppingItemFromEntity(it))
}
