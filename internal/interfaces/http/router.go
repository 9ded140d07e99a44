package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Despensa-api/internal/application/inventory"
	"github.com/jhoicas/Despensa-api/internal/application/menu"
	"github.com/jhoicas/Despensa-api/internal/application/vision"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC              *inventory.LedgerUseCase
	VisionUC              *vision.VisionUseCase
	MenuUC                *menu.MenuUseCase
	DefaultVisionProvider string
	DefaultPlanner        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Inventory
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	inv.Post("/batches", inventoryHandler.CreateBatch)
	inv.Post("/batches/bulk", inventoryHandler.BulkCreate)
	inv.Get("/batches", inventoryHandler.ListBatches)
	inv.Patch("/batches/:id", inventoryHandler.AdjustBatch)
	inv.Post("/batches/:id/consume", inventoryHandler.Consume)
	inv.Post("/batches/:id/discard", inventoryHandler.Discard)
	inv.Get("/batches/:id/events", inventoryHandler.BatchEvents)
	inv.Get("/batches/:id/reconciliation", inventoryHandler.Reconcile)
	inv.Get("/events", inventoryHandler.RecentEvents)
	inv.Get("/expiring", inventoryHandler.Expiring)
	inv.Get("/summary", inventoryHandler.Summary)

	// Vision
	vis := api.Group("/vision")
	visionHandler := NewVisionHandler(deps.VisionUC, deps.DefaultVisionProvider)
	vis.Post("/images", visionHandler.Upload)
	vis.Post("/detect", visionHandler.Detect)
	vis.Get("/providers", visionHandler.Providers)

	// Menus y lista de compras
	menus := api.Group("/menus")
	menuHandler := NewMenuHandler(deps.MenuUC, deps.DefaultPlanner)
	menus.Post("/", menuHandler.Generate)
	menus.Get("/planners", menuHandler.Planners)
	menus.Get("/:id", menuHandler.GetByID)
	menus.Get("/:id/shopping-list", menuHandler.ShoppingList)
	menus.Get("/:id/shopping-list.pdf", menuHandler.ShoppingListPDF)
	api.Patch("/shopping-items/:id", menuHandler.SetChecked)
}
