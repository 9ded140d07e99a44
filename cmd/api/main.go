package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
	"github.com/jhoicas/Despensa-api/internal/application/inventory"
	"github.com/jhoicas/Despensa-api/internal/application/menu"
	"github.com/jhoicas/Despensa-api/internal/application/vision"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
	infraai "github.com/jhoicas/Despensa-api/internal/infrastructure/ai"
	"github.com/jhoicas/Despensa-api/internal/infrastructure/memory"
	"github.com/jhoicas/Despensa-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Despensa-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Despensa-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Despensa-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Despensa-api/internal/interfaces/http"
	"github.com/jhoicas/Despensa-api/pkg/config"
	"github.com/jhoicas/Despensa-api/pkg/logger"
)

const defaultSeedFile = "data/catalog.json"

// stores repositorios y ejecutores de transacción de un driver.
type stores struct {
	items     repository.ItemRepository
	batches   repository.BatchRepository
	events    repository.InventoryEventRepository
	recipes   repository.RecipeRepository
	menus     repository.MenuRepository
	shopping  repository.ShoppingRepository
	ledgerTx  inventory.TxRunner
	menuTx    menu.MenuTxRunner
	closeFunc func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log.Component("migrate"))
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer st.closeFunc()

	images, err := storage.NewFileImageStore(cfg.Store.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("directorio de imágenes")
	}

	// Inventario
	ledgerUC := inventory.NewLedgerUseCase(st.ledgerTx, st.batches, st.events, st.items, st.recipes)

	// Visión: "mock" es el detector base
	detectors := backend.NewRegistry[vision.Detector](
		vision.NewMockDetector(),
		infraai.NewHTTPDetector(cfg.Vision.HTTP, images),
		infraai.NewOllamaDetector(cfg.Vision.Local, cfg.Vision.LabelMapJSON, images),
	)
	collector := metrics.New()
	visionUC := vision.NewVisionUseCase(st.items, detectors, log.Zerolog()).
		WithUploads(images).
		WithRecorder(collector)

	// Menús: "greedy" es el planificador base
	planners := backend.NewRegistry[menu.Planner](
		menu.NewGreedyPlanner(),
		menu.NewExternalPlanner(menu.PlannerHTTP, "Planificador HTTP externo",
			entity.ShoppingSourcePlannerHTTP, infraai.NewHTTPPlannerSelector(cfg.Planner.HTTP), cfg.Planner.TopK),
		menu.NewExternalPlanner(menu.PlannerLocal, "Modelo local (Ollama)",
			entity.ShoppingSourcePlannerLocal, infraai.NewOllamaPlannerSelector(cfg.Planner.Local), cfg.Planner.TopK),
	)
	pdfRenderer := infrapdf.NewMarotoShoppingListRenderer(cfg.App.Name)
	menuUC := menu.NewMenuUseCase(st.menuTx, st.menus, st.shopping, planners, pdfRenderer, log.Zerolog()).
		WithRecorder(collector)

	for _, b := range detectors.List() {
		log.Info().Str("detector", b.ID).Bool("available", b.Available).Str("reason", b.Reason).Msg("detector registrado")
	}
	for _, b := range planners.List() {
		log.Info().Str("planner", b.ID).Bool("available", b.Available).Str("reason", b.Reason).Msg("planificador registrado")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    vision.MaxImageBytes + 1<<20,
	})
	app.Use(recover.New())
	app.Use(collector.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Despensa API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	app.Get("/metrics", collector.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:              ledgerUC,
		VisionUC:              visionUC,
		MenuUC:                menuUC,
		DefaultVisionProvider: cfg.Vision.DefaultProvider,
		DefaultPlanner:        cfg.Planner.Default,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStores conecta PostgreSQL (aplicando migraciones) o arma el almacén en memoria con el catálogo.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		store := memory.NewStore()
		path := cfg.Store.SeedFile
		if path == "" {
			path = defaultSeedFile
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("abrir catálogo: %w", err)
		}
		defer f.Close()
		if err := store.LoadCatalog(f); err != nil {
			return nil, fmt.Errorf("cargar catálogo: %w", err)
		}
		return &stores{
			items: store.Items(), batches: store.Batches(), events: store.Events(),
			recipes: store.Recipes(), menus: store.Menus(), shopping: store.Shopping(),
			ledgerTx: store, menuTx: store, closeFunc: func() {},
		}, nil
	}

	if err := postgres.Migrate(cfg.DB, log); err != nil {
		return nil, err
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	txRunner := postgres.NewTxRunner(pool)
	return &stores{
		items:     postgres.NewItemRepository(pool),
		batches:   postgres.NewBatchRepository(pool),
		events:    postgres.NewEventRepository(pool),
		recipes:   postgres.NewRecipeRepository(pool),
		menus:     postgres.NewMenuRepository(pool),
		shopping:  postgres.NewShoppingRepository(pool),
		ledgerTx:  txRunner,
		menuTx:    txRunner,
		closeFunc: pool.Close,
	}, nil
}
