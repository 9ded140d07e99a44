package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
	"github.com/jhoicas/Despensa-api/internal/application/inventory"
	"github.com/jhoicas/Despensa-api/internal/application/menu"
	"github.com/jhoicas/Despensa-api/internal/application/vision"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/infrastructure/memory"
	"github.com/jhoicas/Despensa-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Despensa-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/Despensa-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

const (
	itemEgg int64 = iota + 1
	itemRice
	itemOil
)

func ptr[T any](v T) *T { return &v }

func seedStore() *memory.Store {
	store := memory.NewStore()
	store.AddItem(entity.Item{ID: itemEgg, Name: "Huevo", Category: "proteína", DefaultUnit: "pcs", ShelfLifeDays: ptr(21)})
	store.AddItem(entity.Item{ID: itemRice, Name: "Arroz", Category: "granos", DefaultUnit: "g"})
	store.AddItem(entity.Item{ID: itemOil, Name: "Aceite", Category: "despensa", DefaultUnit: "ml"})
	store.AddRecipe(entity.Recipe{ID: 10, Name: "Arroz con huevo", Allergens: "egg"}, []entity.RecipeIngredient{
		{ItemID: itemEgg, Quantity: decimal.NewFromInt(2), Unit: "pcs"},
		{ItemID: itemRice, Quantity: decimal.NewFromInt(150), Unit: "g"},
	})
	store.AddRecipe(entity.Recipe{ID: 20, Name: "Arroz al aceite"}, []entity.RecipeIngredient{
		{ItemID: itemRice, Quantity: decimal.NewFromInt(100), Unit: "g"},
		{ItemID: itemOil, Quantity: decimal.NewFromInt(10), Unit: "ml"},
	})
	return store
}

// buildTestApp arma la API completa sobre el almacén en memoria.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := seedStore()
	clock := func() time.Time { return fixedNow }

	images, err := storage.NewFileImageStore(t.TempDir())
	require.NoError(t, err)

	ledger := inventory.NewLedgerUseCase(store, store.Batches(), store.Events(), store.Items(), store.Recipes()).
		WithClock(clock)
	visionUC := vision.NewVisionUseCase(store.Items(), backend.NewRegistry[vision.Detector](vision.NewMockDetector()), zerolog.Nop()).
		WithClock(clock).
		WithUploads(images)
	menuUC := menu.NewMenuUseCase(store, store.Menus(), store.Shopping(),
		backend.NewRegistry[menu.Planner](menu.NewGreedyPlanner()),
		pdf.NewMarotoShoppingListRenderer("Despensa"), zerolog.Nop()).
		WithClock(clock)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	apphttp.Router(app, apphttp.RouterDeps{
		LedgerUC:              ledger,
		VisionUC:              visionUC,
		MenuUC:                menuUC,
		DefaultVisionProvider: vision.DetectorMock,
		DefaultPlanner:        menu.PlannerGreedy,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func createEggs(t *testing.T, app *fiber.App, qty string) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/inventory/batches", map[string]any{
		"item_id":     itemEgg,
		"quantity":    qty,
		"expire_date": "2026-04-12",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body["batch_id"].(string)
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateBatch_FillsFromCatalog(t *testing.T) {
	app := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/inventory/batches", map[string]any{
		"item_id":     itemEgg,
		"quantity":    "6",
		"expire_date": "2026-04-20",
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Huevo", body["item_name_snapshot"])
	assert.Equal(t, "pcs", body["unit"])
	assert.Equal(t, "fridge", body["location"])
	assert.Equal(t, "in_stock", body["status"])
	assert.Equal(t, "2026-04-20", body["expire_date"])
}

func TestCreateBatch_Validation(t *testing.T) {
	app := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/inventory/batches", map[string]any{"quantity": "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	resp, body = doJSON(t, app, http.MethodPost, "/api/inventory/batches", map[string]any{
		"item_name": "Leche", "quantity": "1", "expire_date": "20-04-2026",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", body["code"])

	resp, body = doJSON(t, app, http.MethodPost, "/api/inventory/batches", map[string]any{"item_id": 999, "quantity": "1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestConsume_ClampsAtZero(t *testing.T) {
	app := buildTestApp(t)
	id := createEggs(t, app, "3")

	resp, body := doJSON(t, app, http.MethodPost, "/api/inventory/batches/"+id+"/consume", map[string]any{"quantity": "5"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "consume", body["event_type"])
	assert.Equal(t, "-5", body["delta_quantity"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/inventory/batches?status=consumed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	batches := body["batches"].([]any)
	require.Len(t, batches, 1)
	assert.Equal(t, "0", batches[0].(map[string]any)["quantity"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/inventory/batches/"+id+"/reconciliation", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["consistent"])
}

func TestConsume_Errors(t *testing.T) {
	app := buildTestApp(t)
	id := createEggs(t, app, "3")

	resp, body := doJSON(t, app, http.MethodPost, "/api/inventory/batches/"+id+"/consume", map[string]any{"quantity": "0"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/inventory/batches/"+uuid.NewString()+"/discard", map[string]any{"quantity": "1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/api/inventory/batches/abc/consume", map[string]any{"quantity": "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", body["code"])
}

func TestAdjustAndEvents(t *testing.T) {
	app := buildTestApp(t)
	id := createEggs(t, app, "6")

	resp, body := doJSON(t, app, http.MethodPatch, "/api/inventory/batches/"+id, map[string]any{
		"quantity": "4", "location": "door", "expire_date": "2026-04-15", "note": "conteo",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4", body["quantity"])
	assert.Equal(t, "door", body["location"])
	assert.Equal(t, "2026-04-15", body["expire_date"])

	resp, body = doJSON(t, app, http.MethodPatch, "/api/inventory/batches/"+id, map[string]any{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/inventory/batches/"+id+"/events", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	events := body["events"].([]any)
	require.Len(t, events, 2)
	assert.Equal(t, "create", events[0].(map[string]any)["event_type"])
	assert.Equal(t, "adjust", events[1].(map[string]any)["event_type"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/inventory/events?limit=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["events"], 1)
}

func TestBulkCreate(t *testing.T) {
	app := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/inventory/batches/bulk", map[string]any{
		"source_ref_id": "img_0001",
		"items": []map[string]any{
			{"item_id": itemEgg, "quantity": "6", "suggest_expire_date": "2026-04-30"},
			{"item_name": "Kiwi"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	created := body["created"].([]any)
	require.Len(t, created, 2)
	first := created[0].(map[string]any)
	assert.Equal(t, "image", first["source_type"])
	assert.Equal(t, "img_0001", first["source_ref_id"])
	assert.Equal(t, "2026-04-30", first["expire_date"])
	assert.Equal(t, "1", created[1].(map[string]any)["quantity"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/inventory/batches/bulk", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExpiringAndSummary(t *testing.T) {
	app := buildTestApp(t)
	createEggs(t, app, "6") // vence en 2 días

	resp, body := doJSON(t, app, http.MethodGet, "/api/inventory/expiring", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	batches := body["batches"].([]any)
	require.Len(t, batches, 1)
	assert.EqualValues(t, 2, batches[0].(map[string]any)["days_left"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/inventory/expiring?days=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["batches"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/inventory/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["kpi_expiring"])
	assert.EqualValues(t, 1, body["kpi_batches"])
	assert.EqualValues(t, 2, body["kpi_recipes"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Visión
// ──────────────────────────────────────────────────────────────────────────────

func TestDetect_UnknownProviderDegradesToMock(t *testing.T) {
	app := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/vision/detect", map[string]any{
		"image_id": "img_0001", "provider": "http", "top_k": 3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	meta := body["meta"].(map[string]any)
	assert.Equal(t, "http", meta["requested"])
	assert.Equal(t, "mock", meta["used"])
	assert.Equal(t, true, meta["degraded"])
	assert.True(t, strings.HasPrefix(meta["reason"].(string), "BACKEND_NOT_FOUND"))
	assert.NotEmpty(t, body["detections"])
	assert.LessOrEqual(t, len(body["detections"].([]any)), 3)
}

func TestDetect_RequiresImageID(t *testing.T) {
	app := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/vision/detect", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestProviders(t *testing.T) {
	app := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/vision/providers", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "mock", body["default"])
	assert.Len(t, body["providers"], 1)
}

func uploadRequest(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/vision/images", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadImage(t *testing.T) {
	app := buildTestApp(t)

	resp, err := app.Test(uploadRequest(t, "nevera.PNG", []byte("\x89PNG fake")), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out vision.UploadResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, strings.HasPrefix(out.ImageID, "img_"))

	resp, err = app.Test(uploadRequest(t, "nevera.gif", []byte("GIF89a")), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Menús y lista de compras
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerateMenu_FlowThroughShoppingList(t *testing.T) {
	app := buildTestApp(t)
	createEggs(t, app, "6")
	_, _ = doJSON(t, app, http.MethodPost, "/api/inventory/batches", map[string]any{"item_id": itemRice, "quantity": "1000"})

	resp, body := doJSON(t, app, http.MethodPost, "/api/menus", map[string]any{"days": 1, "servings": 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	meta := body["meta"].(map[string]any)
	assert.Equal(t, "greedy", meta["used"])
	assert.Equal(t, false, meta["degraded"])

	m := body["menu"].(map[string]any)
	menuID := m["menu_id"].(string)
	items := m["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "2026-04-10", items[0].(map[string]any)["date"])
	assert.Equal(t, "lunch", items[0].(map[string]any)["meal_type"])

	shopping := body["shopping_list"].([]any)
	require.Len(t, shopping, 1)
	assert.Equal(t, "Aceite", shopping[0].(map[string]any)["item_name"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/menus/"+menuID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, menuID, body["menu_id"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/menus/"+menuID+"/shopping-list", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lines := body["items"].([]any)
	require.Len(t, lines, 1)
	lineID := lines[0].(map[string]any)["id"].(string)

	resp, body = doJSON(t, app, http.MethodPatch, "/api/shopping-items/"+lineID, map[string]any{"checked": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["checked"])

	resp, _ = doJSON(t, app, http.MethodPatch, "/api/shopping-items/"+lineID, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/menus/"+menuID+"/shopping-list.pdf", nil)
	pdfResp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer pdfResp.Body.Close()
	require.Equal(t, http.StatusOK, pdfResp.StatusCode)
	assert.Equal(t, "application/pdf", pdfResp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(pdfResp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	// generar un menú nunca toca el inventario
	resp, body = doJSON(t, app, http.MethodGet, "/api/inventory/events", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["events"], 2)
}

func TestGenerateMenu_AllergenExcluded(t *testing.T) {
	app := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/menus", map[string]any{
		"days": 2, "servings": 2, "constraints": map[string]any{"allergens_exclude": []string{"egg"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	items := body["menu"].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, 20, items[0].(map[string]any)["recipe_id"])
}

func TestGenerateMenu_Validation(t *testing.T) {
	app := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/menus", map[string]any{"days": 0, "servings": 2})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/menus", map[string]any{"days": 15, "servings": 2})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMenu_NotFound(t *testing.T) {
	app := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/menus/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/menus/"+uuid.NewString()+"/shopping-list", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPatch, "/api/shopping-items/"+uuid.NewString(), map[string]any{"checked": true})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPlanners(t *testing.T) {
	app := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/menus/planners", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "greedy", body["default"])
	planners := body["planners"].([]any)
	require.Len(t, planners, 1)
	assert.Equal(t, true, planners[0].(map[string]any)["available"])
}

func TestRequestValidationRules(t *testing.T) {
	app := buildTestApp(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   map[string]any
	}{
		{"bulk item sin nombre ni id", http.MethodPost, "/api/inventory/batches/bulk",
			map[string]any{"items": []map[string]any{{"quantity": "1"}}}},
		{"top_k fuera de rango", http.MethodPost, "/api/vision/detect",
			map[string]any{"image_id": "img-1", "top_k": 60}},
		{"servings fuera de rango", http.MethodPost, "/api/menus",
			map[string]any{"days": 2, "servings": 21}},
		{"checked ausente", http.MethodPatch, "/api/shopping-items/" + uuid.NewString(),
			map[string]any{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, app, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION", body["code"])
		})
	}
}

func TestMeta_ReasonPresentWhenNotDegraded(t *testing.T) {
	app := buildTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/menus", map[string]any{"days": 1, "servings": 1, "planner": "greedy"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	meta := body["meta"].(map[string]any)
	assert.Equal(t, false, meta["degraded"])
	require.Contains(t, meta, "reason")
	assert.Equal(t, "", meta["reason"])

	resp, body = doJSON(t, app, http.MethodPost, "/api/vision/detect", map[string]any{"image_id": "img_0002", "provider": "mock"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	meta = body["meta"].(map[string]any)
	assert.Equal(t, "mock", meta["used"])
	require.Contains(t, meta, "reason")
	assert.Equal(t, "", meta["reason"])
}
