package vision_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
	"github.com/jhoicas/Despensa-api/internal/application/vision"
	"github.com/jhoicas/Despensa-api/internal/domain"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/infrastructure/memory"
)

var today = time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func catalogStore(n int) *memory.Store {
	store := memory.NewStore()
	for i := 1; i <= n; i++ {
		it := entity.Item{ID: int64(i), Name: fmt.Sprintf("Ítem %02d", i), DefaultUnit: "pcs"}
		if i%2 == 0 {
			it.ShelfLifeDays = ptr(i)
		}
		store.AddItem(it)
	}
	return store
}

type failingDetector struct {
	err error
}

func (f *failingDetector) ID() string                  { return vision.DetectorHTTP }
func (f *failingDetector) Name() string                { return "falla" }
func (f *failingDetector) IsAvailable() (bool, string) { return true, "" }
func (f *failingDetector) Detect(context.Context, vision.DetectInput) ([]entity.Detection, error) {
	return nil, f.err
}

func newUseCase(store *memory.Store, extra ...vision.Detector) *vision.VisionUseCase {
	reg := backend.NewRegistry[vision.Detector](vision.NewMockDetector())
	for _, d := range extra {
		reg.Register(d)
	}
	return vision.NewVisionUseCase(store.Items(), reg, zerolog.Nop()).
		WithClock(func() time.Time { return today.Add(15 * time.Hour) })
}

// ── Mock ─────────────────────────────────────────────────────────────────────

func TestMockDetector_IsDeterministic(t *testing.T) {
	uc := newUseCase(catalogStore(20))
	ctx := context.Background()

	first, err := uc.Detect(ctx, "img-001", "mock", 0)
	require.NoError(t, err)
	second, err := uc.Detect(ctx, "img-001", "mock", 0)
	require.NoError(t, err)

	assert.Equal(t, first.Detections, second.Detections)
	assert.False(t, first.Meta.Degraded)
}

func TestMockDetector_SampleSizeAndRanges(t *testing.T) {
	ctx := context.Background()

	res, err := newUseCase(catalogStore(20)).Detect(ctx, "img-002", "mock", 0)
	require.NoError(t, err)
	assert.Len(t, res.Detections, 10, "catálogo grande: a lo sumo 10")

	res, err = newUseCase(catalogStore(20)).Detect(ctx, "img-002", "mock", 4)
	require.NoError(t, err)
	assert.Len(t, res.Detections, 4, "top_k acota la muestra")

	res, err = newUseCase(catalogStore(3)).Detect(ctx, "img-002", "mock", 0)
	require.NoError(t, err)
	assert.Len(t, res.Detections, 3, "catálogo chico: todos los ítems")

	seed := vision.StableHash("img-002")
	seen := map[int64]bool{}
	for _, d := range res.Detections {
		require.NotNil(t, d.ItemID)
		assert.False(t, seen[*d.ItemID], "ítem repetido")
		seen[*d.ItemID] = true
		assert.GreaterOrEqual(t, d.Confidence, 0.6)
		assert.LessOrEqual(t, d.Confidence, 0.95)
		assert.True(t, d.Quantity.GreaterThanOrEqual(vision.MinMockQuantity))
		assert.True(t, d.Quantity.LessThanOrEqual(vision.MaxMockQuantity))
		assert.Equal(t, fmt.Sprintf("det_%d_%d", *d.ItemID, seed), d.TempID)
		assert.Equal(t, "fridge", d.Location)
		assert.Equal(t, "pcs", d.Unit)

		wantDays := 5
		if *d.ItemID%2 == 0 {
			wantDays = int(*d.ItemID)
		}
		require.NotNil(t, d.SuggestExpireDate)
		assert.Equal(t, today.AddDate(0, 0, wantDays), *d.SuggestExpireDate)
	}
}

func TestMockDetector_EmptyCatalog(t *testing.T) {
	res, err := newUseCase(memory.NewStore()).Detect(context.Background(), "img", "mock", 0)
	require.NoError(t, err)
	assert.Empty(t, res.Detections)
	assert.NotNil(t, res.Detections)
}

func TestStableHash(t *testing.T) {
	h := vision.StableHash("img-001")
	assert.Equal(t, h, vision.StableHash("img-001"))
	assert.GreaterOrEqual(t, h, int64(0))
	assert.Less(t, h, int64(100_000_000))
}

// ── Degradación ──────────────────────────────────────────────────────────────

func TestDetect_FallsBackToMock(t *testing.T) {
	uc := newUseCase(catalogStore(8), &failingDetector{
		err: backend.NewError(backend.ErrResponseErrorKind, vision.DetectorHTTP, "502 Bad Gateway"),
	})

	res, err := uc.Detect(context.Background(), "img-9", "http", 0)
	require.NoError(t, err)
	assert.Equal(t, "http", res.Meta.Requested)
	assert.Equal(t, "mock", res.Meta.Used)
	assert.True(t, res.Meta.Degraded)
	assert.Equal(t, "BACKEND_RESPONSE_ERROR: 502 Bad Gateway", res.Meta.Reason)
	assert.Len(t, res.Detections, 8)
}

type recordSpy struct {
	kinds []string
	metas []backend.Meta
}

func (r *recordSpy) Record(kind string, meta backend.Meta, _ error) {
	r.kinds = append(r.kinds, kind)
	r.metas = append(r.metas, meta)
}

func TestDetect_RecordsOutcome(t *testing.T) {
	spy := &recordSpy{}
	uc := newUseCase(catalogStore(3)).WithRecorder(spy)

	_, err := uc.Detect(context.Background(), "img-1", "local", 0)
	require.NoError(t, err)
	require.Len(t, spy.metas, 1)
	assert.Equal(t, "detector", spy.kinds[0])
	assert.Equal(t, "local", spy.metas[0].Requested)
	assert.True(t, spy.metas[0].Degraded)
}

func TestDetect_UnknownProviderFallsBack(t *testing.T) {
	res, err := newUseCase(catalogStore(8)).Detect(context.Background(), "img-9", "hf_owlvit", 0)
	require.NoError(t, err)
	assert.True(t, res.Meta.Degraded)
	assert.Contains(t, res.Meta.Reason, "BACKEND_NOT_FOUND")
}

func TestDetect_Validation(t *testing.T) {
	uc := newUseCase(catalogStore(1))
	_, err := uc.Detect(context.Background(), "", "mock", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Detect(context.Background(), "img", "mock", 500)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestListProviders(t *testing.T) {
	uc := newUseCase(catalogStore(1), &failingDetector{})
	list := uc.ListProviders()
	require.Len(t, list, 2)
	assert.Equal(t, "mock", list[0].ID)
	assert.Equal(t, "http", list[1].ID)
}

// ── Subida ───────────────────────────────────────────────────────────────────

type memUploads struct {
	saved map[string][]byte
}

func (m *memUploads) Save(_ context.Context, ext string, data []byte) (string, error) {
	id := fmt.Sprintf("img_%d", len(m.saved)+1)
	m.saved[id+ext] = data
	return id, nil
}

func TestUpload(t *testing.T) {
	up := &memUploads{saved: map[string][]byte{}}
	uc := newUseCase(catalogStore(1)).WithUploads(up)

	res, err := uc.Upload(context.Background(), "Nevera.JPG", []byte{0xff, 0xd8})
	require.NoError(t, err)
	assert.Equal(t, "img_1", res.ImageID)
	assert.Contains(t, up.saved, "img_1.jpg")

	_, err = uc.Upload(context.Background(), "notas.txt", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Upload(context.Background(), "vacia.png", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpload_Disabled(t *testing.T) {
	_, err := newUseCase(catalogStore(1)).Upload(context.Background(), "a.png", []byte{1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
