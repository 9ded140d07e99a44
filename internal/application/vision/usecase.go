// Package vision reconoce alimentos en fotos de la heladera con detectores intercambiables.
// Las detecciones son sugerencias: el ingreso al inventario lo confirma el usuario.
package vision

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
	"github.com/jhoicas/Despensa-api/internal/domain"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
	"github.com/jhoicas/Despensa-api/pkg/dates"
)

// Valores por defecto de una detección.
const (
	DefaultTopK = 12
	MaxTopK     = 50

	MaxImageBytes = 10 << 20
)

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// VisionUseCase detecta alimentos con el detector pedido y degrada a "mock" ante fallos.
type VisionUseCase struct {
	itemRepo  repository.ItemRepository
	detectors *backend.Registry[Detector]
	uploads   ImageUploader
	recorder  backend.Recorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewVisionUseCase construye el caso de uso.
func NewVisionUseCase(itemRepo repository.ItemRepository, detectors *backend.Registry[Detector], logger zerolog.Logger) *VisionUseCase {
	return &VisionUseCase{
		itemRepo:  itemRepo,
		detectors: detectors,
		recorder:  backend.NopRecorder,
		logger:    logger.With().Str("component", "vision").Logger(),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *VisionUseCase) WithClock(now func() time.Time) *VisionUseCase {
	uc.now = now
	return uc
}

// WithUploads habilita la subida de imágenes.
func (uc *VisionUseCase) WithUploads(u ImageUploader) *VisionUseCase {
	uc.uploads = u
	return uc
}

// WithRecorder registra cada resolución de detector (métricas).
func (uc *VisionUseCase) WithRecorder(r backend.Recorder) *VisionUseCase {
	uc.recorder = r
	return uc
}

// UploadResult identificador de la imagen guardada.
type UploadResult struct {
	ImageID string `json:"image_id"`
}

// Upload guarda una foto (jpg, png o webp) y devuelve el image_id con el que se detecta.
func (uc *VisionUseCase) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	if uc.uploads == nil {
		return nil, domain.ErrNotFound
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] || len(data) == 0 || len(data) > MaxImageBytes {
		return nil, domain.ErrInvalidInput
	}
	id, err := uc.uploads.Save(ctx, ext, data)
	if err != nil {
		return nil, err
	}
	uc.logger.Info().Str("image_id", id).Int("bytes", len(data)).Msg("imagen subida")
	return &UploadResult{ImageID: id}, nil
}

// DetectResult detecciones y qué detector las produjo.
type DetectResult struct {
	ImageID    string             `json:"image_id"`
	Detections []entity.Detection `json:"detections"`
	Meta       backend.Meta       `json:"meta"`
}

// Detect reconoce los alimentos de la imagen. topK <= 0 usa DefaultTopK.
func (uc *VisionUseCase) Detect(ctx context.Context, imageID, provider string, topK int) (*DetectResult, error) {
	if imageID == "" || topK > MaxTopK {
		return nil, domain.ErrInvalidInput
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	items, err := uc.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	in := DetectInput{ImageID: imageID, TopK: topK, Catalog: NewCatalog(items), Today: dates.Day(uc.now())}

	ctx = uc.logger.WithContext(ctx)
	detections, meta, err := backend.Run(ctx, uc.detectors, provider, DetectorMock,
		func(ctx context.Context, d Detector) ([]entity.Detection, error) {
			return d.Detect(ctx, in)
		})
	uc.recorder.Record("detector", meta, err)
	if err != nil {
		return nil, err
	}
	if detections == nil {
		detections = []entity.Detection{}
	}
	uc.logger.Debug().
		Str("image_id", imageID).
		Str("detector", meta.Used).
		Int("detections", len(detections)).
		Msg("imagen procesada")
	return &DetectResult{ImageID: imageID, Detections: detections, Meta: meta}, nil
}

// ListProviders describe los detectores registrados y su disponibilidad.
func (uc *VisionUseCase) ListProviders() []backend.Info {
	return uc.detectors.List()
}
