package vision

import (
	"context"
	"time"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
)

// Detector backend de reconocimiento de alimentos registrable en el protocolo de backends.
type Detector interface {
	backend.Backend
	Detect(ctx context.Context, in DetectInput) ([]entity.Detection, error)
}

// DetectInput datos comunes a todos los detectores.
type DetectInput struct {
	ImageID string
	TopK    int
	Catalog *Catalog
	Today   time.Time
}

// ImageStore puerto de lectura de imágenes subidas.
type ImageStore interface {
	// Load devuelve el contenido de la imagen; domain.ErrNotFound si no existe.
	Load(ctx context.Context, imageID string) ([]byte, error)
}

// ImageUploader puerto de escritura de imágenes subidas.
type ImageUploader interface {
	// Save guarda la imagen con la extensión dada y devuelve su image_id.
	Save(ctx context.Context, ext string, data []byte) (string, error)
}
