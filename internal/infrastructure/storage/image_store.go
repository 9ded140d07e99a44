// Package storage guarda las fotos subidas en disco.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Despensa-api/internal/application/vision"
	"github.com/jhoicas/Despensa-api/internal/domain"
)

var imageIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// FileImageStore imágenes en <dir>/<image_id>.<ext>.
type FileImageStore struct {
	dir string
}

var (
	_ vision.ImageStore    = (*FileImageStore)(nil)
	_ vision.ImageUploader = (*FileImageStore)(nil)
)

// NewFileImageStore crea el directorio si no existe.
func NewFileImageStore(dir string) (*FileImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de imágenes: %w", err)
	}
	return &FileImageStore{dir: dir}, nil
}

// Load busca <image_id>.* en el directorio. Un id con caracteres de ruta se rechaza.
func (s *FileImageStore) Load(ctx context.Context, imageID string) ([]byte, error) {
	if !imageIDPattern.MatchString(imageID) {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, imageID+".*"))
	if err != nil {
		return nil, fmt.Errorf("buscar imagen: %w", err)
	}
	if len(matches) == 0 {
		return nil, domain.ErrNotFound
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("leer imagen: %w", err)
	}
	return data, nil
}

// Save escribe la imagen con un id nuevo img_<8 hex>.
func (s *FileImageStore) Save(ctx context.Context, ext string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, `/\`) {
		return "", domain.ErrInvalidInput
	}
	id := "img_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	path := filepath.Join(s.dir, id+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("guardar imagen: %w", err)
	}
	return id, nil
}
