// Package backend implementa el protocolo de resolución de backends intercambiables
// (planificadores de menú y detectores de imagen) con degradación a un backend base.
package backend

import (
	"sync"
)

// Backend contrato mínimo de cualquier implementación registrable.
type Backend interface {
	ID() string
	Name() string
	// IsAvailable indica si el backend puede usarse; si no, devuelve el motivo.
	IsAvailable() (bool, string)
}

// Info descripción pública de un backend registrado.
type Info struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Registry backends indexados por ID; List respeta el orden de registro.
type Registry[T Backend] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T
}

// NewRegistry construye un registro con los backends dados.
func NewRegistry[T Backend](backends ...T) *Registry[T] {
	r := &Registry[T]{items: make(map[string]T, len(backends))}
	for _, b := range backends {
		r.Register(b)
	}
	return r
}

// Register agrega o reemplaza un backend.
func (r *Registry[T]) Register(b T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[b.ID()]; !ok {
		r.order = append(r.order, b.ID())
	}
	r.items[b.ID()] = b
}

// Resolve devuelve el backend si existe y está disponible.
func (r *Registry[T]) Resolve(id string) (T, error) {
	r.mu.RLock()
	b, ok := r.items[id]
	r.mu.RUnlock()
	var zero T
	if !ok {
		return zero, NewError(ErrNotFoundKind, id, "backend no registrado")
	}
	if available, reason := b.IsAvailable(); !available {
		return zero, NewError(ErrNotAvailableKind, id, reason)
	}
	return b, nil
}

// List describe todos los backends registrados, incluida su disponibilidad actual.
func (r *Registry[T]) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		b := r.items[id]
		available, reason := b.IsAvailable()
		out = append(out, Info{ID: b.ID(), Name: b.Name(), Available: available, Reason: reason})
	}
	return out
}
