package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores del protocolo de resolución de backends (planificadores y detectores).
// Todos salvo ErrBaselineFailed provocan la degradación al backend base.
var (
	ErrBackendNotFound        = errors.New("backend no registrado")
	ErrBackendNotAvailable    = errors.New("backend no disponible")
	ErrBackendResponseInvalid = errors.New("respuesta del backend inválida")
	ErrBackendResponseError   = errors.New("el backend respondió con error")
	ErrBackendConfig          = errors.New("configuración del backend inválida")
	ErrBaselineFailed         = errors.New("falló el backend base")
)
