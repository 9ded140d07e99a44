package backend

import (
	"errors"
	"fmt"

	"github.com/jhoicas/Despensa-api/internal/domain"
)

// Clases de error del protocolo (alias de los sentinels de dominio).
var (
	ErrNotFoundKind        = domain.ErrBackendNotFound
	ErrNotAvailableKind    = domain.ErrBackendNotAvailable
	ErrResponseInvalidKind = domain.ErrBackendResponseInvalid
	ErrResponseErrorKind   = domain.ErrBackendResponseError
	ErrConfigKind          = domain.ErrBackendConfig

	errPanic = errors.New("panic en backend")
)

// Códigos que viajan en Meta.Reason.
const (
	CodeNotFound        = "BACKEND_NOT_FOUND"
	CodeNotAvailable    = "BACKEND_NOT_AVAILABLE"
	CodeResponseInvalid = "BACKEND_RESPONSE_INVALID"
	CodeResponseError   = "BACKEND_RESPONSE_ERROR"
	CodeConfig          = "BACKEND_CONFIG_ERROR"
	CodeGeneric         = "BACKEND_ERROR"
)

// Error fallo tipado de un backend. errors.Is funciona contra Kind y contra Err.
type Error struct {
	Kind    error
	Backend string
	Reason  string
	Err     error
}

// NewError construye un error de backend sin causa subyacente.
func NewError(kind error, backendID, reason string) *Error {
	return &Error{Kind: kind, Backend: backendID, Reason: reason}
}

// WrapError construye un error de backend conservando la causa.
func WrapError(kind error, backendID string, err error) *Error {
	return &Error{Kind: kind, Backend: backendID, Reason: err.Error(), Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend %q: %s: %s", e.Backend, e.Kind, e.Reason)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Code devuelve el código estable de un error de backend.
func Code(err error) string {
	switch {
	case errors.Is(err, domain.ErrBackendNotFound):
		return CodeNotFound
	case errors.Is(err, domain.ErrBackendNotAvailable):
		return CodeNotAvailable
	case errors.Is(err, domain.ErrBackendResponseInvalid):
		return CodeResponseInvalid
	case errors.Is(err, domain.ErrBackendResponseError):
		return CodeResponseError
	case errors.Is(err, domain.ErrBackendConfig):
		return CodeConfig
	default:
		return CodeGeneric
	}
}

// reason formatea "<CODE>: <mensaje>".
func reason(err error) string {
	msg := err.Error()
	var be *Error
	if errors.As(err, &be) {
		msg = be.Reason
	}
	return Code(err) + ": " + msg
}
