package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Despensa-api/internal/domain"
)

// Meta describe qué backend atendió la solicitud y si hubo degradación.
type Meta struct {
	Requested string `json:"requested"`
	Used      string `json:"used"`
	Degraded  bool   `json:"degraded"`
	Reason    string `json:"reason"`
}

// Run resuelve requested y ejecuta call. Cualquier fallo (resolución, ejecución o panic)
// provoca un único reintento con baseline. Solo el fallo del baseline llega al llamador,
// envuelto en domain.ErrBaselineFailed. No guarda estado entre llamadas.
func Run[T Backend, R any](
	ctx context.Context,
	reg *Registry[T],
	requested, baseline string,
	call func(ctx context.Context, b T) (R, error),
) (R, Meta, error) {
	if requested == "" {
		requested = baseline
	}
	meta := Meta{Requested: requested, Used: requested}

	res, err := attempt(ctx, reg, requested, call)
	if err == nil {
		return res, meta, nil
	}
	if requested == baseline {
		var zero R
		return zero, meta, fmt.Errorf("%w: %w", domain.ErrBaselineFailed, err)
	}

	meta.Used = baseline
	meta.Degraded = true
	meta.Reason = reason(err)
	zerolog.Ctx(ctx).Warn().
		Str("requested", requested).
		Str("used", baseline).
		Str("reason", meta.Reason).
		Msg("backend degradado al base")

	res, err = attempt(ctx, reg, baseline, call)
	if err != nil {
		var zero R
		return zero, meta, fmt.Errorf("%w: %w", domain.ErrBaselineFailed, err)
	}
	return res, meta, nil
}

func attempt[T Backend, R any](ctx context.Context, reg *Registry[T], id string, call func(context.Context, T) (R, error)) (res R, err error) {
	b, err := reg.Resolve(id)
	if err != nil {
		return res, err
	}
	defer func() {
		if p := recover(); p != nil {
			err = NewError(errPanic, id, fmt.Sprint(p))
		}
	}()
	return call(ctx, b)
}
