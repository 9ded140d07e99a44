// Package dates agrupa utilidades de fechas sin hora (día calendario en UTC).
package dates

import (
	"fmt"
	"time"
)

// Layout formato ISO de fecha usado en la API y en la base de datos.
const Layout = "2006-01-02"

// Day trunca t a medianoche UTC conservando el día calendario local de t.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween días calendario de from a to (negativo si to es anterior).
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

// AddDays suma n días calendario a t.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// Parse interpreta una fecha YYYY-MM-DD. Cadena vacía devuelve nil.
func Parse(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return nil, fmt.Errorf("fecha inválida %q: %w", s, err)
	}
	return &t, nil
}

// Format devuelve la fecha como YYYY-MM-DD o "" si es nil.
func Format(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(Layout)
}
