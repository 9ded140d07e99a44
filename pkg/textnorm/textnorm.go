// Package textnorm normaliza nombres de alimentos para compararlos entre fuentes
// (catálogo, detecciones externas, filtros de búsqueda).
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Key forma canónica de un nombre: NFKC, sin espacios extremos y en minúsculas.
func Key(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

// Contains indica si haystack contiene needle tras normalizar ambos.
func Contains(haystack, needle string) bool {
	return strings.Contains(Key(haystack), Key(needle))
}
