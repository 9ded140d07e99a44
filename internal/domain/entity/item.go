package entity

// Item es una entrada del catálogo de alimentos (dato de referencia, inmutable).
type Item struct {
	ID            int64
	Name          string // único
	Category      string
	DefaultUnit   string
	ShelfLifeDays *int // vida útil por defecto en días; nil = desconocida
}

// UnitOrDefault devuelve la unidad por defecto del catálogo o "unit" si está vacía.
func (i *Item) UnitOrDefault() string {
	if i == nil || i.DefaultUnit == "" {
		return DefaultUnit
	}
	return i.DefaultUnit
}

// DefaultUnit unidad genérica cuando el catálogo no define una.
const DefaultUnit = "unit"
