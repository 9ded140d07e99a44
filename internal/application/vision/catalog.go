package vision

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/pkg/dates"
	"github.com/jhoicas/Despensa-api/pkg/textnorm"
)

// DefaultShelfLifeDays vida útil asumida cuando el catálogo no la define.
const DefaultShelfLifeDays = 5

// Catalog ítems del catálogo indexados por nombre normalizado.
type Catalog struct {
	items  []*entity.Item
	byName map[string]*entity.Item
}

// NewCatalog indexa los ítems; el orden de Items() es por ID.
func NewCatalog(items []*entity.Item) *Catalog {
	sorted := append([]*entity.Item(nil), items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	c := &Catalog{items: sorted, byName: make(map[string]*entity.Item, len(items))}
	for _, it := range sorted {
		c.byName[textnorm.Key(it.Name)] = it
	}
	return c
}

// Items ítems ordenados por ID.
func (c *Catalog) Items() []*entity.Item { return c.items }

// Len cantidad de ítems.
func (c *Catalog) Len() int { return len(c.items) }

// Lookup busca un ítem por nombre (NFKC, sin distinguir mayúsculas).
func (c *Catalog) Lookup(name string) (*entity.Item, bool) {
	it, ok := c.byName[textnorm.Key(name)]
	return it, ok
}

// ShelfLifeExpiry fecha sugerida de vencimiento: hoy + vida útil (5 días si no se conoce).
func ShelfLifeExpiry(item *entity.Item, today time.Time) time.Time {
	days := DefaultShelfLifeDays
	if item != nil && item.ShelfLifeDays != nil && *item.ShelfLifeDays > 0 {
		days = *item.ShelfLifeDays
	}
	return dates.AddDays(today, days)
}

// ExternalDetection detección tal como la devuelve un servicio externo.
type ExternalDetection struct {
	TempID            string
	Name              string
	Confidence        *float64
	Quantity          *float64
	Unit              string
	SuggestExpireDate string
	SuggestExpireDays *int
	Location          string
}

// Normalize vincula una detección externa con el catálogo y completa valores por defecto:
// confianza 0, cantidad 1, unidad del catálogo, ubicación "fridge".
func Normalize(imageID string, idx int, ext ExternalDetection, catalog *Catalog, today time.Time) entity.Detection {
	name := ext.Name
	if name == "" {
		name = "Desconocido"
	}
	d := entity.Detection{
		TempID:     ext.TempID,
		ItemName:   name,
		Confidence: 0,
		Quantity:   decimal.NewFromInt(1),
		Unit:       ext.Unit,
		Location:   ext.Location,
	}
	if d.TempID == "" {
		d.TempID = fmt.Sprintf("det_http_%s_%d", imageID, idx)
	}
	if ext.Confidence != nil {
		d.Confidence = clamp01(*ext.Confidence)
	}
	if ext.Quantity != nil && *ext.Quantity > 0 {
		d.Quantity = decimal.NewFromFloat(*ext.Quantity)
	}
	if d.Location == "" {
		d.Location = entity.DefaultLocation
	}
	item, ok := catalog.Lookup(name)
	if ok {
		id := item.ID
		d.ItemID = &id
		d.ItemName = item.Name
	}
	if d.Unit == "" {
		d.Unit = item.UnitOrDefault()
	}
	switch {
	case ext.SuggestExpireDate != "":
		if t, err := dates.Parse(ext.SuggestExpireDate); err == nil {
			d.SuggestExpireDate = t
		}
	case ext.SuggestExpireDays != nil:
		t := dates.AddDays(today, *ext.SuggestExpireDays)
		d.SuggestExpireDate = &t
	}
	return d
}

// LabelScore etiqueta reconocida por un modelo con su puntaje.
type LabelScore struct {
	Label string
	Score float64
}

// GroupLabels agrupa etiquetas del modelo por ítem: la cantidad es el número de apariciones
// y la confianza el promedio (3 decimales). labelMap traduce etiquetas del modelo a nombres
// del catálogo. Devuelve las topK de mayor confianza.
func GroupLabels(imageID, prefix string, labels []LabelScore, labelMap map[string]string, catalog *Catalog, today time.Time, topK int) []entity.Detection {
	type group struct {
		det   entity.Detection
		sum   float64
		count int
	}
	mapping := make(map[string]string, len(labelMap))
	for from, to := range labelMap {
		mapping[textnorm.Key(from)] = to
	}
	var order []string
	groups := make(map[string]*group)
	for _, ls := range labels {
		name := ls.Label
		if mapped, ok := mapping[textnorm.Key(name)]; ok {
			name = mapped
		}
		if name == "" {
			continue
		}
		key := textnorm.Key(name)
		g, ok := groups[key]
		if !ok {
			item, found := catalog.Lookup(name)
			det := entity.Detection{
				TempID:   fmt.Sprintf("det_%s_%s_%s", prefix, imageID, key),
				ItemName: name,
				Location: entity.DefaultLocation,
			}
			var ref *entity.Item
			if found {
				id := item.ID
				det.ItemID = &id
				det.ItemName = item.Name
				ref = item
			}
			det.Unit = ref.UnitOrDefault()
			exp := ShelfLifeExpiry(ref, today)
			det.SuggestExpireDate = &exp
			g = &group{det: det}
			groups[key] = g
			order = append(order, key)
		}
		g.sum += clamp01(ls.Score)
		g.count++
	}

	out := make([]entity.Detection, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.det.Confidence = round(g.sum/float64(g.count), 3)
		g.det.Quantity = decimal.NewFromInt(int64(g.count))
		out = append(out, g.det)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
