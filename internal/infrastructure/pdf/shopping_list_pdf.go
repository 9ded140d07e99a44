// Package pdf genera la versión imprimible de la lista de compras de un menú.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Lista de compras + menú   │  Fecha + planificador  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MENÚ: Fecha | Comida | Receta                               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: ☐ | Ítem | Cantidad | Unidad | Faltante              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el id del menú + leyenda                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Despensa-api/internal/application/menu"
	"github.com/jhoicas/Despensa-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 34, Green: 110, Blue: 70}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var mealLabels = map[string]string{
	entity.MealLunch:  "Almuerzo",
	entity.MealDinner: "Cena",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoShoppingListRenderer implementa menu.ShoppingListRenderer usando Maroto v2.
type MarotoShoppingListRenderer struct {
	author string
}

var _ menu.ShoppingListRenderer = (*MarotoShoppingListRenderer)(nil)

// NewMarotoShoppingListRenderer construye el generador; author aparece en los metadatos del PDF.
func NewMarotoShoppingListRenderer(author string) *MarotoShoppingListRenderer {
	return &MarotoShoppingListRenderer{author: author}
}

// RenderShoppingList genera el PDF y devuelve sus bytes.
func (g *MarotoShoppingListRenderer) RenderShoppingList(plan *entity.MenuPlan, items []*entity.ShoppingListItem) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Lista de compras", true).
		WithAuthor(nonEmpty(g.author, "despensa-api"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(plan))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionTitle("MENÚ"))
	m.AddRows(menuHeaderRow())
	m.AddRows(menuRows(plan)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle(fmt.Sprintf("POR COMPRAR (%d)", pending(items))))
	m.AddRows(tableHeaderRow())
	if len(items) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("El inventario cubre todas las recetas del menú.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 2,
			}),
		)))
	}
	m.AddRows(tableDetailRows(items)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(plan))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + id del menú (izq) y fecha + planificador (der).
func headerRow(plan *entity.MenuPlan) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("LISTA DE COMPRAS", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Menú %s · %d días · %d porciones", shortID(plan.ID), plan.Days, plan.Servings), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Generado: "+plan.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Planificador: "+plan.Planner, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func sectionTitle(label string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func menuHeaderRow() core.Row {
	h := func(label string, size int) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Top: 1, Left: 1}))
	}
	return row.New(6).Add(h("Fecha", 3), h("Comida", 2), h("Receta", 7))
}

// menuRows: una fila por franja del menú.
func menuRows(plan *entity.MenuPlan) []core.Row {
	result := make([]core.Row, 0, len(plan.Items))
	for _, it := range plan.Items {
		result = append(result, row.New(6).Add(
			col.New(3).Add(text.New(it.Date.Format("02/01/2006"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(mealLabels[it.MealType], it.MealType), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(7).Add(text.New(it.RecipeName, props.Text{Size: 8, Top: 1, Left: 1})),
		))
	}
	return result
}

// tableHeaderRow: cabecera de la tabla de compras.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(7).Add(
		h("", 1, align.Center),
		h("Ítem", 5, align.Left),
		h("Cantidad", 2, align.Right),
		h("Unidad", 2, align.Left),
		h("Faltante", 2, align.Right),
	)
}

// tableDetailRows: una fila por línea; las ya compradas van en gris.
func tableDetailRows(items []*entity.ShoppingListItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		mark := "[ ]"
		var color *props.Color
		if it.Checked {
			mark = "[x]"
			color = colorGray
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(mark, props.Text{Size: 8, Align: align.Center, Top: 1, Color: color})),
			col.New(5).Add(text.New(it.ItemNameSnapshot, props.Text{Size: 8, Top: 1, Left: 1, Color: color})),
			col.New(2).Add(text.New(it.NeedQty.StringFixed(1), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: color})),
			col.New(2).Add(text.New(it.Unit, props.Text{Size: 8, Top: 1, Left: 1, Color: color})),
			col.New(2).Add(text.New(it.Reason.Gap.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: colorGray})),
		))
	}
	return result
}

// footerRow: QR con el id del menú y leyenda.
func footerRow(plan *entity.MenuPlan) core.Row {
	return row.New(35).Add(
		col.New(3).Add(code.NewQr("menu:"+plan.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Escanea el código para abrir este menú en la aplicación.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Las cantidades se calculan con el inventario al momento de generar el menú.", props.Text{
				Size: 7, Top: 12, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func pending(items []*entity.ShoppingListItem) int {
	n := 0
	for _, it := range items {
		if !it.Checked {
			n++
		}
	}
	return n
}
