package menu

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	domainmenu "github.com/jhoicas/Despensa-api/internal/domain/menu"
)

// minNeedQty cantidad mínima de una línea cuando el faltante redondea a cero.
var minNeedQty = decimal.RequireFromString("0.1")

// Aggregate convierte los faltantes de un menú en líneas de compra: una por ítem con faltante > 0,
// cantidad redondeada a un decimal y unidad del catálogo. Los ítems fuera del catálogo se omiten.
// El resultado se ordena por nombre.
func Aggregate(menuID string, gaps domainmenu.Gaps, items map[int64]*entity.Item, source string) []entity.ShoppingListItem {
	out := make([]entity.ShoppingListItem, 0, len(gaps))
	for itemID, gap := range gaps {
		if !gap.IsPositive() {
			continue
		}
		item, ok := items[itemID]
		if !ok {
			continue
		}
		need := gap.Round(1)
		if !need.IsPositive() {
			need = minNeedQty
		}
		id := itemID
		out = append(out, entity.ShoppingListItem{
			ID:               uuid.New().String(),
			MenuID:           menuID,
			ItemID:           &id,
			ItemNameSnapshot: item.Name,
			NeedQty:          need,
			Unit:             item.UnitOrDefault(),
			Reason:           entity.ShoppingReason{Gap: gap, Source: source},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemNameSnapshot != out[j].ItemNameSnapshot {
			return out[i].ItemNameSnapshot < out[j].ItemNameSnapshot
		}
		return *out[i].ItemID < *out[j].ItemID
	})
	return out
}
