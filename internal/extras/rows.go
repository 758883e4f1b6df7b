package extras

import (
	"strings"

	"github.com/google/uuid"

	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// BuildRows converts the slots of one group into the rows that should be persisted for it.
// The walk follows category order, so equal selections produce equal row sets.
func BuildRows(configurationID uuid.UUID, group enums.CategoryGroup, sel Selection, idx *catalog.Index) []models.ConfigurationRow {
	rows := make([]models.ConfigurationRow, 0)
	bundleActive := isBundleActive(sel, idx)

	for _, category := range enums.ExtraCategories {
		if category.Group() != group {
			continue
		}
		if category == enums.ExtraCategoryMisc {
			for _, line := range sel.Misc {
				item, ok := idx.Resolve(line.ItemID)
				if !ok || strings.TrimSpace(item.Name) == "" {
					continue
				}
				itemID := item.ID
				amounts := miscLineAmounts(line, idx)
				rows = append(rows, models.ConfigurationRow{
					ConfigurationID: configurationID,
					Group:           group,
					Category:        category,
					CatalogItemID:   &itemID,
					Name:            item.Name,
					SKU:             item.SKU,
					Quantity:        line.Quantity,
					Cost:            amounts.Cost,
					Margin:          amounts.Margin,
					Price:           amounts.Price,
				})
			}
			continue
		}
		if bundleActive && isBundled(category) {
			continue
		}

		item, amounts, ok := toggleAmounts(sel, category, idx)
		if !ok || strings.TrimSpace(item.Name) == "" {
			continue
		}
		quantity := 1
		if category == enums.ExtraCategorySpaJets {
			quantity = sel.SpaJets.Quantity
		}
		itemID := item.ID
		rows = append(rows, models.ConfigurationRow{
			ConfigurationID: configurationID,
			Group:           group,
			Category:        category,
			CatalogItemID:   &itemID,
			Name:            item.Name,
			SKU:             item.SKU,
			Quantity:        quantity,
			Cost:            amounts.Cost,
			Margin:          amounts.Margin,
			Price:           amounts.Price,
		})
	}

	if group == enums.CategoryGroupExtras {
		for _, line := range sel.Custom {
			if strings.TrimSpace(line.Name) == "" || line.Cost.IsNegative() {
				continue
			}
			rows = append(rows, models.ConfigurationRow{
				ConfigurationID: configurationID,
				Group:           group,
				Category:        enums.ExtraCategoryMisc,
				Name:            line.Name,
				Quantity:        1,
				Cost:            line.Cost,
				Margin:          line.Margin,
				Price:           line.Price,
				Custom:          true,
			})
		}
	}

	for i := range rows {
		rows[i].Position = i
	}
	return rows
}

// Hydrate rebuilds a selection from persisted rows. A bundle row stands in for automation and
// chemistry, which are re-selected so the bundle rule can resolve them again.
func Hydrate(rows []models.ConfigurationRow) Selection {
	sel := NewSelection()
	for _, row := range rows {
		if row.Custom {
			sel.Custom = append(sel.Custom, LineItem{
				ID:       uuid.New(),
				Name:     row.Name,
				Quantity: 1,
				Cost:     row.Cost,
				Margin:   row.Margin,
				Price:    row.Price,
				Custom:   true,
			})
			continue
		}
		if !row.Category.IsValid() {
			continue
		}

		switch row.Category {
		case enums.ExtraCategoryMisc:
			if row.CatalogItemID == nil {
				continue
			}
			quantity := row.Quantity
			if quantity < 1 {
				quantity = 1
			}
			sel.Misc = append(sel.Misc, LineItem{ID: uuid.New(), ItemID: cloneID(row.CatalogItemID), Quantity: quantity})
		case enums.ExtraCategoryBundle:
			sel.Automation.Selected = true
			sel.Chemistry.Selected = true
		default:
			slot := sel.toggle(row.Category)
			slot.Selected = true
			slot.ItemID = cloneID(row.CatalogItemID)
			if row.Category == enums.ExtraCategorySpaJets && IsAllowedSpaJetQuantity(row.Quantity) {
				sel.SpaJets.Quantity = row.Quantity
			}
		}
	}
	return sel
}
