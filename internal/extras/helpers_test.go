package extras

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

func item(category enums.ExtraCategory, name string, cost, margin int64, position int) models.CatalogItem {
	return models.CatalogItem{
		ID:       uuid.New(),
		Name:     name,
		SKU:      "SKU-" + name,
		Category: category,
		Cost:     decimal.NewFromInt(cost),
		Margin:   decimal.NewFromInt(margin),
		Price:    decimal.NewFromInt(cost + margin),
		Position: position,
		IsActive: true,
	}
}

type fixture struct {
	spaJets    models.CatalogItem
	deckJets   models.CatalogItem
	automation models.CatalogItem
	chemistry  models.CatalogItem
	bundle     models.CatalogItem
	misc       models.CatalogItem
	heatPump   models.CatalogItem
	cleaner    models.CatalogItem
	items      []models.CatalogItem
}

func newFixture() fixture {
	f := fixture{
		spaJets:    item(enums.ExtraCategorySpaJets, "Spa jet", 300, 200, 1),
		deckJets:   item(enums.ExtraCategoryDeckJets, "Deck jet", 250, 150, 1),
		automation: item(enums.ExtraCategoryAutomation, "Automation", 500, 300, 1),
		chemistry:  item(enums.ExtraCategoryChemistry, "Chemistry", 400, 200, 1),
		bundle:     item(enums.ExtraCategoryBundle, "Smart bundle", 700, 400, 1),
		misc:       item(enums.ExtraCategoryMisc, "Ladder", 60, 40, 1),
		heatPump:   item(enums.ExtraCategoryHeatPump, "Heat pump", 2000, 1000, 1),
		cleaner:    item(enums.ExtraCategoryCleaner, "Robot cleaner", 900, 300, 1),
	}
	f.items = []models.CatalogItem{f.spaJets, f.deckJets, f.automation, f.chemistry, f.bundle, f.misc, f.heatPump, f.cleaner}
	return f
}

func (f fixture) index() *catalog.Index {
	return catalog.NewIndex(f.items)
}

// withoutBundle returns the catalog minus bundle items.
func (f fixture) withoutBundle() *catalog.Index {
	var items []models.CatalogItem
	for _, it := range f.items {
		if it.Category != enums.ExtraCategoryBundle {
			items = append(items, it)
		}
	}
	return catalog.NewIndex(items)
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func boolPtr(v bool) *bool { return &v }
