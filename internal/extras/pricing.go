package extras

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// Amounts is a cost/margin/price triple.
type Amounts struct {
	Cost   decimal.Decimal `json:"cost"`
	Margin decimal.Decimal `json:"margin"`
	Price  decimal.Decimal `json:"price"`
}

// Add returns the element-wise sum.
func (a Amounts) Add(b Amounts) Amounts {
	return Amounts{
		Cost:   a.Cost.Add(b.Cost),
		Margin: a.Margin.Add(b.Margin),
		Price:  a.Price.Add(b.Price),
	}
}

// IsZero reports whether every component is zero.
func (a Amounts) IsZero() bool {
	return a.Cost.IsZero() && a.Margin.IsZero() && a.Price.IsZero()
}

// BundleQuote describes the automation + chemistry bundle as shown to the user.
type BundleQuote struct {
	Active      bool            `json:"active"`
	ItemID      *uuid.UUID      `json:"item_id,omitempty"`
	Individual  decimal.Decimal `json:"individual"`
	BundlePrice decimal.Decimal `json:"bundle_price"`
	Savings     decimal.Decimal `json:"savings"`
}

// Totals is the derived pricing of a selection. Categories holds what each category contributes
// to the grand total, so automation and chemistry read zero while the bundle is active.
type Totals struct {
	Categories map[enums.ExtraCategory]Amounts `json:"categories"`
	Misc       Amounts                         `json:"misc"`
	Custom     Amounts                         `json:"custom"`
	Groups     map[enums.CategoryGroup]Amounts `json:"groups"`
	Grand      Amounts                         `json:"grand"`
	Bundle     BundleQuote                     `json:"bundle"`
}

// ComputeTotals prices a selection against a catalog snapshot. Item ids the catalog cannot
// resolve contribute nothing.
func ComputeTotals(sel Selection, idx *catalog.Index) Totals {
	totals := Totals{
		Categories: make(map[enums.ExtraCategory]Amounts, len(enums.ExtraCategories)),
		Groups:     make(map[enums.CategoryGroup]Amounts, len(enums.CategoryGroups)),
	}
	for _, group := range enums.CategoryGroups {
		totals.Groups[group] = Amounts{}
	}

	bundleActive := isBundleActive(sel, idx)
	for _, category := range enums.ExtraCategories {
		var amounts Amounts
		switch {
		case category == enums.ExtraCategoryMisc:
			for _, line := range sel.Misc {
				amounts = amounts.Add(miscLineAmounts(line, idx))
			}
			totals.Misc = amounts
		case bundleActive && isBundled(category):
			// priced through the bundle
		default:
			_, amounts, _ = toggleAmounts(sel, category, idx)
		}
		totals.Categories[category] = amounts
		group := category.Group()
		totals.Groups[group] = totals.Groups[group].Add(amounts)
	}

	for _, line := range sel.Custom {
		totals.Custom = totals.Custom.Add(customLineAmounts(line))
	}
	totals.Groups[enums.CategoryGroupExtras] = totals.Groups[enums.CategoryGroupExtras].Add(totals.Custom)

	for _, group := range enums.CategoryGroups {
		totals.Grand = totals.Grand.Add(totals.Groups[group])
	}
	totals.Bundle = QuoteBundle(sel, idx)
	return totals
}

// QuoteBundle compares the bundle price with the individual automation and chemistry prices.
func QuoteBundle(sel Selection, idx *catalog.Index) BundleQuote {
	if !isBundleActive(sel, idx) {
		return BundleQuote{}
	}
	_, automation, _ := toggleAmounts(sel, enums.ExtraCategoryAutomation, idx)
	_, chemistry, _ := toggleAmounts(sel, enums.ExtraCategoryChemistry, idx)
	_, bundle, _ := toggleAmounts(sel, enums.ExtraCategoryBundle, idx)

	individual := automation.Price.Add(chemistry.Price)
	return BundleQuote{
		Active:      true,
		ItemID:      cloneID(sel.Bundle.ItemID),
		Individual:  individual,
		BundlePrice: bundle.Price,
		Savings:     individual.Sub(bundle.Price),
	}
}

// toggleAmounts prices a toggle category. Spa jets multiply price by the jet count but keep
// cost and margin per unit.
func toggleAmounts(sel Selection, category enums.ExtraCategory, idx *catalog.Index) (models.CatalogItem, Amounts, bool) {
	slot := sel.Toggle(category)
	if !slot.Selected {
		return models.CatalogItem{}, Amounts{}, false
	}
	item, ok := idx.Resolve(slot.ItemID)
	if !ok {
		return models.CatalogItem{}, Amounts{}, false
	}
	amounts := Amounts{Cost: item.Cost, Margin: item.Margin, Price: item.Price}
	if category == enums.ExtraCategorySpaJets {
		amounts.Price = item.Price.Mul(decimal.NewFromInt(int64(sel.SpaJets.Quantity)))
	}
	return item, amounts, true
}

func miscLineAmounts(line LineItem, idx *catalog.Index) Amounts {
	item, ok := idx.Resolve(line.ItemID)
	if !ok {
		return Amounts{}
	}
	qty := decimal.NewFromInt(int64(line.Quantity))
	return Amounts{
		Cost:   item.Cost.Mul(qty),
		Margin: item.Margin.Mul(qty),
		Price:  item.Price.Mul(qty),
	}
}

func customLineAmounts(line LineItem) Amounts {
	return Amounts{Cost: line.Cost, Margin: line.Margin, Price: line.Price}
}
