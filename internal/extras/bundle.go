package extras

import (
	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// ApplyBundleRule derives the bundle slot from automation and chemistry. When both are selected
// and the catalog offers a bundle, the first bundle item (catalog order) is chosen and automation
// and chemistry without an item get their category default. Otherwise the bundle is cleared.
func ApplyBundleRule(sel *Selection, idx *catalog.Index) {
	bundleItem, hasBundle := idx.First(enums.ExtraCategoryBundle)
	if !sel.Automation.Selected || !sel.Chemistry.Selected || !hasBundle {
		sel.Bundle = ToggleSlot{}
		return
	}

	id := bundleItem.ID
	sel.Bundle = ToggleSlot{Selected: true, ItemID: &id}
	for _, category := range []enums.ExtraCategory{enums.ExtraCategoryAutomation, enums.ExtraCategoryChemistry} {
		slot := sel.toggle(category)
		if slot.ItemID != nil {
			continue
		}
		if first, ok := idx.First(category); ok {
			firstID := first.ID
			slot.ItemID = &firstID
		}
	}
}

func isBundleActive(sel Selection, idx *catalog.Index) bool {
	if !sel.Bundle.Selected {
		return false
	}
	_, ok := idx.Resolve(sel.Bundle.ItemID)
	return ok
}

func isBundled(category enums.ExtraCategory) bool {
	return category == enums.ExtraCategoryAutomation || category == enums.ExtraCategoryChemistry
}

// checkBundledItem rejects leaving automation or chemistry selected without an item while the
// bundle applies, since the bundle rule would silently put the default item back.
func checkBundledItem(sel *Selection, idx *catalog.Index, category enums.ExtraCategory) error {
	if !isBundled(category) {
		return nil
	}
	slot := sel.toggle(category)
	if !slot.Selected || slot.ItemID != nil {
		return nil
	}
	if _, hasBundle := idx.First(enums.ExtraCategoryBundle); hasBundle && sel.Automation.Selected && sel.Chemistry.Selected {
		return ErrBundledItem
	}
	return nil
}
