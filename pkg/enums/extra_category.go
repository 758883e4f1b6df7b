package enums

import "fmt"

// ExtraCategory is the closed set of catalog categories a pool configuration can select from.
type ExtraCategory string

const (
	ExtraCategorySpaJets       ExtraCategory = "spa_jets"
	ExtraCategoryDeckJets      ExtraCategory = "deck_jets"
	ExtraCategoryHandGrabRail  ExtraCategory = "hand_grab_rail"
	ExtraCategoryAutomation    ExtraCategory = "automation"
	ExtraCategoryChemistry     ExtraCategory = "chemistry"
	ExtraCategoryBundle        ExtraCategory = "bundle"
	ExtraCategoryMisc          ExtraCategory = "misc"
	ExtraCategoryHeatPump      ExtraCategory = "heat_pump"
	ExtraCategoryBlanketRoller ExtraCategory = "blanket_roller"
	ExtraCategoryCleaner       ExtraCategory = "cleaner"
)

// ExtraCategories lists every category in the order rows are persisted.
var ExtraCategories = []ExtraCategory{
	ExtraCategorySpaJets,
	ExtraCategoryDeckJets,
	ExtraCategoryHandGrabRail,
	ExtraCategoryAutomation,
	ExtraCategoryChemistry,
	ExtraCategoryBundle,
	ExtraCategoryMisc,
	ExtraCategoryHeatPump,
	ExtraCategoryBlanketRoller,
	ExtraCategoryCleaner,
}

// SlotKind describes how a category is represented inside a selection.
type SlotKind int

const (
	SlotKindToggle SlotKind = iota
	SlotKindToggleQuantity
	SlotKindMultiItem
)

// String implements fmt.Stringer.
func (c ExtraCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ExtraCategory.
func (c ExtraCategory) IsValid() bool {
	for _, candidate := range ExtraCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// Group returns the row group the category is persisted under.
func (c ExtraCategory) Group() CategoryGroup {
	switch c {
	case ExtraCategorySpaJets,
		ExtraCategoryDeckJets,
		ExtraCategoryHandGrabRail,
		ExtraCategoryAutomation,
		ExtraCategoryChemistry,
		ExtraCategoryBundle,
		ExtraCategoryMisc:
		return CategoryGroupExtras
	case ExtraCategoryHeatPump, ExtraCategoryBlanketRoller:
		return CategoryGroupHeating
	case ExtraCategoryCleaner:
		return CategoryGroupCleaner
	}
	panic(fmt.Sprintf("enums: unhandled extra category %q", string(c)))
}

// SlotKind returns the selection shape used for the category.
func (c ExtraCategory) SlotKind() SlotKind {
	switch c {
	case ExtraCategorySpaJets:
		return SlotKindToggleQuantity
	case ExtraCategoryMisc:
		return SlotKindMultiItem
	case ExtraCategoryDeckJets,
		ExtraCategoryHandGrabRail,
		ExtraCategoryAutomation,
		ExtraCategoryChemistry,
		ExtraCategoryBundle,
		ExtraCategoryHeatPump,
		ExtraCategoryBlanketRoller,
		ExtraCategoryCleaner:
		return SlotKindToggle
	}
	panic(fmt.Sprintf("enums: unhandled extra category %q", string(c)))
}

// ParseExtraCategory converts raw input into an ExtraCategory.
func ParseExtraCategory(value string) (ExtraCategory, error) {
	for _, candidate := range ExtraCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid extra category %q", value)
}
