package extras

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// SpaJetQuantities is the fixed set of jet counts a spa can be fitted with.
var SpaJetQuantities = []int{4, 6}

// DefaultSpaJetQuantity is used until the user picks a count.
const DefaultSpaJetQuantity = 4

// ToggleSlot holds an on/off category with an optional chosen catalog item.
// Selected=false implies ItemID=nil; a non-nil ItemID implies Selected=true.
type ToggleSlot struct {
	Selected bool       `json:"selected"`
	ItemID   *uuid.UUID `json:"item_id,omitempty"`
}

func (s *ToggleSlot) setSelected(selected bool) {
	s.Selected = selected
	if !selected {
		s.ItemID = nil
	}
}

func (s *ToggleSlot) setItem(id *uuid.UUID) {
	if id == nil {
		s.ItemID = nil
		return
	}
	value := *id
	s.ItemID = &value
	s.Selected = true
}

func (s ToggleSlot) equal(other ToggleSlot) bool {
	if s.Selected != other.Selected {
		return false
	}
	if s.ItemID == nil || other.ItemID == nil {
		return s.ItemID == nil && other.ItemID == nil
	}
	return *s.ItemID == *other.ItemID
}

// QuantitySlot is a toggle slot that also carries a jet count.
type QuantitySlot struct {
	ToggleSlot
	Quantity int `json:"quantity"`
}

// LineItem is one entry of a multi-item slot: a catalog misc item or a free-text custom row.
// Catalog lines are priced from the catalog; custom lines carry their own amounts.
type LineItem struct {
	ID       uuid.UUID       `json:"id"`
	ItemID   *uuid.UUID      `json:"item_id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Quantity int             `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
	Margin   decimal.Decimal `json:"margin"`
	Price    decimal.Decimal `json:"price"`
	Custom   bool            `json:"custom"`
}

func (l LineItem) equal(other LineItem) bool {
	sameItem := (l.ItemID == nil && other.ItemID == nil) ||
		(l.ItemID != nil && other.ItemID != nil && *l.ItemID == *other.ItemID)
	return l.ID == other.ID &&
		sameItem &&
		l.Name == other.Name &&
		l.Quantity == other.Quantity &&
		l.Cost.Equal(other.Cost) &&
		l.Margin.Equal(other.Margin) &&
		l.Price.Equal(other.Price) &&
		l.Custom == other.Custom
}

// Selection is the full in-memory selection of one pool configuration.
type Selection struct {
	SpaJets       QuantitySlot `json:"spa_jets"`
	DeckJets      ToggleSlot   `json:"deck_jets"`
	HandGrabRail  ToggleSlot   `json:"hand_grab_rail"`
	Automation    ToggleSlot   `json:"automation"`
	Chemistry     ToggleSlot   `json:"chemistry"`
	Bundle        ToggleSlot   `json:"bundle"`
	HeatPump      ToggleSlot   `json:"heat_pump"`
	BlanketRoller ToggleSlot   `json:"blanket_roller"`
	Cleaner       ToggleSlot   `json:"cleaner"`
	Misc          []LineItem   `json:"misc"`
	Custom        []LineItem   `json:"custom"`
}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return Selection{
		SpaJets: QuantitySlot{Quantity: DefaultSpaJetQuantity},
		Misc:    []LineItem{},
		Custom:  []LineItem{},
	}
}

// Clone returns a deep copy.
func (s Selection) Clone() Selection {
	out := s
	out.SpaJets.ItemID = cloneID(s.SpaJets.ItemID)
	for _, slot := range []*ToggleSlot{&out.DeckJets, &out.HandGrabRail, &out.Automation, &out.Chemistry, &out.Bundle, &out.HeatPump, &out.BlanketRoller, &out.Cleaner} {
		slot.ItemID = cloneID(slot.ItemID)
	}
	out.Misc = cloneLines(s.Misc)
	out.Custom = cloneLines(s.Custom)
	return out
}

// Toggle returns the toggle portion of a category's slot (spa jets included).
func (s Selection) Toggle(category enums.ExtraCategory) ToggleSlot {
	slot := s.toggle(category)
	if slot == nil {
		return ToggleSlot{}
	}
	return *slot
}

// toggle returns a pointer to the slot of a toggle category, or nil for multi-item categories.
func (s *Selection) toggle(category enums.ExtraCategory) *ToggleSlot {
	switch category {
	case enums.ExtraCategorySpaJets:
		return &s.SpaJets.ToggleSlot
	case enums.ExtraCategoryDeckJets:
		return &s.DeckJets
	case enums.ExtraCategoryHandGrabRail:
		return &s.HandGrabRail
	case enums.ExtraCategoryAutomation:
		return &s.Automation
	case enums.ExtraCategoryChemistry:
		return &s.Chemistry
	case enums.ExtraCategoryBundle:
		return &s.Bundle
	case enums.ExtraCategoryHeatPump:
		return &s.HeatPump
	case enums.ExtraCategoryBlanketRoller:
		return &s.BlanketRoller
	case enums.ExtraCategoryCleaner:
		return &s.Cleaner
	case enums.ExtraCategoryMisc:
		return nil
	}
	panic(fmt.Sprintf("extras: unhandled category %q", string(category)))
}

// groupEqual compares only the slots persisted under the given group.
func (s Selection) groupEqual(other Selection, group enums.CategoryGroup) bool {
	for _, category := range enums.ExtraCategories {
		if category.Group() != group || category.SlotKind() == enums.SlotKindMultiItem {
			continue
		}
		if !s.Toggle(category).equal(other.Toggle(category)) {
			return false
		}
	}
	if group != enums.CategoryGroupExtras {
		return true
	}
	if s.SpaJets.Quantity != other.SpaJets.Quantity {
		return false
	}
	return linesEqual(s.Misc, other.Misc) && linesEqual(s.Custom, other.Custom)
}

func (s Selection) changedGroups(other Selection) []enums.CategoryGroup {
	var changed []enums.CategoryGroup
	for _, group := range enums.CategoryGroups {
		if !s.groupEqual(other, group) {
			changed = append(changed, group)
		}
	}
	return changed
}

// IsAllowedSpaJetQuantity reports whether q is one of SpaJetQuantities.
func IsAllowedSpaJetQuantity(q int) bool {
	for _, allowed := range SpaJetQuantities {
		if allowed == q {
			return true
		}
	}
	return false
}

func linesEqual(a, b []LineItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].equal(b[i]) {
			return false
		}
	}
	return true
}

func cloneLines(lines []LineItem) []LineItem {
	out := make([]LineItem, len(lines))
	for i, line := range lines {
		line.ItemID = cloneID(line.ItemID)
		out[i] = line
	}
	return out
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	value := *id
	return &value
}
