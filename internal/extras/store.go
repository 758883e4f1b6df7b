package extras

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	pkgerrors "github.com/aquaforma/poolquote-backend/pkg/errors"
)

var (
	ErrInvalidQuantity  = pkgerrors.New(pkgerrors.CodeValidation, "spa jets quantity must be 4 or 6")
	ErrNotToggle        = pkgerrors.New(pkgerrors.CodeValidation, "category is not a toggle")
	ErrBundleDerived    = pkgerrors.New(pkgerrors.CodeValidation, "bundle is derived from automation and chemistry")
	ErrUnknownItem      = pkgerrors.New(pkgerrors.CodeValidation, "catalog item not found")
	ErrCategoryMismatch = pkgerrors.New(pkgerrors.CodeValidation, "catalog item belongs to another category")
	ErrLineNotFound     = pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
	ErrInvalidCustom    = pkgerrors.New(pkgerrors.CodeValidation, "custom item requires a name and a non-negative cost")
	ErrEmptySlotUpdate  = pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	ErrItemExclusive    = pkgerrors.New(pkgerrors.CodeValidation, "item_id and clear_item are exclusive")
	ErrQuantityNotSpa   = pkgerrors.New(pkgerrors.CodeValidation, "only spa jets take a quantity")
	ErrBundledItem      = pkgerrors.New(pkgerrors.CodeValidation, "automation and chemistry keep an item while the bundle is active")
)

// SlotUpdate is one combined edit of a toggle slot. Nil fields are left alone.
type SlotUpdate struct {
	ItemID    *uuid.UUID
	ClearItem bool
	Selected  *bool
	Quantity  *int
}

// ChangeFunc is called once per category group whose persisted shape changed.
type ChangeFunc func(group enums.CategoryGroup)

// Store owns the selection of one editing session.
type Store struct {
	mu        sync.Mutex
	sel       Selection
	catalog   *catalog.Index
	listeners []ChangeFunc
}

// NewStore seeds a store with an initial selection. The bundle rule is applied immediately
// and no change is reported for it.
func NewStore(sel Selection, idx *catalog.Index) *Store {
	seeded := sel.Clone()
	if seeded.Misc == nil {
		seeded.Misc = []LineItem{}
	}
	if seeded.Custom == nil {
		seeded.Custom = []LineItem{}
	}
	ApplyBundleRule(&seeded, idx)
	return &Store{sel: seeded, catalog: idx}
}

// OnChange registers a listener. Listeners run outside the store lock.
func (s *Store) OnChange(fn ChangeFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the current selection.
func (s *Store) Snapshot() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Clone()
}

// Catalog returns the catalog snapshot the store prices against.
func (s *Store) Catalog() *catalog.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// State returns a consistent selection and catalog pair.
func (s *Store) State() (Selection, *catalog.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Clone(), s.catalog
}

// Totals prices the current selection.
func (s *Store) Totals() Totals {
	sel, idx := s.State()
	return ComputeTotals(sel, idx)
}

// SetSelected toggles a category on or off. Turning a category off clears its item.
func (s *Store) SetSelected(category enums.ExtraCategory, selected bool) error {
	return s.mutate(func(sel *Selection, _ *catalog.Index) error {
		slot, err := userToggle(sel, category)
		if err != nil {
			return err
		}
		slot.setSelected(selected)
		return nil
	})
}

// SetItem chooses (or clears, with nil) the catalog item of a toggle category.
// Choosing an item also selects the category.
func (s *Store) SetItem(category enums.ExtraCategory, itemID *uuid.UUID) error {
	return s.mutate(func(sel *Selection, idx *catalog.Index) error {
		slot, err := userToggle(sel, category)
		if err != nil {
			return err
		}
		if itemID != nil {
			if err := requireItem(idx, *itemID, category); err != nil {
				return err
			}
		}
		slot.setItem(itemID)
		return checkBundledItem(sel, idx, category)
	})
}

// UpdateSlot applies item, then selection, then quantity as a single change. Nothing is
// committed unless every part is valid.
func (s *Store) UpdateSlot(category enums.ExtraCategory, upd SlotUpdate) error {
	switch {
	case upd.ItemID == nil && !upd.ClearItem && upd.Selected == nil && upd.Quantity == nil:
		return ErrEmptySlotUpdate
	case upd.ItemID != nil && upd.ClearItem:
		return ErrItemExclusive
	case upd.Quantity != nil && category != enums.ExtraCategorySpaJets:
		return ErrQuantityNotSpa
	case upd.Quantity != nil && !IsAllowedSpaJetQuantity(*upd.Quantity):
		return ErrInvalidQuantity
	}
	return s.mutate(func(sel *Selection, idx *catalog.Index) error {
		slot, err := userToggle(sel, category)
		if err != nil {
			return err
		}
		if upd.ItemID != nil {
			if err := requireItem(idx, *upd.ItemID, category); err != nil {
				return err
			}
			slot.setItem(upd.ItemID)
		}
		if upd.ClearItem {
			slot.setItem(nil)
		}
		if upd.Selected != nil {
			slot.setSelected(*upd.Selected)
		}
		if upd.Quantity != nil {
			sel.SpaJets.Quantity = *upd.Quantity
		}
		if upd.ClearItem {
			return checkBundledItem(sel, idx, category)
		}
		return nil
	})
}

// SetSpaJetsQuantity sets the jet count; only SpaJetQuantities are accepted.
func (s *Store) SetSpaJetsQuantity(quantity int) error {
	if !IsAllowedSpaJetQuantity(quantity) {
		return ErrInvalidQuantity
	}
	return s.mutate(func(sel *Selection, _ *catalog.Index) error {
		sel.SpaJets.Quantity = quantity
		return nil
	})
}

func (s *Store) SetSpaJetsSelected(selected bool) error {
	return s.SetSelected(enums.ExtraCategorySpaJets, selected)
}

func (s *Store) SetSpaJetsItem(itemID *uuid.UUID) error {
	return s.SetItem(enums.ExtraCategorySpaJets, itemID)
}

func (s *Store) SetDeckJetsSelected(selected bool) error {
	return s.SetSelected(enums.ExtraCategoryDeckJets, selected)
}

func (s *Store) SetDeckJetsItem(itemID *uuid.UUID) error {
	return s.SetItem(enums.ExtraCategoryDeckJets, itemID)
}

func (s *Store) SetHandGrabRailSelected(selected bool) error {
	return s.SetSelected(enums.ExtraCategoryHandGrabRail, selected)
}

func (s *Store) SetHandGrabRailItem(itemID *uuid.UUID) error {
	return s.SetItem(enums.ExtraCategoryHandGrabRail, itemID)
}

func (s *Store) SetAutomationSelected(selected bool) error {
	return s.SetSelected(enums.ExtraCategoryAutomation, selected)
}

func (s *Store) SetAutomationItem(itemID *uuid.UUID) error {
	return s.SetItem(enums.ExtraCategoryAutomation, itemID)
}

func (s *Store) SetChemistrySelected(selected bool) error {
	return s.SetSelected(enums.ExtraCategoryChemistry, selected)
}

func (s *Store) SetChemistryItem(itemID *uuid.UUID) error {
	return s.SetItem(enums.ExtraCategoryChemistry, itemID)
}

func (s *Store) SetHeatPumpSelected(selected bool) error {
	return s.SetSelected(enums.ExtraCategoryHeatPump, selected)
}

func (s *Store) SetHeatPumpItem(itemID *uuid.UUID) error {
	return s.SetItem(enums.ExtraCategoryHeatPump, itemID)
}

func (s *Store) SetBlanketRollerSelected(selected bool) error {
	return s.SetSelected(enums.ExtraCategoryBlanketRoller, selected)
}

func (s *Store) SetBlanketRollerItem(itemID *uuid.UUID) error {
	return s.SetItem(enums.ExtraCategoryBlanketRoller, itemID)
}

func (s *Store) SetCleanerSelected(selected bool) error {
	return s.SetSelected(enums.ExtraCategoryCleaner, selected)
}

func (s *Store) SetCleanerItem(itemID *uuid.UUID) error {
	return s.SetItem(enums.ExtraCategoryCleaner, itemID)
}

// AddMiscItem appends a misc catalog item. Adding an item already on the list adds to its quantity.
func (s *Store) AddMiscItem(itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(func(sel *Selection, idx *catalog.Index) error {
		if err := requireItem(idx, itemID, enums.ExtraCategoryMisc); err != nil {
			return err
		}
		if i := findMisc(sel.Misc, itemID); i >= 0 {
			sel.Misc[i].Quantity += quantity
			return nil
		}
		id := itemID
		sel.Misc = append(sel.Misc, LineItem{ID: uuid.New(), ItemID: &id, Quantity: quantity})
		return nil
	})
}

// RemoveMiscItem drops a misc item from the list.
func (s *Store) RemoveMiscItem(itemID uuid.UUID) error {
	return s.mutate(func(sel *Selection, _ *catalog.Index) error {
		i := findMisc(sel.Misc, itemID)
		if i < 0 {
			return ErrLineNotFound
		}
		sel.Misc = append(sel.Misc[:i], sel.Misc[i+1:]...)
		return nil
	})
}

// UpdateMiscItemQuantity sets the quantity of a misc item, clamped to at least one.
func (s *Store) UpdateMiscItemQuantity(itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(func(sel *Selection, _ *catalog.Index) error {
		i := findMisc(sel.Misc, itemID)
		if i < 0 {
			return ErrLineNotFound
		}
		sel.Misc[i].Quantity = quantity
		return nil
	})
}

// AddCustomItem adds a free-text row priced at cost + margin and returns its row id.
func (s *Store) AddCustomItem(name string, cost, margin decimal.Decimal) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" || cost.IsNegative() {
		return uuid.Nil, ErrInvalidCustom
	}
	rowID := uuid.New()
	err := s.mutate(func(sel *Selection, _ *catalog.Index) error {
		sel.Custom = append(sel.Custom, LineItem{
			ID:       rowID,
			Name:     name,
			Quantity: 1,
			Cost:     cost,
			Margin:   margin,
			Price:    cost.Add(margin),
			Custom:   true,
		})
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return rowID, nil
}

// RemoveCustomItem drops a custom row by id.
func (s *Store) RemoveCustomItem(rowID uuid.UUID) error {
	return s.mutate(func(sel *Selection, _ *catalog.Index) error {
		for i, line := range sel.Custom {
			if line.ID == rowID {
				sel.Custom = append(sel.Custom[:i], sel.Custom[i+1:]...)
				return nil
			}
		}
		return ErrLineNotFound
	})
}

// SetCatalog swaps the catalog snapshot and re-resolves the bundle. Every group is reported
// as changed because row names, SKUs and amounts derive from the catalog.
func (s *Store) SetCatalog(idx *catalog.Index) {
	s.mu.Lock()
	s.catalog = idx
	ApplyBundleRule(&s.sel, idx)
	listeners := append([]ChangeFunc(nil), s.listeners...)
	s.mu.Unlock()

	for _, group := range enums.CategoryGroups {
		for _, fn := range listeners {
			fn(group)
		}
	}
}

// Replace overwrites the selection without reporting changes. Used when reloading persisted state.
func (s *Store) Replace(sel Selection) {
	next := sel.Clone()
	if next.Misc == nil {
		next.Misc = []LineItem{}
	}
	if next.Custom == nil {
		next.Custom = []LineItem{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ApplyBundleRule(&next, s.catalog)
	s.sel = next
}

// mutate applies fn to a copy of the selection and commits only when fn succeeds.
func (s *Store) mutate(fn func(sel *Selection, idx *catalog.Index) error) error {
	s.mu.Lock()
	next := s.sel.Clone()
	if err := fn(&next, s.catalog); err != nil {
		s.mu.Unlock()
		return err
	}
	ApplyBundleRule(&next, s.catalog)
	changed := s.sel.changedGroups(next)
	s.sel = next
	listeners := append([]ChangeFunc(nil), s.listeners...)
	s.mu.Unlock()

	for _, group := range changed {
		for _, fn := range listeners {
			fn(group)
		}
	}
	return nil
}

func userToggle(sel *Selection, category enums.ExtraCategory) (*ToggleSlot, error) {
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category")
	}
	if category == enums.ExtraCategoryBundle {
		return nil, ErrBundleDerived
	}
	slot := sel.toggle(category)
	if slot == nil {
		return nil, ErrNotToggle
	}
	return slot, nil
}

func requireItem(idx *catalog.Index, itemID uuid.UUID, category enums.ExtraCategory) error {
	item, ok := idx.Get(itemID)
	if !ok {
		return ErrUnknownItem
	}
	if item.Category != category {
		return ErrCategoryMismatch
	}
	return nil
}

func findMisc(lines []LineItem, itemID uuid.UUID) int {
	for i, line := range lines {
		if line.ItemID != nil && *line.ItemID == itemID {
			return i
		}
	}
	return -1
}
