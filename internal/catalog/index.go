package catalog

import (
	"sort"

	"github.com/google/uuid"

	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// Index is an immutable lookup over a catalog snapshot. A nil *Index behaves as an empty catalog.
type Index struct {
	byID       map[uuid.UUID]models.CatalogItem
	byCategory map[enums.ExtraCategory][]models.CatalogItem
}

// NewIndex builds an index. Items keep the order of the input, stably sorted by Position so
// "first item of a category" means catalog order.
func NewIndex(items []models.CatalogItem) *Index {
	ordered := make([]models.CatalogItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	idx := &Index{
		byID:       make(map[uuid.UUID]models.CatalogItem, len(ordered)),
		byCategory: make(map[enums.ExtraCategory][]models.CatalogItem),
	}
	for _, item := range ordered {
		idx.byID[item.ID] = item
		idx.byCategory[item.Category] = append(idx.byCategory[item.Category], item)
	}
	return idx
}

// Get resolves an item id.
func (i *Index) Get(id uuid.UUID) (models.CatalogItem, bool) {
	if i == nil {
		return models.CatalogItem{}, false
	}
	item, ok := i.byID[id]
	return item, ok
}

// Resolve is Get for an optional id.
func (i *Index) Resolve(id *uuid.UUID) (models.CatalogItem, bool) {
	if id == nil {
		return models.CatalogItem{}, false
	}
	return i.Get(*id)
}

// ByCategory returns the items of one category in catalog order.
func (i *Index) ByCategory(category enums.ExtraCategory) []models.CatalogItem {
	if i == nil {
		return nil
	}
	items := i.byCategory[category]
	out := make([]models.CatalogItem, len(items))
	copy(out, items)
	return out
}

// First returns the first item of a category in catalog order.
func (i *Index) First(category enums.ExtraCategory) (models.CatalogItem, bool) {
	if i == nil {
		return models.CatalogItem{}, false
	}
	items := i.byCategory[category]
	if len(items) == 0 {
		return models.CatalogItem{}, false
	}
	return items[0], true
}

// Len reports the number of indexed items.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.byID)
}
