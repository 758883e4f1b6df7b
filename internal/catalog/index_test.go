package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

func TestIndexOrdersByPosition(t *testing.T) {
	late := models.CatalogItem{ID: uuid.New(), Name: "Premium bundle", Category: enums.ExtraCategoryBundle, Position: 5}
	early := models.CatalogItem{ID: uuid.New(), Name: "Basic bundle", Category: enums.ExtraCategoryBundle, Position: 1}
	cleaner := models.CatalogItem{ID: uuid.New(), Name: "Robot", Category: enums.ExtraCategoryCleaner}

	idx := NewIndex([]models.CatalogItem{late, cleaner, early})

	first, ok := idx.First(enums.ExtraCategoryBundle)
	require.True(t, ok)
	assert.Equal(t, early.ID, first.ID)

	bundles := idx.ByCategory(enums.ExtraCategoryBundle)
	require.Len(t, bundles, 2)
	assert.Equal(t, late.ID, bundles[1].ID)
	assert.Equal(t, 3, idx.Len())
}

func TestIndexResolve(t *testing.T) {
	item := models.CatalogItem{ID: uuid.New(), Category: enums.ExtraCategoryDeckJets}
	idx := NewIndex([]models.CatalogItem{item})

	_, ok := idx.Resolve(nil)
	assert.False(t, ok)

	missing := uuid.New()
	_, ok = idx.Resolve(&missing)
	assert.False(t, ok)

	got, ok := idx.Resolve(&item.ID)
	require.True(t, ok)
	assert.Equal(t, item.ID, got.ID)
}

func TestNilIndexIsEmpty(t *testing.T) {
	var idx *Index
	_, ok := idx.First(enums.ExtraCategoryBundle)
	assert.False(t, ok)
	assert.Empty(t, idx.ByCategory(enums.ExtraCategoryMisc))
	assert.Zero(t, idx.Len())
}
