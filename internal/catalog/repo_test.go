package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaforma/poolquote-backend/pkg/db/dbtest"
	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	pkgerrors "github.com/aquaforma/poolquote-backend/pkg/errors"
)

func TestRepositoryListFiltersAndOrders(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	second := dbtest.MustCreateItem(t, conn, enums.ExtraCategoryCleaner, "Suction cleaner", 300, 100, 2)
	first := dbtest.MustCreateItem(t, conn, enums.ExtraCategoryCleaner, "Robotic cleaner", 900, 300, 1)
	dbtest.MustCreateItem(t, conn, enums.ExtraCategoryHeatPump, "Heat pump 12kW", 2000, 800, 1)
	retired := dbtest.MustCreateItem(t, conn, enums.ExtraCategoryCleaner, "Retired cleaner", 100, 10, 0)
	require.NoError(t, conn.Model(&models.CatalogItem{}).Where("id = ?", retired.ID).Update("is_active", false).Error)

	category := enums.ExtraCategoryCleaner
	items, err := repo.List(ctx, &category)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)
	assert.True(t, items[0].Price.Equal(decimal.NewFromInt(1200)))

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepositoryUpsertBySKU(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	item := models.CatalogItem{
		Name: "Hand grab rail", SKU: "HGR-1", Category: enums.ExtraCategoryHandGrabRail,
		Cost: decimal.NewFromInt(200), Margin: decimal.NewFromInt(50), Price: decimal.NewFromInt(250), IsActive: true,
	}
	require.NoError(t, repo.Upsert(ctx, []models.CatalogItem{item}))

	updated := item
	updated.ID = uuid.Nil
	updated.Price = decimal.NewFromInt(275)
	updated.Margin = decimal.NewFromInt(75)
	require.NoError(t, repo.Upsert(ctx, []models.CatalogItem{updated}))

	items, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Price.Equal(decimal.NewFromInt(275)))
}

func TestServiceGetItemNotFound(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	_, err = svc.GetItem(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestServiceLoadIndex(t *testing.T) {
	conn := dbtest.Open(t)
	bundle := dbtest.MustCreateItem(t, conn, enums.ExtraCategoryBundle, "Automation + chemistry", 800, 300, 1)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	idx, err := svc.LoadIndex(context.Background())
	require.NoError(t, err)
	got, ok := idx.First(enums.ExtraCategoryBundle)
	require.True(t, ok)
	assert.Equal(t, bundle.ID, got.ID)
}

func TestServiceRejectsUnknownCategory(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	bogus := enums.ExtraCategory("waterslide")
	_, err = svc.ListItems(context.Background(), &bogus)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
