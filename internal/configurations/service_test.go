package configurations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaforma/poolquote-backend/pkg/db"
	"github.com/aquaforma/poolquote-backend/pkg/db/dbtest"
	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	pkgerrors "github.com/aquaforma/poolquote-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository, func() models.PoolConfiguration) {
	t.Helper()
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, db.NewFromGorm(conn))
	require.NoError(t, err)
	return svc, repo, func() models.PoolConfiguration { return dbtest.MustCreateConfiguration(t, conn) }
}

func row(category enums.ExtraCategory, name string, price int64) models.ConfigurationRow {
	return models.ConfigurationRow{
		Category: category,
		Name:     name,
		Quantity: 1,
		Cost:     decimal.NewFromInt(price / 2),
		Margin:   decimal.NewFromInt(price - price/2),
		Price:    decimal.NewFromInt(price),
	}
}

func TestReplaceRowsIsScopedToGroup(t *testing.T) {
	ctx := context.Background()
	svc, _, seed := newTestService(t)
	cfg := seed()

	require.NoError(t, svc.ReplaceRows(ctx, cfg.ID, enums.CategoryGroupHeating, []models.ConfigurationRow{
		row(enums.ExtraCategoryHeatPump, "Heat pump", 3000),
	}))
	require.NoError(t, svc.ReplaceRows(ctx, cfg.ID, enums.CategoryGroupExtras, []models.ConfigurationRow{
		row(enums.ExtraCategoryDeckJets, "Deck jet", 400),
	}))
	require.NoError(t, svc.ReplaceRows(ctx, cfg.ID, enums.CategoryGroupExtras, []models.ConfigurationRow{
		row(enums.ExtraCategoryHandGrabRail, "Rail", 250),
	}))

	all, err := svc.ListRows(ctx, cfg.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	heating := enums.CategoryGroupHeating
	rows, err := svc.ListRows(ctx, cfg.ID, &heating)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Heat pump", rows[0].Name)
	assert.True(t, rows[0].Price.Equal(decimal.NewFromInt(3000)))
}

func TestReplaceRowsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, seed := newTestService(t)
	cfg := seed()

	build := func() []models.ConfigurationRow {
		first := row(enums.ExtraCategoryDeckJets, "Deck jet", 400)
		second := row(enums.ExtraCategoryMisc, "Ladder", 100)
		second.Position = 1
		return []models.ConfigurationRow{first, second}
	}

	extras := enums.CategoryGroupExtras
	require.NoError(t, svc.ReplaceRows(ctx, cfg.ID, extras, build()))
	firstPass, err := svc.ListRows(ctx, cfg.ID, &extras)
	require.NoError(t, err)

	require.NoError(t, svc.ReplaceRows(ctx, cfg.ID, extras, build()))
	secondPass, err := svc.ListRows(ctx, cfg.ID, &extras)
	require.NoError(t, err)

	require.Len(t, secondPass, len(firstPass))
	for i := range firstPass {
		assert.NotEqual(t, firstPass[i].ID, secondPass[i].ID)
		assert.Equal(t, firstPass[i].Name, secondPass[i].Name)
		assert.Equal(t, firstPass[i].Position, secondPass[i].Position)
		assert.True(t, firstPass[i].Price.Equal(secondPass[i].Price))
	}
}

func TestReplaceRowsWithEmptySetClearsGroup(t *testing.T) {
	ctx := context.Background()
	svc, _, seed := newTestService(t)
	cfg := seed()

	cleaner := enums.CategoryGroupCleaner
	require.NoError(t, svc.ReplaceRows(ctx, cfg.ID, cleaner, []models.ConfigurationRow{row(enums.ExtraCategoryCleaner, "Robot", 1200)}))
	require.NoError(t, svc.ReplaceRows(ctx, cfg.ID, cleaner, nil))

	rows, err := svc.ListRows(ctx, cfg.ID, &cleaner)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, seed := newTestService(t)
	cfg := seed()

	status, err := svc.GetStatus(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ConfigurationStatusDraft, status)

	require.NoError(t, svc.UpdateStatus(ctx, cfg.ID, enums.ConfigurationStatusQuoted))
	status, err = svc.GetStatus(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ConfigurationStatusQuoted, status)

	err = svc.UpdateStatus(ctx, cfg.ID, enums.ConfigurationStatus("archived"))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestMissingConfiguration(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.GetStatus(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrConfigurationNotFound)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrConfigurationNotFound)

	err = svc.UpdateStatus(ctx, uuid.New(), enums.ConfigurationStatusLocked)
	assert.ErrorIs(t, err, ErrConfigurationNotFound)
}

func TestCreateAndTotals(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Create(ctx, CreateInput{CustomerName: "  "})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	cfg, err := svc.Create(ctx, CreateInput{CustomerName: "Rivera", PoolName: "Lap pool"})
	require.NoError(t, err)
	assert.Equal(t, enums.ConfigurationStatusDraft, cfg.Status)

	require.NoError(t, svc.UpdateTotals(ctx, cfg.ID, decimal.NewFromInt(700), decimal.NewFromInt(400), decimal.NewFromInt(1100)))
	loaded, err := svc.Get(ctx, cfg.ID)
	require.NoError(t, err)
	assert.True(t, loaded.TotalPrice.Equal(decimal.NewFromInt(1100)))
	assert.True(t, loaded.TotalCost.Equal(decimal.NewFromInt(700)))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil)
	assert.Error(t, err)
}
