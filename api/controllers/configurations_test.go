package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

func TestConfigurationCreate(t *testing.T) {
	f := newFixture(t)

	req := newRequest(t, http.MethodPost, "/", map[string]any{"customer_name": "  Rivera  ", "pool_name": "Lap pool"})
	resp := serve(ConfigurationCreate(f.configs, f.logg), req)

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	out := decodeData[models.PoolConfiguration](t, resp)
	assert.Equal(t, "Rivera", out.CustomerName)
	assert.Equal(t, enums.ConfigurationStatusDraft, out.Status)
}

func TestConfigurationCreateRequiresCustomer(t *testing.T) {
	f := newFixture(t)

	resp := serve(ConfigurationCreate(f.configs, f.logg), newRequest(t, http.MethodPost, "/", map[string]any{"pool_name": "x"}))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestConfigurationDetailIncludesRows(t *testing.T) {
	f := newFixture(t)
	itemID := f.cleaner.ID
	require.NoError(t, f.configs.ReplaceRows(context.Background(), f.config.ID, enums.CategoryGroupCleaner, []models.ConfigurationRow{{
		ConfigurationID: f.config.ID,
		Group:           enums.CategoryGroupCleaner,
		Category:        enums.ExtraCategoryCleaner,
		CatalogItemID:   &itemID,
		Name:            f.cleaner.Name,
		Quantity:        1,
		Cost:            f.cleaner.Cost,
		Margin:          f.cleaner.Margin,
		Price:           f.cleaner.Price,
	}}))

	req := withParams(newRequest(t, http.MethodGet, "/", nil), "configurationId", f.config.ID.String())
	resp := serve(ConfigurationDetail(f.configs, f.logg), req)

	require.Equal(t, http.StatusOK, resp.Code)
	out := decodeData[models.PoolConfiguration](t, resp)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "Robot cleaner", out.Rows[0].Name)
}

func TestConfigurationDetailNotFound(t *testing.T) {
	f := newFixture(t)

	req := withParams(newRequest(t, http.MethodGet, "/", nil), "configurationId", uuid.NewString())
	resp := serve(ConfigurationDetail(f.configs, f.logg), req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestConfigurationUpdateStatus(t *testing.T) {
	f := newFixture(t)

	req := withParams(newRequest(t, http.MethodPatch, "/", map[string]any{"status": "approved"}), "configurationId", f.config.ID.String())
	resp := serve(ConfigurationUpdateStatus(f.configs, f.logg), req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	status, err := f.configs.GetStatus(context.Background(), f.config.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ConfigurationStatusApproved, status)
}

func TestConfigurationUpdateStatusRejectsUnknown(t *testing.T) {
	f := newFixture(t)

	req := withParams(newRequest(t, http.MethodPatch, "/", map[string]any{"status": "archived"}), "configurationId", f.config.ID.String())
	resp := serve(ConfigurationUpdateStatus(f.configs, f.logg), req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
