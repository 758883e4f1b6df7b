package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/internal/configurations"
	"github.com/aquaforma/poolquote-backend/internal/sessions"
	"github.com/aquaforma/poolquote-backend/pkg/config"
	"github.com/aquaforma/poolquote-backend/pkg/db"
	"github.com/aquaforma/poolquote-backend/pkg/db/dbtest"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
	"github.com/aquaforma/poolquote-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

func newTestRouter(t *testing.T) (http.Handler, *sessions.Manager, string) {
	t.Helper()
	conn := dbtest.Open(t)
	dbtest.MustCreateItem(t, conn, enums.ExtraCategoryCleaner, "Robot cleaner", 900, 300, 1)
	cfgRow := dbtest.MustCreateConfiguration(t, conn)

	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	configs, err := configurations.NewService(configurations.NewRepository(conn), db.NewFromGorm(conn))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	manager, err := sessions.NewManager(sessions.Options{
		Configurations: configs,
		Catalog:        catalogSvc,
		Metrics:        metrics.NewReconcileMetrics(reg),
		QuietPeriod:    time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = manager.Shutdown(ctx)
	})

	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	router := NewRouter(cfg, logg, Dependencies{
		DBPinger:       stubPinger{},
		Gatherer:       reg,
		Catalog:        catalogSvc,
		Configurations: configs,
		Sessions:       manager,
	})
	return router, manager, cfgRow.ID.String()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(method, target, reader))
	return resp
}

func TestHealthRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health/ready", "").Code)
}

func TestMetricsRouteExposesSessionGauge(t *testing.T) {
	router, _, configID := newTestRouter(t)

	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/v1/configurations/"+configID+"/sessions", "").Code)

	resp := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "editing_sessions_active 1")
}

func TestSessionRoutesEndToEnd(t *testing.T) {
	router, manager, configID := newTestRouter(t)

	resp := do(t, router, http.MethodPost, "/api/v1/configurations/"+configID+"/sessions", "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var begun struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &begun))
	base := "/api/v1/sessions/" + begun.Data.ID

	items := do(t, router, http.MethodGet, "/api/v1/catalog/items?category=cleaner", "")
	require.Equal(t, http.StatusOK, items.Code)
	var listed struct {
		Data struct {
			Items []struct {
				ID string `json:"id"`
			} `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(items.Body.Bytes(), &listed))
	require.Len(t, listed.Data.Items, 1)

	resp = do(t, router, http.MethodPut, base+"/slots/cleaner", `{"item_id":"`+listed.Data.Items[0].ID+`"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var updated struct {
		Data struct {
			Totals struct {
				Grand struct {
					Price decimal.Decimal `json:"price"`
				} `json:"grand"`
			} `json:"totals"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.True(t, updated.Data.Totals.Grand.Price.Equal(decimal.NewFromInt(1200)), updated.Data.Totals.Grand.Price.String())

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, base, "").Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, base+"/notifications", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, base, "").Code)
	assert.Zero(t, manager.Len())
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, base, "").Code)
}

func TestStatusRoute(t *testing.T) {
	router, _, configID := newTestRouter(t)

	resp := do(t, router, http.MethodPatch, "/api/v1/configurations/"+configID+"/status", `{"status":"locked"}`)
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	router, _, _ := newTestRouter(t)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/nope", "").Code)
}
