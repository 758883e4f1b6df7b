package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/internal/configurations"
	"github.com/aquaforma/poolquote-backend/internal/sessions"
	"github.com/aquaforma/poolquote-backend/pkg/db"
	"github.com/aquaforma/poolquote-backend/pkg/db/dbtest"
	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
)

type fixture struct {
	conn       *gorm.DB
	logg       *logger.Logger
	catalog    catalog.Service
	configs    configurations.Service
	manager    *sessions.Manager
	config     models.PoolConfiguration
	spaJets    models.CatalogItem
	automation models.CatalogItem
	chemistry  models.CatalogItem
	bundle     models.CatalogItem
	misc       models.CatalogItem
	cleaner    models.CatalogItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)

	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	configs, err := configurations.NewService(configurations.NewRepository(conn), db.NewFromGorm(conn))
	require.NoError(t, err)
	manager, err := sessions.NewManager(sessions.Options{
		Configurations: configs,
		Catalog:        catalogSvc,
		QuietPeriod:    time.Hour,
		PassTimeout:    time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = manager.Shutdown(ctx)
	})

	return &fixture{
		conn:       conn,
		logg:       logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		catalog:    catalogSvc,
		configs:    configs,
		manager:    manager,
		config:     dbtest.MustCreateConfiguration(t, conn),
		spaJets:    dbtest.MustCreateItem(t, conn, enums.ExtraCategorySpaJets, "Spa jets", 300, 200, 1),
		automation: dbtest.MustCreateItem(t, conn, enums.ExtraCategoryAutomation, "Automation", 500, 300, 1),
		chemistry:  dbtest.MustCreateItem(t, conn, enums.ExtraCategoryChemistry, "Chemistry", 400, 200, 1),
		bundle:     dbtest.MustCreateItem(t, conn, enums.ExtraCategoryBundle, "Smart bundle", 700, 400, 1),
		misc:       dbtest.MustCreateItem(t, conn, enums.ExtraCategoryMisc, "Waterfall", 60, 40, 1),
		cleaner:    dbtest.MustCreateItem(t, conn, enums.ExtraCategoryCleaner, "Robot cleaner", 900, 300, 1),
	}
}

func (f *fixture) begin(t *testing.T) *sessions.Session {
	t.Helper()
	s, err := f.manager.Begin(context.Background(), f.config.ID)
	require.NoError(t, err)
	return s
}

func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(encoded)
		}
		reader = bytes.NewBufferString(raw)
	}
	return httptest.NewRequest(method, target, reader)
}

func withParams(req *http.Request, kv ...string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		routeCtx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	h(resp, req)
	return resp
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Error.Code
}
