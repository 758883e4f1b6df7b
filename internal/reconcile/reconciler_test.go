package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/internal/extras"
	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	"github.com/aquaforma/poolquote-backend/pkg/metrics"
)

type harness struct {
	configID uuid.UUID
	store    *extras.Store
	status   *fakeStatus
	writer   *fakeWriter
	sink     *fakeSink
	guard    *Guard
	heatPump models.CatalogItem
	cleaner  models.CatalogItem
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	heatPump := models.CatalogItem{ID: uuid.New(), Name: "Heat pump", SKU: "HP-1", Category: enums.ExtraCategoryHeatPump,
		Cost: decimal.NewFromInt(2000), Margin: decimal.NewFromInt(1000), Price: decimal.NewFromInt(3000)}
	cleaner := models.CatalogItem{ID: uuid.New(), Name: "Robot", SKU: "CL-1", Category: enums.ExtraCategoryCleaner,
		Cost: decimal.NewFromInt(900), Margin: decimal.NewFromInt(300), Price: decimal.NewFromInt(1200)}
	idx := catalog.NewIndex([]models.CatalogItem{heatPump, cleaner})

	h := &harness{
		configID: uuid.New(),
		store:    extras.NewStore(extras.NewSelection(), idx),
		status:   &fakeStatus{status: enums.ConfigurationStatusDraft},
		writer:   newFakeWriter(),
		sink:     &fakeSink{},
		heatPump: heatPump,
		cleaner:  cleaner,
	}
	h.guard = NewGuard(h.status, h.configID, enums.ConfigurationStatusDraft, h.sink)
	return h
}

func (h *harness) reconciler(t *testing.T, group enums.CategoryGroup, mutate func(*Options)) *Reconciler {
	t.Helper()
	opts := Options{
		ConfigurationID: h.configID,
		Group:           group,
		Source:          h.store,
		Writer:          h.writer,
		Guard:           h.guard,
		Sink:            h.sink,
		Timeout:         time.Second,
	}
	if mutate != nil {
		mutate(&opts)
	}
	r, err := NewReconciler(opts)
	require.NoError(t, err)
	return r
}

func TestPassWritesGroupRows(t *testing.T) {
	h := newHarness(t)
	heatPumpID := h.heatPump.ID
	require.NoError(t, h.store.SetHeatPumpItem(&heatPumpID))
	cleanerID := h.cleaner.ID
	require.NoError(t, h.store.SetCleanerItem(&cleanerID))

	require.NoError(t, h.reconciler(t, enums.CategoryGroupHeating, nil).Pass(context.Background()))

	rows := h.writer.group(enums.CategoryGroupHeating)
	require.Len(t, rows, 1)
	assert.Equal(t, "Heat pump", rows[0].Name)
	assert.Empty(t, h.writer.group(enums.CategoryGroupCleaner))
	assert.True(t, h.writer.totals.Equal(decimal.NewFromInt(4200)))
}

func TestPassIsIdempotent(t *testing.T) {
	h := newHarness(t)
	heatPumpID := h.heatPump.ID
	require.NoError(t, h.store.SetHeatPumpItem(&heatPumpID))
	r := h.reconciler(t, enums.CategoryGroupHeating, nil)

	require.NoError(t, r.Pass(context.Background()))
	first := h.writer.group(enums.CategoryGroupHeating)
	require.NoError(t, r.Pass(context.Background()))
	second := h.writer.group(enums.CategoryGroupHeating)

	assert.Equal(t, first, second)
}

func TestPassFailureKeepsStateAndNotifies(t *testing.T) {
	h := newHarness(t)
	cleanerID := h.cleaner.ID
	require.NoError(t, h.store.SetCleanerItem(&cleanerID))
	h.writer.failErr = errWriteFailed
	r := h.reconciler(t, enums.CategoryGroupCleaner, nil)

	err := r.Pass(context.Background())
	require.ErrorIs(t, err, errWriteFailed)

	notes := h.sink.list()
	require.Len(t, notes, 1)
	assert.Equal(t, enums.NotificationLevelError, notes[0].level)
	assert.True(t, h.store.Snapshot().Cleaner.Selected)

	h.writer.failErr = nil
	require.NoError(t, r.Pass(context.Background()))
	assert.Len(t, h.writer.group(enums.CategoryGroupCleaner), 1)
}

func TestPassSuppressedByConflict(t *testing.T) {
	h := newHarness(t)
	reg := prometheus.NewRegistry()
	m := metrics.NewReconcileMetrics(reg)
	r := h.reconciler(t, enums.CategoryGroupHeating, func(o *Options) { o.Metrics = m })

	h.status.set(enums.ConfigurationStatusApproved)
	err := r.Pass(context.Background())
	require.ErrorIs(t, err, ErrConsistencyConflict)
	assert.Zero(t, h.writer.writeCount())

	count, err := testutil.GatherAndCount(reg, "reconcile_pass_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	h.guard.Proceed()
	require.NoError(t, r.Pass(context.Background()))
	assert.Equal(t, 1, h.writer.writeCount())
}

func TestPassRespectsLock(t *testing.T) {
	h := newHarness(t)
	store := newMemoryRedis()
	key := "pq:lock:reconcile:" + h.configID.String() + ":heating"

	held, err := NewRedisLock(store, key, time.Minute)
	require.NoError(t, err)
	ok, err := held.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	mine, err := NewRedisLock(store, key, time.Minute)
	require.NoError(t, err)
	r := h.reconciler(t, enums.CategoryGroupHeating, func(o *Options) { o.Lock = mine })

	require.ErrorIs(t, r.Pass(context.Background()), ErrLockBusy)
	assert.Zero(t, h.writer.writeCount())

	require.NoError(t, held.Release(context.Background()))
	require.NoError(t, r.Pass(context.Background()))
	assert.Equal(t, 1, h.writer.writeCount())

	_, err = store.Get(context.Background(), key)
	assert.Error(t, err, "lock should be released after the pass")
}

func TestNewReconcilerValidates(t *testing.T) {
	_, err := NewReconciler(Options{})
	assert.Error(t, err)

	h := newHarness(t)
	_, err = NewReconciler(Options{ConfigurationID: h.configID, Group: enums.CategoryGroup("pool"), Source: h.store, Writer: h.writer, Guard: h.guard})
	assert.Error(t, err)
}
