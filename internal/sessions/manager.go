package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/internal/extras"
	"github.com/aquaforma/poolquote-backend/internal/notifications"
	"github.com/aquaforma/poolquote-backend/internal/reconcile"
	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	pkgerrors "github.com/aquaforma/poolquote-backend/pkg/errors"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
	"github.com/aquaforma/poolquote-backend/pkg/metrics"
)

var ErrSessionNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "editing session not found")

// ConfigurationStore is the persistence a session reads from and writes to.
type ConfigurationStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.PoolConfiguration, error)
	GetStatus(ctx context.Context, id uuid.UUID) (enums.ConfigurationStatus, error)
	ListRows(ctx context.Context, id uuid.UUID, group *enums.CategoryGroup) ([]models.ConfigurationRow, error)
	ReplaceRows(ctx context.Context, id uuid.UUID, group enums.CategoryGroup, rows []models.ConfigurationRow) error
	UpdateTotals(ctx context.Context, id uuid.UUID, cost, margin, price decimal.Decimal) error
}

// CatalogLoader loads the catalog snapshot a session prices against.
type CatalogLoader interface {
	LoadIndex(ctx context.Context) (*catalog.Index, error)
}

// LockFactory returns the write lock of one configuration group; nil disables locking.
type LockFactory func(configurationID uuid.UUID, group enums.CategoryGroup) (reconcile.Lock, error)

// Options wires a Manager.
type Options struct {
	Configurations ConfigurationStore
	Catalog        CatalogLoader
	Locks          LockFactory
	Sink           notifications.Sink
	Metrics        *metrics.ReconcileMetrics
	Logger         *logger.Logger
	QuietPeriod    time.Duration
	PassTimeout    time.Duration
	FeedSize       int
}

// Manager tracks open editing sessions.
type Manager struct {
	configs     ConfigurationStore
	catalog     CatalogLoader
	locks       LockFactory
	sink        notifications.Sink
	metrics     *metrics.ReconcileMetrics
	logg        *logger.Logger
	quietPeriod time.Duration
	passTimeout time.Duration
	feedSize    int

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager validates opts and returns an empty manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Configurations == nil {
		return nil, fmt.Errorf("configuration store required")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	quiet := opts.QuietPeriod
	if quiet <= 0 {
		quiet = reconcile.DefaultQuietPeriod
	}
	return &Manager{
		configs:     opts.Configurations,
		catalog:     opts.Catalog,
		locks:       opts.Locks,
		sink:        opts.Sink,
		metrics:     opts.Metrics,
		logg:        logg,
		quietPeriod: quiet,
		passTimeout: opts.PassTimeout,
		feedSize:    opts.FeedSize,
		sessions:    make(map[uuid.UUID]*Session),
	}, nil
}

// Begin opens an editing session: the persisted rows are hydrated into a fresh selection and the
// current status becomes the consistency baseline.
func (m *Manager) Begin(ctx context.Context, configurationID uuid.UUID) (*Session, error) {
	cfg, err := m.configs.Get(ctx, configurationID)
	if err != nil {
		return nil, err
	}
	idx, err := m.catalog.LoadIndex(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := m.configs.ListRows(ctx, configurationID, nil)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	feed := notifications.NewFeed(m.feedSize)
	sink := notifications.Fanout(feed, m.sink)
	session := &Session{
		ID:              id,
		ConfigurationID: configurationID,
		StartedAt:       time.Now().UTC(),
		store:           extras.NewStore(extras.Hydrate(rows), idx),
		guard:           reconcile.NewGuard(m.configs, configurationID, cfg.Status, sink),
		feed:            feed,
		debouncers:      make(map[enums.CategoryGroup]*reconcile.Debouncer, len(enums.CategoryGroups)),
		reconcilers:     make(map[enums.CategoryGroup]*reconcile.Reconciler, len(enums.CategoryGroups)),
		deps:            m,
		logCtx:          sessionLogger(m.logg, id, configurationID),
	}

	for _, group := range enums.CategoryGroups {
		var lock reconcile.Lock
		if m.locks != nil {
			lock, err = m.locks(configurationID, group)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build reconcile lock")
			}
		}
		rec, err := reconcile.NewReconciler(reconcile.Options{
			ConfigurationID: configurationID,
			Group:           group,
			Source:          session.store,
			Writer:          m.configs,
			Guard:           session.guard,
			Lock:            lock,
			Sink:            sink,
			Metrics:         m.metrics,
			Logger:          m.logg,
			Timeout:         m.passTimeout,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build reconciler")
		}
		session.reconcilers[group] = rec
	}
	for _, group := range enums.CategoryGroups {
		session.debouncers[group] = reconcile.NewDebouncer(session.logCtx, m.quietPeriod, session.pass(group))
	}
	session.store.OnChange(session.onChange)

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()
	m.metrics.SessionOpened()

	m.logg.Info(m.logg.WithField(session.logCtx, "rows", len(rows)), "editing session started")
	return session, nil
}

// Get returns an open session.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// End closes a session. Pending passes are cancelled; a pass already running completes unobserved.
func (m *Manager) End(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	if session.close() {
		m.metrics.SessionClosed()
		m.logg.Info(session.logCtx, "editing session ended")
	}
	return nil
}

// Len reports the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown ends every session and waits for in-flight passes until ctx is done.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for id, session := range m.sessions {
		open = append(open, session)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	var errs error
	for _, session := range open {
		if session.close() {
			m.metrics.SessionClosed()
		}
	}
	for _, session := range open {
		if err := session.wait(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", session.ID, err))
		}
	}
	return errs
}
