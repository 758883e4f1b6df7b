package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aquaforma/poolquote-backend/internal/extras"
	"github.com/aquaforma/poolquote-backend/internal/notifications"
	"github.com/aquaforma/poolquote-backend/internal/reconcile"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	pkgerrors "github.com/aquaforma/poolquote-backend/pkg/errors"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
)

var (
	ErrNoConflict        = pkgerrors.New(pkgerrors.CodeConflict, "no pending conflict to resolve")
	ErrInvalidResolution = pkgerrors.New(pkgerrors.CodeValidation, "resolution must be proceed or discard")
	ErrSessionClosed     = pkgerrors.New(pkgerrors.CodeStaleSession, "editing session has ended")
)

// View is a consistent read of a session.
type View struct {
	ID              uuid.UUID               `json:"id"`
	ConfigurationID uuid.UUID               `json:"configuration_id"`
	StartedAt       time.Time               `json:"started_at"`
	Selection       extras.Selection        `json:"selection"`
	Totals          extras.Totals           `json:"totals"`
	Conflict        reconcile.ConflictState `json:"conflict"`
}

// Session is one user's editing of one configuration. All state is owned by the session.
type Session struct {
	ID              uuid.UUID
	ConfigurationID uuid.UUID
	StartedAt       time.Time

	store       *extras.Store
	guard       *reconcile.Guard
	feed        *notifications.Feed
	debouncers  map[enums.CategoryGroup]*reconcile.Debouncer
	reconcilers map[enums.CategoryGroup]*reconcile.Reconciler
	deps        *Manager
	logCtx      context.Context

	mu     sync.Mutex
	closed bool
}

// View returns the selection, its totals and the conflict state.
func (s *Session) View() View {
	sel, idx := s.store.State()
	return View{
		ID:              s.ID,
		ConfigurationID: s.ConfigurationID,
		StartedAt:       s.StartedAt,
		Selection:       sel,
		Totals:          extras.ComputeTotals(sel, idx),
		Conflict:        s.guard.State(),
	}
}

// Totals prices the current selection.
func (s *Session) Totals() extras.Totals {
	return s.store.Totals()
}

// Store exposes the selection store for per-category setters.
func (s *Session) Store() *extras.Store {
	return s.store
}

func (s *Session) SetSelected(category enums.ExtraCategory, selected bool) (extras.Totals, error) {
	return s.apply(func() error { return s.store.SetSelected(category, selected) })
}

func (s *Session) SetItem(category enums.ExtraCategory, itemID *uuid.UUID) (extras.Totals, error) {
	return s.apply(func() error { return s.store.SetItem(category, itemID) })
}

func (s *Session) UpdateSlot(category enums.ExtraCategory, upd extras.SlotUpdate) (extras.Totals, error) {
	return s.apply(func() error { return s.store.UpdateSlot(category, upd) })
}

func (s *Session) SetSpaJetsQuantity(quantity int) (extras.Totals, error) {
	return s.apply(func() error { return s.store.SetSpaJetsQuantity(quantity) })
}

func (s *Session) AddMiscItem(itemID uuid.UUID, quantity int) (extras.Totals, error) {
	return s.apply(func() error { return s.store.AddMiscItem(itemID, quantity) })
}

func (s *Session) UpdateMiscItemQuantity(itemID uuid.UUID, quantity int) (extras.Totals, error) {
	return s.apply(func() error { return s.store.UpdateMiscItemQuantity(itemID, quantity) })
}

func (s *Session) RemoveMiscItem(itemID uuid.UUID) (extras.Totals, error) {
	return s.apply(func() error { return s.store.RemoveMiscItem(itemID) })
}

func (s *Session) AddCustomItem(name string, cost, margin decimal.Decimal) (uuid.UUID, extras.Totals, error) {
	var rowID uuid.UUID
	totals, err := s.apply(func() error {
		id, err := s.store.AddCustomItem(name, cost, margin)
		rowID = id
		return err
	})
	return rowID, totals, err
}

func (s *Session) RemoveCustomItem(rowID uuid.UUID) (extras.Totals, error) {
	return s.apply(func() error { return s.store.RemoveCustomItem(rowID) })
}

// Notifications drains the session feed.
func (s *Session) Notifications() []notifications.Notification {
	return s.feed.Drain()
}

// Conflict reports the consistency guard state.
func (s *Session) Conflict() reconcile.ConflictState {
	return s.guard.State()
}

// Resolve answers a pending consistency warning. Proceed re-runs the suppressed groups, each
// checking the status again before writing. Discard reloads the persisted rows into the selection.
func (s *Session) Resolve(ctx context.Context, resolution enums.ConflictResolution) error {
	if !resolution.IsValid() {
		return ErrInvalidResolution
	}
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if !s.guard.Pending() {
		return ErrNoConflict
	}

	switch resolution {
	case enums.ConflictResolutionProceed:
		for _, group := range s.guard.Proceed() {
			s.debouncers[group].RunNow()
		}
		s.deps.logg.Info(s.deps.logg.WithField(s.logCtx, "resolution", "proceed"), "conflict resolved")
		return nil
	default:
		rows, err := s.deps.configs.ListRows(ctx, s.ConfigurationID, nil)
		if err != nil {
			return err
		}
		for _, d := range s.debouncers {
			d.Cancel()
		}
		s.store.Replace(extras.Hydrate(rows))
		if err := s.guard.Rebaseline(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read configuration status")
		}
		s.deps.logg.Info(s.deps.logg.WithField(s.logCtx, "resolution", "discard"), "conflict resolved")
		return nil
	}
}

// RefreshCatalog reloads the catalog snapshot; every group is rescheduled.
func (s *Session) RefreshCatalog(ctx context.Context) (extras.Totals, error) {
	if err := s.ensureOpen(); err != nil {
		return extras.Totals{}, err
	}
	idx, err := s.deps.catalog.LoadIndex(ctx)
	if err != nil {
		return extras.Totals{}, err
	}
	s.store.SetCatalog(idx)
	return s.store.Totals(), nil
}

// Flush runs every group immediately instead of waiting for the quiet period.
func (s *Session) Flush() error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	for _, group := range enums.CategoryGroups {
		s.debouncers[group].RunNow()
	}
	return nil
}

func (s *Session) apply(mutate func() error) (extras.Totals, error) {
	if err := s.ensureOpen(); err != nil {
		return extras.Totals{}, err
	}
	if err := mutate(); err != nil {
		return extras.Totals{}, err
	}
	return s.store.Totals(), nil
}

func (s *Session) ensureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

func (s *Session) onChange(group enums.CategoryGroup) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	s.deps.metrics.IncTrigger(group.String())
	s.debouncers[group].Trigger()
}

func (s *Session) pass(group enums.CategoryGroup) func(ctx context.Context) {
	return func(ctx context.Context) {
		err := s.reconcilers[group].Pass(ctx)
		if errors.Is(err, reconcile.ErrLockBusy) {
			s.debouncers[group].Trigger()
		}
	}
}

// close stops scheduling. Pending passes are dropped and in-flight passes finish on their own.
func (s *Session) close() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	s.mu.Unlock()

	for _, d := range s.debouncers {
		d.Stop()
	}
	s.feed.Detach()
	return true
}

func (s *Session) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		for _, d := range s.debouncers {
			d.Wait()
		}
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sessionLogger(logg *logger.Logger, id, configurationID uuid.UUID) context.Context {
	ctx := logg.WithSessionID(context.Background(), id.String())
	return logg.WithConfigurationID(ctx, configurationID.String())
}
