package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aquaforma/poolquote-backend/internal/notifications"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	pkgerrors "github.com/aquaforma/poolquote-backend/pkg/errors"
)

var ErrConsistencyConflict = pkgerrors.New(pkgerrors.CodeStateConflict, "configuration status changed while editing")

// StatusReader reads the current status of a configuration.
type StatusReader interface {
	GetStatus(ctx context.Context, id uuid.UUID) (enums.ConfigurationStatus, error)
}

// ConflictState describes the guard as seen by clients.
type ConflictState struct {
	Pending    bool                      `json:"pending"`
	Baseline   enums.ConfigurationStatus `json:"baseline"`
	Observed   enums.ConfigurationStatus `json:"observed,omitempty"`
	Suppressed []enums.CategoryGroup     `json:"suppressed,omitempty"`
}

// Guard blocks row writes once the configuration status moved away from the status seen when
// editing started. One guard is shared by every group of a session.
type Guard struct {
	reader          StatusReader
	configurationID uuid.UUID
	sink            notifications.Sink

	mu         sync.Mutex
	baseline   enums.ConfigurationStatus
	observed   enums.ConfigurationStatus
	pending    bool
	suppressed map[enums.CategoryGroup]struct{}
}

// NewGuard creates a guard whose baseline is the given status.
func NewGuard(reader StatusReader, configurationID uuid.UUID, baseline enums.ConfigurationStatus, sink notifications.Sink) *Guard {
	return &Guard{
		reader:          reader,
		configurationID: configurationID,
		sink:            sink,
		baseline:        baseline,
		suppressed:      make(map[enums.CategoryGroup]struct{}),
	}
}

// Check re-reads the status right before a write of group. It returns ErrConsistencyConflict
// when a conflict is pending or has just been detected; the first detection notifies the user.
func (g *Guard) Check(ctx context.Context, group enums.CategoryGroup) error {
	g.mu.Lock()
	if g.pending {
		g.suppressed[group] = struct{}{}
		g.mu.Unlock()
		return ErrConsistencyConflict
	}
	g.mu.Unlock()

	status, err := g.reader.GetStatus(ctx, g.configurationID)
	if err != nil {
		return err
	}

	g.mu.Lock()
	if g.pending {
		g.suppressed[group] = struct{}{}
		g.mu.Unlock()
		return ErrConsistencyConflict
	}
	if status == g.baseline {
		g.mu.Unlock()
		return nil
	}
	g.pending = true
	g.observed = status
	g.suppressed[group] = struct{}{}
	baseline := g.baseline
	g.mu.Unlock()

	if g.sink != nil {
		g.sink.Notify(ctx, enums.NotificationLevelWarning, fmt.Sprintf(
			"Configuration status changed from %s to %s while you were editing. Choose to keep your changes or discard them.",
			baseline, status,
		))
	}
	return ErrConsistencyConflict
}

// State returns a snapshot of the guard.
func (g *Guard) State() ConflictState {
	g.mu.Lock()
	defer g.mu.Unlock()
	state := ConflictState{Pending: g.pending, Baseline: g.baseline}
	if g.pending {
		state.Observed = g.observed
		state.Suppressed = g.suppressedLocked()
	}
	return state
}

// Pending reports whether a conflict awaits resolution.
func (g *Guard) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// Proceed accepts the status seen at conflict time as the new baseline and returns the groups
// whose writes were suppressed. Each retried write still checks the status again.
func (g *Guard) Proceed() []enums.CategoryGroup {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.pending {
		return nil
	}
	groups := g.suppressedLocked()
	g.baseline = g.observed
	g.clearLocked()
	return groups
}

// Rebaseline adopts the current status and drops suppressed groups.
func (g *Guard) Rebaseline(ctx context.Context) error {
	status, err := g.reader.GetStatus(ctx, g.configurationID)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.baseline = status
	g.clearLocked()
	return nil
}

func (g *Guard) clearLocked() {
	g.pending = false
	g.observed = ""
	g.suppressed = make(map[enums.CategoryGroup]struct{})
}

func (g *Guard) suppressedLocked() []enums.CategoryGroup {
	groups := make([]enums.CategoryGroup, 0, len(g.suppressed))
	for _, group := range enums.CategoryGroups {
		if _, ok := g.suppressed[group]; ok {
			groups = append(groups, group)
		}
	}
	return groups
}
