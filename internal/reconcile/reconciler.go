package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/internal/extras"
	"github.com/aquaforma/poolquote-backend/internal/notifications"
	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	pkgerrors "github.com/aquaforma/poolquote-backend/pkg/errors"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
	"github.com/aquaforma/poolquote-backend/pkg/metrics"
)

var ErrLockBusy = pkgerrors.New(pkgerrors.CodeLockBusy, "another writer holds the configuration lock")

// RowWriter persists the rows of one group and the totals snapshot.
type RowWriter interface {
	ReplaceRows(ctx context.Context, id uuid.UUID, group enums.CategoryGroup, rows []models.ConfigurationRow) error
	UpdateTotals(ctx context.Context, id uuid.UUID, cost, margin, price decimal.Decimal) error
}

// StateSource yields a consistent selection/catalog pair to write from.
type StateSource interface {
	State() (extras.Selection, *catalog.Index)
}

// Options wires a Reconciler.
type Options struct {
	ConfigurationID uuid.UUID
	Group           enums.CategoryGroup
	Source          StateSource
	Writer          RowWriter
	Guard           *Guard
	Lock            Lock
	Sink            notifications.Sink
	Metrics         *metrics.ReconcileMetrics
	Logger          *logger.Logger
	Timeout         time.Duration
}

// Reconciler writes one category group of a configuration from the latest in-memory selection.
type Reconciler struct {
	configurationID uuid.UUID
	group           enums.CategoryGroup
	source          StateSource
	writer          RowWriter
	guard           *Guard
	lock            Lock
	sink            notifications.Sink
	metrics         *metrics.ReconcileMetrics
	logg            *logger.Logger
	timeout         time.Duration
}

// NewReconciler validates opts and builds a reconciler.
func NewReconciler(opts Options) (*Reconciler, error) {
	if opts.ConfigurationID == uuid.Nil {
		return nil, fmt.Errorf("configuration id required")
	}
	if !opts.Group.IsValid() {
		return nil, fmt.Errorf("invalid category group %q", opts.Group)
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("state source required")
	}
	if opts.Writer == nil {
		return nil, fmt.Errorf("row writer required")
	}
	if opts.Guard == nil {
		return nil, fmt.Errorf("consistency guard required")
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Reconciler{
		configurationID: opts.ConfigurationID,
		group:           opts.Group,
		source:          opts.Source,
		writer:          opts.Writer,
		guard:           opts.Guard,
		lock:            opts.Lock,
		sink:            opts.Sink,
		metrics:         opts.Metrics,
		logg:            logg,
		timeout:         opts.Timeout,
	}, nil
}

// Group returns the group this reconciler writes.
func (r *Reconciler) Group() enums.CategoryGroup {
	return r.group
}

// Pass replaces the persisted rows of the group with rows built from the current selection.
// In-memory state is never rolled back on failure; the next pass retries.
func (r *Reconciler) Pass(ctx context.Context) error {
	start := time.Now()
	outcome := enums.ReconcileOutcomeSuccess
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	ctx = r.logg.WithGroup(ctx, r.group.String())
	defer func() {
		r.metrics.ObservePass(r.group.String(), outcome.String(), time.Since(start))
	}()

	if r.lock != nil {
		acquired, lockErr := r.lock.Acquire(ctx)
		if lockErr != nil {
			outcome = enums.ReconcileOutcomeFailure
			r.fail(ctx, "acquire reconcile lock", lockErr)
			return lockErr
		}
		if !acquired {
			outcome = enums.ReconcileOutcomeSkipped
			r.logg.Debug(ctx, "reconcile lock busy")
			return ErrLockBusy
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			defer cancel()
			if relErr := r.lock.Release(releaseCtx); relErr != nil {
				r.logg.Warn(r.logg.WithField(ctx, "error", relErr.Error()), "release reconcile lock failed")
			}
		}()
	}

	if checkErr := r.guard.Check(ctx, r.group); checkErr != nil {
		if errors.Is(checkErr, ErrConsistencyConflict) {
			outcome = enums.ReconcileOutcomeConflict
			r.logg.Info(ctx, "reconcile pass suppressed by status conflict")
			return checkErr
		}
		outcome = enums.ReconcileOutcomeFailure
		r.fail(ctx, "read configuration status", checkErr)
		return checkErr
	}

	sel, idx := r.source.State()
	rows := extras.BuildRows(r.configurationID, r.group, sel, idx)
	if writeErr := r.writer.ReplaceRows(ctx, r.configurationID, r.group, rows); writeErr != nil {
		outcome = enums.ReconcileOutcomeFailure
		r.fail(ctx, "replace configuration rows", writeErr)
		return writeErr
	}

	grand := extras.ComputeTotals(sel, idx).Grand
	if totalsErr := r.writer.UpdateTotals(ctx, r.configurationID, grand.Cost, grand.Margin, grand.Price); totalsErr != nil {
		r.logg.Warn(r.logg.WithField(ctx, "error", totalsErr.Error()), "totals snapshot not updated")
	}

	r.logg.Debug(r.logg.WithField(ctx, "rows", len(rows)), "reconcile pass complete")
	return nil
}

func (r *Reconciler) fail(ctx context.Context, action string, err error) {
	r.logg.Error(ctx, action, err)
	if r.sink != nil {
		r.sink.Notify(ctx, enums.NotificationLevelError, fmt.Sprintf("Could not save %s selection. Your changes are kept and will be retried.", r.group))
	}
}
