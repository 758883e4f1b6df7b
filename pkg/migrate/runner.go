package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/aquaforma/poolquote-backend/pkg/db"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
)

// Runner applies the goose migrations for one database handle.
type Runner struct {
	provider *goose.Provider
	logg     *logger.Logger
}

// Applied describes one migration in Runner.Status output.
type Applied struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

// GooseDialect maps a gorm dialector name onto the goose dialect.
func GooseDialect(gormDialect string) goose.Dialect {
	if gormDialect == db.DialectSQLite || gormDialect == "sqlite3" {
		return goose.DialectSQLite3
	}
	return goose.DialectPostgres
}

func NewRunner(sqlDB *sql.DB, dialect string, fsys fs.FS, logg *logger.Logger) (*Runner, error) {
	if sqlDB == nil {
		return nil, errors.New("sql db is required")
	}
	provider, err := goose.NewProvider(GooseDialect(dialect), sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Runner{provider: provider, logg: logg}, nil
}

// Up applies every pending migration.
func (r *Runner) Up(ctx context.Context) error {
	results, err := r.provider.Up(ctx)
	r.report(ctx, "up", results...)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func (r *Runner) Down(ctx context.Context) error {
	result, err := r.provider.Down(ctx)
	if result != nil {
		r.report(ctx, "down", result)
	}
	if err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

// Reset rolls every migration back.
func (r *Runner) Reset(ctx context.Context) error {
	return r.To(ctx, 0)
}

// To migrates up or down until version is the newest applied migration.
func (r *Runner) To(ctx context.Context, version int64) error {
	current, err := r.Version(ctx)
	if err != nil {
		return err
	}
	var results []*goose.MigrationResult
	switch {
	case current == version:
		return nil
	case current < version:
		results, err = r.provider.UpTo(ctx, version)
	default:
		results, err = r.provider.DownTo(ctx, version)
	}
	r.report(ctx, fmt.Sprintf("to %d", version), results...)
	if err != nil {
		return fmt.Errorf("goose migrate to %d: %w", version, err)
	}
	return nil
}

func (r *Runner) Version(ctx context.Context) (int64, error) {
	version, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose version: %w", err)
	}
	return version, nil
}

func (r *Runner) Status(ctx context.Context) ([]Applied, error) {
	statuses, err := r.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}
	out := make([]Applied, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, Applied{
			Version:   st.Source.Version,
			Path:      st.Source.Path,
			Applied:   st.State == goose.StateApplied,
			AppliedAt: st.AppliedAt,
		})
	}
	return out, nil
}

func (r *Runner) report(ctx context.Context, direction string, results ...*goose.MigrationResult) {
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		r.logg.Info(r.logg.WithFields(ctx, map[string]any{
			"direction":   direction,
			"version":     res.Source.Version,
			"path":        res.Source.Path,
			"duration_ms": res.Duration.Milliseconds(),
		}), "migrate.applied")
	}
}
