package migrate

import (
	"context"
	"fmt"

	"github.com/aquaforma/poolquote-backend/pkg/config"
	"github.com/aquaforma/poolquote-backend/pkg/db"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations at startup when running in dev with
// POOLQUOTE_AUTO_MIGRATE set.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	fsys, err := Source("")
	if err != nil {
		return err
	}
	ctx = logg.WithField(ctx, "dialect", client.Dialect())
	runner, err := NewRunner(sqlDB, client.Dialect(), fsys, logg)
	if err != nil {
		return err
	}
	logg.Info(ctx, "migrate.autorun")
	return runner.Up(ctx)
}
