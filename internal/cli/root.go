package cli

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aquaforma/poolquote-backend/pkg/config"
	"github.com/aquaforma/poolquote-backend/pkg/db"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
)

// Opener connects to the configured database; release is called when the command is done.
type Opener func(ctx context.Context) (client *db.Client, release func(), err error)

func NewRootCmd() *cobra.Command {
	return newRootCmd(openFromEnv)
}

func newRootCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poolctl",
		Short: "Operator tooling for pool quotes",
		Long: `poolctl migrates the schema, seeds the extras catalog and inspects the
priced state of saved pool configurations without opening an editing session.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newSeedCatalogCmd(open))
	cmd.AddCommand(newTotalsCmd(open))
	cmd.AddCommand(newMigrateCmd(open))

	return cmd
}

func openFromEnv(ctx context.Context) (*db.Client, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logg := logger.New(logger.Options{
		ServiceName: "poolctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}
