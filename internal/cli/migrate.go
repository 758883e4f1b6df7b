package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aquaforma/poolquote-backend/pkg/migrate"
)

func newMigrateCmd(open Opener) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the goose schema migrations",
		Long: `Without --dir the migrations compiled into poolctl are used, so a released
binary always carries the schema it was built against.`,
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "read migrations from this directory instead of the embedded set")

	withRunner := func(fn func(cmd *cobra.Command, args []string, r *migrate.Runner) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			fsys, err := migrate.Source(dir)
			if err != nil {
				return err
			}
			client, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()
			sqlDB, err := client.DB().DB()
			if err != nil {
				return err
			}
			runner, err := migrate.NewRunner(sqlDB, client.Dialect(), fsys, nil)
			if err != nil {
				return err
			}
			return fn(cmd, args, runner)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withRunner(func(cmd *cobra.Command, _ []string, r *migrate.Runner) error {
			return r.Up(cmd.Context())
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		Args:  cobra.NoArgs,
		RunE: withRunner(func(cmd *cobra.Command, _ []string, r *migrate.Runner) error {
			return r.Down(cmd.Context())
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: withRunner(func(cmd *cobra.Command, _ []string, r *migrate.Runner) error {
			return r.Reset(cmd.Context())
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "to <version>",
		Short: "Migrate up or down to a YYYYMMDDHHMMSS version",
		Args:  cobra.ExactArgs(1),
		RunE: withRunner(func(cmd *cobra.Command, args []string, r *migrate.Runner) error {
			version, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("version %q: %w", args[0], err)
			}
			return r.To(cmd.Context(), version)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: withRunner(func(cmd *cobra.Command, _ []string, r *migrate.Runner) error {
			statuses, err := r.Status(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tSTATE\tFILE")
			for _, st := range statuses {
				state := "pending"
				if st.Applied {
					state = "applied " + st.AppliedAt.UTC().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", st.Version, state, st.Path)
			}
			return tw.Flush()
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Write an empty SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := dir
			if target == "" {
				target = migrate.DefaultDir
			}
			path, err := migrate.CreateSQLMigration(target, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "created", path)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check migration names and goose annotations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fsys, err := migrate.Source(dir)
			if err != nil {
				return err
			}
			if err := migrate.Validate(fsys); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations ok")
			return nil
		},
	})
	return cmd
}
