package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/internal/configurations"
	"github.com/aquaforma/poolquote-backend/internal/extras"
	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

type totalsReport struct {
	Configuration models.PoolConfiguration `json:"configuration"`
	Derived       extras.Totals            `json:"derived"`
	Snapshot      extras.Amounts           `json:"snapshot"`
	InSync        bool                     `json:"in_sync"`
}

func newTotalsCmd(open Opener) *cobra.Command {
	var (
		configurationID string
		asJSON          bool
	)
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Price the persisted rows of a configuration against the current catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(configurationID)
			if err != nil {
				return fmt.Errorf("--configuration must be a uuid: %w", err)
			}

			client, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			configs, err := configurations.NewService(configurations.NewRepository(client.DB()), client)
			if err != nil {
				return err
			}
			catalogSvc, err := catalog.NewService(catalog.NewRepository(client.DB()))
			if err != nil {
				return err
			}

			record, err := configs.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			rows, err := configs.ListRows(cmd.Context(), id, nil)
			if err != nil {
				return err
			}
			idx, err := catalogSvc.LoadIndex(cmd.Context())
			if err != nil {
				return err
			}

			derived := extras.NewStore(extras.Hydrate(rows), idx).Totals()
			snapshot := extras.Amounts{Cost: record.TotalCost, Margin: record.TotalMargin, Price: record.TotalPrice}
			report := totalsReport{
				Configuration: *record,
				Derived:       derived,
				Snapshot:      snapshot,
				InSync:        snapshot.Cost.Equal(derived.Grand.Cost) && snapshot.Margin.Equal(derived.Grand.Margin) && snapshot.Price.Equal(derived.Grand.Price),
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return writeTotalsTable(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVarP(&configurationID, "configuration", "c", "", "configuration id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	_ = cmd.MarkFlagRequired("configuration")
	return cmd
}

func writeTotalsTable(out io.Writer, report totalsReport) error {
	cfg := report.Configuration
	fmt.Fprintf(out, "%s / %s (%s)\n\n", cfg.CustomerName, cfg.PoolName, cfg.Status)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "LINE\tCOST\tMARGIN\tPRICE\t")
	for _, category := range enums.ExtraCategories {
		amounts, ok := report.Derived.Categories[category]
		if !ok || amounts.IsZero() {
			continue
		}
		writeAmounts(tw, category.String(), amounts)
	}
	if !report.Derived.Misc.IsZero() {
		writeAmounts(tw, "misc", report.Derived.Misc)
	}
	if !report.Derived.Custom.IsZero() {
		writeAmounts(tw, "custom", report.Derived.Custom)
	}
	fmt.Fprintln(tw, "\t\t\t\t")
	for _, group := range enums.CategoryGroups {
		writeAmounts(tw, "group "+group.String(), report.Derived.Groups[group])
	}
	writeAmounts(tw, "total", report.Derived.Grand)
	writeAmounts(tw, "stored snapshot", report.Snapshot)
	if err := tw.Flush(); err != nil {
		return err
	}

	if b := report.Derived.Bundle; b.Active {
		fmt.Fprintf(out, "\nbundle active: %s instead of %s (saves %s)\n",
			b.BundlePrice.StringFixed(2), b.Individual.StringFixed(2), b.Savings.StringFixed(2))
	}
	if !report.InSync {
		fmt.Fprintln(out, "\nstored snapshot differs from the derived totals")
	}
	return nil
}

func writeAmounts(w io.Writer, label string, a extras.Amounts) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", label, a.Cost.StringFixed(2), a.Margin.StringFixed(2), a.Price.StringFixed(2))
}
