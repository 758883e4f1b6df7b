package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// catalogFile is the seed document:
//
//	items:
//	  - sku: SPA-JET-STD
//	    name: Spa jets
//	    category: spa_jets
//	    cost: "300.00"
//	    margin: "200.00"
//	    position: 1
//
// price defaults to cost + margin; active defaults to true.
type catalogFile struct {
	Items []seedItem `yaml:"items" validate:"required,min=1,dive"`
}

type seedItem struct {
	SKU      string `yaml:"sku" validate:"required,max=64"`
	Name     string `yaml:"name" validate:"required,max=200"`
	Category string `yaml:"category" validate:"required"`
	Cost     string `yaml:"cost" validate:"required"`
	Margin   string `yaml:"margin" validate:"required"`
	Price    string `yaml:"price"`
	Position int    `yaml:"position" validate:"gte=0"`
	Active   *bool  `yaml:"active"`
}

var seedValidate = validator.New()

func newSeedCatalogCmd(open Opener) *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "seed-catalog",
		Short: "Upsert catalog items from a YAML file, keyed by SKU",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			items, err := parseCatalog(raw)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d catalog items valid\n", len(items))
				return nil
			}

			client, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := catalog.NewRepository(client.DB()).Upsert(cmd.Context(), items); err != nil {
				return fmt.Errorf("upsert catalog: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d catalog items\n", len(items))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "catalog.yaml", "catalog seed file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without writing")
	return cmd
}

func parseCatalog(raw []byte) ([]models.CatalogItem, error) {
	var doc catalogFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if err := seedValidate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Items))
	items := make([]models.CatalogItem, 0, len(doc.Items))
	for i, in := range doc.Items {
		sku := strings.TrimSpace(in.SKU)
		if _, dup := seen[sku]; dup {
			return nil, fmt.Errorf("item %d: duplicate sku %q", i, sku)
		}
		seen[sku] = struct{}{}

		item, err := in.toModel()
		if err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i, sku, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (in seedItem) toModel() (models.CatalogItem, error) {
	category, err := enums.ParseExtraCategory(strings.TrimSpace(in.Category))
	if err != nil {
		return models.CatalogItem{}, err
	}
	cost, err := decimal.NewFromString(in.Cost)
	if err != nil {
		return models.CatalogItem{}, fmt.Errorf("cost: %w", err)
	}
	margin, err := decimal.NewFromString(in.Margin)
	if err != nil {
		return models.CatalogItem{}, fmt.Errorf("margin: %w", err)
	}
	if cost.IsNegative() {
		return models.CatalogItem{}, fmt.Errorf("cost must not be negative")
	}
	price := cost.Add(margin)
	if strings.TrimSpace(in.Price) != "" {
		if price, err = decimal.NewFromString(in.Price); err != nil {
			return models.CatalogItem{}, fmt.Errorf("price: %w", err)
		}
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return models.CatalogItem{
		SKU:      strings.TrimSpace(in.SKU),
		Name:     strings.TrimSpace(in.Name),
		Category: category,
		Cost:     cost,
		Margin:   margin,
		Price:    price,
		Position: in.Position,
		IsActive: active,
	}, nil
}
