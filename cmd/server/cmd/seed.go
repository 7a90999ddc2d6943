package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/warebase/server/internal/config"
	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/inventory"
	"github.com/warebase/server/internal/domain/organizations"
	"github.com/warebase/server/internal/domain/warehouses"
)

var seedFile string

// Seed file schema. Everything nests under its parent so the file reads the
// way the data is structured: organization > warehouse > zone > bin.
type seedSpec struct {
	Organizations []seedOrganization `yaml:"organizations"`
}

type seedOrganization struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Warehouses  []seedWarehouse `yaml:"warehouses"`
	Categories  []seedCategory  `yaml:"categories"`
	Suppliers   []seedSupplier  `yaml:"suppliers"`
	Items       []seedItem      `yaml:"items"`
	Stock       []seedStock     `yaml:"stock"`
}

type seedWarehouse struct {
	Name    string     `yaml:"name"`
	Code    string     `yaml:"code"`
	Address string     `yaml:"address"`
	Zones   []seedZone `yaml:"zones"`
}

type seedZone struct {
	Name string    `yaml:"name"`
	Code string    `yaml:"code"`
	Bins []seedBin `yaml:"bins"`
}

type seedBin struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

type seedCategory struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

type seedSupplier struct {
	Name         string `yaml:"name"`
	Code         string `yaml:"code"`
	ContactEmail string `yaml:"contact_email"`
}

type seedItem struct {
	SKU             string `yaml:"sku"`
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	Category        string `yaml:"category"`
	Supplier        string `yaml:"supplier"`
	ReorderPoint    int64  `yaml:"reorder_point"`
	ReorderQuantity int64  `yaml:"reorder_quantity"`
}

type seedStock struct {
	SKU      string `yaml:"sku"`
	Bin      string `yaml:"bin"`
	Quantity int64  `yaml:"quantity"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load organizations, warehouses, items, and stock from a YAML file",
	Long: `Load demo or initial data into the configured store.

The file describes organizations with their warehouses, zones, bins,
categories, suppliers, items, and opening stock. Seeding is not idempotent;
run it against an empty database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedFile == "" {
			return fmt.Errorf("--file is required")
		}

		raw, err := os.ReadFile(seedFile)
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}
		var spec seedSpec
		if err := yaml.Unmarshal(raw, &spec); err != nil {
			return fmt.Errorf("parse seed file: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		logger := config.NewLogger(cfg.Logging)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, org := range spec.Organizations {
			if err := seedOrg(ctx, a, org); err != nil {
				return fmt.Errorf("seed organization %q: %w", org.Name, err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d organization(s)\n", len(spec.Organizations))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "seed file path")
}

func seedOrg(ctx context.Context, a *app, spec seedOrganization) error {
	org, err := a.organizations.Create(ctx, organizations.CreateParams{
		Name:        spec.Name,
		Description: spec.Description,
	})
	if err != nil {
		return err
	}

	binsByCode := make(map[string]int64)
	for _, w := range spec.Warehouses {
		warehouse, err := a.warehouses.CreateWarehouse(ctx, warehouses.CreateWarehouseParams{
			Name:           w.Name,
			Code:           w.Code,
			Address:        w.Address,
			OrganizationID: org.ID,
		})
		if err != nil {
			return fmt.Errorf("warehouse %q: %w", w.Code, err)
		}
		for _, z := range w.Zones {
			zone, err := a.warehouses.CreateZone(ctx, warehouses.CreateZoneParams{
				Name:        z.Name,
				Code:        z.Code,
				WarehouseID: warehouse.ID,
			})
			if err != nil {
				return fmt.Errorf("zone %q: %w", z.Code, err)
			}
			for _, b := range z.Bins {
				name := b.Name
				if name == "" {
					name = b.Code
				}
				bin, err := a.warehouses.CreateBin(ctx, warehouses.CreateBinParams{
					Name:   name,
					Code:   b.Code,
					ZoneID: zone.ID,
				})
				if err != nil {
					return fmt.Errorf("bin %q: %w", b.Code, err)
				}
				binsByCode[bin.Code] = bin.ID
			}
		}
	}

	categoriesByName := make(map[string]int64)
	for _, c := range spec.Categories {
		category, err := a.catalog.CreateCategory(ctx, catalog.CreateCategoryParams{
			Name:           c.Name,
			Code:           c.Code,
			OrganizationID: org.ID,
		})
		if err != nil {
			return fmt.Errorf("category %q: %w", c.Name, err)
		}
		categoriesByName[category.Name] = category.ID
	}

	suppliersByName := make(map[string]int64)
	for _, s := range spec.Suppliers {
		supplier, err := a.catalog.CreateSupplier(ctx, catalog.CreateSupplierParams{
			Name:           s.Name,
			Code:           s.Code,
			ContactEmail:   s.ContactEmail,
			OrganizationID: org.ID,
		})
		if err != nil {
			return fmt.Errorf("supplier %q: %w", s.Name, err)
		}
		suppliersByName[supplier.Name] = supplier.ID
	}

	itemsBySKU := make(map[string]int64)
	for _, it := range spec.Items {
		params := catalog.CreateItemParams{
			SKU:             it.SKU,
			Name:            it.Name,
			Description:     it.Description,
			ReorderPoint:    it.ReorderPoint,
			ReorderQuantity: it.ReorderQuantity,
			OrganizationID:  org.ID,
		}
		if it.Category != "" {
			id, ok := categoriesByName[it.Category]
			if !ok {
				return fmt.Errorf("item %q references unknown category %q", it.SKU, it.Category)
			}
			params.CategoryID = &id
		}
		if it.Supplier != "" {
			id, ok := suppliersByName[it.Supplier]
			if !ok {
				return fmt.Errorf("item %q references unknown supplier %q", it.SKU, it.Supplier)
			}
			params.SupplierID = &id
		}
		item, err := a.catalog.CreateItem(ctx, params)
		if err != nil {
			return fmt.Errorf("item %q: %w", it.SKU, err)
		}
		itemsBySKU[item.SKU] = item.ID
	}

	for _, s := range spec.Stock {
		itemID, ok := itemsBySKU[s.SKU]
		if !ok {
			return fmt.Errorf("stock references unknown sku %q", s.SKU)
		}
		binID, ok := binsByCode[s.Bin]
		if !ok {
			return fmt.Errorf("stock references unknown bin %q", s.Bin)
		}
		if _, err := a.inventory.Create(ctx, inventory.CreateParams{
			ItemID:    itemID,
			BinID:     binID,
			Quantity:  s.Quantity,
			Reference: "seed",
		}); err != nil {
			return fmt.Errorf("stock %s into %s: %w", s.SKU, s.Bin, err)
		}
	}

	return nil
}
