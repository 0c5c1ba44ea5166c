package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/gripvest/internal/app"
	"github.com/bobmcallan/gripvest/internal/models"
)

// productFlags collects the product fields admins can set.
type productFlags struct {
	id             string
	name           string
	investmentType string
	tenureMonths   int
	annualYield    float64
	risk           string
	minInvestment  float64
	maxInvestment  float64
	description    string
}

func (f *productFlags) register(cmd *cobra.Command, withID bool) {
	if withID {
		cmd.Flags().StringVar(&f.id, "id", "", "product id (generated when empty)")
	}
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.investmentType, "type", "", "investment type: stocks, bonds, mutual_funds, fixed_deposits, real_estate")
	cmd.Flags().IntVar(&f.tenureMonths, "tenure", 0, "tenure in months")
	cmd.Flags().Float64Var(&f.annualYield, "yield", 0, "annual yield in percent")
	cmd.Flags().StringVar(&f.risk, "risk", "", "risk level: low, moderate or high")
	cmd.Flags().Float64Var(&f.minInvestment, "min", 0, "minimum investment")
	cmd.Flags().Float64Var(&f.maxInvestment, "max", 0, "maximum investment (0 for none)")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
}

// product builds the product; validation happens in the catalog service.
func (f *productFlags) product() (*models.Product, error) {
	risk, err := models.ParseRiskLevel(f.risk)
	if err != nil {
		return nil, err
	}
	p := &models.Product{
		ID:             f.id,
		Name:           f.name,
		InvestmentType: models.ParseInvestmentType(f.investmentType),
		TenureMonths:   f.tenureMonths,
		AnnualYield:    f.annualYield,
		RiskLevel:      risk,
		MinInvestment:  f.minInvestment,
		Description:    f.description,
	}
	if f.maxInvestment > 0 {
		p.MaxInvestment = models.Float(f.maxInvestment)
	}
	return p, nil
}

func (c *cli) adminCmd() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Catalog management (admin role)",
	}
	products := &cobra.Command{
		Use:   "products",
		Short: "Manage the local product catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, session, err := c.adminSession(cmd)
			if err != nil {
				return err
			}
			list, err := a.CatalogService.AdminProducts(cmd.Context(), session)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatProducts(list, ""))
			return nil
		},
	}

	var createFlags productFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := createFlags.product()
			if err != nil {
				return err
			}
			a, session, err := c.adminSession(cmd)
			if err != nil {
				return err
			}
			created, err := a.CatalogService.CreateProduct(cmd.Context(), session, p)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created product %s\n\n%s", created.ID, formatProduct(created))
			return nil
		},
	}
	createFlags.register(create, true)

	var updateFlags productFlags
	update := &cobra.Command{
		Use:   "update <product-id>",
		Short: "Replace a product's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := updateFlags.product()
			if err != nil {
				return err
			}
			a, session, err := c.adminSession(cmd)
			if err != nil {
				return err
			}
			updated, err := a.CatalogService.UpdateProduct(cmd.Context(), session, args[0], p)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), updated)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated product %s\n\n%s", updated.ID, formatProduct(updated))
			return nil
		},
	}
	updateFlags.register(update, false)

	del := &cobra.Command{
		Use:   "delete <product-id>",
		Short: "Remove a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, session, err := c.adminSession(cmd)
			if err != nil {
				return err
			}
			if err := a.CatalogService.DeleteProduct(cmd.Context(), session, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %s\n", args[0])
			return nil
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, session, err := c.adminSession(cmd)
			if err != nil {
				return err
			}
			s, err := a.CatalogService.Stats(cmd.Context(), session)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatStats(s))
			return nil
		},
	}

	products.AddCommand(list, create, update, del, stats)
	admin.AddCommand(products)
	return admin
}

// adminSession opens the app and returns the stored session. Role checks
// are left to the catalog service.
func (c *cli) adminSession(cmd *cobra.Command) (*app.App, *models.Session, error) {
	a, err := c.open(cmd)
	if err != nil {
		return nil, nil, err
	}
	session, err := a.AuthService.Current(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return a, session, nil
}
