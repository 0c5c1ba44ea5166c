package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/models"
)

func (c *cli) productsCmd() *cobra.Command {
	var riskFilter, typeFilter string
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"catalog"},
		Short:   "List investable products",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			res := a.CatalogService.Load(cmd.Context())
			if res.Failed() {
				return res.Err()
			}

			products, err := filterProducts(res.Value(), riskFilter, typeFilter)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), products)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatProducts(products, res.Source()))
			return nil
		},
	}
	cmd.Flags().StringVar(&riskFilter, "risk", "", "only show products with this risk level")
	cmd.Flags().StringVar(&typeFilter, "type", "", "only show products of this investment type")

	cmd.AddCommand(c.productShowCmd())
	return cmd
}

func (c *cli) productShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if res := a.CatalogService.Load(ctx); res.Failed() {
				return res.Err()
			}
			// Product lookups do not need a session.
			session, _ := a.AuthService.Current(ctx)
			p, err := a.CatalogService.Get(ctx, session, args[0])
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatProduct(p))
			return nil
		},
	}
}

func (c *cli) recommendationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "recommendations",
		Aliases: []string{"recs"},
		Short:   "Products suited to your risk appetite",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := c.refreshed(cmd)
			if err != nil {
				return err
			}
			res := d.Recommendations(cmd.Context())
			if res.Failed() {
				return res.Err()
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res.Value())
			}
			fmt.Fprint(cmd.OutOrStdout(), formatProducts(res.Value(), res.Source()))
			return nil
		},
	}
}

// filterProducts applies the optional risk and type filters.
func filterProducts(products []*models.Product, risk, investmentType string) ([]*models.Product, error) {
	var level models.RiskLevel
	if risk != "" {
		l, err := models.ParseRiskLevel(risk)
		if err != nil {
			return nil, err
		}
		level = l
	}
	var kind models.InvestmentType
	if investmentType != "" {
		kind = models.ParseInvestmentType(investmentType)
		if !kind.Valid() {
			return nil, &models.ValidationError{Field: "type", Message: fmt.Sprintf("unknown investment type %q", investmentType)}
		}
	}

	out := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if level != "" && p.RiskLevel != level {
			continue
		}
		if kind != "" && p.InvestmentType != kind {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// sourceOf reports fallback when any of the results is not remote.
func sourceOf(sources ...common.Source) common.Source {
	for _, s := range sources {
		if s != common.SourceRemote {
			return common.SourceFallback
		}
	}
	return common.SourceRemote
}
