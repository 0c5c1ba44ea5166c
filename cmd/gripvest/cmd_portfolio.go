package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/gripvest/internal/models"
)

func (c *cli) investCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invest <product-id> <amount>",
		Short: "Buy a product",
		Long: `Invest an amount in a product. The amount must respect the product's
minimum and maximum investment and, unless overdraft is allowed in the
config, your balance. The balance is debited only when the purchase succeeds.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			d, _, err := c.refreshed(cmd)
			if err != nil {
				return err
			}
			inv, err := d.Purchase(cmd.Context(), args[0], amount)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), inv)
			}
			snap := d.Snapshot()
			fmt.Fprint(cmd.OutOrStdout(), formatInvestment("Invested", inv))
			fmt.Fprintf(cmd.OutOrStdout(), "Balance: %s\n", formatMoney(snap.Session.User.Balance))
			return nil
		},
	}
}

func (c *cli) cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <investment-id>",
		Short: "Cancel an active investment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := c.refreshed(cmd)
			if err != nil {
				return err
			}
			inv, err := d.Cancel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), inv)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatInvestment("Cancelled", inv))
			fmt.Fprintf(cmd.OutOrStdout(), "Active investments: %d\n", d.Snapshot().Summary.ActiveInvestments)
			return nil
		},
	}
}

func (c *cli) portfolioCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "portfolio",
		Aliases: []string{"dashboard"},
		Short:   "Show your investments and portfolio summary",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, snap, err := c.refreshed(cmd)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), portfolioView{
					Summary:          snap.Summary,
					RiskDistribution: snap.RiskDistribution,
					RiskProfile:      snap.RiskProfile,
					Investments:      snap.Investments,
					Source:           string(snap.InvestmentsSource),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatPortfolio(snap))
			return nil
		},
	}
}

// portfolioView is the JSON shape of the portfolio command.
type portfolioView struct {
	Summary          models.PortfolioSummary `json:"summary"`
	RiskDistribution models.RiskDistribution `json:"risk_distribution"`
	RiskProfile      models.RiskProfile      `json:"risk_profile"`
	Investments      []*models.Investment    `json:"investments"`
	Source           string                  `json:"source"`
}

func (c *cli) insightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Analyse your portfolio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := c.refreshed(cmd)
			if err != nil {
				return err
			}
			res := d.Insights(cmd.Context())
			if res.Failed() {
				return res.Err()
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res.Value())
			}
			fmt.Fprint(cmd.OutOrStdout(), formatInsights(res.Value(), res.Source()))
			return nil
		},
	}
}

// parseAmount accepts plain numbers with optional grouping commas and a
// leading currency symbol.
func parseAmount(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "₹")
	clean = strings.ReplaceAll(clean, ",", "")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, &models.ValidationError{Field: "amount", Message: fmt.Sprintf("%q is not a number", s)}
	}
	return v, nil
}
