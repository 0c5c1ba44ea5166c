package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) fundsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "funds",
		Short: "Manage your spendable balance",
	}

	add := &cobra.Command{
		Use:   "add <amount>",
		Short: "Top up your balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			d, err := c.dashboard(cmd)
			if err != nil {
				return err
			}
			balance, err := d.AddFunds(cmd.Context(), amount)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]float64{"balance": balance})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s. Balance: %s\n", formatMoney(amount), formatMoney(balance))
			return nil
		},
	}

	balance := &cobra.Command{
		Use:   "balance",
		Short: "Show your balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.dashboard(cmd)
			if err != nil {
				return err
			}
			b := d.Snapshot().Session.User.Balance
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]float64{"balance": b})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Balance: %s\n", formatMoney(b))
			return nil
		},
	}

	cmd.AddCommand(add, balance)
	return cmd
}
