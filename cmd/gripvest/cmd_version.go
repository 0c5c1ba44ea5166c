package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/gripvest/internal/common"
)

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and connection details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), common.Info())
			}
			a, err := c.open(cmd)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), common.GetFullVersion())
				return err
			}
			common.PrintBanner(cmd.OutOrStdout(), a.Config)
			return nil
		},
	}
}
