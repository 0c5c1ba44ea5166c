// Command gripvest is the terminal client for the investment marketplace.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/gripvest/internal/app"
	"github.com/bobmcallan/gripvest/internal/models"
)

// cli carries the global flags and the lazily opened app for one invocation.
type cli struct {
	configPath string
	jsonOutput bool
	logLevel   string

	newApp func(ctx context.Context, configPath string) (*app.App, error)
	app    *app.App
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{newApp: app.NewApp}
	root := c.rootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(err))
		stop()
		os.Exit(1)
	}
}

// rootCmd builds the full command tree.
func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gripvest",
		Short: "Browse products, invest and track your portfolio",
		Long: `gripvest is a terminal client for the investment marketplace.

Log in, browse the product catalog, buy and cancel investments and follow
your portfolio summary and insights. When the marketplace API cannot be
reached, locally mirrored data is used and marked as such.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.logLevel != "" {
				return os.Setenv("GRIPVEST_LOG_LEVEL", c.logLevel)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to gripvest.toml (default: GRIPVEST_CONFIG or standard locations)")
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "print results as JSON")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		c.loginCmd(),
		c.signupCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.productsCmd(),
		c.recommendationsCmd(),
		c.investCmd(),
		c.cancelCmd(),
		c.portfolioCmd(),
		c.insightsCmd(),
		c.fundsCmd(),
		c.adminCmd(),
		c.versionCmd(),
	)
	return root
}

// open initialises the app on first use.
func (c *cli) open(cmd *cobra.Command) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := c.newApp(cmd.Context(), c.configPath)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

// dashboard opens the app and a dashboard for the stored session.
func (c *cli) dashboard(cmd *cobra.Command) (*app.Dashboard, error) {
	a, err := c.open(cmd)
	if err != nil {
		return nil, err
	}
	return a.Dashboard(cmd.Context())
}

// refreshed opens a dashboard and loads the catalog and investments.
func (c *cli) refreshed(cmd *cobra.Command) (*app.Dashboard, *app.Snapshot, error) {
	d, err := c.dashboard(cmd)
	if err != nil {
		return nil, nil, err
	}
	snap, err := d.Refresh(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return d, snap, nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}

// describeError turns sentinel errors into actionable messages.
func describeError(err error) string {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, models.ErrUnauthenticated):
		return fmt.Sprintf("%v (run 'gripvest login')", err)
	case errors.Is(err, models.ErrForbidden):
		return fmt.Sprintf("%v (admin role required)", err)
	}
	return err.Error()
}
