package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/gripvest/internal/models"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password, role string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the marketplace",
		Long: `Log in with your email and password. The session is stored locally
and used by every other command until 'gripvest logout'.

When the marketplace is unreachable and demo fallback is enabled, the demo
accounts are accepted: customer/password, admin/password (with --role admin)
and demo@example.com with any password.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			session, err := a.AuthService.Login(cmd.Context(), email, password, models.ParseRole(role))
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), session.User)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n\n%s", session.User.DisplayName(), formatSession(session))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&role, "role", string(models.RoleUser), "role to log in as: user or admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) signupCmd() *cobra.Command {
	var req models.SignupRequest
	var risk string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a customer account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := models.ParseRiskLevel(risk)
			if err != nil {
				return err
			}
			req.RiskLevel = level

			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			session, err := a.AuthService.Signup(cmd.Context(), &req)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), session.User)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n\n%s", session.User.DisplayName(), formatSession(session))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&risk, "risk", string(models.RiskModerate), "risk appetite: low, moderate or high")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session and portfolio mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			if err := a.AuthService.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			session, err := a.AuthService.Current(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), session.User)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatSession(session))
			return nil
		},
	}
}
