package cli

import (
	"errors"
	"strings"

	"catalog-admin/internal/session"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" || password == "" {
				return writeErr(cmd, errors.New("missing --email/--password"))
			}
			return withConsole(cmd, app, func(c *console) error {
				st, err := session.Login(cmd.Context(), c.client, c.profile, email, password)
				if err != nil {
					return writeErr(cmd, err)
				}
				c.log.WithField("user_id", st.UserID).Info("logged in")
				c.notify.Success("Login successful")
				return writeOut(cmd, app, map[string]any{"data": st})
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", envOr("CATADMIN_EMAIL", ""), "Account email")
	cmd.Flags().StringVar(&password, "password", envOr("CATADMIN_PASSWORD", ""), "Account password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(cmd, app, func(c *console) error {
				if err := c.profile.Clear(); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"loggedIn": false}})
			})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(cmd, app, func(c *console) error {
				st := c.profile.Current()
				return writeOut(cmd, app, map[string]any{"data": map[string]any{
					"loggedIn": st.LoggedIn(),
					"userId":   st.UserID,
					"email":    st.Email,
					"role":     st.Role,
					"api":      c.cfg.APIRoot,
				}})
			})
		},
	}
}
