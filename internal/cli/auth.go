package cli

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wimitasks/internal/session"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer c.close()

			in := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				if email, err = prompt(in, cmd.OutOrStdout(), "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt(in, cmd.OutOrStdout(), "Password: "); err != nil {
					return err
				}
			}

			id, err := c.session.Login(cmd.Context(), email, password)
			if err != nil {
				if errors.Is(err, session.ErrInvalidCredentials) {
					return errors.New(session.MessageInvalidCredentials)
				}
				return fmt.Errorf("%s: %w", session.MessageLoginFailed, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", id.DisplayName(), id.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer c.close()
			c.session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer c.close()
			id, err := c.identity()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %d, %s)\n", id.DisplayName(), id.Email, id.ID, id.Role)
			return nil
		},
	}
}
