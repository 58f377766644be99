package cli

import (
	"github.com/spf13/cobra"

	"github.com/sakif/watchlist/internal/service"
)

func (a *app) adminCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Create the administrator account, or reset its password",
		Long: `Create an account with the display name "Admin". If the username is
already registered, its password is replaced instead.

Missing values are prompted for; the password prompt does not echo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)

			var err error
			if username == "" {
				if username, err = p.line("Username"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = p.newPassword(); err != nil {
					return err
				}
			}

			svc, err := a.openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			user, created, err := svc.accounts.EnsureUser(cmd.Context(), service.AccountInput{
				Username: username,
				Name:     "Admin",
				Password: password,
			})
			if err != nil {
				return err
			}

			if created {
				printf(cmd.OutOrStdout(), "Created user %s.\n", user.Username)
			} else {
				printf(cmd.OutOrStdout(), "Updated password for %s.\n", user.Username)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "login name of the account")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted for when omitted)")
	return cmd
}
