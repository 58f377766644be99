package cli

import (
	"github.com/spf13/cobra"

	"github.com/sakif/watchlist/internal/service"
)

func (a *app) forgeCommand() *cobra.Command {
	var username, name, password string

	cmd := &cobra.Command{
		Use:   "forge",
		Short: "Fill the database with demo data",
		Long: `Create a demo account (or reuse it, resetting its password) and add ten
sample movies to its list. Movies the account already has are not added
twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = newPrompter(cmd).newPassword(); err != nil {
					return err
				}
			}

			svc, err := a.openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			user, _, err := svc.accounts.EnsureUser(cmd.Context(), service.AccountInput{
				Username: username,
				Name:     name,
				Password: password,
			})
			if err != nil {
				return err
			}

			added, err := svc.movies.Seed(cmd.Context(), user.ID, service.SampleMovies())
			if err != nil {
				return err
			}

			printf(cmd.OutOrStdout(), "Added %d movies for %s.\n", added, user.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "demo", "login name of the demo account")
	cmd.Flags().StringVar(&name, "name", "Demo", "display name of the demo account")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted for when omitted)")
	return cmd
}
