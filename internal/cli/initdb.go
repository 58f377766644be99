package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) initdbCommand() *cobra.Command {
	var drop bool

	cmd := &cobra.Command{
		Use:   "initdb",
		Short: "Create the database schema",
		Long: `Create the database file and apply every pending migration.

With --drop, every migration is rolled back first, which deletes all users
and movies.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			if drop {
				if err := svc.db.Reset(cmd.Context()); err != nil {
					return fmt.Errorf("failed to drop tables: %w", err)
				}
				if err := svc.db.Migrate(cmd.Context()); err != nil {
					return fmt.Errorf("failed to recreate tables: %w", err)
				}
			}

			printf(cmd.OutOrStdout(), "Initialized database.\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&drop, "drop", false, "drop all tables (and data) before creating them")
	return cmd
}
