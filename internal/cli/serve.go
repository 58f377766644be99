package cli

import (
	"github.com/spf13/cobra"

	"github.com/sakif/watchlist/internal/server"
)

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long:  "Run the web server until interrupted. Pending migrations are applied on start.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := server.New(a.cfg, a.logger, server.WithPasswordService(a.newPasswords()))
			if err != nil {
				return err
			}
			return srv.Start()
		},
	}
}
