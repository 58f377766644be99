// Package cli implements the watchlist command line: the web server plus the
// bootstrap commands that prepare its database.
//
//	watchlist serve
//	watchlist initdb [--drop]
//	watchlist forge [--username demo] [--password ...]
//	watchlist admin [--username ...] [--password ...]
//
// Every command shares the --config flag and the settings loaded from it.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/watchlist/internal/auth"
	"github.com/sakif/watchlist/internal/config"
	sqliteRepo "github.com/sakif/watchlist/internal/repository/sqlite"
	"github.com/sakif/watchlist/internal/service"
)

// app is the state the commands share. It is built per command tree rather
// than held in package variables so tests can run commands side by side.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger

	// newPasswords builds the bcrypt service. Tests swap in a cheap one.
	newPasswords func() *auth.PasswordService
}

// Execute runs the command line with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	return newApp().rootCommand()
}

func newApp() *app {
	return &app{newPasswords: auth.NewPasswordService}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "watchlist",
		Short: "Watchlist - a small multi-user movie watchlist",
		Long: `Watchlist keeps a personal list of movies for every registered user.

Settings are read from environment variables (PORT, DATABASE_FILE,
SECRET_KEY, SESSION_TTL, COOKIE_SECURE, LOG_LEVEL, LOG_FORMAT), optionally
layered over a YAML file given with --config or CONFIG_PATH.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}

			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			a.logger = cfg.NewLogger(cmd.ErrOrStderr())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "YAML config file (environment variables override it)")

	root.AddCommand(
		a.serveCommand(),
		a.initdbCommand(),
		a.forgeCommand(),
		a.adminCommand(),
	)
	return root
}

// services is what the bootstrap commands work with.
type services struct {
	db       *sqliteRepo.DB
	accounts *service.AccountService
	movies   *service.MovieService
}

func (s *services) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// openServices opens the configured database, applying any pending
// migrations, and builds the services on top of it.
func (a *app) openServices() (*services, error) {
	db, err := sqliteRepo.New(a.cfg.DatabaseFile, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	passwords := a.newPasswords()
	return &services{
		db:       db,
		accounts: service.NewAccountService(db.Users(), passwords, a.logger),
		movies:   service.NewMovieService(db.Movies(), a.logger),
	}, nil
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
