// Package server wires the application together and runs it.
//
// COMPOSITION ROOT:
// New is the one place where concrete types meet:
//
//	config → sqlite.DB → repositories → services → handlers → chi routes
//
// Nothing else in the codebase reaches for a global. Every handler gets its
// services through its constructor, and every service gets repository
// interfaces.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/watchlist/internal/auth"
	"github.com/sakif/watchlist/internal/config"
	"github.com/sakif/watchlist/internal/handler"
	"github.com/sakif/watchlist/internal/middleware"
	sqliteRepo "github.com/sakif/watchlist/internal/repository/sqlite"
	"github.com/sakif/watchlist/internal/service"
	"github.com/sakif/watchlist/web"
)

// shutdownTimeout is how long in-flight requests get to finish after a
// shutdown signal.
const shutdownTimeout = 30 * time.Second

// Server owns the database and the router.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB

	passwords *auth.PasswordService
}

// Option customises New.
type Option func(*Server)

// WithPasswordService replaces the bcrypt settings. Tests use it to pass a
// low-cost PasswordService.
func WithPasswordService(p *auth.PasswordService) Option {
	return func(s *Server) { s.passwords = p }
}

// New opens the database (applying migrations) and builds the router.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.SecretKey, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if cfg.UsingDevSecret() {
		logger.Warn("SECRET_KEY is not set, sessions are signed with the public development key")
	}

	db, err := sqliteRepo.New(cfg.DatabaseFile, logger)
	if err != nil {
		return nil, fmt.Errorf("server: opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.passwords == nil {
		s.passwords = auth.NewPasswordService()
	}

	if err := s.setupRoutes(tokens); err != nil {
		db.Close()
		return nil, fmt.Errorf("server: setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes registers middleware and routes.
//
// ROUTES:
//
//	GET       /                                   landing page
//	GET       /user/{name}                        profile greeting
//	GET       /static/*                           embedded CSS
//	GET/POST  /register, /login                   forms
//	GET       /logout                             end session
//	GET/POST  /movie_list                         list, add          (login required)
//	GET/POST  /edit/{movieID}                     edit               (login required)
//	POST      /delete/{movieID}                   delete             (login required)
//	GET/POST  /settings                           display name       (login required)
//	GET/POST  /{name}/movielist/edit/{movieID}    old edit address   (login required)
//	POST      /{name}/movielist/delete/{movieID}  old delete address (login required)
//
// The old addresses carry a display name in the path. It is ignored: the
// movie is looked up for the signed-in user, exactly like the new routes.
//
// MIDDLEWARE ORDER:
// RequestID first so the logger can print it; Logger outside Recoverer so a
// recovered panic is still logged with its 500; LoadSession last so every
// handler sees the session.
func (s *Server) setupRoutes(tokens *auth.TokenService) error {
	users := s.db.Users()
	movies := s.db.Movies()

	authService := service.NewAuthService(users, s.passwords, tokens, s.logger)
	accountService := service.NewAccountService(users, s.passwords, s.logger)
	movieService := service.NewMovieService(movies, s.logger)

	renderer, err := handler.NewRenderer(web.Templates(), s.logger)
	if err != nil {
		return err
	}
	authHandler := handler.NewAuthHandler(authService, renderer, s.config.CookieSecure, s.logger)
	movieHandler := handler.NewMovieHandler(movieService, renderer, s.logger)
	pageHandler := handler.NewPageHandler(accountService, renderer, s.logger)

	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(auth.LoadSession(tokens, accountService, s.config.CookieSecure, s.logger))

	r.NotFound(renderer.NotFound)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.Static())))

	r.Get("/", pageHandler.HandleIndex)
	r.Get("/user/{name}", pageHandler.HandleUser)

	r.Get("/register", authHandler.HandleRegisterForm)
	r.Post("/register", authHandler.HandleRegister)
	r.Get("/login", authHandler.HandleLoginForm)
	r.Post("/login", authHandler.HandleLogin)
	r.Get("/logout", authHandler.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser("/login"))

		r.Get("/movie_list", movieHandler.HandleList)
		r.Post("/movie_list", movieHandler.HandleAdd)
		r.Get("/edit/{movieID}", movieHandler.HandleEditForm)
		r.Post("/edit/{movieID}", movieHandler.HandleEdit)
		r.Post("/delete/{movieID}", movieHandler.HandleDelete)
		r.Get("/settings", pageHandler.HandleSettingsForm)
		r.Post("/settings", pageHandler.HandleSettings)

		r.Get("/{name}/movielist/edit/{movieID}", movieHandler.HandleEditForm)
		r.Post("/{name}/movielist/edit/{movieID}", movieHandler.HandleEdit)
		r.Post("/{name}/movielist/delete/{movieID}", movieHandler.HandleDelete)
	})

	return nil
}

// Handler exposes the router, for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves HTTP until SIGINT or SIGTERM, then drains in-flight requests
// and closes the database.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves HTTP until ctx is cancelled.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections
//  2. Give in-flight requests shutdownTimeout to finish
//  3. Close the database (flushes the WAL, releases the file)
func (s *Server) Run(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DatabaseFile),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
