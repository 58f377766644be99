// Package service contains the business rules of the watchlist.
//
// THE THREE LAYERS:
//
//	Handler (HTTP)      → parses forms into typed inputs, redirects, renders
//	Service (this file) → validates inputs, enforces ownership, orchestrates
//	Repository (data)   → reads and writes SQLite
//
// Services take repository interfaces, never *sqlite.DB, so tests run them
// against in-memory fakes. They return apperror values and know nothing
// about status codes or cookies; the same methods back the HTTP handlers and
// the CLI commands.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/watchlist/internal/apperror"
	"github.com/sakif/watchlist/internal/auth"
	"github.com/sakif/watchlist/internal/model"
	"github.com/sakif/watchlist/internal/repository"
)

// AuthService registers accounts and logs them in.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// AuthResult is a successful login: the account, its session token, and how
// long the token stays valid (the cookie's max age).
type AuthResult struct {
	User   *model.User
	Token  string
	MaxAge time.Duration
}

// Register creates an account.
//
// The existence check gives the friendly "Username already exists." in the
// common case; the UNIQUE constraint in the users table still decides races,
// and its ErrConflict is passed through unchanged.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	_, err := s.users.GetByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return nil, apperror.Conflict("username", MsgUsernameTaken)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/auth: checking username: %w", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{Username: in.Username, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login checks the credentials and issues a session token.
//
// An unknown username and a wrong password produce the same error, and the
// unknown-username path still runs a bcrypt comparison so the response time
// does not tell them apart either.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	failed := apperror.Unauthorized(MsgInvalidCredentials)

	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: looking up user: %w", err)
		}
		_ = s.passwords.VerifyNothing(in.Password)
		s.logger.Info("login failed", slog.String("reason", "unknown user"))
		return nil, failed
	}

	if len(in.Password) > auth.MaxPasswordBytes {
		_ = s.passwords.VerifyNothing(in.Password[:auth.MaxPasswordBytes])
		s.logger.Info("login failed", slog.String("userID", user.ID), slog.String("reason", "password too long"))
		return nil, failed
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Info("login failed", slog.String("userID", user.ID), slog.String("reason", "wrong password"))
			return nil, failed
		}
		return nil, fmt.Errorf("service/auth: verifying password for user %s: %w", user.ID, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return &AuthResult{User: user, Token: token, MaxAge: s.tokens.TTL()}, nil
}
