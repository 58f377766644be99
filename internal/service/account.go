package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/watchlist/internal/apperror"
	"github.com/sakif/watchlist/internal/auth"
	"github.com/sakif/watchlist/internal/model"
	"github.com/sakif/watchlist/internal/repository"
)

var _ auth.UserFinder = (*AccountService)(nil)

// AccountService manages an existing account: the session lookup, the
// settings page and the admin/forge commands.
type AccountService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *AccountService {
	return &AccountService{users: users, passwords: passwords, logger: logger}
}

// CurrentUser loads the account behind a session. It returns ErrNotFound for
// a session whose account has since been removed.
func (s *AccountService) CurrentUser(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.NotFound("user", id)
	}
	return s.users.GetByID(ctx, id)
}

// UpdateName changes the display name shown in the page header.
func (s *AccountService) UpdateName(ctx context.Context, userID string, in SettingsInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	if err := s.users.UpdateName(ctx, userID, in.Name); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service/account: updating name for user %s: %w", userID, err)
	}

	s.logger.Info("settings updated", slog.String("userID", userID))
	return nil
}

// EnsureUser creates the account described by in, or, when the username is
// already registered, replaces its password. The second return value reports
// whether the account is new. A new account gets in.Name as its display name;
// an existing one keeps its own.
func (s *AccountService) EnsureUser(ctx context.Context, in AccountInput) (*model.User, bool, error) {
	if err := in.Validate(); err != nil {
		return nil, false, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, false, fmt.Errorf("service/account: %w", err)
	}

	existing, err := s.users.GetByUsername(ctx, in.Username)
	switch {
	case err == nil:
		if err := s.users.UpdatePassword(ctx, existing.ID, hash); err != nil {
			return nil, false, fmt.Errorf("service/account: updating password for %q: %w", in.Username, err)
		}
		existing.PasswordHash = hash
		s.logger.Info("password updated", slog.String("userID", existing.ID))
		return existing, false, nil

	case !errors.Is(err, apperror.ErrNotFound):
		return nil, false, fmt.Errorf("service/account: looking up %q: %w", in.Username, err)
	}

	user := &model.User{Username: in.Username, Name: in.Name, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("service/account: creating %q: %w", in.Username, err)
	}

	s.logger.Info("user created",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, true, nil
}
