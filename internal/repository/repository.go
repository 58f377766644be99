// Package repository declares the storage interfaces the service layer
// depends on. The SQLite implementation lives in repository/sqlite; tests use
// in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/watchlist/internal/model"
)

// UserRepository persists user accounts.
//
// Lookups return an error wrapping apperror.ErrNotFound when no row matches.
// Create returns apperror.ErrConflict when the username is already taken.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateName(ctx context.Context, id, name string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// MovieRepository persists watchlist entries.
type MovieRepository interface {
	Create(ctx context.Context, movie *model.Movie) error
	GetByID(ctx context.Context, id string) (*model.Movie, error)
	// ListByUser returns the user's movies in insertion order.
	ListByUser(ctx context.Context, userID string) ([]model.Movie, error)
	Update(ctx context.Context, movie *model.Movie) error
	Delete(ctx context.Context, id string) error
}
