package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/watchlist/internal/apperror"
	"github.com/sakif/watchlist/internal/model"
	"github.com/sakif/watchlist/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users table.
type UserDB struct {
	db *DB
}

const userColumns = `id, username, name, password_hash, created_at, updated_at`

// Create inserts a new user, filling in ID and timestamps.
//
// The UNIQUE constraint on username is the final word on uniqueness: two
// registrations racing past the service's existence check still cannot
// produce two rows, the second insert fails here with ErrConflict.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := u.db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, name, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Name,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("username", "Username already exists.")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetByID retrieves a user by internal ID.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := u.db.conn.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by login handle. The match is exact.
func (u *UserDB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := u.db.conn.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}
	return &user, nil
}

// UpdateName sets the display name.
func (u *UserDB) UpdateName(ctx context.Context, id, name string) error {
	return u.update(ctx, id, `UPDATE users SET name = ?, updated_at = ? WHERE id = ?`, name)
}

// UpdatePassword replaces the stored password hash.
func (u *UserDB) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return u.update(ctx, id, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, passwordHash)
}

// update runs a single-column UPDATE and maps "no rows" to NotFound.
func (u *UserDB) update(ctx context.Context, id, query, value string) error {
	result, err := u.db.conn.ExecContext(ctx, query, value, time.Now(), id)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}
