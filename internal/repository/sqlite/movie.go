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

var _ repository.MovieRepository = (*MovieDB)(nil)

// MovieDB is the movies table.
type MovieDB struct {
	db *DB
}

const movieColumns = `id, user_id, title, year, created_at, updated_at`

// Create inserts a new movie. The caller sets UserID; ID and timestamps are
// filled in here.
func (m *MovieDB) Create(ctx context.Context, movie *model.Movie) error {
	now := time.Now()
	movie.ID = xid.New().String()
	movie.CreatedAt = now
	movie.UpdatedAt = now

	_, err := m.db.conn.ExecContext(ctx,
		`INSERT INTO movies (id, user_id, title, year, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		movie.ID,
		movie.UserID,
		movie.Title,
		movie.Year,
		movie.CreatedAt,
		movie.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating movie: %w", err)
	}
	return nil
}

// GetByID retrieves a single movie regardless of owner. Ownership checks
// belong to the service layer.
func (m *MovieDB) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	var movie model.Movie
	err := m.db.conn.GetContext(ctx, &movie,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("movie", id)
		}
		return nil, fmt.Errorf("sqlite: getting movie %s: %w", id, err)
	}
	return &movie, nil
}

// ListByUser returns the user's movies in the order they were added.
// rowid grows with every insert, which makes it a stable insertion order
// even when two rows share a created_at timestamp.
func (m *MovieDB) ListByUser(ctx context.Context, userID string) ([]model.Movie, error) {
	movies := []model.Movie{}
	err := m.db.conn.SelectContext(ctx, &movies,
		`SELECT `+movieColumns+` FROM movies WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing movies for user %s: %w", userID, err)
	}
	return movies, nil
}

// Update writes title and year. ID, owner and created_at never change.
func (m *MovieDB) Update(ctx context.Context, movie *model.Movie) error {
	movie.UpdatedAt = time.Now()

	result, err := m.db.conn.ExecContext(ctx,
		`UPDATE movies SET title = ?, year = ?, updated_at = ? WHERE id = ?`,
		movie.Title,
		movie.Year,
		movie.UpdatedAt,
		movie.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating movie %s: %w", movie.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("movie", movie.ID)
	}
	return nil
}

// Delete permanently removes a movie.
func (m *MovieDB) Delete(ctx context.Context, id string) error {
	result, err := m.db.conn.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting movie %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("movie", id)
	}
	return nil
}
