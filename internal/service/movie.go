package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/watchlist/internal/apperror"
	"github.com/sakif/watchlist/internal/model"
	"github.com/sakif/watchlist/internal/repository"
)

// MovieService manages watchlist entries.
//
// OWNERSHIP:
// Every method takes the acting user's ID. A movie that belongs to somebody
// else is reported as ErrNotFound, exactly like an ID that does not exist, so
// one user cannot even learn which IDs another user holds.
type MovieService struct {
	movies repository.MovieRepository
	logger *slog.Logger
}

// NewMovieService creates a MovieService.
func NewMovieService(movies repository.MovieRepository, logger *slog.Logger) *MovieService {
	return &MovieService{movies: movies, logger: logger}
}

// List returns the owner's movies in the order they were added.
func (s *MovieService) List(ctx context.Context, ownerID string) ([]model.Movie, error) {
	movies, err := s.movies.ListByUser(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list movies",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/movie: listing: %w", err)
	}
	return movies, nil
}

// Add validates in and appends it to the owner's list.
func (s *MovieService) Add(ctx context.Context, ownerID string, in MovieInput) (*model.Movie, error) {
	if err := in.ValidateAdd(); err != nil {
		return nil, err
	}

	movie := &model.Movie{UserID: ownerID, Title: in.Title, Year: in.Year}
	if err := s.movies.Create(ctx, movie); err != nil {
		s.logger.Error("failed to add movie",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/movie: adding: %w", err)
	}

	s.logger.Info("movie added",
		slog.String("userID", ownerID),
		slog.String("movieID", movie.ID),
	)
	return movie, nil
}

// Get returns one of the owner's movies.
func (s *MovieService) Get(ctx context.Context, ownerID, id string) (*model.Movie, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.NotFound("movie", id)
	}

	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/movie: getting %s: %w", id, err)
	}
	if movie.UserID != ownerID {
		return nil, apperror.NotFound("movie", id)
	}
	return movie, nil
}

// Edit replaces the title and year of one of the owner's movies. The ID and
// owner never change.
func (s *MovieService) Edit(ctx context.Context, ownerID, id string, in MovieInput) (*model.Movie, error) {
	movie, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := in.ValidateEdit(); err != nil {
		return nil, err
	}

	movie.Title = in.Title
	movie.Year = in.Year
	if err := s.movies.Update(ctx, movie); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/movie: updating %s: %w", id, err)
	}

	s.logger.Info("movie updated",
		slog.String("userID", ownerID),
		slog.String("movieID", movie.ID),
	)
	return movie, nil
}

// Delete permanently removes one of the owner's movies.
func (s *MovieService) Delete(ctx context.Context, ownerID, id string) error {
	movie, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.movies.Delete(ctx, movie.ID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service/movie: deleting %s: %w", id, err)
	}

	s.logger.Info("movie deleted",
		slog.String("userID", ownerID),
		slog.String("movieID", movie.ID),
	)
	return nil
}

// SampleMovies is the demo list the forge command adds.
func SampleMovies() []MovieInput {
	return []MovieInput{
		{Title: "My Neighbor Totoro", Year: "1988"},
		{Title: "Dead Poets Society", Year: "1989"},
		{Title: "A Perfect World", Year: "1993"},
		{Title: "Leon", Year: "1994"},
		{Title: "Mahjong", Year: "1996"},
		{Title: "Swallowtail Butterfly", Year: "1996"},
		{Title: "King of Comedy", Year: "1999"},
		{Title: "Devils on the Doorstep", Year: "1999"},
		{Title: "WALL-E", Year: "2008"},
		{Title: "The Pork of Music", Year: "2012"},
	}
}

// Seed adds each of movies to the owner's list unless a movie with the same
// title and year is already there, so running it twice adds nothing new. It
// returns how many were added.
func (s *MovieService) Seed(ctx context.Context, ownerID string, movies []MovieInput) (int, error) {
	current, err := s.List(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	have := make(map[MovieInput]bool, len(current))
	for _, m := range current {
		have[MovieInput{Title: m.Title, Year: m.Year}] = true
	}

	added := 0
	for _, in := range movies {
		if err := in.ValidateAdd(); err != nil {
			return added, fmt.Errorf("service/movie: seeding %q: %w", in.Title, err)
		}
		if have[in] {
			continue
		}
		if _, err := s.Add(ctx, ownerID, in); err != nil {
			return added, err
		}
		have[in] = true
		added++
	}
	return added, nil
}
