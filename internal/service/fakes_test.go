package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sakif/watchlist/internal/apperror"
	"github.com/sakif/watchlist/internal/auth"
	"github.com/sakif/watchlist/internal/model"
	"github.com/sakif/watchlist/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// In-memory implementations of the repository interfaces. They store copies,
// never the caller's pointers, and follow the same error contract as the
// SQLite code: ErrNotFound for missing rows, ErrConflict for a taken
// username. Set failWith to simulate a broken database.

var (
	_ repository.UserRepository  = (*fakeUserRepo)(nil)
	_ repository.MovieRepository = (*fakeMovieRepo)(nil)
)

type fakeUserRepo struct {
	users    map[string]*model.User
	nextID   int
	failWith error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperror.Conflict("username", MsgUsernameTaken)
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) UpdateName(_ context.Context, id, name string) error {
	if f.failWith != nil {
		return f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Name = name
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	if f.failWith != nil {
		return f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.PasswordHash = hash
	return nil
}

type fakeMovieRepo struct {
	movies   map[string]*model.Movie
	order    []string // insertion order, like SQLite's rowid
	nextID   int
	failWith error
}

func newFakeMovieRepo() *fakeMovieRepo {
	return &fakeMovieRepo{movies: make(map[string]*model.Movie)}
}

func (f *fakeMovieRepo) Create(_ context.Context, movie *model.Movie) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.nextID++
	movie.ID = fmt.Sprintf("movie-%d", f.nextID)
	stored := *movie
	f.movies[movie.ID] = &stored
	f.order = append(f.order, movie.ID)
	return nil
}

func (f *fakeMovieRepo) GetByID(_ context.Context, id string) (*model.Movie, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	m, ok := f.movies[id]
	if !ok {
		return nil, apperror.NotFound("movie", id)
	}
	result := *m
	return &result, nil
}

func (f *fakeMovieRepo) ListByUser(_ context.Context, userID string) ([]model.Movie, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	result := []model.Movie{}
	for _, id := range f.order {
		if m, ok := f.movies[id]; ok && m.UserID == userID {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (f *fakeMovieRepo) Update(_ context.Context, movie *model.Movie) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.movies[movie.ID]; !ok {
		return apperror.NotFound("movie", movie.ID)
	}
	stored := *movie
	f.movies[movie.ID] = &stored
	return nil
}

func (f *fakeMovieRepo) Delete(_ context.Context, id string) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.movies[id]; !ok {
		return apperror.NotFound("movie", id)
	}
	delete(f.movies, id)
	return nil
}

// =========================================================================
// HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testPasswords uses bcrypt's minimum cost so hashing takes microseconds.
func testPasswords() *auth.PasswordService {
	return auth.NewPasswordServiceForTest(4)
}

func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return NewAuthService(repo, testPasswords(), tokens, testLogger())
}
