package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/watchlist/internal/apperror"
	"github.com/sakif/watchlist/internal/auth"
	"github.com/sakif/watchlist/internal/model"
	"github.com/sakif/watchlist/internal/service"
)

// MovieHandler serves the watchlist pages. Every route is mounted behind
// auth.RequireUser, so the session is always authenticated here, and every
// service call is scoped to the session's user.
type MovieHandler struct {
	movies *service.MovieService
	render *Renderer
	logger *slog.Logger
}

// NewMovieHandler creates a MovieHandler.
func NewMovieHandler(movies *service.MovieService, render *Renderer, logger *slog.Logger) *MovieHandler {
	return &MovieHandler{movies: movies, render: render, logger: logger}
}

type movieListData struct {
	Movies []model.Movie
}

type editData struct {
	Movie *model.Movie
}

// HandleList renders the user's movies and the add form.
//
// HTTP: GET /movie_list
func (h *MovieHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	s := auth.SessionFromContext(r.Context())

	movies, err := h.movies.List(r.Context(), s.UserID)
	if err != nil {
		h.render.ServerError(w, r, err)
		return
	}
	h.render.Render(w, r, http.StatusOK, pageMovieList, movieListData{Movies: movies})
}

// HandleAdd appends a movie to the list.
//
// HTTP: POST /movie_list
// FORM: title, year
func (h *MovieHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.render.handleError(w, r, err, "/movie_list")
		return
	}
	s := auth.SessionFromContext(r.Context())

	in := service.MovieInput{
		Title: r.PostForm.Get("title"),
		Year:  r.PostForm.Get("year"),
	}
	if _, err := h.movies.Add(r.Context(), s.UserID, in); err != nil {
		h.render.handleError(w, r, err, "/movie_list")
		return
	}
	notify(w, r, "Movie added.", "/movie_list")
}

// HandleEditForm renders the edit form. A movie that does not exist, or is
// not the user's, gets the 404 page.
//
// HTTP: GET /edit/{movieID}
func (h *MovieHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	s := auth.SessionFromContext(r.Context())

	movie, err := h.movies.Get(r.Context(), s.UserID, chi.URLParam(r, "movieID"))
	if err != nil {
		h.render.handleError(w, r, err, "/movie_list")
		return
	}
	h.render.Render(w, r, http.StatusOK, pageEdit, editData{Movie: movie})
}

// HandleEdit saves the new title and year.
//
// HTTP: POST /edit/{movieID}
// FORM: title, year (exactly four characters)
func (h *MovieHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "movieID")
	back := "/edit/" + movieID

	if err := parseForm(w, r); err != nil {
		h.render.handleError(w, r, err, back)
		return
	}
	s := auth.SessionFromContext(r.Context())

	in := service.MovieInput{
		Title: r.PostForm.Get("title"),
		Year:  r.PostForm.Get("year"),
	}
	if _, err := h.movies.Edit(r.Context(), s.UserID, movieID, in); err != nil {
		h.render.handleError(w, r, err, back)
		return
	}
	notify(w, r, "Item updated.", "/movie_list")
}

// HandleDelete removes a movie. Unlike edit, a missing or foreign movie is
// reported with a notice on the list page rather than a 404.
//
// HTTP: POST /delete/{movieID}
func (h *MovieHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	s := auth.SessionFromContext(r.Context())

	err := h.movies.Delete(r.Context(), s.UserID, chi.URLParam(r, "movieID"))
	switch {
	case err == nil:
		notify(w, r, "Item deleted.", "/movie_list")
	case errors.Is(err, apperror.ErrNotFound):
		notify(w, r, "Can not delete this item.", "/movie_list")
	default:
		h.render.ServerError(w, r, err)
	}
}
