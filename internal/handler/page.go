package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/watchlist/internal/auth"
	"github.com/sakif/watchlist/internal/service"
)

// PageHandler serves the pages that are not tied to one resource: the landing
// page, the public profile greeting and the settings form.
type PageHandler struct {
	accounts *service.AccountService
	render   *Renderer
	logger   *slog.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(accounts *service.AccountService, render *Renderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{accounts: accounts, render: render, logger: logger}
}

type userData struct {
	Name string
}

type settingsData struct {
	Name string
}

// HandleIndex renders the landing page.
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, pageIndex, nil)
}

// HandleUser greets the name in the path. The name is only echoed back,
// html/template escapes it.
//
// HTTP: GET /user/{name}
func (h *PageHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, pageUser, userData{Name: chi.URLParam(r, "name")})
}

// HandleSettingsForm renders the display-name form.
//
// HTTP: GET /settings
func (h *PageHandler) HandleSettingsForm(w http.ResponseWriter, r *http.Request) {
	s := auth.SessionFromContext(r.Context())
	h.render.Render(w, r, http.StatusOK, pageSettings, settingsData{Name: s.Name})
}

// HandleSettings updates the display name.
//
// HTTP: POST /settings
// FORM: name
func (h *PageHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.render.handleError(w, r, err, "/settings")
		return
	}
	s := auth.SessionFromContext(r.Context())

	in := service.SettingsInput{Name: r.PostForm.Get("name")}
	if err := h.accounts.UpdateName(r.Context(), s.UserID, in); err != nil {
		h.render.handleError(w, r, err, "/settings")
		return
	}
	notify(w, r, "Settings updated.", "/movie_list")
}
