package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/watchlist/internal/auth"
	"github.com/sakif/watchlist/internal/service"
)

// AuthHandler serves registration, login and logout.
//
//   - HandleRegister / HandleRegisterForm → GET/POST /register
//   - HandleLogin / HandleLoginForm       → GET/POST /login
//   - HandleLogout                        → GET /logout
//
// The session itself is a signed token in an HttpOnly cookie; see
// auth.SetSessionCookie.
type AuthHandler struct {
	auth         *service.AuthService
	render       *Renderer
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. secureCookie marks the session
// cookie Secure, for deployments behind HTTPS.
func NewAuthHandler(svc *service.AuthService, render *Renderer, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:         svc,
		render:       render,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// HandleRegisterForm renders the sign-up form.
func (h *AuthHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, pageRegister, nil)
}

// HandleRegister creates the account and sends the user to the login page.
//
// HTTP: POST /register
// FORM: username, password, confirm_password
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.render.handleError(w, r, err, "/register")
		return
	}

	in := service.RegisterInput{
		Username:        r.PostForm.Get("username"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
	}
	if _, err := h.auth.Register(r.Context(), in); err != nil {
		h.render.handleError(w, r, err, "/register")
		return
	}

	notify(w, r, "Register success, please login.", "/login")
}

// HandleLoginForm renders the sign-in form, or skips it for a visitor who is
// already signed in.
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	if auth.SessionFromContext(r.Context()).Authenticated() {
		redirect(w, r, "/movie_list")
		return
	}
	h.render.Render(w, r, http.StatusOK, pageLogin, nil)
}

// HandleLogin checks the credentials and starts a session.
//
// HTTP: POST /login
// FORM: username, password
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.render.handleError(w, r, err, "/login")
		return
	}

	in := service.LoginInput{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
	result, err := h.auth.Login(r.Context(), in)
	if err != nil {
		h.render.handleError(w, r, err, "/login")
		return
	}

	auth.SetSessionCookie(w, result.Token, result.MaxAge, h.secureCookie)
	notify(w, r, "Login success.", "/movie_list")
}

// HandleLogout ends the session. Without one it just redirects.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if s := auth.SessionFromContext(r.Context()); s.Authenticated() {
		h.logger.Info("user logged out", slog.String("userID", s.UserID))
	}
	auth.ClearSessionCookie(w, h.secureCookie)
	notify(w, r, "Goodbye.", "/")
}
