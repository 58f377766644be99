package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/watchlist/internal/apperror"
	"github.com/sakif/watchlist/internal/flash"
	"github.com/sakif/watchlist/internal/model"
)

// SessionCookie is the name of the HttpOnly cookie holding the session token.
const SessionCookie = "session"

// Session is who is making the request. The zero value is an anonymous
// visitor. It is resolved once per request by LoadSession and read with
// SessionFromContext; handlers receive it by value.
type Session struct {
	UserID   string
	Username string
	Name     string
}

// Authenticated reports whether the request carries a valid login.
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

// DisplayName is the name shown in the page header.
func (s Session) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Username
}

// contextKey is unexported so no other package can read or overwrite the
// session stored in a request context.
type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the request's session, or the anonymous zero
// value if none was stored.
func SessionFromContext(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey).(Session)
	return s
}

// UserFinder loads the account a session token points at.
type UserFinder interface {
	CurrentUser(ctx context.Context, id string) (*model.User, error)
}

// LoadSession resolves the session cookie into a Session on every request.
// It never blocks a request: a missing, expired or forged token, or a token
// for an account that no longer exists, just makes the request anonymous
// (and clears the stale cookie).
func LoadSession(tokens *TokenService, users UserFinder, secure bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Validate(cookie.Value)
			if err != nil {
				logger.Debug("discarding invalid session", slog.String("error", err.Error()))
				ClearSessionCookie(w, secure)
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.CurrentUser(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, apperror.ErrNotFound) {
					logger.Error("loading session user",
						slog.String("userID", userID),
						slog.String("error", err.Error()),
					)
				}
				ClearSessionCookie(w, secure)
				next.ServeHTTP(w, r)
				return
			}

			s := Session{UserID: user.ID, Username: user.Username, Name: user.Name}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// RequireUser sends anonymous visitors to loginPath with a notice. Mount it
// after LoadSession on every route that needs an account.
func RequireUser(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !SessionFromContext(r.Context()).Authenticated() {
				flash.Add(w, r, "Please login first.")
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetSessionCookie stores a freshly issued token.
//
// HttpOnly keeps it away from page scripts; SameSite=Lax keeps it off
// cross-site POSTs, which is what protects the state-changing forms.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
