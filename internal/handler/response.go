package handler

// RESPONSE HELPERS:
// Every form submission ends in a redirect (Post/Redirect/Get), so a browser
// refresh never re-submits it. Outcomes reach the user as flash notices shown
// on the page the redirect lands on.
//
// ERROR MAPPING:
// Services return apperror values and these helpers decide what the user
// sees:
//
//	ErrValidation   → notice, back to the form that was submitted
//	ErrUnauthorized → notice, back to /login
//	ErrConflict     → notice, on to /login (the account already exists)
//	ErrNotFound     → 404 page
//	anything else   → logged, 500 page

import (
	"errors"
	"net/http"

	"github.com/sakif/watchlist/internal/apperror"
	"github.com/sakif/watchlist/internal/flash"
	"github.com/sakif/watchlist/internal/service"
)

// maxFormBytes bounds a submitted form. The largest legitimate form is a
// few hundred bytes.
const maxFormBytes = 64 << 10

// redirect sends a 303 See Other, which makes the browser follow up with a
// GET no matter what method the original request used.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// notify queues msg and redirects to path.
func notify(w http.ResponseWriter, r *http.Request, msg, path string) {
	flash.Add(w, r, msg)
	redirect(w, r, path)
}

// parseForm reads the url-encoded body. A body that cannot be parsed is
// reported as invalid input, the same as a form with missing fields.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return apperror.ValidationFailed("", service.MsgInvalidInput)
	}
	return nil
}

// handleError maps err to a response. back is where validation failures
// return to.
func (rd *Renderer) handleError(w http.ResponseWriter, r *http.Request, err error, back string) {
	msg := apperror.Message(err, service.MsgInvalidInput)

	switch {
	case errors.Is(err, apperror.ErrValidation):
		notify(w, r, msg, back)
	case errors.Is(err, apperror.ErrUnauthorized), errors.Is(err, apperror.ErrConflict):
		notify(w, r, msg, "/login")
	case errors.Is(err, apperror.ErrNotFound):
		rd.NotFound(w, r)
	default:
		rd.ServerError(w, r, err)
	}
}
