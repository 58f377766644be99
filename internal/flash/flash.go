// Package flash carries one-shot notices ("Movie added.", "Invalid input.")
// across a redirect.
//
// A handler that redirects calls Add; the page rendered on the next request
// calls Pop, which returns the notices and deletes the cookie so they are
// shown exactly once.
//
// The cookie holds base64url-encoded JSON. It is not signed: a notice is
// plain text that html/template escapes on output, so a forged one can only
// change what the forger sees in their own browser.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const (
	cookieName = "flash"
	// maxMessages bounds the cookie size if a client keeps bouncing through
	// redirects without ever rendering a page.
	maxMessages = 5
)

// Add queues message for the next rendered page. Notices already pending
// on the incoming request are kept, so a chain of redirects loses nothing.
func Add(w http.ResponseWriter, r *http.Request, message string) {
	messages := append(read(r), message)
	if len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}

	raw, err := json.Marshal(messages)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending notices and clears them. It must be called before
// the response body is written, since it sets a cookie header.
func Pop(w http.ResponseWriter, r *http.Request) []string {
	if _, err := r.Cookie(cookieName); err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return read(r)
}

// read decodes the notices on the request. A malformed cookie yields none.
func read(r *http.Request) []string {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var messages []string
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil
	}
	return messages
}
