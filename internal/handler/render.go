// Package handler contains the HTTP handlers of the watchlist.
//
// HANDLER RESPONSIBILITIES:
//  1. Decode the submitted form into a typed service input
//  2. Call the service
//  3. Either render a page, or queue a flash notice and redirect
//
// Handlers contain no business rules. Validation, ownership and password
// checks all live in the service layer; handlers only decide which page or
// redirect an outcome maps to.
package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/sakif/watchlist/internal/auth"
	"github.com/sakif/watchlist/internal/flash"
)

// Page names, one per template file besides base.html.
const (
	pageIndex     = "index"
	pageRegister  = "register"
	pageLogin     = "login"
	pageMovieList = "movie_list"
	pageEdit      = "edit"
	pageSettings  = "settings"
	pageUser      = "user"
	pageNotFound  = "404"
	pageError     = "500"
)

var pages = []string{
	pageIndex, pageRegister, pageLogin, pageMovieList, pageEdit,
	pageSettings, pageUser, pageNotFound, pageError,
}

// PageData is what every template receives. Session and Flashes are used by
// the layout; Data is the page's own content.
type PageData struct {
	Session auth.Session
	Flashes []string
	Data    any
}

// Renderer holds the parsed templates.
//
// TEMPLATE COMPOSITION:
// Each page is parsed together with base.html into its own template set.
// base.html defines "base" and calls {{template "title"}} and
// {{template "content"}}; each page file defines those two blocks. Parsing
// every page separately keeps one page's "content" from overwriting
// another's.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses base.html plus every page from fsys.
func NewRenderer(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{
		pages:  make(map[string]*template.Template, len(pages)),
		logger: logger,
	}
	for _, name := range pages {
		tmpl, err := template.ParseFS(fsys, "base.html", name+".html")
		if err != nil {
			return nil, fmt.Errorf("handler: parsing template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render writes page with the given status.
//
// The page is executed into a buffer first. If execution fails half-way the
// user gets a clean 500 page instead of a truncated one, and nothing has
// been sent yet. Pending flash notices are consumed here, which is what makes
// them one-shot.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	pd := PageData{
		Session: auth.SessionFromContext(r.Context()),
		Flashes: flash.Pop(w, r),
		Data:    data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", pd); err != nil {
		rd.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		rd.logger.Debug("writing response", slog.String("error", err.Error()))
	}
}

// NotFound renders the 404 page. It is also the router's NotFound handler.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, http.StatusNotFound, pageNotFound, nil)
}

// ServerError logs err and renders the generic 500 page. The error text never
// reaches the browser.
func (rd *Renderer) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	rd.logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	rd.Render(w, r, http.StatusInternalServerError, pageError, nil)
}
