package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/watchlist/internal/auth"
	"github.com/sakif/watchlist/internal/config"
	"github.com/sakif/watchlist/internal/model"
)

// =========================================================================
// TEST HARNESS
// =========================================================================
//
// Each test gets a real server over a fresh SQLite file, reached through
// httptest.Server. Browsers are simulated by http.Clients with their own
// cookie jar, so sessions and flash notices travel exactly as they would in a
// real browser, redirects included.

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := &config.Config{
		Port:         8080,
		DatabaseFile: filepath.Join(t.TempDir(), "watchlist.db"),
		SecretKey:    "test-secret-at-least-16-chars!!",
		SessionTTL:   time.Hour,
		LogLevel:     "error",
		LogFormat:    "text",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv, err := New(cfg, logger, WithPasswordService(auth.NewPasswordServiceForTest(4)))
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

type browser struct {
	t    *testing.T
	http *http.Client
	base string
}

func newBrowser(t *testing.T, ts *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, http: &http.Client{Jar: jar}, base: ts.URL}
}

// page is where a request ended up after following redirects.
type page struct {
	Status int
	Path   string
	Body   string
}

func (b *browser) do(req *http.Request) page {
	b.t.Helper()
	resp, err := b.http.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return page{Status: resp.StatusCode, Path: resp.Request.URL.Path, Body: string(body)}
}

func (b *browser) get(path string) page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) register(username, password, confirm string) page {
	b.t.Helper()
	return b.post("/register", url.Values{
		"username": {username}, "password": {password}, "confirm_password": {confirm},
	})
}

func (b *browser) login(username, password string) page {
	b.t.Helper()
	return b.post("/login", url.Values{"username": {username}, "password": {password}})
}

func (b *browser) addMovie(title, year string) page {
	b.t.Helper()
	return b.post("/movie_list", url.Values{"title": {title}, "year": {year}})
}

// signedIn registers and logs in a fresh browser.
func signedIn(t *testing.T, ts *httptest.Server, username string) *browser {
	t.Helper()
	b := newBrowser(t, ts)
	b.register(username, "pw-"+username, "pw-"+username)
	p := b.login(username, "pw-"+username)
	require.Equal(t, "/movie_list", p.Path, "login as %s failed: %s", username, p.Body)
	return b
}

func userByName(t *testing.T, srv *Server, username string) *model.User {
	t.Helper()
	u, err := srv.db.Users().GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return u
}

func moviesOf(t *testing.T, srv *Server, username string) []model.Movie {
	t.Helper()
	movies, err := srv.db.Movies().ListByUser(context.Background(), userByName(t, srv, username).ID)
	require.NoError(t, err)
	return movies
}

// =========================================================================
// REGISTRATION AND LOGIN
// =========================================================================

func TestScenario_RegisterLoginAddList(t *testing.T) {
	srv, ts := newTestServer(t)
	b := newBrowser(t, ts)

	p := b.register("alice", "p1", "p1")
	assert.Equal(t, "/login", p.Path)
	assert.Contains(t, p.Body, "Register success, please login.")

	p = b.login("alice", "p1")
	assert.Equal(t, "/movie_list", p.Path)
	assert.Contains(t, p.Body, "Login success.")

	p = b.addMovie("Inception", "2010")
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "Movie added.")
	assert.Contains(t, p.Body, "Inception - 2010")

	movies := moviesOf(t, srv, "alice")
	require.Len(t, movies, 1)
	assert.Equal(t, "Inception", movies[0].Title)
	assert.Equal(t, "2010", movies[0].Year)
	assert.Equal(t, userByName(t, srv, "alice").ID, movies[0].UserID)
}

func TestRegister_MismatchedPasswordsCreateNoUser(t *testing.T) {
	srv, ts := newTestServer(t)
	b := newBrowser(t, ts)

	p := b.register("alice", "p1", "p2")

	assert.Equal(t, "/register", p.Path)
	assert.Contains(t, p.Body, "Password must equal to confirm password.")
	_, err := srv.db.Users().GetByUsername(context.Background(), "alice")
	assert.Error(t, err)
}

func TestRegister_EmptyField(t *testing.T) {
	_, ts := newTestServer(t)
	b := newBrowser(t, ts)

	p := b.register("alice", "", "")

	assert.Equal(t, "/register", p.Path)
	assert.Contains(t, p.Body, "Invalid input.")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	srv, ts := newTestServer(t)
	b := newBrowser(t, ts)
	b.register("alice", "p1", "p1")
	first := userByName(t, srv, "alice")

	p := b.register("alice", "other", "other")

	assert.Equal(t, "/login", p.Path)
	assert.Contains(t, p.Body, "Username already exists.")
	assert.Equal(t, first.PasswordHash, userByName(t, srv, "alice").PasswordHash)
}

func TestLogin_WrongPasswordNeverCreatesSession(t *testing.T) {
	_, ts := newTestServer(t)
	b := newBrowser(t, ts)
	b.register("alice", "p1", "p1")

	for i := 0; i < 3; i++ {
		p := b.login("alice", "wrong")
		assert.Equal(t, "/login", p.Path)
		assert.Contains(t, p.Body, "Invalid username or password.")
	}
	p := b.login("nobody", "p1")
	assert.Contains(t, p.Body, "Invalid username or password.")

	p = b.get("/movie_list")
	assert.Equal(t, "/login", p.Path)
	assert.Contains(t, p.Body, "Please login first.")
}

func TestLogin_FormRedirectsWhenSignedIn(t *testing.T) {
	_, ts := newTestServer(t)
	b := signedIn(t, ts, "alice")

	assert.Equal(t, "/movie_list", b.get("/login").Path)
}

func TestFlashIsShownOnce(t *testing.T) {
	_, ts := newTestServer(t)
	b := signedIn(t, ts, "alice")

	p := b.get("/movie_list")
	assert.NotContains(t, p.Body, "Login success.")
}

func TestLogout(t *testing.T) {
	_, ts := newTestServer(t)
	b := signedIn(t, ts, "alice")

	p := b.get("/logout")
	assert.Equal(t, "/", p.Path)
	assert.Contains(t, p.Body, "Goodbye.")

	assert.Equal(t, "/login", b.get("/movie_list").Path)

	// Logging out again without a session still just redirects.
	assert.Equal(t, "/", b.get("/logout").Path)
}

func TestForgedSessionCookieIsAnonymous(t *testing.T) {
	_, ts := newTestServer(t)
	b := newBrowser(t, ts)
	u, _ := url.Parse(ts.URL)
	b.http.Jar.SetCookies(u, []*http.Cookie{{Name: auth.SessionCookie, Value: "not-a-token"}})

	assert.Equal(t, "/login", b.get("/movie_list").Path)
}

// =========================================================================
// MOVIES
// =========================================================================

func TestAddMovie_Validation(t *testing.T) {
	srv, ts := newTestServer(t)
	b := signedIn(t, ts, "alice")

	p := b.addMovie(strings.Repeat("t", 61), "2000")
	assert.Contains(t, p.Body, "Invalid input.")
	assert.Empty(t, moviesOf(t, srv, "alice"))

	p = b.addMovie("Matrix", "19999")
	assert.Contains(t, p.Body, "Invalid input.")
	assert.Empty(t, moviesOf(t, srv, "alice"))

	p = b.addMovie("Matrix", "1999")
	assert.Contains(t, p.Body, "Movie added.")
	assert.Len(t, moviesOf(t, srv, "alice"), 1)
}

func TestEditMovie(t *testing.T) {
	srv, ts := newTestServer(t)
	b := signedIn(t, ts, "alice")
	b.addMovie("Incepton", "2001")
	id := moviesOf(t, srv, "alice")[0].ID

	p := b.get("/edit/" + id)
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, `value="Incepton"`)

	p = b.post("/edit/"+id, url.Values{"title": {"Inception"}, "year": {"2010"}})
	assert.Equal(t, "/movie_list", p.Path)
	assert.Contains(t, p.Body, "Item updated.")

	movies := moviesOf(t, srv, "alice")
	require.Len(t, movies, 1)
	assert.Equal(t, id, movies[0].ID)
	assert.Equal(t, "Inception", movies[0].Title)
	assert.Equal(t, "2010", movies[0].Year)
}

func TestEditMovie_ShortYearGoesBackToForm(t *testing.T) {
	srv, ts := newTestServer(t)
	b := signedIn(t, ts, "alice")
	b.addMovie("Old", "99")
	id := moviesOf(t, srv, "alice")[0].ID

	p := b.post("/edit/"+id, url.Values{"title": {"Old"}, "year": {"99"}})

	assert.Equal(t, "/edit/"+id, p.Path)
	assert.Contains(t, p.Body, "Invalid input.")
}

func TestEditMovie_LegacyAddress(t *testing.T) {
	srv, ts := newTestServer(t)
	b := signedIn(t, ts, "alice")
	b.addMovie("Heat", "1995")
	id := moviesOf(t, srv, "alice")[0].ID

	p := b.post("/alice/movielist/edit/"+id, url.Values{"title": {"Heat"}, "year": {"1996"}})

	assert.Contains(t, p.Body, "Item updated.")
	assert.Equal(t, "1996", moviesOf(t, srv, "alice")[0].Year)
}

func TestEditMovie_Missing(t *testing.T) {
	_, ts := newTestServer(t)
	b := signedIn(t, ts, "alice")

	assert.Equal(t, http.StatusNotFound, b.get("/edit/does-not-exist").Status)
	p := b.post("/edit/does-not-exist", url.Values{"title": {"X"}, "year": {"2000"}})
	assert.Equal(t, http.StatusNotFound, p.Status)
}

func TestDeleteMovie(t *testing.T) {
	srv, ts := newTestServer(t)
	b := signedIn(t, ts, "alice")
	b.addMovie("Heat", "1995")
	id := moviesOf(t, srv, "alice")[0].ID

	p := b.post("/delete/"+id, nil)

	assert.Equal(t, "/movie_list", p.Path)
	assert.Contains(t, p.Body, "Item deleted.")
	assert.Empty(t, moviesOf(t, srv, "alice"))
}

func TestDeleteMovie_MissingLeavesCountUnchanged(t *testing.T) {
	srv, ts := newTestServer(t)
	b := signedIn(t, ts, "alice")
	b.addMovie("Heat", "1995")

	p := b.post("/delete/does-not-exist", nil)

	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "Can not delete this item.")
	assert.Len(t, moviesOf(t, srv, "alice"), 1)
}

func TestMoviesAreIsolatedBetweenUsers(t *testing.T) {
	srv, ts := newTestServer(t)
	alice := signedIn(t, ts, "alice")
	bob := signedIn(t, ts, "bob")

	alice.addMovie("Secret Pick", "2001")
	id := moviesOf(t, srv, "alice")[0].ID

	assert.NotContains(t, bob.get("/movie_list").Body, "Secret Pick")
	assert.Equal(t, http.StatusNotFound, bob.get("/edit/"+id).Status)

	p := bob.post("/edit/"+id, url.Values{"title": {"Stolen"}, "year": {"2002"}})
	assert.Equal(t, http.StatusNotFound, p.Status)

	p = bob.post("/delete/"+id, nil)
	assert.Contains(t, p.Body, "Can not delete this item.")
	p = bob.post("/bob/movielist/delete/"+id, nil)
	assert.Contains(t, p.Body, "Can not delete this item.")

	movies := moviesOf(t, srv, "alice")
	require.Len(t, movies, 1)
	assert.Equal(t, "Secret Pick", movies[0].Title)
}

func TestMovieRoutesRequireLogin(t *testing.T) {
	_, ts := newTestServer(t)
	b := newBrowser(t, ts)

	for _, path := range []string{"/movie_list", "/settings", "/edit/x"} {
		p := b.get(path)
		assert.Equal(t, "/login", p.Path, path)
	}
	p := b.addMovie("Heat", "1995")
	assert.Equal(t, "/login", p.Path)
}

// =========================================================================
// OTHER PAGES
// =========================================================================

func TestSettings(t *testing.T) {
	srv, ts := newTestServer(t)
	b := signedIn(t, ts, "alice")

	p := b.post("/settings", url.Values{"name": {"Alice Liddell"}})
	assert.Equal(t, "/movie_list", p.Path)
	assert.Contains(t, p.Body, "Settings updated.")
	assert.Contains(t, p.Body, "Alice Liddell")
	assert.Equal(t, "Alice Liddell", userByName(t, srv, "alice").Name)

	p = b.post("/settings", url.Values{"name": {strings.Repeat("n", 21)}})
	assert.Equal(t, "/settings", p.Path)
	assert.Contains(t, p.Body, "Invalid input.")
}

func TestUserPageEscapesName(t *testing.T) {
	_, ts := newTestServer(t)
	b := newBrowser(t, ts)

	p := b.get("/user/" + url.PathEscape("<b>bob"))

	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "User: &lt;b&gt;bob")
	assert.NotContains(t, p.Body, "<b>bob")
}

func TestUnknownRouteIs404(t *testing.T) {
	_, ts := newTestServer(t)
	p := newBrowser(t, ts).get("/no/such/page")

	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Contains(t, p.Body, "Page Not Found")
}

func TestIndexAndStatic(t *testing.T) {
	_, ts := newTestServer(t)
	b := newBrowser(t, ts)

	assert.Equal(t, http.StatusOK, b.get("/").Status)

	p := b.get("/static/style.css")
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, ".movie-list")
}
