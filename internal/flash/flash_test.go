package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// carry copies the cookies set on rec onto a new request, the way a
// browser would when following a redirect.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func TestAddThenPop(t *testing.T) {
	rec := httptest.NewRecorder()
	Add(rec, httptest.NewRequest(http.MethodPost, "/movie_list", nil), "Movie added.")

	next := carry(rec)
	out := httptest.NewRecorder()
	got := Pop(out, next)

	assert.Equal(t, []string{"Movie added."}, got)

	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0, "Pop must expire the cookie")
}

func TestPop_NothingPending(t *testing.T) {
	rec := httptest.NewRecorder()

	got := Pop(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Nil(t, got)
	assert.Empty(t, rec.Result().Cookies(), "Pop without a flash cookie should not set one")
}

func TestAdd_KeepsPendingMessages(t *testing.T) {
	first := httptest.NewRecorder()
	Add(first, httptest.NewRequest(http.MethodGet, "/movie_list", nil), "Please login first.")

	second := httptest.NewRecorder()
	Add(second, carry(first), "Invalid input.")

	got := Pop(httptest.NewRecorder(), carry(second))
	assert.Equal(t, []string{"Please login first.", "Invalid input."}, got)
}

func TestAdd_CapsMessageCount(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var rec *httptest.ResponseRecorder
	for i := 0; i < maxMessages+3; i++ {
		rec = httptest.NewRecorder()
		Add(rec, req, "notice")
		req = carry(rec)
	}

	got := Pop(httptest.NewRecorder(), req)
	assert.Len(t, got, maxMessages)
}

func TestPop_MalformedCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "%%%not-base64"})

	rec := httptest.NewRecorder()
	got := Pop(rec, req)

	assert.Nil(t, got)
	assert.NotEmpty(t, rec.Result().Cookies(), "a malformed cookie should still be cleared")
}
