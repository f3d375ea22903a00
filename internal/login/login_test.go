package login

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCookies(t *testing.T) *Cookies {
	t.Helper()
	c, err := NewCookies(NewSecret(), time.Hour, false)
	require.NoError(t, err)
	return c
}

// issue returns a request carrying a freshly issued cookie.
func issue(t *testing.T, c *Cookies, username string) *http.Request {
	t.Helper()

	w := httptest.NewRecorder()
	require.NoError(t, c.Issue(w, username))

	r := httptest.NewRequest(http.MethodGet, "/app/dashboard", nil)
	for _, cookie := range w.Result().Cookies() {
		r.AddCookie(cookie)
	}
	return r
}

func TestNewCookies(t *testing.T) {
	_, err := NewCookies([]byte("short"), time.Hour, false)
	require.Error(t, err)

	_, err = NewCookies(NewSecret(), 0, false)
	require.Error(t, err)
}

func TestIssueVerify(t *testing.T) {
	c := newCookies(t)

	op, err := c.Verify(issue(t, c, "ana"))
	require.NoError(t, err)
	assert.Equal(t, "ana", op.Username)
}

func TestVerify_Rejects(t *testing.T) {
	c := newCookies(t)
	other := newCookies(t)

	t.Run("missing cookie", func(t *testing.T) {
		_, err := c.Verify(httptest.NewRequest(http.MethodGet, "/", nil))
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("other secret", func(t *testing.T) {
		_, err := c.Verify(issue(t, other, "ana"))
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("tampered", func(t *testing.T) {
		r := issue(t, c, "ana")
		cookie, err := r.Cookie(CookieName)
		require.NoError(t, err)

		tampered := httptest.NewRequest(http.MethodGet, "/", nil)
		tampered.AddCookie(&http.Cookie{Name: CookieName, Value: "x" + cookie.Value})

		_, err = c.Verify(tampered)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired", func(t *testing.T) {
		r := issue(t, c, "ana")
		c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		t.Cleanup(func() { c.now = time.Now })

		_, err := c.Verify(r)
		require.ErrorIs(t, err, ErrExpiredSession)
	})
}

func TestRequireOperator(t *testing.T) {
	c := newCookies(t)
	current := "ana"

	var seen string
	handler := c.RequireOperator("/login", func() string { return current })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op, ok := OperatorFromContext(r.Context())
		require.True(t, ok)
		seen = op.Username
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, issue(t, c, "ana"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana", seen)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app/dashboard", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?error_code=invalid", w.Header().Get("Location"))

	// the session changed hands in another tab or process
	current = "luis"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, issue(t, c, "ana"))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0"))
}
