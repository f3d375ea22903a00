package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/wolfeidau/escuela/internal/models"
)

type contextKey int

const (
	sessionContextKey contextKey = iota
)

// SessionFromContext extracts the session admitted by RequireSession.
// Returns nil on public routes.
func SessionFromContext(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionContextKey).(*models.Session)
	return session
}

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// RequireSession guards every request by its URL path. A denied request is
// redirected to the login page before the wrapped handler runs, with the
// reason in the error_code query parameter.
func RequireSession(guard *Guard) func(http.Handler) http.Handler {
	return guardWith(guard, func(r *http.Request) string { return r.URL.Path })
}

// RequireRoute guards requests as if they were navigations to path. Used for
// form posts and sub-paths that belong to a screen.
func RequireRoute(guard *Guard, path string) func(http.Handler) http.Handler {
	return guardWith(guard, func(*http.Request) string { return path })
}

func guardWith(guard *Guard, pathOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			verdict := guard.Check(r.Context(), pathOf(r))
			if !verdict.Allowed() {
				target := verdict.Redirect + "?" + url.Values{"error_code": {verdict.Decision.String()}}.Encode()
				http.Redirect(w, r, target, http.StatusFound)
				return
			}

			if verdict.Session != nil {
				r = r.WithContext(WithSession(r.Context(), verdict.Session))
			}

			next.ServeHTTP(w, r)
		})
	}
}
