package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/escuela/internal/models"
)

type staticSource struct {
	session *models.Session
}

func (s staticSource) Current() *models.Session { return s.session.Clone() }

func sessionWithRole(role models.Role) *models.Session {
	return &models.Session{UserID: 1, Username: "ana", Role: role, AccessToken: "tok"}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		session  *models.Session
		path     string
		expected Decision
	}{
		{name: "absent session on protected route", session: nil, path: "/app/materias", expected: DenyUnauthenticated},
		{name: "absent session on dashboard", session: nil, path: DashboardPath, expected: DenyUnauthenticated},
		{name: "session without token", session: &models.Session{Username: "ana", Role: models.RoleAdmin}, path: DashboardPath, expected: DenyUnauthenticated},
		{name: "expired session", session: &models.Session{Username: "ana", Role: models.RoleAdmin, AccessToken: "tok", ExpiresAt: time.Now().Add(-time.Minute)}, path: DashboardPath, expected: DenyUnauthenticated},
		{name: "teacher on admin route", session: sessionWithRole(models.RoleTeacher), path: "/app/personal", expected: DenyForbidden},
		{name: "teacher on teacher route", session: sessionWithRole(models.RoleTeacher), path: "/app/calificaciones", expected: Allow},
		{name: "admin on admin route", session: sessionWithRole(models.RoleAdmin), path: "/app/institucion", expected: Allow},
		{name: "student on dashboard", session: sessionWithRole(models.RoleStudent), path: DashboardPath, expected: Allow},
		{name: "student on students route", session: sessionWithRole(models.RoleStudent), path: "/app/estudiantes", expected: DenyForbidden},
		{name: "unknown role on dashboard", session: sessionWithRole(models.RoleUnknown), path: DashboardPath, expected: Allow},
		{name: "unknown role on gated route", session: sessionWithRole(models.RoleUnknown), path: "/app/materias", expected: DenyForbidden},
		{name: "alias resolves", session: sessionWithRole(models.RoleAdmin), path: "/app/grados", expected: Allow},
		{name: "alias keeps gating", session: sessionWithRole(models.RoleTeacher), path: "/app/grados", expected: DenyForbidden},
		{name: "trailing slash", session: sessionWithRole(models.RoleTeacher), path: "/app/materias/", expected: Allow},
		{name: "unmatched path", session: sessionWithRole(models.RoleAdmin), path: "/app/nope", expected: DenyUnknownRoute},
		{name: "login is public", session: nil, path: "/login", expected: Allow},
		{name: "root goes to login", session: nil, path: "/", expected: Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Evaluate(tt.session, tt.path)
			require.Equal(t, tt.expected, verdict.Decision)

			if verdict.Allowed() {
				assert.Empty(t, verdict.Redirect)
			} else {
				assert.Equal(t, LoginPath, verdict.Redirect)
				assert.Nil(t, verdict.Session)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, LoginPath, Canonical(""))
	assert.Equal(t, LoginPath, Canonical("/"))
	assert.Equal(t, "/app/grado-estudio", Canonical("/app/grados/"))
	assert.Equal(t, "/app/materias", Canonical("app/materias"))
}

func TestMenu(t *testing.T) {
	titles := func(routes []Route) []string {
		var out []string
		for _, r := range routes {
			out = append(out, r.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Estudiantes", "Materias", "Calificaciones"}, titles(Menu(sessionWithRole(models.RoleTeacher))))
	assert.Len(t, Menu(sessionWithRole(models.RoleAdmin)), 7)
	assert.Empty(t, Menu(sessionWithRole(models.RoleStudent)))
	assert.Empty(t, Menu(sessionWithRole(models.RoleUnknown)))
	assert.Empty(t, Menu(nil))
}

func TestGuard_Check(t *testing.T) {
	guard := NewGuard(staticSource{session: sessionWithRole(models.RoleTeacher)})

	verdict := guard.Check(context.Background(), "/app/materias")
	require.True(t, verdict.Allowed())
	require.Equal(t, "ana", verdict.Session.Username)

	verdict = guard.Check(context.Background(), "/app/periodos")
	require.False(t, verdict.Allowed())
	require.Equal(t, DenyForbidden, verdict.Decision)
}

func TestRequireSession(t *testing.T) {
	handler := func(t *testing.T) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFromContext(r.Context())
			if s != nil {
				_, _ = w.Write([]byte(s.Username))
				return
			}
			_, _ = w.Write([]byte("public"))
		})
	}

	t.Run("denied request redirects without running handler", func(t *testing.T) {
		guard := NewGuard(staticSource{})
		rec := httptest.NewRecorder()

		RequireSession(guard)(handler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/materias", nil))

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/login?error_code=unauthenticated", rec.Header().Get("Location"))
		require.NotContains(t, rec.Body.String(), "public")
	})

	t.Run("forbidden role", func(t *testing.T) {
		guard := NewGuard(staticSource{session: sessionWithRole(models.RoleTeacher)})
		rec := httptest.NewRecorder()

		RequireSession(guard)(handler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/personal", nil))

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/login?error_code=forbidden", rec.Header().Get("Location"))
	})

	t.Run("allowed request carries session", func(t *testing.T) {
		guard := NewGuard(staticSource{session: sessionWithRole(models.RoleAdmin)})
		rec := httptest.NewRecorder()

		RequireSession(guard)(handler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/personal", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ana", rec.Body.String())
	})

	t.Run("route guard ignores request path", func(t *testing.T) {
		guard := NewGuard(staticSource{session: sessionWithRole(models.RoleTeacher)})
		rec := httptest.NewRecorder()

		RequireRoute(guard, "/app/periodos")(handler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/app/periodos/3/delete", nil))

		require.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("login page is public", func(t *testing.T) {
		guard := NewGuard(staticSource{})
		rec := httptest.NewRecorder()

		RequireSession(guard)(handler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "public", rec.Body.String())
	})
}
