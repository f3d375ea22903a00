package auth

import (
	"slices"
	"strings"

	"github.com/wolfeidau/escuela/internal/models"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/app/dashboard"
)

// Route is a protected region of the application and its menu card.
type Route struct {
	Path        string
	Title       string
	Description string
	Icon        string

	// Entity is the collection managed on this route, empty for the dashboard.
	Entity string

	// Roles allowed to enter. Nil means any authenticated user.
	Roles []models.Role
}

// Routes is the protected route table, in menu order.
var Routes = []Route{
	{
		Path:  DashboardPath,
		Title: "Dashboard",
		Icon:  "dashboard",
	},
	{
		Path:        "/app/estudiantes",
		Title:       "Estudiantes",
		Description: "Gestionar estudiantes",
		Icon:        "school",
		Entity:      "estudiantes",
		Roles:       adminOrTeacher,
	},
	{
		Path:        "/app/personal",
		Title:       "Personal",
		Description: "Gestionar personal docente y administrativo",
		Icon:        "people",
		Entity:      "personal",
		Roles:       adminOnly,
	},
	{
		Path:        "/app/materias",
		Title:       "Materias",
		Description: "Gestionar materias académicas",
		Icon:        "book",
		Entity:      "materias",
		Roles:       adminOrTeacher,
	},
	{
		Path:        "/app/grado-estudio",
		Title:       "Grados de Estudio",
		Description: "Gestionar grados y niveles",
		Icon:        "class",
		Entity:      "grados",
		Roles:       adminOnly,
	},
	{
		Path:        "/app/calificaciones",
		Title:       "Calificaciones",
		Description: "Gestionar calificaciones",
		Icon:        "grade",
		Entity:      "calificaciones",
		Roles:       adminOrTeacher,
	},
	{
		Path:        "/app/periodos",
		Title:       "Períodos",
		Description: "Gestionar períodos académicos",
		Icon:        "event",
		Entity:      "periodos",
		Roles:       adminOnly,
	},
	{
		Path:        "/app/institucion",
		Title:       "Institución",
		Description: "Información de la institución",
		Icon:        "business",
		Entity:      "instituciones",
		Roles:       adminOnly,
	},
}

var routeAliases = map[string]string{
	"/app/grados": "/app/grado-estudio",
}

// Canonical normalises path: trailing slashes are dropped, aliases are
// followed and the empty path becomes the login path.
func Canonical(path string) string {
	path = strings.TrimRight(path, "/")
	if path == "" {
		return LoginPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if target, ok := routeAliases[path]; ok {
		return target
	}
	return path
}

// LookupRoute finds the protected route for path.
func LookupRoute(path string) (Route, bool) {
	path = Canonical(path)
	for _, route := range Routes {
		if route.Path == path {
			return route, true
		}
	}
	return Route{}, false
}

// RouteForEntity finds the route managing entity.
func RouteForEntity(entity string) (Route, bool) {
	for _, route := range Routes {
		if route.Entity != "" && route.Entity == entity {
			return route, true
		}
	}
	return Route{}, false
}

// Allows reports whether role may enter the route.
func (r Route) Allows(role models.Role) bool {
	if r.Roles == nil {
		return true
	}
	return slices.Contains(r.Roles, role)
}

// Menu returns the screen routes the session may enter, in table order.
// The dashboard itself is not a menu entry.
func Menu(session *models.Session) []Route {
	if !session.HasToken() {
		return nil
	}

	var menu []Route
	for _, route := range Routes {
		if route.Entity == "" {
			continue
		}
		if route.Allows(session.Role) {
			menu = append(menu, route)
		}
	}
	return menu
}
