package screen

import (
	"github.com/wolfeidau/escuela/internal/auth"
	"github.com/wolfeidau/escuela/internal/models"
)

type heading struct {
	title    string
	subtitle string
}

var headings = map[models.Role]heading{
	models.RoleAdmin:   {title: "Panel de Administración", subtitle: "Gestiona toda la plataforma educativa"},
	models.RoleTeacher: {title: "Panel del Docente", subtitle: "Gestiona tus clases y estudiantes"},
	models.RoleStudent: {title: "Mi Panel de Estudiante", subtitle: "Consulta tu información académica"},
}

var defaultHeading = heading{title: "Dashboard", subtitle: "Gestión de la Plataforma Educativa"}

// Card is a dashboard entry leading to a screen.
type Card struct {
	Title       string
	Description string
	Icon        string
	Path        string
}

// Dashboard is the landing view after login.
type Dashboard struct {
	Title    string
	Subtitle string
	Username string
	Role     models.Role
	Cards    []Card
}

// BuildDashboard assembles the dashboard for session. Cards come from the
// route table, filtered by role; a role with no table entries gets none.
func BuildDashboard(session *models.Session) Dashboard {
	if session == nil {
		return Dashboard{Title: defaultHeading.title, Subtitle: defaultHeading.subtitle}
	}

	h, ok := headings[session.Role]
	if !ok {
		h = defaultHeading
	}

	d := Dashboard{
		Title:    h.title,
		Subtitle: h.subtitle,
		Username: session.Username,
		Role:     session.Role,
	}

	for _, route := range auth.Menu(session) {
		d.Cards = append(d.Cards, Card{
			Title:       route.Title,
			Description: route.Description,
			Icon:        route.Icon,
			Path:        route.Path,
		})
	}

	return d
}
