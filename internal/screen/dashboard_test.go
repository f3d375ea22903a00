package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wolfeidau/escuela/internal/models"
)

func TestBuildDashboard(t *testing.T) {
	tests := []struct {
		name     string
		role     models.Role
		title    string
		subtitle string
		cards    int
	}{
		{name: "admin", role: models.RoleAdmin, title: "Panel de Administración", subtitle: "Gestiona toda la plataforma educativa", cards: 7},
		{name: "teacher", role: models.RoleTeacher, title: "Panel del Docente", subtitle: "Gestiona tus clases y estudiantes", cards: 3},
		{name: "student", role: models.RoleStudent, title: "Mi Panel de Estudiante", subtitle: "Consulta tu información académica", cards: 0},
		{name: "staff", role: models.RoleStaff, title: "Dashboard", subtitle: "Gestión de la Plataforma Educativa", cards: 0},
		{name: "unknown", role: models.RoleUnknown, title: "Dashboard", subtitle: "Gestión de la Plataforma Educativa", cards: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := BuildDashboard(&models.Session{Username: "ana", Role: tt.role, AccessToken: "t"})
			assert.Equal(t, tt.title, d.Title)
			assert.Equal(t, tt.subtitle, d.Subtitle)
			assert.Len(t, d.Cards, tt.cards)
		})
	}
}

func TestBuildDashboard_TeacherCards(t *testing.T) {
	d := BuildDashboard(&models.Session{Username: "ana", Role: models.RoleTeacher, AccessToken: "t"})

	var paths []string
	for _, c := range d.Cards {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{"/app/estudiantes", "/app/materias", "/app/calificaciones"}, paths)
}

func TestBuildDashboard_NoSession(t *testing.T) {
	d := BuildDashboard(nil)
	assert.Equal(t, "Dashboard", d.Title)
	assert.Empty(t, d.Cards)
}
