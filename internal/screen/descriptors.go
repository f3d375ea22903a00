package screen

import (
	"strings"

	"github.com/wolfeidau/escuela/internal/auth"
	"github.com/wolfeidau/escuela/internal/client"
	"github.com/wolfeidau/escuela/internal/models"
	"github.com/wolfeidau/escuela/internal/resource"
)

func idColumn[T any](id func(T) int64) Column[T] {
	return Column[T]{Header: "ID", Value: func(v T) string { return formatID(id(v)) }}
}

// refName prefers the display name the backend joined in, else the id.
func refName(name string, id int64) string {
	if name != "" {
		return name
	}
	if id == 0 {
		return "-"
	}
	return "#" + formatID(id)
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

var StudentsDescriptor = Descriptor[models.Student]{
	Noun: "el estudiante",
	ID:   func(s models.Student) int64 { return s.ID },
	Columns: []Column[models.Student]{
		idColumn(func(s models.Student) int64 { return s.ID }),
		{Header: "Nombre", Value: func(s models.Student) string { return fullName(s.FirstName, s.LastName) }},
		{Header: "Matrícula", Value: func(s models.Student) string { return s.Enrollment }},
		{Header: "Correo", Value: func(s models.Student) string { return s.Email }},
		{Header: "Grado", Value: func(s models.Student) string { return refName(s.GradeName, s.GradeID) }},
	},
	Fields: []Field{
		{Name: "nombre", Label: "Nombre", Required: true},
		{Name: "apellido", Label: "Apellido", Required: true},
		{Name: "gradoEstudioId", Label: "Grado", Required: true, Rule: "numeric"},
		{Name: "cedula", Label: "Matrícula"},
		{Name: "email", Label: "Correo", Rule: "email"},
		{Name: "fechaNacimiento", Label: "Fecha de nacimiento", Rule: "date"},
	},
	Created: "Estudiante creado exitosamente",
	Deleted: "Estudiante eliminado exitosamente",
}

var StaffDescriptor = Descriptor[models.Staff]{
	Noun: "el miembro del personal",
	ID:   func(s models.Staff) int64 { return s.ID },
	Columns: []Column[models.Staff]{
		idColumn(func(s models.Staff) int64 { return s.ID }),
		{Header: "Nombre", Value: func(s models.Staff) string { return s.FirstName }},
		{Header: "Apellido", Value: func(s models.Staff) string { return s.LastName }},
		{Header: "Cédula", Value: func(s models.Staff) string { return s.NationalID }},
		{Header: "Cargo", Value: func(s models.Staff) string { return string(s.Position) }},
		{Header: "Fecha de ingreso", Value: func(s models.Staff) string { return s.StartDate }},
		{Header: "Estado", Value: models.Staff.StatusText},
	},
	Fields: []Field{
		{Name: "nombre", Label: "Nombre", Required: true},
		{Name: "apellido", Label: "Apellido", Required: true},
		{Name: "cedula", Label: "Cédula", Required: true},
		{Name: "cargo", Label: "Cargo", Required: true, Rule: "oneof=Docente Administrativo Obrero"},
		{Name: "fecha_ingreso", Label: "Fecha de ingreso", Required: true, Rule: "date"},
		{Name: "email", Label: "Correo", Rule: "email"},
		{Name: "telefono", Label: "Teléfono"},
		{Name: "institucion", Label: "Institución", Rule: "numeric"},
		{Name: "estado", Label: "Estado", Rule: "boolean"},
	},
	Created: "Personal creado exitosamente",
	Deleted: "Personal eliminado exitosamente",
}

var SubjectsDescriptor = Descriptor[models.Subject]{
	Noun: "la materia",
	ID:   func(s models.Subject) int64 { return s.ID },
	Columns: []Column[models.Subject]{
		idColumn(func(s models.Subject) int64 { return s.ID }),
		{Header: "Nombre", Value: func(s models.Subject) string { return s.Name }},
		{Header: "Descripción", Value: func(s models.Subject) string { return s.Description }},
		{Header: "Grado", Value: func(s models.Subject) string { return refName(s.GradeName, s.GradeID) }},
	},
	Fields: []Field{
		{Name: "nombre", Label: "Nombre", Required: true},
		{Name: "gradoEstudioId", Label: "Grado", Required: true, Rule: "numeric"},
		{Name: "descripcion", Label: "Descripción"},
		{Name: "profesor", Label: "Profesor", Rule: "numeric"},
	},
	Created: "Materia creada exitosamente",
	Deleted: "Materia eliminada exitosamente",
}

var GradesDescriptor = Descriptor[models.Grade]{
	Noun: "el grado",
	ID:   func(g models.Grade) int64 { return g.ID },
	Columns: []Column[models.Grade]{
		idColumn(func(g models.Grade) int64 { return g.ID }),
		{Header: "Nombre", Value: func(g models.Grade) string { return g.Name }},
		{Header: "Descripción", Value: func(g models.Grade) string { return g.Description }},
		{Header: "Institución", Value: func(g models.Grade) string { return refName(g.InstitutionName, g.InstitutionID) }},
	},
	Fields: []Field{
		{Name: "nombre", Label: "Nombre", Required: true},
		{Name: "institucion", Label: "Institución", Required: true, Rule: "numeric"},
		{Name: "descripcion", Label: "Descripción"},
	},
	Created: "Grado creado exitosamente",
	Deleted: "Grado eliminado exitosamente",
}

var GradeRecordsDescriptor = Descriptor[models.GradeRecord]{
	Noun: "la calificación",
	ID:   func(r models.GradeRecord) int64 { return r.ID },
	Columns: []Column[models.GradeRecord]{
		idColumn(func(r models.GradeRecord) int64 { return r.ID }),
		{Header: "Estudiante", Value: func(r models.GradeRecord) string {
			return refName(fullName(r.StudentName, r.StudentSurname), r.StudentID)
		}},
		{Header: "Materia", Value: func(r models.GradeRecord) string { return refName(r.SubjectName, r.SubjectID) }},
		{Header: "Período", Value: func(r models.GradeRecord) string { return refName(r.PeriodName, r.PeriodID) }},
		{Header: "Nota", Value: func(r models.GradeRecord) string { return r.Score.String() + " (" + string(r.Score.Band()) + ")" }},
	},
	Fields: []Field{
		{Name: "estudianteId", Label: "Estudiante", Required: true, Rule: "numeric"},
		{Name: "materiaId", Label: "Materia", Required: true, Rule: "numeric"},
		{Name: "periodoId", Label: "Período", Required: true, Rule: "numeric"},
		{Name: "nota", Label: "Nota", Required: true, Rule: "score"},
	},
	Created: "Calificación creada exitosamente",
	Deleted: "Calificación eliminada exitosamente",
}

var PeriodsDescriptor = Descriptor[models.Period]{
	Noun: "el período",
	ID:   func(p models.Period) int64 { return p.ID },
	Columns: []Column[models.Period]{
		idColumn(func(p models.Period) int64 { return p.ID }),
		{Header: "Nombre", Value: func(p models.Period) string { return p.Name }},
		{Header: "Fecha inicio", Value: func(p models.Period) string { return p.StartDate }},
		{Header: "Fecha fin", Value: func(p models.Period) string { return p.EndDate }},
	},
	Fields: []Field{
		{Name: "nombre", Label: "Nombre", Required: true},
		{Name: "fechaInicio", Label: "Fecha inicio", Required: true, Rule: "date"},
		{Name: "fechaFin", Label: "Fecha fin", Required: true, Rule: "date"},
	},
	Created: "Período creado exitosamente",
	Deleted: "Período eliminado exitosamente",
}

var InstitutionsDescriptor = Descriptor[models.Institution]{
	Noun: "la institución",
	ID:   func(i models.Institution) int64 { return i.ID },
	Columns: []Column[models.Institution]{
		idColumn(func(i models.Institution) int64 { return i.ID }),
		{Header: "Nombre", Value: func(i models.Institution) string { return i.Name }},
		{Header: "Dirección", Value: func(i models.Institution) string { return i.Address }},
		{Header: "Teléfono", Value: func(i models.Institution) string { return i.Phone }},
		{Header: "Correo", Value: func(i models.Institution) string { return i.Email }},
	},
	Fields: []Field{
		{Name: "nombre", Label: "Nombre", Required: true},
		{Name: "direccion", Label: "Dirección", Required: true},
		{Name: "telefono", Label: "Teléfono"},
		{Name: "email", Label: "Correo", Rule: "email"},
	},
	Created: "Institución creada exitosamente",
	Deleted: "Institución eliminada exitosamente",
}

// NewScreens builds every entity screen over api, in menu order.
func NewScreens(api *client.API, session SessionReader, notifier Notifier) []Screen {
	return []Screen{
		NewController(StudentsDescriptor, resource.NewStudents(api), session, notifier),
		NewController(StaffDescriptor, resource.NewStaff(api), session, notifier),
		NewController(SubjectsDescriptor, resource.NewSubjects(api), session, notifier),
		NewController(GradesDescriptor, resource.NewGrades(api), session, notifier),
		NewController(GradeRecordsDescriptor, resource.NewGradeRecords(api), session, notifier),
		NewController(PeriodsDescriptor, resource.NewPeriods(api), session, notifier),
		NewController(InstitutionsDescriptor, resource.NewInstitutions(api), session, notifier),
	}
}

// Find returns the screen for entity or route path.
func Find(screens []Screen, name string) (Screen, bool) {
	path := auth.Canonical(name)
	for _, s := range screens {
		if s.Entity() == name || s.Route().Path == path {
			return s, true
		}
	}
	return nil, false
}
