package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Institution is a school registered in the system.
type Institution struct {
	ID      int64  `json:"id"`
	Name    string `json:"nombre"`
	Address string `json:"direccion"`
	Phone   string `json:"telefono,omitempty"`
	Email   string `json:"correo,omitempty"`
}

// Grade is a study level offered by an institution.
type Grade struct {
	ID              int64  `json:"id"`
	Name            string `json:"nombre"`
	Description     string `json:"descripcion,omitempty"`
	InstitutionID   int64  `json:"institucion"`
	InstitutionName string `json:"institucion_nombre,omitempty"`
}

// Subject is a course taught within a grade.
type Subject struct {
	ID             int64  `json:"id"`
	Name           string `json:"nombre"`
	Description    string `json:"descripcion,omitempty"`
	TeacherID      int64  `json:"profesor,omitempty"`
	TeacherName    string `json:"profesor_nombre,omitempty"`
	TeacherSurname string `json:"profesor_apellido,omitempty"`
	GradeID        int64  `json:"grado"`
	GradeName      string `json:"grado_nombre,omitempty"`
}

// Student is an enrolled pupil.
type Student struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"nombre"`
	LastName   string `json:"apellido"`
	Enrollment string `json:"matricula,omitempty"`
	BirthDate  string `json:"fecha_nacimiento,omitempty"`
	Email      string `json:"correo,omitempty"`
	GradeID    int64  `json:"grado,omitempty"`
	GradeName  string `json:"grado_nombre,omitempty"`
}

// Position is the job category of a staff member.
type Position string

const (
	PositionTeacher        Position = "Docente"
	PositionAdministrative Position = "Administrativo"
	PositionLabor          Position = "Obrero"
)

// Staff is an employee of an institution.
type Staff struct {
	ID              int64    `json:"id"`
	FirstName       string   `json:"nombre"`
	LastName        string   `json:"apellido"`
	NationalID      string   `json:"cedula"`
	Position        Position `json:"cargo"`
	StartDate       string   `json:"fecha_ingreso"`
	Active          bool     `json:"estado"`
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"telefono,omitempty"`
	InstitutionID   int64    `json:"institucion,omitempty"`
	InstitutionName string   `json:"institucion_nombre,omitempty"`
}

// StatusText returns the display label for the staff member's status.
func (s Staff) StatusText() string {
	if s.Active {
		return "Activo"
	}
	return "Inactivo"
}

// Period is an academic term. Dates use the YYYY-MM-DD layout.
type Period struct {
	ID        int64  `json:"id"`
	Name      string `json:"nombre"`
	StartDate string `json:"fecha_inicio"`
	EndDate   string `json:"fecha_fin"`
}

// GradeRecord is the score a student obtained in a subject for a period.
type GradeRecord struct {
	ID             int64  `json:"id"`
	StudentID      int64  `json:"alumno"`
	StudentName    string `json:"alumno_nombre,omitempty"`
	StudentSurname string `json:"alumno_apellido,omitempty"`
	SubjectID      int64  `json:"materia"`
	SubjectName    string `json:"materia_nombre,omitempty"`
	PeriodID       int64  `json:"periodo"`
	PeriodName     string `json:"periodo_nombre,omitempty"`
	Score          Score  `json:"calificacion"`
}

// Score is a decimal grade. The backend serialises decimals as strings
// ("18.50"), older endpoints send plain numbers; both decode.
type Score float64

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			*s = 0
			return nil
		}
		data = []byte(raw)
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid score %q: %w", string(data), err)
	}
	*s = Score(v)
	return nil
}

// String formats the score with two decimals, as the backend stores it.
func (s Score) String() string {
	return strconv.FormatFloat(float64(s), 'f', 2, 64)
}

// ScoreBand classifies a score on the 20 point scale.
type ScoreBand string

const (
	BandExcellent ScoreBand = "excelente"
	BandGood      ScoreBand = "buena"
	BandFair      ScoreBand = "regular"
	BandPoor      ScoreBand = "deficiente"
)

// Band returns the classification of the score.
func (s Score) Band() ScoreBand {
	switch {
	case s >= 18:
		return BandExcellent
	case s >= 16:
		return BandGood
	case s >= 13:
		return BandFair
	default:
		return BandPoor
	}
}
