package resource

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/wolfeidau/escuela/internal/util"
)

// ErrUnknownFilter is returned when a list filter is not supported by the
// collection.
var ErrUnknownFilter = errors.New("unknown filter")

// Fields is a record as entered in a form, keyed by form field name.
type Fields map[string]any

// Entity describes a backend collection and how form fields map onto it.
type Entity struct {
	// Name is the collection path under the API root.
	Name string

	// Remap renames form fields to backend fields. Unlisted fields pass
	// through unchanged.
	Remap map[string]string

	// DateFields are backend fields sent as YYYY-MM-DD.
	DateFields []string

	// Filters are the query parameters the list endpoint honours.
	Filters []string
}

var (
	Students = Entity{
		Name: "estudiantes",
		Remap: map[string]string{
			"gradoEstudioId":  "grado",
			"email":           "correo",
			"fechaNacimiento": "fecha_nacimiento",
			"cedula":          "matricula",
		},
		DateFields: []string{"fecha_nacimiento"},
		Filters:    []string{"grado", "institucion", "search"},
	}

	Staff = Entity{
		Name:       "personal",
		DateFields: []string{"fecha_ingreso"},
		Filters:    []string{"cargo", "institucion", "estado", "search"},
	}

	Subjects = Entity{
		Name: "materias",
		Remap: map[string]string{
			"gradoEstudioId": "grado",
		},
		Filters: []string{"grado", "profesor"},
	}

	Grades = Entity{
		Name:    "grados",
		Filters: []string{"institucion"},
	}

	GradeRecords = Entity{
		Name: "calificaciones",
		Remap: map[string]string{
			"estudianteId": "alumno",
			"materiaId":    "materia",
			"periodoId":    "periodo",
			"nota":         "calificacion",
		},
		Filters: []string{"alumno", "materia", "periodo"},
	}

	Periods = Entity{
		Name: "periodos",
		Remap: map[string]string{
			"fechaInicio": "fecha_inicio",
			"fechaFin":    "fecha_fin",
		},
		DateFields: []string{"fecha_inicio", "fecha_fin"},
	}

	Institutions = Entity{
		Name: "instituciones",
		Remap: map[string]string{
			"email": "correo",
		},
	}
)

// Entities lists every collection, in menu order.
var Entities = []Entity{Students, Staff, Subjects, Grades, GradeRecords, Periods, Institutions}

// Lookup finds an entity by collection name.
func Lookup(name string) (Entity, bool) {
	for _, e := range Entities {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

// BackendField returns the backend name of a form field.
func (e Entity) BackendField(field string) string {
	if target, ok := e.Remap[field]; ok {
		return target
	}
	return field
}

// Encode translates form fields into the backend request body. Date fields
// are normalised and an empty date is sent as null.
func (e Entity) Encode(fields Fields) (map[string]any, error) {
	body := make(map[string]any, len(fields))

	for _, field := range slices.Sorted(maps.Keys(fields)) {
		name := e.BackendField(field)
		value := fields[field]

		if slices.Contains(e.DateFields, name) && value != nil {
			date, err := util.FormatDate(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", field, err)
			}
			if date == "" {
				body[name] = nil
				continue
			}
			value = date
		}

		body[name] = value
	}

	return body, nil
}

// Query builds the list query string from filters. Empty values are
// skipped.
func (e Entity) Query(filters map[string]string) (url.Values, error) {
	query := url.Values{}

	for _, key := range slices.Sorted(maps.Keys(filters)) {
		value := strings.TrimSpace(filters[key])
		if value == "" {
			continue
		}
		if !slices.Contains(e.Filters, key) {
			return nil, fmt.Errorf("%w %q for %s", ErrUnknownFilter, key, e.Name)
		}
		query.Set(key, value)
	}

	return query, nil
}
