package screen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wolfeidau/escuela/internal/util"
)

// Field is a form input of a screen.
type Field struct {
	Name     string
	Label    string
	Required bool

	// Rule holds extra validator rules applied when the field has a value,
	// eg "email" or "score".
	Rule string
}

// ValidationError reports form fields that failed client-side checks. It is
// raised before any network call.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "Por favor complete los campos requeridos: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "Valores inválidos: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, ". ")
}

func newValidator() *validator.Validate {
	v := validator.New()

	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("date", validateDate)
	_ = v.RegisterValidation("score", validateScore)

	return v
}

// validateDate accepts anything util.FormatDate can render.
func validateDate(fl validator.FieldLevel) bool {
	date, err := util.FormatDate(fl.Field().Interface())
	return err == nil && date != ""
}

// validateScore accepts a number on the 0-20 scale, as a number or a string.
func validateScore(fl validator.FieldLevel) bool {
	var score float64

	field := fl.Field()
	switch {
	case field.CanFloat():
		score = field.Float()
	case field.CanInt():
		score = float64(field.Int())
	default:
		v, err := strconv.ParseFloat(strings.TrimSpace(field.String()), 64)
		if err != nil {
			return false
		}
		score = v
	}

	return score >= 0 && score <= 20
}

// rulesFor builds the validator rule for every form field.
func rulesFor(fields []Field) map[string]any {
	rules := make(map[string]any, len(fields))
	for _, f := range fields {
		var tags []string
		if f.Required {
			tags = append(tags, "required")
		} else if f.Rule != "" {
			tags = append(tags, "omitempty")
		}
		if f.Rule != "" {
			tags = append(tags, f.Rule)
		}
		if len(tags) > 0 {
			rules[f.Name] = strings.Join(tags, ",")
		}
	}
	return rules
}

// validate checks data against fields. Missing keys are treated as empty.
func validate(v *validator.Validate, fields []Field, data map[string]any) error {
	input := make(map[string]any, len(fields))
	for _, f := range fields {
		value, ok := data[f.Name]
		if !ok || value == nil {
			value = ""
		}
		input[f.Name] = value
	}

	failures := v.ValidateMap(input, rulesFor(fields))
	if len(failures) == 0 {
		return nil
	}

	verr := &ValidationError{}
	for _, f := range fields {
		failure, ok := failures[f.Name]
		if !ok {
			continue
		}

		var fieldErrs validator.ValidationErrors
		if err, isErr := failure.(error); isErr && errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Tag() == "required" {
			verr.Missing = append(verr.Missing, f.Label)
			continue
		}
		verr.Invalid = append(verr.Invalid, f.Label)
	}

	return verr
}

// clean trims string values and drops empty optional fields. Fields not
// declared on the form are rejected.
func clean(fields []Field, data map[string]any) (map[string]any, error) {
	known := make(map[string]Field, len(fields))
	for _, f := range fields {
		known[f.Name] = f
	}

	out := make(map[string]any, len(data))
	for name, value := range data {
		f, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("campo desconocido: %s", name)
		}

		if s, isString := value.(string); isString {
			s = strings.TrimSpace(s)
			value = s
			if s == "" && !f.Required {
				continue
			}
		}
		if value == nil && !f.Required {
			continue
		}

		out[name] = value
	}

	return out, nil
}

// typed converts validated string input of numeric and boolean fields to
// the JSON types the backend stores.
func typed(fields []Field, data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}

	for _, f := range fields {
		s, ok := out[f.Name].(string)
		if !ok {
			continue
		}

		switch f.Rule {
		case "numeric":
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				out[f.Name] = n
			}
		case "boolean":
			if b, err := strconv.ParseBool(s); err == nil {
				out[f.Name] = b
			}
		}
	}

	return out
}
