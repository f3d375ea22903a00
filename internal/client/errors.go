package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// DefaultErrorMessage is shown when neither the backend nor the caller
// provides anything better.
const DefaultErrorMessage = "Error en la solicitud"

// APIError is the single error surfaced for a failed API call, whether the
// network failed or the backend answered with a non-2xx status.
type APIError struct {
	// StatusCode is zero for transport failures.
	StatusCode int
	Message    string
	Body       []byte
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Unauthorized returns true for 401 and 403 responses.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Detail renders the error with the underlying cause, for logs.
func (e *APIError) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (status %d): %v", e.Message, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func newAPIError(status int, body []byte, keys []string, fallback string) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Message:    fallback,
		Body:       body,
		Err:        fmt.Errorf("backend returned HTTP %d", status),
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	for _, key := range keys {
		if msg := messageFrom(payload[key]); msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}

	return apiErr
}

// messageFrom flattens the shapes the backend uses for messages: a string,
// a list of strings, or an object of field -> messages.
func messageFrom(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := messageFrom(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := messageFrom(val[k]); s != "" {
				lines = append(lines, k+": "+s)
			}
		}
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}
