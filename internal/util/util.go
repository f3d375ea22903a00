package util

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format the backend accepts.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a value cannot be read as a calendar date.
var ErrInvalidDate = errors.New("invalid date")

// FormatDate renders v as YYYY-MM-DD. It accepts a time.Time, a date string
// or an RFC 3339 timestamp; for timestamps the time part is dropped.
func FormatDate(v any) (string, error) {
	switch val := v.(type) {
	case time.Time:
		return val.Format(DateLayout), nil
	case *time.Time:
		if val == nil {
			return "", nil
		}
		return val.Format(DateLayout), nil
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return "", nil
		}
		date, _, _ := strings.Cut(val, "T")
		if _, err := time.Parse(DateLayout, date); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidDate, val)
		}
		return date, nil
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, v)
	}
}

// Coalesce returns the first non-empty value.
func Coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ParseID reads a positive record id.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be positive", s)
	}
	return id, nil
}
