// Package parsing converts upstream and user-provided values into program types.
package parsing

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// ParseTimestamp parses an upstream timestamp (RFC 3339 or any common layout) into UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// DateSlug formats t for use in directory names, e.g. "[2021-03-04]".
func DateSlug(t time.Time) string {
	if t.IsZero() {
		return "[unknown-date]"
	}
	return "[" + t.Format(time.DateOnly) + "]"
}
