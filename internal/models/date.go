package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/melitton/internal/common"
)

// DateLayout is the ISO calendar date format used for every date field.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO date. A full RFC 3339 timestamp is accepted as
// well and truncated to the calendar date it was written with, since
// Postgres drivers and browsers may render dates as midnight timestamps.
// Anything else, including a date followed by stray text, is rejected.
func ParseDate(s string) (time.Time, error) {
	if len(s) == len(DateLayout) {
		if t, err := time.Parse(DateLayout, s); err == nil {
			return t, nil
		}
	} else if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: bad date %q", common.ErrValidation, s)
}

// FormatDate renders t as an ISO date in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays returns the ISO date n calendar days after t.
func AddDays(t time.Time, n int) string {
	return FormatDate(t.AddDate(0, 0, n))
}

// NormalizeDate rewrites any accepted date form to YYYY-MM-DD. Invalid input
// is returned unchanged so validation can report it.
func NormalizeDate(s string) string {
	t, err := ParseDate(s)
	if err != nil {
		return s
	}
	return FormatDate(t)
}
