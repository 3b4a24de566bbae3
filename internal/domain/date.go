package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateLayout is the canonical calendar form of Review Date cells
const DateLayout = "2006-01-02"

// CivilDate truncates t to a calendar date in UTC so that dates compare
// independently of clock time and zone.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate leniently parses a Review Date cell into a calendar date
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return CivilDate(t), nil
}

// FormatDate renders a calendar date in canonical form
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeDate returns the canonical form of s, or "" when s does not parse
func NormalizeDate(s string) string {
	t, err := ParseDate(s)
	if err != nil {
		return ""
	}
	return FormatDate(t)
}

// DueLabel returns a short human label for a review date relative to today
func DueLabel(date, today time.Time) string {
	d := CivilDate(date)
	t := CivilDate(today)

	switch {
	case d.Equal(t):
		return "today"
	case d.Equal(t.AddDate(0, 0, -1)):
		return "yesterday"
	}

	return d.Format("2 Jan 2006")
}
