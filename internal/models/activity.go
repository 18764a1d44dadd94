package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wall-clock format activity dates are stored and returned in.
const DateLayout = "2006-01-02T15:04:05"

// acceptedDateLayouts are tried in order when parsing a submitted activity date.
var acceptedDateLayouts = []string{
	DateLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339Nano,
	"2006-01-02",
}

// Activity is a charity event.
type Activity struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Date         string  `json:"date"`
	Location     string  `json:"location"`
	CategoryID   int64   `json:"category_id"`
	CategoryName *string `json:"category_name,omitempty"`
}

// ActivityDetail is the body of GET /api/activities/:id.
type ActivityDetail struct {
	Activity      *Activity      `json:"activity"`
	Registrations []Registration `json:"registrations"`
}

// ParseActivityDate parses a submitted date keeping its wall clock.
// An offset in the input is dropped, not converted.
func ParseActivityDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range acceptedDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// FormatActivityDate renders a stored date in DateLayout.
func FormatActivityDate(t time.Time) string {
	return t.Format(DateLayout)
}
