package content

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRecord reports a record that failed validation or parsing.
var ErrInvalidRecord = errors.New("content: invalid record")

// dateLayouts are tried in order when parsing an event date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Event is a calendar event owned by the content repository.
type Event struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title" validate:"required"`
	Date  string `json:"date" yaml:"date" validate:"required,isodate"`
	Time  string `json:"time,omitempty" yaml:"time,omitempty"`
}

// ADDate parses the event date and returns its calendar day at midnight UTC.
// The day is taken as written, without converting between time zones.
func (e Event) ADDate() (time.Time, error) {
	return ParseDate(e.Date)
}

// Label returns the title with the time appended when one is set.
func (e Event) Label() string {
	if e.Time == "" {
		return e.Title
	}
	return e.Title + " (" + e.Time + ")"
}

// ParseDate parses an ISO-8601 date or date-time and returns its calendar day
// at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrInvalidRecord, s)
}

// SameDay reports whether two times fall on the same calendar day, each in
// its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// EventsOn returns the events dated on day, preserving input order.
func EventsOn(events []Event, day time.Time) []Event {
	var out []Event
	for _, e := range events {
		d, err := e.ADDate()
		if err != nil {
			continue
		}
		if SameDay(d, day) {
			out = append(out, e)
		}
	}
	return out
}
