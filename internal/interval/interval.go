// Package interval implements calendar-day arithmetic over half-open date
// spans.  A stay from start to end occupies the nights start, start+1, ...,
// end-1; a span ending on day D never conflicts with one starting on D.
package interval

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DateLayout is the wire and storage format of calendar days.
const DateLayout = "2006-01-02"

// ErrEmptySpan is returned when a span would not cover at least one night.
var ErrEmptySpan = errors.New("start date must be before end date")

// Span is the half-open range [Start, End) of calendar days.  Both bounds
// are UTC midnights.
type Span struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to its calendar day at UTC midnight.  The wall-clock date
// of t is kept regardless of its location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// New builds a span from two days.  The bounds are truncated to calendar
// days first; ErrEmptySpan is returned unless start < end.
func New(start, end time.Time) (Span, error) {
	s := Span{Start: Day(start), End: Day(end)}
	if !s.Start.Before(s.End) {
		return Span{}, ErrEmptySpan
	}
	return s, nil
}

// Parse builds a span from two YYYY-MM-DD strings.
func Parse(start, end string) (Span, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Span{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Span{}, err
	}
	return New(s, e)
}

// Overlaps reports whether s and o share at least one night:
// s.Start < o.End && o.Start < s.End.
func (s Span) Overlaps(o Span) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Contains reports whether the night of day falls inside the span.
func (s Span) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(s.Start) && d.Before(s.End)
}

// Nights is the number of nights covered by the span.
func (s Span) Nights() int {
	return DaysBetween(s.Start, s.End)
}

// OverlapNights counts the nights shared by s and o, floored at zero.
func (s Span) OverlapNights(o Span) int {
	start := s.Start
	if o.Start.After(start) {
		start = o.Start
	}
	end := s.End
	if o.End.Before(end) {
		end = o.End
	}
	if n := DaysBetween(start, end); n > 0 {
		return n
	}
	return 0
}

// String renders the span as "[start, end)".
func (s Span) String() string {
	return "[" + s.Start.Format(DateLayout) + ", " + s.End.Format(DateLayout) + ")"
}

// DaysBetween returns the signed number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(Day(b).Sub(Day(a)).Hours() / 24))
}

// Percent returns part/whole*100, or 0 when whole is zero.
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
