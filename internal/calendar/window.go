// Package calendar provides the month window used to select which expenses
// are fetched and summarized.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the layout of expense dates.
const DateLayout = "2006-01-02"

// Direction selects how a window moves.
type Direction int

const (
	None Direction = iota
	Previous
	Next
)

// ParseDirection maps "prev"/"previous"/"next" to a Direction.
// Anything else is None.
func ParseDirection(s string) Direction {
	switch s {
	case "prev", "previous":
		return Previous
	case "next":
		return Next
	default:
		return None
	}
}

// Window is one calendar month.
//
// A Window carries no day-of-month, so navigating back and forth any number
// of times always lands on the same months.
type Window struct {
	Year  int
	Month time.Month
}

// Of returns the window containing t.
func Of(t time.Time) Window {
	return Window{Year: t.Year(), Month: t.Month()}
}

// Current returns the window containing now.
func Current(now time.Time) Window {
	return Of(now)
}

// Parse reads a window in YYYY-MM form.
func Parse(s string) (Window, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Window{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return Of(t), nil
}

// IsZero reports whether w is the zero window.
func (w Window) IsZero() bool {
	return w.Year == 0 && w.Month == 0
}

// Navigate returns the window one month before or after w.
// None returns w unchanged.
func (w Window) Navigate(d Direction) Window {
	switch d {
	case Previous:
		return w.Add(-1)
	case Next:
		return w.Add(1)
	default:
		return w
	}
}

// Add shifts the window by n months. time.Date normalizes month overflow,
// which handles the December/January rollover in both directions.
func (w Window) Add(n int) Window {
	return Of(time.Date(w.Year, w.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

// DaysIn returns the number of days in the month.
func (w Window) DaysIn() int {
	return daysInMonth(w.Year, w.Month)
}

// Bounds returns the inclusive [first 00:00:00, last 23:59:59] range of the
// month in loc. A nil loc means UTC.
func (w Window) Bounds(loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start = time.Date(w.Year, w.Month, 1, 0, 0, 0, 0, loc)
	end = time.Date(w.Year, w.Month, w.DaysIn(), 23, 59, 59, 0, loc)
	return start, end
}

// ISOBounds returns Bounds in UTC formatted as RFC 3339 timestamps.
func (w Window) ISOBounds() (start, end string) {
	s, e := w.Bounds(time.UTC)
	return s.Format(time.RFC3339), e.Format(time.RFC3339)
}

// DateRange returns the first and last dates of the month in DateLayout.
// Expense dates are compared against this range.
func (w Window) DateRange() (from, to string) {
	s, e := w.Bounds(time.UTC)
	return s.Format(DateLayout), e.Format(DateLayout)
}

// Contains reports whether date (DateLayout) falls inside the window.
func (w Window) Contains(date string) bool {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	return Of(t) == w
}

// String formats the window as YYYY-MM.
func (w Window) String() string {
	return fmt.Sprintf("%04d-%02d", w.Year, int(w.Month))
}

// Label formats the window for display, e.g. "February 2024".
func (w Window) Label() string {
	return fmt.Sprintf("%s %d", w.Month, w.Year)
}

// MarshalText encodes the window as YYYY-MM, or "" for the zero window.
func (w Window) MarshalText() ([]byte, error) {
	if w.IsZero() {
		return []byte{}, nil
	}
	return []byte(w.String()), nil
}

// UnmarshalText decodes a YYYY-MM window. An empty string is the zero window.
func (w *Window) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*w = Window{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// ExpenseDate picks the date for a new expense recorded while viewing w:
// today's day-of-month, clamped to the last valid day of w.
func ExpenseDate(w Window, today time.Time) string {
	day := today.Day()
	if n := w.DaysIn(); day > n {
		day = n
	}
	return time.Date(w.Year, w.Month, day, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
