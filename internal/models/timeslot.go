package models

import (
	"fmt"
	"time"
)

// ClockDate is the wire layout for calendar dates.
const ClockDate = "2006-01-02"

// TimeSlot is a half-open [start, end) interval of minutes since midnight on
// a single calendar date.
type TimeSlot struct {
	Start int
	End   int
}

// ParseClock converts an `HH:MM` 24-hour string into minutes since midnight.
func ParseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NewTimeSlot builds a TimeSlot from `HH:MM` strings. It does not require
// start < end; callers validate ordering so they can report it distinctly.
func NewTimeSlot(start, end string) (TimeSlot, error) {
	s, err := ParseClock(start)
	if err != nil {
		return TimeSlot{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeSlot{}, err
	}
	return TimeSlot{Start: s, End: e}, nil
}

// Overlaps reports whether two half-open intervals on the same date share at
// least one instant: a.Start < b.End && b.Start < a.End. Touching endpoints
// do not overlap.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.Start < other.End && other.Start < s.End
}

// ParseDate parses a `YYYY-MM-DD` calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(ClockDate, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// FormatClock renders minutes since midnight back to `HH:MM`.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
