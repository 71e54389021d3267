package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a closed enumeration of the seven lowercase English day names
// used in recurring booking requests.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var weekdayNames = map[string]Weekday{
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"saturday":  Saturday,
	"sunday":    Sunday,
}

// ParseWeekday normalises a weekday token. Unknown tokens are rejected
// before any date iteration begins.
func ParseWeekday(value string) (Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", fmt.Errorf("invalid weekday %q", value)
	}
	return day, nil
}

// ParseWeekdays normalises a list of tokens into a set.
func ParseWeekdays(values []string) (map[Weekday]struct{}, error) {
	set := make(map[Weekday]struct{}, len(values))
	for _, v := range values {
		day, err := ParseWeekday(v)
		if err != nil {
			return nil, err
		}
		set[day] = struct{}{}
	}
	return set, nil
}

// WeekdayOf maps a calendar date to its Weekday.
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}
