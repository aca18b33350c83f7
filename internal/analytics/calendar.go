package analytics

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

var dateLayouts = []string{
	DateLayout,
	"02.01.2006",
	"02/01/2006",
}

// Civil returns midnight UTC of t's calendar day as seen in t's own location.
func Civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey converts a time to its calendar day key (YYYY-MM-DD).
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// SameDay compares the calendar days of a and b, each in its own location.
func SameDay(a, b time.Time) bool {
	return DateKey(a) == DateKey(b)
}

// StartOfWeek returns the Monday of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	d := Civil(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return StartOfMonth(t).AddDate(0, 1, -1).Day()
}

// DaysBetween returns the number of calendar days from a to b, negative when b
// is before a.
func DaysBetween(a, b time.Time) int {
	return int((Civil(b).Unix() - Civil(a).Unix()) / secondsPerDay)
}

// ParseDate parses a calendar date in loc. It accepts YYYY-MM-DD, DD.MM.YYYY and
// DD/MM/YYYY.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	var parseErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		parseErr = err
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD or DD.MM.YYYY: %v", s, parseErr)
}
