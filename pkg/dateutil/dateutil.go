package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar date key (YYYY-MM-DD)
const DateLayout = "2006-01-02"

var (
	// ErrInvalidDateFormat is returned when a string does not parse to a calendar date
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrInvalidTimeFormat is returned when a string is not a HH:MM time of day
	ErrInvalidTimeFormat = errors.New("invalid time format")
)

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// AddDays moves date by n calendar days, keeping midnight in the date's location
func AddDays(date time.Time, n int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day()+n, 0, 0, 0, 0, date.Location())
}

// DaysInMonth returns the number of days of the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(date time.Time) bool {
	weekday := date.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// FormatDate formats date as YYYY-MM-DD using the date's own calendar components
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// ParseDate parses date string in various formats.
// Accepted: YYYY-MM-DD, DD.MM.YYYY and RFC3339 timestamps (time part is dropped).
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)

	formats := []string{
		DateLayout,
		"02.01.2006",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return StartOfDay(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, dateStr)
}

// Clock is a time of day in minutes since midnight
type Clock int

// ParseClock parses a HH:MM time of day (00:00 - 23:59)
func ParseClock(s string) (Clock, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) != 5 || trimmed[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if trimmed[i] < '0' || trimmed[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
		}
	}

	h := int(trimmed[0]-'0')*10 + int(trimmed[1]-'0')
	m := int(trimmed[3]-'0')*10 + int(trimmed[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return Clock(h*60 + m), nil
}

// Hour returns the hour component
func (c Clock) Hour() int {
	return int(c) / 60
}

// Minute returns the minute component
func (c Clock) Minute() int {
	return int(c) % 60
}

// String formats the clock as HH:MM
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On returns the instant of this clock time on the given date
func (c Clock) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, date.Location())
}
