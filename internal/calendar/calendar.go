package calendar

import (
	"errors"
	"time"
)

var (
	// ErrDayNotFound is returned by calendars that only know some days (override files)
	ErrDayNotFound = errors.New("day not found in calendar")

	// ErrNoBusinessDay is returned when no business day follows within the search bound
	ErrNoBusinessDay = errors.New("no business day found")
)

// DayType represents the type of day
type DayType int

const (
	DayTypeWorkday DayType = iota + 1
	DayTypeWeekend
	DayTypeHoliday
	DayTypeShortened
	DayTypeClosed
)

// String returns the lowercase name used in override files and API output
func (t DayType) String() string {
	switch t {
	case DayTypeWorkday:
		return "workday"
	case DayTypeWeekend:
		return "weekend"
	case DayTypeHoliday:
		return "holiday"
	case DayTypeShortened:
		return "shortened"
	case DayTypeClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// DayInfo represents information about a specific day
type DayInfo struct {
	Date           time.Time
	Type           DayType
	WorkingMinutes int
	IsWorkday      bool
	Holiday        *Holiday // set when Type is DayTypeHoliday or a holiday falls on a weekend
	Note           string
}

// MonthInfo represents calendar information for a month
type MonthInfo struct {
	Year           int
	Month          time.Month
	WorkingMinutes int // Total working minutes in the month
	WorkDays       int
	Weekends       int
	Holidays       int
	Days           []DayInfo
}

// Calendar interface for checking business days
type Calendar interface {
	// IsWorkday checks if the given date is a business day and returns its working minutes
	IsWorkday(date time.Time) (bool, int, error)

	// GetMonthInfo returns calendar info for the entire month
	GetMonthInfo(year int, month time.Month) (*MonthInfo, error)

	// GetDayInfo returns detailed info for a specific day
	GetDayInfo(date time.Time) (*DayInfo, error)
}

// addDay updates month statistics with a single day
func (m *MonthInfo) addDay(day DayInfo) {
	m.Days = append(m.Days, day)

	switch {
	case day.IsWorkday:
		m.WorkDays++
		m.WorkingMinutes += day.WorkingMinutes
	case day.Type == DayTypeWeekend:
		m.Weekends++
	default:
		m.Holidays++
	}
}
