package calendar

import (
	"sync"
	"time"

	"github.com/username/business-calendar/internal/hours"
	"github.com/username/business-calendar/pkg/dateutil"
)

// GermanCalendar implements Calendar from computed German public holidays.
// It does no I/O; holiday lists are memoized per year.
type GermanCalendar struct {
	jurisdiction Jurisdiction
	policy       hours.Policy
	cache        map[int][]Holiday
	cacheMu      sync.RWMutex
}

// NewGermanCalendar creates a new GermanCalendar instance
func NewGermanCalendar(jurisdiction Jurisdiction, policy hours.Policy) *GermanCalendar {
	return &GermanCalendar{
		jurisdiction: jurisdiction,
		policy:       policy,
		cache:        make(map[int][]Holiday),
	}
}

// Jurisdiction returns the configured state
func (gc *GermanCalendar) Jurisdiction() Jurisdiction {
	return gc.jurisdiction
}

// Policy returns the configured business hours
func (gc *GermanCalendar) Policy() hours.Policy {
	return gc.policy
}

// Holidays returns the holidays of the given year. The result is a copy.
func (gc *GermanCalendar) Holidays(year int) []Holiday {
	gc.cacheMu.RLock()
	cached, ok := gc.cache[year]
	gc.cacheMu.RUnlock()

	if !ok {
		cached = HolidaysFor(year, gc.jurisdiction)

		gc.cacheMu.Lock()
		gc.cache[year] = cached
		gc.cacheMu.Unlock()
	}

	out := make([]Holiday, len(cached))
	copy(out, cached)
	return out
}

// IsHoliday returns the holiday falling on date, if any
func (gc *GermanCalendar) IsHoliday(date time.Time) (*Holiday, bool) {
	key := dateutil.FormatDate(date)

	for _, h := range gc.Holidays(date.Year()) {
		if h.Date == key {
			return &h, true
		}
	}
	return nil, false
}

// IsBusinessDay returns false on weekends and holidays
func (gc *GermanCalendar) IsBusinessDay(date time.Time) bool {
	if dateutil.IsWeekend(date) {
		return false
	}
	_, holiday := gc.IsHoliday(date)
	return !holiday
}

// NextBusinessDay returns the first business day strictly after date, at midnight
func (gc *GermanCalendar) NextBusinessDay(date time.Time) time.Time {
	next := dateutil.AddDays(date, 1)
	for !gc.IsBusinessDay(next) {
		next = dateutil.AddDays(next, 1)
	}
	return next
}

// HolidayOn parses a date string and returns its holiday, or nil if it is none
func (gc *GermanCalendar) HolidayOn(dateStr string) (*Holiday, error) {
	date, err := dateutil.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	h, _ := gc.IsHoliday(date)
	return h, nil
}

// BusinessDayOn parses a date string and classifies it
func (gc *GermanCalendar) BusinessDayOn(dateStr string) (bool, error) {
	date, err := dateutil.ParseDate(dateStr)
	if err != nil {
		return false, err
	}
	return gc.IsBusinessDay(date), nil
}

// IsWorkday checks if the given date is a working day
func (gc *GermanCalendar) IsWorkday(date time.Time) (bool, int, error) {
	dayInfo, err := gc.GetDayInfo(date)
	if err != nil {
		return false, 0, err
	}

	return dayInfo.IsWorkday, dayInfo.WorkingMinutes, nil
}

// GetDayInfo returns detailed info for a specific day
func (gc *GermanCalendar) GetDayInfo(date time.Time) (*DayInfo, error) {
	holiday, _ := gc.IsHoliday(date)
	day := classifyDay(date, holiday, gc.policy.WorkingMinutes())
	return &day, nil
}

// GetMonthInfo returns calendar info for the entire month
func (gc *GermanCalendar) GetMonthInfo(year int, month time.Month) (*MonthInfo, error) {
	return buildMonth(year, month, gc.GetDayInfo)
}

// classifyDay derives the day type from the weekday and an optional holiday
func classifyDay(date time.Time, holiday *Holiday, workingMinutes int) DayInfo {
	day := DayInfo{
		Date:    dateutil.StartOfDay(date),
		Holiday: holiday,
	}

	switch {
	case !dateutil.IsWeekday(date):
		day.Type = DayTypeWeekend
	case holiday != nil:
		day.Type = DayTypeHoliday
	default:
		day.Type = DayTypeWorkday
		day.IsWorkday = true
		day.WorkingMinutes = workingMinutes
	}

	if holiday != nil {
		day.Note = holiday.LocalName
	}
	return day
}

func buildMonth(year int, month time.Month, dayInfo func(time.Time) (*DayInfo, error)) (*MonthInfo, error) {
	daysInMonth := dateutil.DaysInMonth(year, month)

	monthInfo := &MonthInfo{
		Year:  year,
		Month: month,
		Days:  make([]DayInfo, 0, daysInMonth),
	}

	for d := 1; d <= daysInMonth; d++ {
		info, err := dayInfo(time.Date(year, month, d, 0, 0, 0, 0, time.UTC))
		if err != nil {
			return nil, err
		}
		monthInfo.addDay(*info)
	}

	return monthInfo, nil
}

// maxSearchDays bounds NextBusinessDay over arbitrary calendars
const maxSearchDays = 366

// NextBusinessDay finds the first workday after date on any Calendar
func NextBusinessDay(cal Calendar, date time.Time) (time.Time, error) {
	next := dateutil.AddDays(date, 1)
	for i := 0; i < maxSearchDays; i++ {
		isWorkday, _, err := cal.IsWorkday(next)
		if err != nil {
			return time.Time{}, err
		}
		if isWorkday {
			return next, nil
		}
		next = dateutil.AddDays(next, 1)
	}
	return time.Time{}, ErrNoBusinessDay
}
