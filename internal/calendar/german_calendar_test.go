package calendar

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/username/business-calendar/internal/hours"
	"github.com/username/business-calendar/pkg/dateutil"
)

func newHesseCalendar() *GermanCalendar {
	return NewGermanCalendar(DefaultJurisdiction(), hours.StandardHours())
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGermanCalendar_IsHoliday(t *testing.T) {
	cal := newHesseCalendar()

	h, ok := cal.IsHoliday(date(2024, time.December, 25))
	if !ok {
		t.Fatalf("IsHoliday(2024-12-25) = none, want Christmas Day")
	}
	if h.LocalName != "1. Weihnachtstag" || h.InternationalName != "Christmas Day" || h.Scope != ScopeNational {
		t.Errorf("IsHoliday(2024-12-25) = %+v", h)
	}

	if h, ok := cal.IsHoliday(date(2024, time.December, 24)); ok {
		t.Errorf("IsHoliday(2024-12-24) = %+v, want none", h)
	}
}

func TestGermanCalendar_IsHoliday_UsesLocalCalendarDate(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	cal := newHesseCalendar()

	// 00:30 in Berlin is still Dec 24 in UTC
	local := time.Date(2024, time.December, 25, 0, 30, 0, 0, berlin)
	if _, ok := cal.IsHoliday(local); !ok {
		t.Errorf("IsHoliday(%v) = none, want Christmas Day", local)
	}
}

func TestGermanCalendar_IsBusinessDay(t *testing.T) {
	cal := newHesseCalendar()

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"Labour Day on Wednesday", date(2024, time.May, 1), false},
		{"Regular Thursday", date(2024, time.May, 2), true},
		{"Corpus Christi in Hesse", date(2024, time.May, 30), false},
		{"Saturday", date(2024, time.May, 4), false},
		{"Sunday", date(2024, time.May, 5), false},
		{"Holiday on Saturday", date(2021, time.May, 1), false},
		{"Christmas Eve is not a public holiday", date(2024, time.December, 24), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.IsBusinessDay(tt.date); got != tt.want {
				t.Errorf("IsBusinessDay(%v) = %v, want %v",
					tt.date.Format("2006-01-02 Mon"), got, tt.want)
			}
		})
	}
}

func TestGermanCalendar_IsBusinessDay_WeekendsNeverBusinessDays(t *testing.T) {
	cal := newHesseCalendar()

	for d := date(2024, time.January, 1); d.Year() < 2026; d = dateutil.AddDays(d, 1) {
		if dateutil.IsWeekend(d) && cal.IsBusinessDay(d) {
			t.Errorf("IsBusinessDay(%v) = true on a weekend", d.Format("2006-01-02 Mon"))
		}
	}
}

func TestGermanCalendar_CorpusChristiDependsOnState(t *testing.T) {
	berlin := NewGermanCalendar(Jurisdiction{State: "BE"}, hours.StandardHours())

	if !berlin.IsBusinessDay(date(2024, time.May, 30)) {
		t.Errorf("Corpus Christi should be a business day in Berlin")
	}
}

func TestGermanCalendar_NextBusinessDay(t *testing.T) {
	cal := newHesseCalendar()

	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{"Friday to Monday", date(2024, time.June, 7), date(2024, time.June, 10)},
		{"Friday before Whit Monday", date(2024, time.May, 17), date(2024, time.May, 21)},
		{"Thursday before Easter", date(2024, time.March, 28), date(2024, time.April, 2)},
		{"Christmas Eve", date(2024, time.December, 24), date(2024, time.December, 27)},
		{"Across year end", date(2024, time.December, 31), date(2025, time.January, 2)},
		{"Midweek", date(2024, time.May, 7), date(2024, time.May, 8)},
		{"Time of day is dropped", time.Date(2024, time.June, 7, 16, 45, 0, 0, time.UTC), date(2024, time.June, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cal.NextBusinessDay(tt.from)

			if !got.Equal(tt.want) {
				t.Errorf("NextBusinessDay(%v) = %v, want %v",
					tt.from.Format("2006-01-02 Mon"),
					got.Format("2006-01-02 Mon"),
					tt.want.Format("2006-01-02 Mon"))
			}
		})
	}
}

func TestGermanCalendar_NextBusinessDay_Properties(t *testing.T) {
	cal := newHesseCalendar()

	for d := date(2023, time.January, 1); d.Year() < 2026; d = dateutil.AddDays(d, 1) {
		next := cal.NextBusinessDay(d)

		if !next.After(d) {
			t.Fatalf("NextBusinessDay(%v) = %v is not after input", d, next)
		}
		if !cal.IsBusinessDay(next) {
			t.Fatalf("NextBusinessDay(%v) = %v is not a business day", d, next)
		}
		for between := dateutil.AddDays(d, 1); between.Before(next); between = dateutil.AddDays(between, 1) {
			if cal.IsBusinessDay(between) {
				t.Fatalf("NextBusinessDay(%v) = %v skipped business day %v", d, next, between)
			}
		}
	}
}

func TestGermanCalendar_StringInputs(t *testing.T) {
	cal := newHesseCalendar()

	h, err := cal.HolidayOn("2024-12-25")
	if err != nil || h == nil || h.InternationalName != "Christmas Day" {
		t.Errorf("HolidayOn(2024-12-25) = %+v, %v", h, err)
	}

	h, err = cal.HolidayOn("2024-12-27")
	if err != nil || h != nil {
		t.Errorf("HolidayOn(2024-12-27) = %+v, %v, want nil, nil", h, err)
	}

	ok, err := cal.BusinessDayOn("2024-05-01")
	if err != nil || ok {
		t.Errorf("BusinessDayOn(2024-05-01) = %v, %v, want false, nil", ok, err)
	}

	for _, input := range []string{"2024-13-01", "yesterday", ""} {
		if _, err := cal.HolidayOn(input); !errors.Is(err, dateutil.ErrInvalidDateFormat) {
			t.Errorf("HolidayOn(%q) error = %v, want ErrInvalidDateFormat", input, err)
		}
		if _, err := cal.BusinessDayOn(input); !errors.Is(err, dateutil.ErrInvalidDateFormat) {
			t.Errorf("BusinessDayOn(%q) error = %v, want ErrInvalidDateFormat", input, err)
		}
	}
}

func TestGermanCalendar_GetMonthInfo(t *testing.T) {
	cal := newHesseCalendar()

	monthInfo, err := cal.GetMonthInfo(2024, time.May)
	if err != nil {
		t.Fatalf("GetMonthInfo() error = %v", err)
	}

	if len(monthInfo.Days) != 31 {
		t.Errorf("Days count = %d, want 31", len(monthInfo.Days))
	}
	if monthInfo.Weekends != 8 {
		t.Errorf("Weekends = %d, want 8", monthInfo.Weekends)
	}
	if monthInfo.Holidays != 4 {
		t.Errorf("Holidays = %d, want 4", monthInfo.Holidays)
	}
	if monthInfo.WorkDays != 19 {
		t.Errorf("WorkDays = %d, want 19", monthInfo.WorkDays)
	}
	if monthInfo.WorkingMinutes != 19*420 {
		t.Errorf("WorkingMinutes = %d, want %d", monthInfo.WorkingMinutes, 19*420)
	}

	may1 := monthInfo.Days[0]
	if may1.Type != DayTypeHoliday || may1.Holiday == nil || may1.Note != "Tag der Arbeit" {
		t.Errorf("May 1 = %+v, want holiday Tag der Arbeit", may1)
	}
}

func TestGermanCalendar_IsWorkday(t *testing.T) {
	cal := newHesseCalendar()

	ok, minutes, err := cal.IsWorkday(date(2024, time.May, 2))
	if err != nil || !ok || minutes != 420 {
		t.Errorf("IsWorkday(2024-05-02) = %v, %d, %v, want true, 420, nil", ok, minutes, err)
	}

	ok, minutes, err = cal.IsWorkday(date(2024, time.May, 1))
	if err != nil || ok || minutes != 0 {
		t.Errorf("IsWorkday(2024-05-01) = %v, %d, %v, want false, 0, nil", ok, minutes, err)
	}
}

func TestGermanCalendar_ConcurrentUse(t *testing.T) {
	cal := newHesseCalendar()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for y := 2000; y < 2050; y++ {
				cal.IsBusinessDay(date(y, time.May, 1+offset%28))
			}
		}(i)
	}
	wg.Wait()

	if len(cal.Holidays(2024)) != 10 {
		t.Errorf("Holidays(2024) after concurrent use = %d, want 10", len(cal.Holidays(2024)))
	}
}

type closedCalendar struct{}

func (closedCalendar) IsWorkday(time.Time) (bool, int, error) { return false, 0, nil }
func (closedCalendar) GetMonthInfo(int, time.Month) (*MonthInfo, error) {
	return nil, ErrDayNotFound
}
func (closedCalendar) GetDayInfo(time.Time) (*DayInfo, error) { return nil, ErrDayNotFound }

func TestNextBusinessDay_Bounded(t *testing.T) {
	_, err := NextBusinessDay(closedCalendar{}, date(2024, time.January, 1))
	if !errors.Is(err, ErrNoBusinessDay) {
		t.Errorf("NextBusinessDay(closed) error = %v, want ErrNoBusinessDay", err)
	}
}

func TestNextBusinessDay_MatchesGermanCalendar(t *testing.T) {
	cal := newHesseCalendar()

	from := date(2024, time.December, 24)
	got, err := NextBusinessDay(cal, from)
	if err != nil {
		t.Fatalf("NextBusinessDay() error = %v", err)
	}
	if !got.Equal(cal.NextBusinessDay(from)) {
		t.Errorf("NextBusinessDay(cal, %v) = %v, want %v", from, got, cal.NextBusinessDay(from))
	}
}
