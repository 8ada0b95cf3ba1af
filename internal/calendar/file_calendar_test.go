package calendar

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/username/business-calendar/internal/hours"
)

const overridesFixture = `# Company closures 2024
2024-12-24 closed 0 Heiligabend
2024-12-27 shortened 240 Brückentag
2024-05-01 workday 420 Messe

2024-12-31 closed 0 Silvester
not-a-date closed 0 broken
2024-06-03 vacation 0 unknown type
2024-06-04 workday x bad minutes
2024-06-05 workday
`

func newFixtureFileCalendar(t *testing.T) *FileCalendar {
	t.Helper()

	logger, _ := zap.NewDevelopment()
	fc := NewFileCalendar("", logger)
	if err := fc.LoadFrom(strings.NewReader(overridesFixture)); err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	return fc
}

func TestFileCalendar_LoadFrom(t *testing.T) {
	fc := newFixtureFileCalendar(t)

	if fc.Len() != 4 {
		t.Errorf("Len() = %d, want 4 (invalid lines skipped)", fc.Len())
	}

	dec24, err := fc.GetDayInfo(date(2024, time.December, 24))
	if err != nil {
		t.Fatalf("GetDayInfo(2024-12-24) error = %v", err)
	}
	if dec24.Type != DayTypeClosed || dec24.IsWorkday || dec24.Note != "Heiligabend" {
		t.Errorf("2024-12-24 = %+v, want closed Heiligabend", dec24)
	}

	dec27, err := fc.GetDayInfo(date(2024, time.December, 27))
	if err != nil {
		t.Fatalf("GetDayInfo(2024-12-27) error = %v", err)
	}
	if dec27.Type != DayTypeShortened || !dec27.IsWorkday || dec27.WorkingMinutes != 240 {
		t.Errorf("2024-12-27 = %+v, want shortened 240 minutes", dec27)
	}
}

func TestFileCalendar_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.txt")
	if err := os.WriteFile(path, []byte(overridesFixture), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	fc := NewFileCalendar(path, zap.NewNop())
	if err := fc.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if fc.Len() != 4 {
		t.Errorf("Len() = %d, want 4", fc.Len())
	}

	missing := NewFileCalendar(filepath.Join(t.TempDir(), "missing.txt"), zap.NewNop())
	if err := missing.Load(); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestFileCalendar_NotFound(t *testing.T) {
	fc := newFixtureFileCalendar(t)

	if _, err := fc.GetDayInfo(date(2024, time.July, 1)); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("GetDayInfo(unlisted) error = %v, want ErrDayNotFound", err)
	}
	if _, _, err := fc.IsWorkday(date(2024, time.July, 1)); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("IsWorkday(unlisted) error = %v, want ErrDayNotFound", err)
	}
	if _, err := fc.GetMonthInfo(2024, time.July); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("GetMonthInfo(empty month) error = %v, want ErrDayNotFound", err)
	}

	monthInfo, err := fc.GetMonthInfo(2024, time.December)
	if err != nil {
		t.Fatalf("GetMonthInfo(December) error = %v", err)
	}
	if len(monthInfo.Days) != 3 {
		t.Errorf("December override days = %d, want 3", len(monthInfo.Days))
	}
}

func newFixtureComposite(t *testing.T) *CompositeCalendar {
	t.Helper()

	logger, _ := zap.NewDevelopment()
	base := NewGermanCalendar(DefaultJurisdiction(), hours.StandardHours())
	return NewCompositeCalendar(newFixtureFileCalendar(t), base, logger)
}

func TestCompositeCalendar_GetDayInfo(t *testing.T) {
	cc := newFixtureComposite(t)

	tests := []struct {
		name        string
		date        time.Time
		wantType    DayType
		wantWorkday bool
		wantHoliday bool
	}{
		{"Override closes Christmas Eve", date(2024, time.December, 24), DayTypeClosed, false, false},
		{"Override opens on Labour Day", date(2024, time.May, 1), DayTypeWorkday, true, true},
		{"Public holiday from fallback", date(2024, time.December, 25), DayTypeHoliday, false, true},
		{"Regular day from fallback", date(2024, time.July, 1), DayTypeWorkday, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := cc.GetDayInfo(tt.date)
			if err != nil {
				t.Fatalf("GetDayInfo() error = %v", err)
			}
			if day.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", day.Type, tt.wantType)
			}
			if day.IsWorkday != tt.wantWorkday {
				t.Errorf("IsWorkday = %v, want %v", day.IsWorkday, tt.wantWorkday)
			}
			if (day.Holiday != nil) != tt.wantHoliday {
				t.Errorf("Holiday = %+v, want present=%v", day.Holiday, tt.wantHoliday)
			}
		})
	}
}

func TestCompositeCalendar_GetMonthInfo(t *testing.T) {
	cc := newFixtureComposite(t)

	monthInfo, err := cc.GetMonthInfo(2024, time.December)
	if err != nil {
		t.Fatalf("GetMonthInfo() error = %v", err)
	}

	// 9 weekend days, Dec 25/26 holidays, Dec 24/31 closed, Dec 27 shortened
	if monthInfo.Weekends != 9 {
		t.Errorf("Weekends = %d, want 9", monthInfo.Weekends)
	}
	if monthInfo.Holidays != 4 {
		t.Errorf("Holidays = %d, want 4", monthInfo.Holidays)
	}
	if monthInfo.WorkDays != 18 {
		t.Errorf("WorkDays = %d, want 18", monthInfo.WorkDays)
	}
	if want := 17*420 + 240; monthInfo.WorkingMinutes != want {
		t.Errorf("WorkingMinutes = %d, want %d", monthInfo.WorkingMinutes, want)
	}
}

func TestCompositeCalendar_NextBusinessDay(t *testing.T) {
	cc := newFixtureComposite(t)

	got, err := NextBusinessDay(cc, date(2024, time.December, 23))
	if err != nil {
		t.Fatalf("NextBusinessDay() error = %v", err)
	}
	if want := date(2024, time.December, 27); !got.Equal(want) {
		t.Errorf("NextBusinessDay(2024-12-23) = %v, want %v", got, want)
	}

	got, err = NextBusinessDay(cc, date(2024, time.December, 27))
	if err != nil {
		t.Fatalf("NextBusinessDay() error = %v", err)
	}
	if want := date(2024, time.December, 30); !got.Equal(want) {
		t.Errorf("NextBusinessDay(2024-12-27) = %v, want %v", got, want)
	}
}

func TestCompositeCalendar_LoadPrimary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.txt")
	if err := os.WriteFile(path, []byte("2024-12-24 closed 0 Heiligabend\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cc := NewCompositeCalendar(NewFileCalendar(path, zap.NewNop()),
		NewGermanCalendar(DefaultJurisdiction(), hours.StandardHours()), zap.NewNop())
	if err := cc.LoadPrimary(); err != nil {
		t.Fatalf("LoadPrimary() error = %v", err)
	}

	ok, _, err := cc.IsWorkday(date(2024, time.December, 24))
	if err != nil || ok {
		t.Errorf("IsWorkday(2024-12-24) = %v, %v, want false, nil", ok, err)
	}
}
