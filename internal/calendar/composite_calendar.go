package calendar

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CompositeCalendar implements Calendar with an override layer
// Primary: FileCalendar (company-specific days)
// Fallback: GermanCalendar (computed public holidays)
type CompositeCalendar struct {
	primary  Calendar
	fallback Calendar
	logger   *zap.Logger
}

// NewCompositeCalendar creates a new CompositeCalendar
func NewCompositeCalendar(primary, fallback Calendar, logger *zap.Logger) *CompositeCalendar {
	return &CompositeCalendar{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// IsWorkday checks if the given date is a working day
func (cc *CompositeCalendar) IsWorkday(date time.Time) (bool, int, error) {
	dayInfo, err := cc.GetDayInfo(date)
	if err != nil {
		return false, 0, err
	}

	return dayInfo.IsWorkday, dayInfo.WorkingMinutes, nil
}

// GetDayInfo returns detailed info for a specific day
func (cc *CompositeCalendar) GetDayInfo(date time.Time) (*DayInfo, error) {
	// Try primary first
	dayInfo, err := cc.primary.GetDayInfo(date)
	if err == nil {
		return cc.annotate(date, dayInfo), nil
	}

	if !errors.Is(err, ErrDayNotFound) {
		cc.logger.Warn("Primary calendar failed, falling back",
			zap.Time("date", date),
			zap.Error(err))
	}

	return cc.fallback.GetDayInfo(date)
}

// GetMonthInfo returns the fallback month with primary days merged in
func (cc *CompositeCalendar) GetMonthInfo(year int, month time.Month) (*MonthInfo, error) {
	base, err := cc.fallback.GetMonthInfo(year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to get month info: %w", err)
	}

	merged := &MonthInfo{
		Year:  year,
		Month: month,
		Days:  make([]DayInfo, 0, len(base.Days)),
	}

	for _, day := range base.Days {
		override, err := cc.primary.GetDayInfo(day.Date)
		switch {
		case err == nil:
			merged.addDay(*cc.annotate(day.Date, override))
		case errors.Is(err, ErrDayNotFound):
			merged.addDay(day)
		default:
			cc.logger.Warn("Primary calendar failed, keeping fallback day",
				zap.Time("date", day.Date),
				zap.Error(err))
			merged.addDay(day)
		}
	}

	return merged, nil
}

// annotate keeps the public holiday of the fallback on an overridden day
func (cc *CompositeCalendar) annotate(date time.Time, override *DayInfo) *DayInfo {
	if override.Holiday != nil {
		return override
	}

	base, err := cc.fallback.GetDayInfo(date)
	if err != nil || base.Holiday == nil {
		return override
	}

	out := *override
	out.Holiday = base.Holiday
	if out.Note == "" {
		out.Note = base.Holiday.LocalName
	}
	return &out
}

// LoadPrimary loads the primary calendar (if FileCalendar)
func (cc *CompositeCalendar) LoadPrimary() error {
	if fc, ok := cc.primary.(*FileCalendar); ok {
		if err := fc.Load(); err != nil {
			return fmt.Errorf("failed to load override calendar: %w", err)
		}
		cc.logger.Info("Override calendar loaded successfully")
	}
	return nil
}
