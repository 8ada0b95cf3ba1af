package hours

import (
	"fmt"

	"github.com/username/business-calendar/pkg/dateutil"
)

// LunchCheck selects how a time of day is matched against the Mittagspause
type LunchCheck string

const (
	// LunchCheckHour treats the whole hour of LunchStart as lunch break, ignoring LunchEnd
	LunchCheckHour LunchCheck = "hour"
	// LunchCheckRange treats [LunchStart, LunchEnd) as lunch break
	LunchCheckRange LunchCheck = "range"
)

// Policy describes opening hours and the lunch break window
type Policy struct {
	OpenTime   string     `json:"openTime"`
	CloseTime  string     `json:"closeTime"`
	LunchStart string     `json:"lunchStart"`
	LunchEnd   string     `json:"lunchEnd"`
	LunchCheck LunchCheck `json:"lunchCheck"`
}

// StandardHours returns the fixed office hours: 09:00-17:00, lunch 12:00-13:00
func StandardHours() Policy {
	return Policy{
		OpenTime:   "09:00",
		CloseTime:  "17:00",
		LunchStart: "12:00",
		LunchEnd:   "13:00",
		LunchCheck: LunchCheckHour,
	}
}

// IsLunchBreak reports whether t falls into the lunch break of the standard hours
func IsLunchBreak(t string) (bool, error) {
	return StandardHours().IsLunchBreak(t)
}

// Validate checks open < lunchStart < lunchEnd < close
func (p Policy) Validate() error {
	open, lunchStart, lunchEnd, closeAt, err := p.clocks()
	if err != nil {
		return err
	}

	if !(open < lunchStart && lunchStart < lunchEnd && lunchEnd < closeAt) {
		return fmt.Errorf("hours must satisfy open < lunch_start < lunch_end < close, got %s < %s < %s < %s",
			p.OpenTime, p.LunchStart, p.LunchEnd, p.CloseTime)
	}

	switch p.LunchCheck {
	case "", LunchCheckHour, LunchCheckRange:
	default:
		return fmt.Errorf("lunch_check must be '%s' or '%s', got '%s'", LunchCheckHour, LunchCheckRange, p.LunchCheck)
	}

	return nil
}

// IsLunchBreak reports whether the HH:MM time t is inside the Mittagspause
func (p Policy) IsLunchBreak(t string) (bool, error) {
	clock, err := dateutil.ParseClock(t)
	if err != nil {
		return false, err
	}
	return p.isLunchBreak(clock)
}

func (p Policy) isLunchBreak(clock dateutil.Clock) (bool, error) {
	lunchStart, err := dateutil.ParseClock(p.LunchStart)
	if err != nil {
		return false, fmt.Errorf("lunch_start: %w", err)
	}

	if p.LunchCheck == LunchCheckRange {
		lunchEnd, err := dateutil.ParseClock(p.LunchEnd)
		if err != nil {
			return false, fmt.Errorf("lunch_end: %w", err)
		}
		return clock >= lunchStart && clock < lunchEnd, nil
	}

	return clock.Hour() == lunchStart.Hour(), nil
}

// IsOpen reports whether the business is open at t: within opening hours and not in lunch break
func (p Policy) IsOpen(t string) (bool, error) {
	clock, err := dateutil.ParseClock(t)
	if err != nil {
		return false, err
	}
	return p.IsOpenAt(clock)
}

// IsOpenAt is IsOpen for an already parsed clock time
func (p Policy) IsOpenAt(clock dateutil.Clock) (bool, error) {
	open, err := dateutil.ParseClock(p.OpenTime)
	if err != nil {
		return false, fmt.Errorf("open_time: %w", err)
	}
	closeAt, err := dateutil.ParseClock(p.CloseTime)
	if err != nil {
		return false, fmt.Errorf("close_time: %w", err)
	}

	if clock < open || clock >= closeAt {
		return false, nil
	}

	lunch, err := p.isLunchBreak(clock)
	if err != nil {
		return false, err
	}
	return !lunch, nil
}

// WorkingMinutes returns minutes of a full business day net of the lunch break.
// Zero if the policy does not parse.
func (p Policy) WorkingMinutes() int {
	open, lunchStart, lunchEnd, closeAt, err := p.clocks()
	if err != nil {
		return 0
	}
	return int(closeAt-open) - int(lunchEnd-lunchStart)
}

// Bounds returns parsed open and close times
func (p Policy) Bounds() (open, closeAt dateutil.Clock, err error) {
	open, _, _, closeAt, err = p.clocks()
	return open, closeAt, err
}

func (p Policy) clocks() (open, lunchStart, lunchEnd, closeAt dateutil.Clock, err error) {
	if open, err = dateutil.ParseClock(p.OpenTime); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("open_time: %w", err)
	}
	if lunchStart, err = dateutil.ParseClock(p.LunchStart); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("lunch_start: %w", err)
	}
	if lunchEnd, err = dateutil.ParseClock(p.LunchEnd); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("lunch_end: %w", err)
	}
	if closeAt, err = dateutil.ParseClock(p.CloseTime); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("close_time: %w", err)
	}
	return open, lunchStart, lunchEnd, closeAt, nil
}
