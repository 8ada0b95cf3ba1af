package slots

import (
	"fmt"
	"time"

	"github.com/username/business-calendar/internal/hours"
	"github.com/username/business-calendar/pkg/dateutil"
)

const (
	ReasonLunchBreak = "lunch_break"
)

// Slot is one bookable appointment start on a given day
type Slot struct {
	Start           string `json:"start"`
	DurationMinutes int    `json:"durationMinutes"`
	Available       bool   `json:"available"`
	Reason          string `json:"reason,omitempty"`
}

// Calendar decides whether a date is a business day and how many minutes it has
type Calendar interface {
	IsWorkday(date time.Time) (bool, int, error)
}

// Generator offers appointment slots for business days
type Generator struct {
	calendar         Calendar
	policy           hours.Policy
	stepMinutes      int
	minNoticeMinutes int
	location         *time.Location
	now              func() time.Time
}

// NewGenerator creates a slot generator with a fixed slot length
func NewGenerator(cal Calendar, policy hours.Policy, stepMinutes, minNoticeMinutes int) (*Generator, error) {
	if stepMinutes <= 0 {
		return nil, fmt.Errorf("slot length must be positive, got %d", stepMinutes)
	}
	if minNoticeMinutes < 0 {
		return nil, fmt.Errorf("minimum notice must not be negative, got %d", minNoticeMinutes)
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hours: %w", err)
	}

	return &Generator{
		calendar:         cal,
		policy:           policy,
		stepMinutes:      stepMinutes,
		minNoticeMinutes: minNoticeMinutes,
		location:         time.Local,
		now:              time.Now,
	}, nil
}

// SetLocation sets the zone the business operates in. Dates passed to Offer are
// read as calendar days in this zone.
func (g *Generator) SetLocation(loc *time.Location) {
	if loc != nil {
		g.location = loc
	}
}

// SetClock replaces the source of the current time
func (g *Generator) SetClock(now func() time.Time) {
	if now != nil {
		g.now = now
	}
}

// Offer returns the slots of a day.
// Past days and non-business days have no slots. Lunch break slots are kept but
// marked unavailable. Slots starting before now plus the minimum notice are dropped.
func (g *Generator) Offer(date time.Time) ([]Slot, error) {
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, g.location)
	now := g.now().In(g.location)
	if date.Before(dateutil.StartOfDay(now)) {
		return []Slot{}, nil
	}

	isWorkday, workingMinutes, err := g.calendar.IsWorkday(date)
	if err != nil {
		return nil, fmt.Errorf("failed to classify %s: %w", dateutil.FormatDate(date), err)
	}
	if !isWorkday {
		return []Slot{}, nil
	}

	open, closeAt, err := g.policy.Bounds()
	if err != nil {
		return nil, err
	}

	// Shortened days close early, counted in wall-clock minutes from opening
	if workingMinutes > 0 && workingMinutes < g.policy.WorkingMinutes() {
		if shortened := open + dateutil.Clock(workingMinutes); shortened < closeAt {
			closeAt = shortened
		}
	}

	earliest := now.Add(time.Duration(g.minNoticeMinutes) * time.Minute)

	result := make([]Slot, 0)
	for start := open; start+dateutil.Clock(g.stepMinutes) <= closeAt; start += dateutil.Clock(g.stepMinutes) {
		if start.On(date).Before(earliest) {
			continue
		}

		slot := Slot{
			Start:           start.String(),
			DurationMinutes: g.stepMinutes,
			Available:       true,
		}

		lunch, err := g.policy.IsLunchBreak(start.String())
		if err != nil {
			return nil, err
		}
		if lunch {
			slot.Available = false
			slot.Reason = ReasonLunchBreak
		}

		result = append(result, slot)
	}

	return result, nil
}
