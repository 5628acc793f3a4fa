package services

import (
	"time"

	"github.com/sjoshi/otp/pkg/domain/entities"
)

// Calendar applies business-calendar rules to availability dates. All
// emitted promise dates are civil dates at midnight in the clock's
// location.
//
// The transform is split in two so that re-touching an already final
// date can never move it again: Apply consumes a raw availability time
// exactly once (lead-time buffer, then Adjust), while Adjust (cutoff
// rollover, midnight truncation, weekend roll) is arithmetically
// idempotent — midnight is never past a cutoff and a weekday never
// rolls.
type Calendar struct {
	rules entities.BusinessRules
	now   func() time.Time
}

// NewCalendar creates a calendar over the given rules using wall-clock time
func NewCalendar(rules entities.BusinessRules) *Calendar {
	return NewCalendarWithClock(rules, time.Now)
}

// NewCalendarWithClock creates a calendar with an injected clock
func NewCalendarWithClock(rules entities.BusinessRules, now func() time.Time) *Calendar {
	return &Calendar{rules: rules, now: now}
}

// Today returns the current civil date at midnight
func (c *Calendar) Today() time.Time {
	return midnight(c.now())
}

// NextBusinessDay returns the first business day on which on-hand stock
// picked now can ship: tomorrow, one day later when the current time is
// past the cutoff, rolled off weekends.
func (c *Calendar) NextBusinessDay() time.Time {
	now := c.now()
	d := now.AddDate(0, 0, 1)
	if c.pastCutoff(now) {
		d = d.AddDate(0, 0, 1)
	}
	return c.rollWeekend(midnight(d))
}

// Apply converts a raw availability time into a final promise date. It
// must be called exactly once per availability date; re-touches go
// through Adjust.
func (c *Calendar) Apply(avail time.Time) time.Time {
	return c.Adjust(avail.AddDate(0, 0, c.rules.LeadTimeBufferDays))
}

// Adjust normalizes a date against the cutoff and weekend rules.
// Adjust(Adjust(d)) == Adjust(d) for every d.
func (c *Calendar) Adjust(d time.Time) time.Time {
	if c.pastCutoff(d) {
		d = d.AddDate(0, 0, 1)
	}
	return c.rollWeekend(midnight(d))
}

func (c *Calendar) pastCutoff(t time.Time) bool {
	return t.Hour()*60+t.Minute() > c.rules.Cutoff.MinutesOfDay()
}

func (c *Calendar) rollWeekend(d time.Time) time.Time {
	if !c.rules.SkipWeekends {
		return d
	}
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
