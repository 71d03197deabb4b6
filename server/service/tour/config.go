package tour

import (
	"fmt"
	"time"

	"github.com/hrygo/tourdesk/server/internal/errors"
	"github.com/hrygo/tourdesk/server/timezone"
)

// Config is the process-wide scheduling policy. It is built once at startup
// and passed by value; nothing in this package mutates it.
type Config struct {
	VisitDuration time.Duration
	TravelBuffer  time.Duration
	WorkStartHour int
	WorkEndHour   int
	WorkingDays   []time.Weekday
	Location      *time.Location
}

// DefaultConfig returns the stock policy in the given zone.
func DefaultConfig(loc *time.Location) Config {
	if loc == nil {
		loc = timezone.MustParseTimezone(timezone.DefaultTimezone)
	}
	return Config{
		VisitDuration: DefaultVisitDuration,
		TravelBuffer:  DefaultTravelBuffer,
		WorkStartHour: DefaultWorkStartHour,
		WorkEndHour:   DefaultWorkEndHour,
		WorkingDays:   append([]time.Weekday(nil), DefaultWorkingDays...),
		Location:      loc,
	}
}

// Validate rejects a policy under which no slot could ever be admissible.
func (c Config) Validate() error {
	if c.Location == nil {
		return errors.InvalidArgument("time zone is required")
	}
	if c.VisitDuration <= 0 {
		return errors.InvalidArgument("visit duration must be positive")
	}
	if c.TravelBuffer < 0 {
		return errors.InvalidArgument("travel buffer must not be negative")
	}
	if c.WorkStartHour < 0 || c.WorkEndHour > 24 || c.WorkStartHour >= c.WorkEndHour {
		return errors.InvalidArgument(fmt.Sprintf("invalid working hours %d-%d", c.WorkStartHour, c.WorkEndHour))
	}
	if len(c.WorkingDays) == 0 {
		return errors.InvalidArgument("at least one working day is required")
	}

	workday := time.Duration(c.WorkEndHour-c.WorkStartHour) * time.Hour
	needed := c.VisitDuration + 2*c.TravelBuffer
	if workday <= needed {
		return errors.InvalidArgument(fmt.Sprintf(
			"working hours %d:00-%d:00 cannot fit a %s visit with %s travel buffer on both sides",
			c.WorkStartHour, c.WorkEndHour, c.VisitDuration, c.TravelBuffer,
		)).WithContext("needed", needed.String())
	}
	return nil
}

// Step is the spacing between candidate slot starts.
func (c Config) Step() time.Duration {
	return c.VisitDuration + c.TravelBuffer
}

// IsWorkingDay reports whether tours may be scheduled on d.
func (c Config) IsWorkingDay(d time.Weekday) bool {
	for _, wd := range c.WorkingDays {
		if wd == d {
			return true
		}
	}
	return false
}

// DayBounds are the working window of one calendar day and the range of
// admissible visit starts within it.
type DayBounds struct {
	WorkStart     time.Time
	WorkEnd       time.Time
	EarliestVisit time.Time
	LatestVisit   time.Time
}

// Working returns the day's working window.
func (d DayBounds) Working() Window {
	return Window{Start: d.WorkStart, End: d.WorkEnd}
}

// HasRoom reports whether at least one visit fits in the day.
func (d DayBounds) HasRoom() bool {
	return !d.LatestVisit.Before(d.EarliestVisit)
}

// DayBounds computes the bounds for the calendar day containing day.
func (c Config) DayBounds(day time.Time) DayBounds {
	workStart := timezone.AtHour(day, c.WorkStartHour, c.Location)
	workEnd := timezone.AtHour(day, c.WorkEndHour, c.Location)
	return DayBounds{
		WorkStart:     workStart,
		WorkEnd:       workEnd,
		EarliestVisit: workStart.Add(c.TravelBuffer),
		LatestVisit:   workEnd.Add(-(c.VisitDuration + c.TravelBuffer)),
	}
}
