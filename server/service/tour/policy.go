package tour

import (
	"fmt"
	"time"
)

// Reason names why a start time was rejected.
type Reason string

const (
	ReasonInvalidStart  Reason = "invalid_start"
	ReasonTooSoon       Reason = "too_soon"
	ReasonWeekend       Reason = "weekend"
	ReasonNonWorkingDay Reason = "non_working_day"
	ReasonOutsideHours  Reason = "outside_hours"
	ReasonConflict      Reason = "conflict"
	ReasonCalendarError Reason = "calendar_error"
)

// Assessment is the outcome of checking one start time.
// Available assessments carry Start/End; rejected ones carry Reason/Message.
type Assessment struct {
	Available bool
	Start     time.Time
	End       time.Time
	Reason    Reason
	Message   string
}

func admissible(start time.Time, visit time.Duration) Assessment {
	return Assessment{Available: true, Start: start, End: start.Add(visit)}
}

func rejected(reason Reason, message string) Assessment {
	return Assessment{Reason: reason, Message: message}
}

// AssessPolicy checks start against the business calendar alone, ignoring existing
// bookings. start and now must already be normalized to c.Location.
func (c Config) AssessPolicy(start, now time.Time) Assessment {
	if start.IsZero() {
		return rejected(ReasonInvalidStart, "Invalid start time provided.")
	}
	start = start.In(c.Location)

	if start.Before(now.Add(c.TravelBuffer)) {
		return rejected(ReasonTooSoon, "Requested start time is too soon to allow for travel buffer.")
	}

	if wd := start.Weekday(); !c.IsWorkingDay(wd) {
		if wd == time.Saturday || wd == time.Sunday {
			return rejected(ReasonWeekend, "Requested day falls on a weekend when tours are unavailable.")
		}
		return rejected(ReasonNonWorkingDay, fmt.Sprintf("Tours are not scheduled on %s.", wd))
	}

	bounds := c.DayBounds(start)
	if start.Before(bounds.EarliestVisit) || start.After(bounds.LatestVisit) {
		return rejected(ReasonOutsideHours, fmt.Sprintf(
			"Requested time falls outside working hours (%s – %s with required travel buffer).",
			bounds.WorkStart.Format("3:04 PM"), bounds.WorkEnd.Format("3:04 PM"),
		))
	}

	return admissible(start, c.VisitDuration)
}
