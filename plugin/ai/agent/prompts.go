package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/hrygo/tourdesk/server/service/tour"
)

const tourSystemPrompt = `You are a friendly real-estate assistant who schedules property tours.
Current time: %s (%s).

## Tour rules
- Tours run %s between %s and %s local time.
- Each visit lasts %d minutes and needs a %d-minute travel buffer on both sides.
- No weekends, no after-hours slots, and no times sooner than the travel buffer from now.

## Tool: tourSchedulerTool
- When the visitor asks to tour a property, call it with action=availability and offer 2-3 slots that match their window.
- When the visitor proposes a time, call action=check and explain the outcome.
- Only after the visitor confirms a time, call action=book with startISO, listingAddress (street and city), customerName and customerEmail.
- When status="booked", repeat the summary, start and end, and the htmlLink if present.
- When status is "unavailable" or "error", apologize, share the message, and offer another slot or a manual fallback.
- Never claim a tour is booked unless the tool returned status="booked".

Reply in short, friendly sentences.`

// BuildSystemPrompt renders the system prompt for cfg at now.
func BuildSystemPrompt(cfg tour.Config, now time.Time) string {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return fmt.Sprintf(tourSystemPrompt,
		local.Format("Monday, 2006-01-02 15:04"),
		loc.String(),
		describeDays(cfg.WorkingDays),
		hourLabel(cfg.WorkStartHour),
		hourLabel(cfg.WorkEndHour),
		int(cfg.VisitDuration/time.Minute),
		int(cfg.TravelBuffer/time.Minute),
	)
}

func describeDays(days []time.Weekday) string {
	if len(days) == 0 {
		return "on no days"
	}
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, d.String())
	}
	return strings.Join(names, ", ")
}

func hourLabel(hour int) string {
	return time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC).Format("3:04 PM")
}
