// Package timezone provides timezone utilities for the tour scheduler.
//
// Every instant that enters the scheduling core passes through ParseInstant,
// so all comparisons and day arithmetic happen in a single configured zone.
package timezone

import (
	"fmt"
	"strings"
	"time"
)

// Default location constants
var (
	// UTC is the coordinated universal time timezone
	UTC = time.UTC
)

// DefaultTimezone is the calendar zone used when none is configured.
const DefaultTimezone = "Asia/Kolkata"

// ParseTimezone parses an IANA timezone identifier (e.g., "Asia/Kolkata").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// offsetLayouts carry their own zone; minutes-only offsets are common in LLM output.
var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
}

// naiveLayouts are accepted for ISO strings without an offset.
// Such values are read as wall-clock time in the target zone; a bare date is midnight.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseInstant parses an ISO 8601 instant and normalizes it into loc.
// Offsets (including "Z") are honored; naive values are interpreted in loc.
func ParseInstant(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = UTC
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.In(loc), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid ISO 8601 time %q", value)
}

// FormatISO formats t as RFC 3339 in loc.
func FormatISO(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = UTC
	}
	return t.In(loc).Format(time.RFC3339)
}

// FormatSlotLabel renders a visit window for end users.
// Format: "Tue 20 Oct, 10:30 AM – 11:30 AM"
func FormatSlotLabel(start, end time.Time) string {
	return fmt.Sprintf("%s – %s", start.Format("Mon 02 Jan, 03:04 PM"), end.Format("03:04 PM"))
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	local := t.In(tz)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz)
}

// AtHour returns the given wall-clock hour on t's calendar day in tz.
func AtHour(t time.Time, hour int, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	local := t.In(tz)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, tz)
}

// ParseWeekday parses a weekday name or three-letter abbreviation.
func ParseWeekday(s string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if key == name || key == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", s)
}
