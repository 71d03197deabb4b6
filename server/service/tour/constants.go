package tour

import "time"

const (
	// DefaultVisitDuration is the length of one property tour.
	DefaultVisitDuration = 60 * time.Minute

	// DefaultTravelBuffer is the padding required before and after every tour.
	DefaultTravelBuffer = 30 * time.Minute

	// DefaultWorkStartHour and DefaultWorkEndHour bound the working day.
	DefaultWorkStartHour = 10
	DefaultWorkEndHour   = 18

	// DefaultMaxSlots is used when a caller does not ask for a slot count.
	DefaultMaxSlots = 10

	// MaxSlotsLimit caps a single availability response.
	MaxSlotsLimit = 50

	// DefaultSearchWindow is the availability range when no end is given.
	DefaultSearchWindow = 7 * 24 * time.Hour

	// busyFetchPadding widens the availability calendar read at both range edges
	// so buffered busy windows spilling over a day boundary are seen.
	busyFetchPadding = 24 * time.Hour
)

// DefaultWorkingDays is Monday through Friday.
var DefaultWorkingDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}
