package tour

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Calendar is the remote calendar that owns existing bookings.
// Implementations must return fresh data on every call; the core never caches it.
type Calendar interface {
	// ListEvents returns confirmed, timed events overlapping [timeMin, timeMax].
	// All-day, cancelled and deleted entries are excluded by the implementation.
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]BusyInterval, error)

	// CreateEvent writes one event. It is called at most once per booking and never retried.
	CreateEvent(ctx context.Context, req *EventRequest) (*Event, error)
}

// ListingResolver maps free-text hints (address, name, zpid, URL) to a canonical listing.
type ListingResolver interface {
	Resolve(hints ...string) ListingContext
}

// ListingContext is the resolved property used for the booking summary and description.
type ListingContext struct {
	Address string
	Zpid    string
}

// EventRequest is the calendar write issued for a booked tour.
type EventRequest struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// Event is the calendar's view of a created event.
type Event struct {
	ID      string
	Summary string
	Start   time.Time
	End     time.Time
	Link    string
}

// BusyInterval is one existing booking read from the calendar.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Slot is a bookable visit window produced by the availability generator.
type Slot struct {
	Start time.Time
	End   time.Time
	Label string
}

// Availability is the result of an availability query.
type Availability struct {
	Slots    []Slot
	Timezone string
}

// BookingRequest carries the proposed start and the subject details of a tour.
type BookingRequest struct {
	StartISO      string
	Address       string
	Name          string
	Zpid          string
	DetailURL     string
	CustomerName  string
	CustomerEmail string
	Notes         string
}

var zpidPattern = regexp.MustCompile(`\d{5,}`)

// HintsListing derives a listing from raw hints when no catalog entry matches:
// the address is the first hint containing a letter and the zpid is the first
// run of five or more digits.
func HintsListing(hints ...string) ListingContext {
	var out ListingContext
	for _, h := range hints {
		h = strings.TrimSpace(h)
		if out.Address == "" && strings.IndexFunc(h, unicode.IsLetter) >= 0 {
			out.Address = h
		}
		if out.Zpid == "" {
			out.Zpid = zpidPattern.FindString(h)
		}
	}
	return out
}
