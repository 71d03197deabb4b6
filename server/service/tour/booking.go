package tour

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/tourdesk/server/internal/errors"
	"github.com/hrygo/tourdesk/server/internal/observability"
)

// BookingStatus tags a BookingOutcome.
type BookingStatus string

const (
	BookingBooked      BookingStatus = "booked"
	BookingUnavailable BookingStatus = "unavailable"
	BookingError       BookingStatus = "error"
)

// BookingOutcome is the result of one Book call.
// Booked carries the event. Unavailable carries the rejection unchanged, including
// ReasonCalendarError when the re-check could not read the calendar. Error is reserved
// for a failed write and carries the calendar's message.
type BookingOutcome struct {
	Status  BookingStatus
	Summary string
	Start   time.Time
	End     time.Time
	EventID string
	Link    string
	Reason  Reason
	Message string
}

// Booked reports whether the calendar event was created.
func (o *BookingOutcome) Booked() bool {
	return o.Status == BookingBooked
}

// Book re-checks the requested start against policy and a fresh calendar read,
// then writes exactly one event. A rejected start never reaches the calendar,
// and a failed write is reported, not retried.
func (s *Service) Book(ctx context.Context, req *BookingRequest) *BookingOutcome {
	defer s.track(observability.OpBook)()
	logger := observability.Logger(ctx)

	if req == nil {
		req = &BookingRequest{}
	}
	a := s.assess(ctx, req.StartISO)
	s.logAssessment(ctx, observability.OpBook, a)
	if !a.Available {
		return &BookingOutcome{Status: BookingUnavailable, Reason: a.Reason, Message: a.Message}
	}

	listing := s.listings.Resolve(req.Address, req.Name, req.Zpid, req.DetailURL, req.Notes)
	event, err := s.calendar.CreateEvent(ctx, &EventRequest{
		Summary:     bookingSummary(req, listing),
		Description: bookingDescription(req, listing),
		Start:       a.Start,
		End:         a.End,
	})
	if err != nil {
		s.metrics.RecordCalendarError(observability.OpBook)
		writeErr := errors.CalendarWriteFailed("calendar write failed", err)
		logger.Warn(writeErr.Message,
			slog.String(observability.LogFieldOperation, observability.OpBook),
			slog.String(observability.LogFieldErrorCode, string(writeErr.Code)),
			slog.String("error", writeErr.Error()),
		)
		// The outcome carries the calendar's own message, not the wrapped form.
		return &BookingOutcome{Status: BookingError, Message: err.Error()}
	}

	s.metrics.RecordBooking()
	logger.Info("tour booked",
		slog.String("event_id", event.ID),
		slog.Time(observability.LogFieldStart, event.Start),
	)
	return &BookingOutcome{
		Status:  BookingBooked,
		Summary: event.Summary,
		Start:   event.Start.In(s.config.Location),
		End:     event.End.In(s.config.Location),
		EventID: event.ID,
		Link:    event.Link,
	}
}

func bookingSummary(req *BookingRequest, listing ListingContext) string {
	subject := firstNonEmpty(listing.Address, req.Address, req.Name)
	if subject == "" {
		subject = "this property"
	}
	summary := "Property tour at " + subject
	if name := strings.TrimSpace(req.CustomerName); name != "" {
		summary += " for " + name
	}
	return summary
}

func bookingDescription(req *BookingRequest, listing ListingContext) string {
	var lines []string
	add := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			lines = append(lines, label+value)
		}
	}
	add("Listing address: ", listing.Address)
	add("Listing ZPID: ", listing.Zpid)
	add("Visitor: ", req.CustomerName)
	add("Visitor email: ", req.CustomerEmail)
	add("Notes: ", req.Notes)
	return strings.Join(lines, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
