package v1

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/tourdesk/plugin/ai/agent/tools"
	"github.com/hrygo/tourdesk/server/internal/observability"
	"github.com/hrygo/tourdesk/server/service/tour"
	"github.com/hrygo/tourdesk/store"
)

// LedgerScheduler books through the tour service and appends every booked
// outcome to the local ledger. Both the HTTP handler and the agent tool book through it.
type LedgerScheduler struct {
	*tour.Service

	store *store.Store
}

var _ tools.TourScheduler = (*LedgerScheduler)(nil)

// NewLedgerScheduler wraps tours. A nil store disables recording.
func NewLedgerScheduler(tours *tour.Service, store *store.Store) *LedgerScheduler {
	return &LedgerScheduler{Service: tours, store: store}
}

// Book books the tour and records it. A ledger failure is logged and never
// changes the outcome; the event already exists on the calendar.
func (l *LedgerScheduler) Book(ctx context.Context, req *tour.BookingRequest) *tour.BookingOutcome {
	out := l.Service.Book(ctx, req)
	if !out.Booked() || l.store == nil {
		return out
	}

	_, err := l.store.CreateTourBooking(ctx, &store.TourBooking{
		UID:           shortuuid.New(),
		EventID:       out.EventID,
		Summary:       out.Summary,
		StartTs:       out.Start.Unix(),
		EndTs:         out.End.Unix(),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		Zpid:          strings.TrimSpace(req.Zpid),
		HTMLLink:      out.Link,
	})
	if err != nil {
		observability.Logger(ctx).Error("failed to record booking in ledger",
			slog.String("event_id", out.EventID),
			slog.String("error", err.Error()))
	}
	return out
}
