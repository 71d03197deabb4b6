package tour

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/tourdesk/server/timezone"
)

var kolkata = timezone.MustParseTimezone("Asia/Kolkata")

// at returns a wall-clock instant in Asia/Kolkata.
func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, kolkata)
}

// tuesday returns hour:minute on Tue 20 Oct 2026.
func tuesday(hour, minute int) time.Time {
	return at(2026, time.October, 20, hour, minute)
}

// fakeCalendar is an in-memory Calendar that records every call.
type fakeCalendar struct {
	mu sync.Mutex

	busy      []BusyInterval
	listErr   error
	createErr error

	listCalls   int
	createCalls int
	lastMin     time.Time
	lastMax     time.Time
	created     []*EventRequest
}

func (f *fakeCalendar) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]BusyInterval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	f.lastMin, f.lastMax = timeMin, timeMax
	if f.listErr != nil {
		return nil, f.listErr
	}
	result := make([]BusyInterval, 0, len(f.busy))
	for _, b := range f.busy {
		if b.Start.Before(timeMax) && b.End.After(timeMin) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, req *EventRequest) (*Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := fmt.Sprintf("evt-%d", f.createCalls)
	f.busy = append(f.busy, BusyInterval{Start: req.Start, End: req.End})
	return &Event{
		ID:      id,
		Summary: req.Summary,
		Start:   req.Start.UTC(),
		End:     req.End.UTC(),
		Link:    "https://calendar.example.com/event?eid=" + id,
	}, nil
}

type fakeResolver struct {
	listing ListingContext
	hints   []string
}

func (r *fakeResolver) Resolve(hints ...string) ListingContext {
	r.hints = hints
	return r.listing
}

// newTestService builds a Service with the default policy in Asia/Kolkata and a fixed clock.
func newTestService(t *testing.T, cal Calendar, now time.Time, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	svc, err := NewService(DefaultConfig(kolkata), cal, opts...)
	require.NoError(t, err)
	return svc
}

// mondayMorning is the default clock: Mon 19 Oct 2026 08:00.
var mondayMorning = at(2026, time.October, 19, 8, 0)
