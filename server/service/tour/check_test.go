package tour

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/tourdesk/server/internal/observability"
)

func TestCheckSlot_Available(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(t, cal, mondayMorning)

	a := svc.CheckSlot(context.Background(), "2026-10-20T10:30:00+05:30")
	require.True(t, a.Available)
	assert.True(t, a.Start.Equal(tuesday(10, 30)))
	assert.True(t, a.End.Equal(tuesday(11, 30)))
	assert.Empty(t, a.Reason)
}

func TestCheckSlot_OutsideHoursBoundary(t *testing.T) {
	svc := newTestService(t, &fakeCalendar{}, mondayMorning)
	ctx := context.Background()

	a := svc.CheckSlot(ctx, "2026-10-20T10:00:00")
	assert.Equal(t, ReasonOutsideHours, a.Reason)
	assert.Contains(t, a.Message, "outside working hours")

	a = svc.CheckSlot(ctx, "2026-10-20T10:30:00")
	assert.True(t, a.Available)
}

func TestCheckSlot_WeekendSkipsCalendar(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(t, cal, mondayMorning)

	for _, start := range []string{"2026-10-24T10:30:00", "2026-10-25T13:00:00", "2026-10-24T03:00:00"} {
		a := svc.CheckSlot(context.Background(), start)
		assert.Equal(t, ReasonWeekend, a.Reason, start)
	}
	assert.Zero(t, cal.listCalls)
}

func TestCheckSlot_InvalidStart(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(t, cal, mondayMorning)

	for _, start := range []string{"", "tomorrow at noon", "2026-13-40T10:00:00"} {
		a := svc.CheckSlot(context.Background(), start)
		assert.False(t, a.Available)
		assert.Equal(t, ReasonInvalidStart, a.Reason, start)
	}
	assert.Zero(t, cal.listCalls)
}

func TestCheckSlot_DateOnlyIsMidnight(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(t, cal, mondayMorning)

	a := svc.CheckSlot(context.Background(), "2026-10-20")
	assert.False(t, a.Available)
	assert.Equal(t, ReasonOutsideHours, a.Reason)
	assert.Zero(t, cal.listCalls)

	a = svc.CheckSlot(context.Background(), "2026-10-20T06:30Z")
	assert.True(t, a.Available, a.Message)
	assert.True(t, a.Start.Equal(tuesday(12, 0)))
}

func TestCheckSlot_TooSoon(t *testing.T) {
	now := tuesday(11, 0)
	svc := newTestService(t, &fakeCalendar{}, now)
	ctx := context.Background()

	a := svc.Check(ctx, now.Add(29*time.Minute))
	assert.Equal(t, ReasonTooSoon, a.Reason)

	a = svc.Check(ctx, now.Add(30*time.Minute))
	assert.True(t, a.Available)
}

func TestCheckSlot_ConflictBoundary(t *testing.T) {
	cal := &fakeCalendar{busy: []BusyInterval{{Start: tuesday(14, 0), End: tuesday(15, 0)}}}
	svc := newTestService(t, cal, mondayMorning)
	ctx := context.Background()

	tests := []struct {
		start     time.Time
		available bool
	}{
		{tuesday(12, 0), true},
		{tuesday(12, 1), false},
		{tuesday(13, 0), false},
		{tuesday(15, 30), false},
		{tuesday(15, 59), false},
		{tuesday(16, 0), true},
	}
	for _, tt := range tests {
		a := svc.Check(ctx, tt.start)
		assert.Equal(t, tt.available, a.Available, tt.start.Format("15:04"))
		if !tt.available {
			assert.Equal(t, ReasonConflict, a.Reason)
		}
	}
}

func TestCheckSlot_FetchWindowCoversBufferedNeighbours(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(t, cal, mondayMorning)

	svc.Check(context.Background(), tuesday(12, 0))
	require.Equal(t, 1, cal.listCalls)
	assert.True(t, cal.lastMin.Equal(tuesday(11, 0)))
	assert.True(t, cal.lastMax.Equal(tuesday(14, 0)))
}

func TestCheckSlot_CalendarError(t *testing.T) {
	cal := &fakeCalendar{listErr: fmt.Errorf("googleapi: Error 503: backend unavailable")}
	svc := newTestService(t, cal, mondayMorning)

	a := svc.CheckSlot(context.Background(), "2026-10-20T12:00:00")
	assert.False(t, a.Available)
	assert.Equal(t, ReasonCalendarError, a.Reason)
	assert.Contains(t, a.Message, "backend unavailable")

	snap := svc.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.Operations[observability.OpCheck].CalendarErrors)
	assert.Equal(t, int64(1), snap.Operations[observability.OpCheck].Rejections[string(ReasonCalendarError)])
}

func TestCheckSlot_FetchesFreshEachCall(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(t, cal, mondayMorning)
	ctx := context.Background()

	require.True(t, svc.Check(ctx, tuesday(12, 0)).Available)
	cal.busy = append(cal.busy, BusyInterval{Start: tuesday(12, 0), End: tuesday(13, 0)})
	assert.Equal(t, ReasonConflict, svc.Check(ctx, tuesday(12, 0)).Reason)
	assert.Equal(t, 2, cal.listCalls)
}
