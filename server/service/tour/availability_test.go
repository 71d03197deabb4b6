package tour

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/tourdesk/server/internal/errors"
	"github.com/hrygo/tourdesk/server/timezone"
)

func slotStarts(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.Format("Mon 15:04"))
	}
	return out
}

func TestGenerateSlots_FreeDay(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(t, cal, mondayMorning)

	slots, err := svc.GenerateSlots(context.Background(), tuesday(0, 0), tuesday(23, 59), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tue 10:30", "Tue 12:00", "Tue 13:30", "Tue 15:00", "Tue 16:30"}, slotStarts(slots))

	for _, s := range slots {
		assert.Equal(t, time.Hour, s.End.Sub(s.Start))
		assert.Equal(t, kolkata, s.Start.Location())
	}
	assert.Equal(t, "Tue 20 Oct, 10:30 AM – 11:30 AM", slots[0].Label)
}

func TestGenerateSlots_SkipsBusyWithBuffer(t *testing.T) {
	cal := &fakeCalendar{busy: []BusyInterval{{Start: tuesday(14, 0), End: tuesday(15, 0)}}}
	svc := newTestService(t, cal, mondayMorning)

	slots, err := svc.GenerateSlots(context.Background(), tuesday(0, 0), tuesday(23, 59), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tue 10:30", "Tue 12:00", "Tue 16:30"}, slotStarts(slots))
}

func TestGenerateSlots_FetchesBusyOnceWithDayPadding(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(t, cal, mondayMorning)

	from, to := tuesday(0, 0), at(2026, time.October, 22, 23, 0)
	_, err := svc.GenerateSlots(context.Background(), from, to, 50)
	require.NoError(t, err)

	assert.Equal(t, 1, cal.listCalls)
	assert.True(t, cal.lastMin.Equal(from.Add(-24*time.Hour)))
	assert.True(t, cal.lastMax.Equal(to.Add(24*time.Hour)))
}

func TestGenerateSlots_SkipsWeekend(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(t, cal, mondayMorning)

	friday := at(2026, time.October, 23, 0, 0)
	monday := at(2026, time.October, 26, 23, 0)
	slots, err := svc.GenerateSlots(context.Background(), friday, monday, 50)
	require.NoError(t, err)
	require.Len(t, slots, 10)

	for _, s := range slots {
		assert.NotEqual(t, time.Saturday, s.Start.Weekday())
		assert.NotEqual(t, time.Sunday, s.Start.Weekday())
	}
	assert.Equal(t, "Fri 10:30", slotStarts(slots)[0])
	assert.Equal(t, "Mon 10:30", slotStarts(slots)[5])
}

func TestGenerateSlots_MaxSlots(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(t, cal, mondayMorning)
	ctx := context.Background()

	slots, err := svc.GenerateSlots(ctx, tuesday(0, 0), time.Time{}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tue 10:30", "Tue 12:00"}, slotStarts(slots))

	slots, err = svc.GenerateSlots(ctx, tuesday(0, 0), time.Time{}, 0)
	require.NoError(t, err)
	assert.Len(t, slots, DefaultMaxSlots)

	slots, err = svc.GenerateSlots(ctx, tuesday(0, 0), at(2026, time.December, 31, 0, 0), 500)
	require.NoError(t, err)
	assert.Len(t, slots, MaxSlotsLimit)
}

func TestGenerateSlots_DefaultRangeStartsNow(t *testing.T) {
	cal := &fakeCalendar{}
	now := tuesday(11, 0)
	svc := newTestService(t, cal, now)

	slots, err := svc.GenerateSlots(context.Background(), time.Time{}, time.Time{}, 50)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	// now+buffer is 11:30, which lies mid-grid and is moved forward to 12:00.
	assert.Equal(t, "Tue 12:00", slotStarts(slots)[0])
	assert.True(t, cal.lastMin.Equal(now.Add(-24*time.Hour)))
	assert.True(t, cal.lastMax.Equal(now.Add(DefaultSearchWindow+24*time.Hour)))
	for _, s := range slots {
		assert.False(t, s.Start.Before(now.Add(30*time.Minute)))
	}
}

func TestGenerateSlots_OnGridSeedMovesOneStep(t *testing.T) {
	svc := newTestService(t, &fakeCalendar{}, mondayMorning)

	// from+buffer is exactly 13:30, a grid point past the day's first visit.
	slots, err := svc.GenerateSlots(context.Background(), tuesday(13, 0), tuesday(23, 0), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tue 15:00", "Tue 16:30"}, slotStarts(slots))
}

func TestGenerateSlots_OnGridNowMovesOneStep(t *testing.T) {
	// now+buffer is 12:00, on the grid.
	svc := newTestService(t, &fakeCalendar{}, tuesday(11, 30))

	slots, err := svc.GenerateSlots(context.Background(), time.Time{}, tuesday(23, 0), 10)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, "Tue 13:30", slotStarts(slots)[0])
}

func TestGenerateSlots_SkipsFinishedDay(t *testing.T) {
	svc := newTestService(t, &fakeCalendar{}, tuesday(18, 30))

	slots, err := svc.GenerateSlots(context.Background(), time.Time{}, time.Time{}, 1)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "Wed 10:30", slotStarts(slots)[0])
}

func TestGenerateSlots_FullyBookedRangeIsEmpty(t *testing.T) {
	cal := &fakeCalendar{busy: []BusyInterval{{Start: tuesday(9, 0), End: tuesday(19, 0)}}}
	svc := newTestService(t, cal, mondayMorning)

	slots, err := svc.GenerateSlots(context.Background(), tuesday(0, 0), tuesday(23, 0), 10)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlots_CalendarErrorFailsWholeCall(t *testing.T) {
	cal := &fakeCalendar{listErr: fmt.Errorf("google calendar credentials are not configured")}
	svc := newTestService(t, cal, mondayMorning)

	slots, err := svc.GenerateSlots(context.Background(), time.Time{}, time.Time{}, 10)
	require.Error(t, err)
	assert.Nil(t, slots)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCalendarUnavailable))
	assert.Equal(t, int64(1), svc.Metrics().Snapshot().CalendarErrors)
}

func TestGenerateSlots_RangeEndBeforeStart(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(t, cal, mondayMorning)

	_, err := svc.GenerateSlots(context.Background(), tuesday(12, 0), tuesday(10, 0), 10)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
	assert.Zero(t, cal.listCalls)
}

func TestGenerateSlots_Idempotent(t *testing.T) {
	cal := &fakeCalendar{busy: []BusyInterval{
		{Start: tuesday(11, 0), End: tuesday(11, 45)},
		{Start: at(2026, time.October, 21, 15, 0), End: at(2026, time.October, 21, 16, 0)},
	}}
	svc := newTestService(t, cal, mondayMorning)
	ctx := context.Background()

	first, err := svc.GenerateSlots(ctx, time.Time{}, time.Time{}, 20)
	require.NoError(t, err)
	second, err := svc.GenerateSlots(ctx, time.Time{}, time.Time{}, 20)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, cal.listCalls)
}

// TestGenerateSlots_AgreesWithCheck checks every generated slot against policy,
// the busy intervals and CheckSlot over the same calendar snapshot.
func TestGenerateSlots_AgreesWithCheck(t *testing.T) {
	cal := &fakeCalendar{busy: []BusyInterval{
		{Start: tuesday(11, 0), End: tuesday(11, 45)},
		{Start: tuesday(14, 0), End: tuesday(15, 0)},
		{Start: at(2026, time.October, 21, 9, 30), End: at(2026, time.October, 21, 10, 15)},
		{Start: at(2026, time.October, 22, 17, 40), End: at(2026, time.October, 22, 18, 30)},
	}}
	svc := newTestService(t, cal, mondayMorning)
	cfg := svc.Config()
	ctx := context.Background()

	slots, err := svc.GenerateSlots(ctx, time.Time{}, time.Time{}, 50)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	for _, s := range slots {
		assert.True(t, cfg.IsWorkingDay(s.Start.Weekday()))
		b := cfg.DayBounds(s.Start)
		assert.False(t, s.Start.Before(b.EarliestVisit))
		assert.False(t, s.Start.After(b.LatestVisit))
		assert.False(t, HasConflict(s.Start, cfg.VisitDuration, cfg.TravelBuffer, cal.busy))

		a := svc.CheckSlot(ctx, timezone.FormatISO(s.Start, kolkata))
		assert.True(t, a.Available, "slot %s rejected with %s", s.Label, a.Reason)
	}
}

func TestAvailability_ParsesISORange(t *testing.T) {
	svc := newTestService(t, &fakeCalendar{}, mondayMorning)

	got, err := svc.Availability(context.Background(), "2026-10-20T00:00:00", "2026-10-20T23:59:00", 3)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", got.Timezone)
	assert.Equal(t, []string{"Tue 10:30", "Tue 12:00", "Tue 13:30"}, slotStarts(got.Slots))
}

func TestAvailability_InvalidRange(t *testing.T) {
	svc := newTestService(t, &fakeCalendar{}, mondayMorning)
	ctx := context.Background()

	_, err := svc.Availability(ctx, "next tuesday", "", 3)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))

	_, err = svc.Availability(ctx, "", "soon", 3)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
}

func TestAlignToGrid(t *testing.T) {
	origin := tuesday(10, 30)
	step := 90 * time.Minute

	assert.Equal(t, origin, alignToGrid(tuesday(9, 0), origin, step))
	assert.Equal(t, origin, alignToGrid(origin, origin, step))
	assert.Equal(t, tuesday(12, 0), alignToGrid(tuesday(10, 31), origin, step))
	assert.Equal(t, tuesday(13, 30), alignToGrid(tuesday(12, 0), origin, step))
	assert.Equal(t, tuesday(13, 30), alignToGrid(tuesday(12, 1), origin, step))
}

func TestNormalizeMaxSlots(t *testing.T) {
	assert.Equal(t, DefaultMaxSlots, normalizeMaxSlots(0))
	assert.Equal(t, DefaultMaxSlots, normalizeMaxSlots(-3))
	assert.Equal(t, 7, normalizeMaxSlots(7))
	assert.Equal(t, MaxSlotsLimit, normalizeMaxSlots(MaxSlotsLimit+1))
}
