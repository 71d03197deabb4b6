package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/tourdesk/server/service/tour"
)

var kolkata = time.FixedZone("Asia/Kolkata", 5*3600+1800)

type fakeScheduler struct {
	avail    *tour.Availability
	availErr error
	check    tour.Assessment
	outcome  *tour.BookingOutcome

	gotFrom, gotTo string
	gotMax         int
	gotStart       string
	gotBooking     *tour.BookingRequest
	bookCalls      int
}

func (f *fakeScheduler) Availability(_ context.Context, fromISO, toISO string, maxSlots int) (*tour.Availability, error) {
	f.gotFrom, f.gotTo, f.gotMax = fromISO, toISO, maxSlots
	return f.avail, f.availErr
}

func (f *fakeScheduler) CheckSlot(_ context.Context, startISO string) tour.Assessment {
	f.gotStart = startISO
	return f.check
}

func (f *fakeScheduler) Book(_ context.Context, req *tour.BookingRequest) *tour.BookingOutcome {
	f.bookCalls++
	f.gotBooking = req
	return f.outcome
}

func (f *fakeScheduler) Location() *time.Location { return kolkata }

func run(t *testing.T, s TourScheduler, input string) map[string]interface{} {
	t.Helper()
	out, err := NewTourSchedulerTool(s).Run(context.Background(), input)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	return m
}

func TestTourSchedulerTool_Availability(t *testing.T) {
	start := time.Date(2026, 10, 20, 10, 30, 0, 0, kolkata)
	s := &fakeScheduler{avail: &tour.Availability{
		Timezone: "Asia/Kolkata",
		Slots:    []tour.Slot{{Start: start, End: start.Add(time.Hour), Label: "Tue, Oct 20 10:30 AM"}},
	}}

	got := run(t, s, `{"action":"availability","fromISO":"2026-10-20","maxSlots":"3"}`)
	assert.Equal(t, "availability", got["status"])
	assert.Equal(t, "Asia/Kolkata", got["timezone"])
	slots := got["slots"].([]interface{})
	require.Len(t, slots, 1)
	slot := slots[0].(map[string]interface{})
	assert.Equal(t, "2026-10-20T10:30:00+05:30", slot["start"])
	assert.Equal(t, "2026-10-20T11:30:00+05:30", slot["end"])
	assert.Equal(t, "Tue, Oct 20 10:30 AM", slot["label"])

	assert.Equal(t, "2026-10-20", s.gotFrom)
	assert.Equal(t, "", s.gotTo)
	assert.Equal(t, 3, s.gotMax)
}

func TestTourSchedulerTool_AvailabilityErrors(t *testing.T) {
	s := &fakeScheduler{availErr: fmt.Errorf("unable to read calendar")}
	got := run(t, s, `{"action":"availability"}`)
	assert.Equal(t, "error", got["status"])
	assert.Equal(t, "unable to read calendar", got["message"])

	got = run(t, &fakeScheduler{}, `{"action":"availability","maxSlots":"lots"}`)
	assert.Equal(t, "error", got["status"])
}

func TestTourSchedulerTool_Check(t *testing.T) {
	start := time.Date(2026, 10, 20, 12, 0, 0, 0, kolkata)
	s := &fakeScheduler{check: tour.Assessment{Available: true, Start: start, End: start.Add(time.Hour)}}

	got := run(t, s, `{"action":"check","startISO":"2026-10-20T12:00:00"}`)
	assert.Equal(t, map[string]interface{}{
		"status":    "check",
		"available": true,
		"start":     "2026-10-20T12:00:00+05:30",
		"end":       "2026-10-20T13:00:00+05:30",
	}, got)
	assert.Equal(t, "2026-10-20T12:00:00", s.gotStart)

	s.check = tour.Assessment{Reason: tour.ReasonConflict, Message: "That time overlaps an existing appointment."}
	got = run(t, s, `{"action":"CHECK","startISO":"2026-10-20T14:30:00"}`)
	assert.Equal(t, map[string]interface{}{
		"status":    "check",
		"available": false,
		"reason":    "conflict",
		"message":   "That time overlaps an existing appointment.",
	}, got)
}

func TestTourSchedulerTool_RequiresStart(t *testing.T) {
	s := &fakeScheduler{}
	got := run(t, s, `{"action":"check"}`)
	assert.Equal(t, "startISO is required for check action.", got["message"])

	got = run(t, s, `{"action":"book","startISO":"  "}`)
	assert.Equal(t, "error", got["status"])
	assert.Equal(t, "startISO is required for book action.", got["message"])
	assert.Zero(t, s.bookCalls)
}

func TestTourSchedulerTool_Book(t *testing.T) {
	start := time.Date(2026, 10, 20, 12, 0, 0, 0, kolkata)
	s := &fakeScheduler{outcome: &tour.BookingOutcome{
		Status:  tour.BookingBooked,
		Summary: "Property tour at 221 Baker Street for Asha",
		Start:   start,
		End:     start.Add(time.Hour),
		EventID: "evt-1",
		Link:    "https://calendar.example.com/event?eid=evt-1",
	}}

	got := run(t, s, `{"action":"book","startISO":"2026-10-20T12:00:00","listingAddress":"221 Baker Street",
		"listingZpid":2080523451,"customerName":"Asha","customerEmail":"asha@example.com","notes":"gate 4"}`)
	assert.Equal(t, map[string]interface{}{
		"status":   "booked",
		"summary":  "Property tour at 221 Baker Street for Asha",
		"start":    "2026-10-20T12:00:00+05:30",
		"end":      "2026-10-20T13:00:00+05:30",
		"eventId":  "evt-1",
		"htmlLink": "https://calendar.example.com/event?eid=evt-1",
	}, got)

	require.NotNil(t, s.gotBooking)
	assert.Equal(t, "2080523451", s.gotBooking.Zpid)
	assert.Equal(t, "221 Baker Street", s.gotBooking.Address)
	assert.Equal(t, "asha@example.com", s.gotBooking.CustomerEmail)
	assert.Equal(t, "gate 4", s.gotBooking.Notes)
}

func TestTourSchedulerTool_BookRejected(t *testing.T) {
	s := &fakeScheduler{outcome: &tour.BookingOutcome{
		Status:  tour.BookingUnavailable,
		Reason:  tour.ReasonWeekend,
		Message: "Tours are only available Monday through Friday.",
	}}
	got := run(t, s, `{"action":"book","startISO":"2026-10-24T12:00:00"}`)
	assert.Equal(t, map[string]interface{}{
		"status":    "unavailable",
		"available": false,
		"reason":    "weekend",
		"message":   "Tours are only available Monday through Friday.",
	}, got)

	s.outcome = &tour.BookingOutcome{
		Status:  tour.BookingUnavailable,
		Reason:  tour.ReasonCalendarError,
		Message: "Could not read the calendar: google calendar credentials are not configured",
	}
	got = run(t, s, `{"action":"book","startISO":"2026-10-20T12:00:00"}`)
	assert.Equal(t, map[string]interface{}{
		"status":    "unavailable",
		"available": false,
		"reason":    "calendar_error",
		"message":   "Could not read the calendar: google calendar credentials are not configured",
	}, got)

	s.outcome = &tour.BookingOutcome{Status: tour.BookingError, Message: "googleapi: Error 403: Forbidden"}
	got = run(t, s, `{"action":"book","startISO":"2026-10-20T12:00:00"}`)
	assert.Equal(t, map[string]interface{}{"status": "error", "message": "googleapi: Error 403: Forbidden"}, got)
}

func TestTourSchedulerTool_InvalidInput(t *testing.T) {
	got := run(t, &fakeScheduler{}, `{"action":"cancel"}`)
	assert.Equal(t, map[string]interface{}{"status": "error", "message": "Invalid action: cancel"}, got)

	_, err := NewTourSchedulerTool(&fakeScheduler{}).Run(context.Background(), `{not json`)
	assert.Error(t, err)
}

func TestTourSchedulerTool_Schema(t *testing.T) {
	tool := NewTourSchedulerTool(&fakeScheduler{})
	assert.Equal(t, "tourSchedulerTool", tool.Name())
	assert.NotEmpty(t, tool.Description())
	schema := tool.InputType()
	assert.Equal(t, []string{"action"}, schema["required"])
	props := schema["properties"].(map[string]interface{})
	for _, key := range []string{"action", "fromISO", "toISO", "startISO", "listingAddress", "listingZpid", "customerName", "maxSlots"} {
		assert.Contains(t, props, key)
	}
}
