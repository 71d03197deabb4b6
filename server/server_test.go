package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/tourdesk/internal/profile"
	"github.com/hrygo/tourdesk/server/service/tour"
	"github.com/hrygo/tourdesk/server/timezone"
)

type emptyCalendar struct{}

func (emptyCalendar) ListEvents(context.Context, time.Time, time.Time) ([]tour.BusyInterval, error) {
	return nil, nil
}

func (emptyCalendar) CreateEvent(_ context.Context, req *tour.EventRequest) (*tour.Event, error) {
	return &tour.Event{ID: "evt-1", Summary: req.Summary, Start: req.Start, End: req.End}, nil
}

func newTestServer(t *testing.T, origins []string) *Server {
	t.Helper()
	tours, err := tour.NewService(tour.DefaultConfig(timezone.MustParseTimezone("Asia/Kolkata")), emptyCalendar{})
	require.NoError(t, err)
	prof := &profile.Profile{Mode: "dev", Addr: "127.0.0.1", Port: 0, CORSOrigins: origins, Version: "test"}
	return NewServer(prof, nil, tours, nil)
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t, []string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tours/check", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_StartStopsOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestCORSOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, corsOrigins(nil))
	assert.Equal(t, []string{"https://a.example"}, corsOrigins([]string{"https://a.example"}))
}
