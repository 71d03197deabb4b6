// Package gcal reads and writes tour bookings on a Google Calendar through a service account.
package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/hrygo/tourdesk/plugin/ai/timeout"
	"github.com/hrygo/tourdesk/server/service/tour"
)

// ErrMissingCredentials is returned by every call when no service account is configured.
var ErrMissingCredentials = errors.New("google calendar credentials are not configured")

const pageSize = 250

// Config configures a Client.
type Config struct {
	CalendarID          string
	Location            *time.Location
	ServiceAccountEmail string
	PrivateKey          string

	// Endpoint and HTTPClient override the API base URL and transport.
	// A non-nil HTTPClient is used as-is and skips service account auth.
	Endpoint   string
	HTTPClient *http.Client
}

// Client is the tour.Calendar backed by Google Calendar API v3.
// It never caches events and never retries.
type Client struct {
	calendarID string
	loc        *time.Location
	svc        *calendar.Service
}

var _ tour.Calendar = (*Client)(nil)

// NewClient creates a calendar client. Missing credentials are not an error here;
// the returned client fails each call with ErrMissingCredentials instead.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	c := &Client{
		calendarID: cfg.CalendarID,
		loc:        cfg.Location,
	}
	if c.calendarID == "" {
		c.calendarID = "primary"
	}
	if c.loc == nil {
		c.loc = time.UTC
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		if cfg.ServiceAccountEmail == "" || strings.TrimSpace(cfg.PrivateKey) == "" {
			return c, nil
		}
		jwtCfg := &jwt.Config{
			Email:      cfg.ServiceAccountEmail,
			PrivateKey: []byte(strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n")),
			Scopes:     []string{calendar.CalendarScope},
			TokenURL:   google.JWTTokenURL,
		}
		httpClient = jwtCfg.Client(ctx)
	}

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	c.svc = svc
	return c, nil
}

// Configured reports whether the client can reach the calendar.
func (c *Client) Configured() bool {
	return c.svc != nil
}

// ListEvents returns confirmed, busy, timed events overlapping [timeMin, timeMax].
func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]tour.BusyInterval, error) {
	if c.svc == nil {
		return nil, ErrMissingCredentials
	}
	ctx, cancel := context.WithTimeout(ctx, timeout.CalendarCallTimeout)
	defer cancel()

	call := c.svc.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		ShowDeleted(false).
		MaxResults(pageSize)

	var busy []tour.BusyInterval
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			if b, ok := c.busyInterval(item); ok {
				busy = append(busy, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	return busy, nil
}

// busyInterval converts an event, dropping cancelled, free and all-day entries.
func (c *Client) busyInterval(item *calendar.Event) (tour.BusyInterval, bool) {
	if item == nil || item.Status == "cancelled" || item.Transparency == "transparent" {
		return tour.BusyInterval{}, false
	}
	if item.Start == nil || item.End == nil || item.Start.DateTime == "" || item.End.DateTime == "" {
		return tour.BusyInterval{}, false
	}
	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return tour.BusyInterval{}, false
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return tour.BusyInterval{}, false
	}
	b := tour.BusyInterval{Start: start.In(c.loc), End: end.In(c.loc)}
	return b, b.Valid()
}

// CreateEvent inserts one timed event in the calendar's zone.
func (c *Client) CreateEvent(ctx context.Context, req *tour.EventRequest) (*tour.Event, error) {
	if c.svc == nil {
		return nil, ErrMissingCredentials
	}
	ctx, cancel := context.WithTimeout(ctx, timeout.CalendarCallTimeout)
	defer cancel()

	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       c.eventDateTime(req.Start),
		End:         c.eventDateTime(req.End),
	}
	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	out := &tour.Event{
		ID:      created.Id,
		Summary: created.Summary,
		Start:   req.Start,
		End:     req.End,
		Link:    created.HtmlLink,
	}
	if out.Summary == "" {
		out.Summary = req.Summary
	}
	if t, ok := parseEventTime(created.Start); ok {
		out.Start = t.In(c.loc)
	}
	if t, ok := parseEventTime(created.End); ok {
		out.End = t.In(c.loc)
	}
	return out, nil
}

func (c *Client) eventDateTime(t time.Time) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.In(c.loc).Format(time.RFC3339),
		TimeZone: c.loc.String(),
	}
}

func parseEventTime(dt *calendar.EventDateTime) (time.Time, bool) {
	if dt == nil || dt.DateTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, dt.DateTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
