package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hrygo/tourdesk/server/service/tour"
	"github.com/hrygo/tourdesk/server/timezone"
)

// TourSchedulerToolName is the name the model calls the tool by.
const TourSchedulerToolName = "tourSchedulerTool"

const (
	actionAvailability = "availability"
	actionCheck        = "check"
	actionBook         = "book"

	statusAvailability = "availability"
	statusCheck        = "check"
	statusBooked       = "booked"
	statusUnavailable  = "unavailable"
	statusError        = "error"
)

// TourScheduler is the scheduling surface the tool drives.
type TourScheduler interface {
	Availability(ctx context.Context, fromISO, toISO string, maxSlots int) (*tour.Availability, error)
	CheckSlot(ctx context.Context, startISO string) tour.Assessment
	Book(ctx context.Context, req *tour.BookingRequest) *tour.BookingOutcome
	Location() *time.Location
}

// TourSchedulerTool lists, checks and books property tours.
type TourSchedulerTool struct {
	scheduler TourScheduler
}

// NewTourSchedulerTool creates a new tour scheduler tool.
func NewTourSchedulerTool(scheduler TourScheduler) *TourSchedulerTool {
	return &TourSchedulerTool{scheduler: scheduler}
}

// Name returns the tool name.
func (t *TourSchedulerTool) Name() string {
	return TourSchedulerToolName
}

// Description returns the tool description for the LLM.
func (t *TourSchedulerTool) Description() string {
	return `Schedule property tours on the agent's calendar.
Actions:
- "availability": list open tour slots between fromISO and toISO (defaults: now to seven days ahead).
- "check": verify whether a tour can start at startISO.
- "book": book a tour at startISO. Always "check" first and confirm with the visitor before booking.
Times are ISO 8601; values without an offset are read in the calendar's time zone.`
}

// InputType returns the expected input type schema.
func (t *TourSchedulerTool) InputType() map[string]interface{} {
	str := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": desc}
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type":        "string",
				"enum":        []string{actionAvailability, actionCheck, actionBook},
				"description": "What to do",
			},
			"fromISO":        str("Start of the availability window"),
			"toISO":          str("End of the availability window"),
			"startISO":       str("Tour start time for check and book"),
			"listingAddress": str("Property address"),
			"listingName":    str("Property name"),
			"listingZpid":    str("Property zpid"),
			"detailUrl":      str("Property detail URL"),
			"customerName":   str("Visitor's name"),
			"customerEmail":  str("Visitor's email"),
			"notes":          str("Additional notes for the agent"),
			"maxSlots": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of slots to return (default 10)",
			},
		},
		"required": []string{"action"},
	}
}

type tourSchedulerInput struct {
	Action         string     `json:"action"`
	FromISO        string     `json:"fromISO"`
	ToISO          string     `json:"toISO"`
	StartISO       string     `json:"startISO"`
	ListingAddress string     `json:"listingAddress"`
	ListingName    string     `json:"listingName"`
	ListingZpid    flexString `json:"listingZpid"`
	DetailURL      string     `json:"detailUrl"`
	CustomerName   string     `json:"customerName"`
	CustomerEmail  string     `json:"customerEmail"`
	Notes          string     `json:"notes"`
	MaxSlots       flexString `json:"maxSlots"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type slotView struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

type response struct {
	Status    string     `json:"status"`
	Timezone  string     `json:"timezone,omitempty"`
	Slots     []slotView `json:"slots,omitempty"`
	Available *bool      `json:"available,omitempty"`
	Start     string     `json:"start,omitempty"`
	End       string     `json:"end,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	Message   string     `json:"message,omitempty"`
	Summary   string     `json:"summary,omitempty"`
	EventID   string     `json:"eventId,omitempty"`
	HTMLLink  string     `json:"htmlLink,omitempty"`
}

// Run executes the tool.
func (t *TourSchedulerTool) Run(ctx context.Context, inputJSON string) (string, error) {
	var input tourSchedulerInput
	if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
		return "", fmt.Errorf("invalid JSON input: %w", err)
	}

	var resp response
	switch strings.ToLower(strings.TrimSpace(input.Action)) {
	case actionAvailability:
		resp = t.availability(ctx, input)
	case actionCheck:
		resp = t.check(ctx, input)
	case actionBook:
		resp = t.book(ctx, input)
	default:
		resp = response{Status: statusError, Message: fmt.Sprintf("Invalid action: %s", input.Action)}
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}

func (t *TourSchedulerTool) availability(ctx context.Context, input tourSchedulerInput) response {
	maxSlots := 0
	if input.MaxSlots != "" {
		n, err := strconv.Atoi(string(input.MaxSlots))
		if err != nil {
			return response{Status: statusError, Message: fmt.Sprintf("maxSlots must be an integer, got %q.", input.MaxSlots)}
		}
		maxSlots = n
	}

	avail, err := t.scheduler.Availability(ctx, input.FromISO, input.ToISO, maxSlots)
	if err != nil {
		return response{Status: statusError, Message: err.Error()}
	}
	loc := t.scheduler.Location()
	slots := make([]slotView, 0, len(avail.Slots))
	for _, s := range avail.Slots {
		slots = append(slots, slotView{
			Start: timezone.FormatISO(s.Start, loc),
			End:   timezone.FormatISO(s.End, loc),
			Label: s.Label,
		})
	}
	return response{Status: statusAvailability, Timezone: avail.Timezone, Slots: slots}
}

func (t *TourSchedulerTool) check(ctx context.Context, input tourSchedulerInput) response {
	if strings.TrimSpace(input.StartISO) == "" {
		return response{Status: statusError, Message: "startISO is required for check action."}
	}
	a := t.scheduler.CheckSlot(ctx, input.StartISO)
	available := a.Available
	if !available {
		return response{Status: statusCheck, Available: &available, Reason: string(a.Reason), Message: a.Message}
	}
	loc := t.scheduler.Location()
	return response{
		Status:    statusCheck,
		Available: &available,
		Start:     timezone.FormatISO(a.Start, loc),
		End:       timezone.FormatISO(a.End, loc),
	}
}

func (t *TourSchedulerTool) book(ctx context.Context, input tourSchedulerInput) response {
	if strings.TrimSpace(input.StartISO) == "" {
		return response{Status: statusError, Message: "startISO is required for book action."}
	}
	out := t.scheduler.Book(ctx, &tour.BookingRequest{
		StartISO:      input.StartISO,
		Address:       input.ListingAddress,
		Name:          input.ListingName,
		Zpid:          string(input.ListingZpid),
		DetailURL:     input.DetailURL,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		Notes:         input.Notes,
	})

	switch out.Status {
	case tour.BookingBooked:
		loc := t.scheduler.Location()
		return response{
			Status:   statusBooked,
			Summary:  out.Summary,
			Start:    timezone.FormatISO(out.Start, loc),
			End:      timezone.FormatISO(out.End, loc),
			EventID:  out.EventID,
			HTMLLink: out.Link,
		}
	case tour.BookingUnavailable:
		available := false
		return response{Status: statusUnavailable, Available: &available, Reason: string(out.Reason), Message: out.Message}
	default:
		return response{Status: statusError, Message: out.Message}
	}
}
