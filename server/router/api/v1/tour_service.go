package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/tourdesk/server/internal/errors"
	"github.com/hrygo/tourdesk/server/internal/observability"
	"github.com/hrygo/tourdesk/server/service/tour"
	"github.com/hrygo/tourdesk/server/timezone"
	"github.com/hrygo/tourdesk/store"
)

const (
	defaultBookingsLimit = 50
	maxBookingsLimit     = 200
)

// SlotResponse is one open tour slot.
type SlotResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

// AvailabilityResponse lists open slots in the calendar's time zone.
type AvailabilityResponse struct {
	Timezone string         `json:"timezone"`
	Slots    []SlotResponse `json:"slots"`
}

// AssessmentResponse is the outcome of checking a start time.
type AssessmentResponse struct {
	Available bool   `json:"available"`
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

// BookTourRequest is the body of POST /api/v1/tours/book.
type BookTourRequest struct {
	Start         string `json:"start"`
	Address       string `json:"address"`
	Name          string `json:"name"`
	Zpid          string `json:"zpid"`
	DetailURL     string `json:"detailUrl"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	Notes         string `json:"notes"`
}

// BookingOutcomeResponse is the result of a booking attempt.
type BookingOutcomeResponse struct {
	Status   string `json:"status"`
	Summary  string `json:"summary,omitempty"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	EventID  string `json:"eventId,omitempty"`
	HTMLLink string `json:"htmlLink,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
}

// BookingRecordResponse is one ledger row.
type BookingRecordResponse struct {
	UID          string `json:"uid"`
	EventID      string `json:"eventId"`
	Summary      string `json:"summary"`
	Start        string `json:"start"`
	End          string `json:"end"`
	CustomerName string `json:"customerName,omitempty"`
	Zpid         string `json:"zpid,omitempty"`
	HTMLLink     string `json:"htmlLink,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// GetAvailability lists open tour slots.
// GET /api/v1/tours/availability?from=&to=&maxSlots=
func (s *APIV1Service) GetAvailability(c echo.Context) error {
	ctx, reqCtx := requestContext(c, observability.OpAvailability)

	maxSlots := 0
	if v := strings.TrimSpace(c.QueryParam("maxSlots")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errorResponse(c, errors.InvalidArgument("maxSlots must be an integer"))
		}
		maxSlots = n
	}

	avail, err := s.Tours.Availability(ctx, c.QueryParam("from"), c.QueryParam("to"), maxSlots)
	if err != nil {
		reqCtx.Warn("availability failed",
			slog.String(observability.LogFieldErrorCode, string(errors.GetCodeFromError(err, ""))),
			slog.String("error", err.Error()))
		return errorResponse(c, err)
	}

	resp := NewAvailabilityResponse(avail, s.Tours.Location())
	reqCtx.Debug("availability served",
		slog.Int("slots", len(resp.Slots)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return c.JSON(http.StatusOK, resp)
}

// CheckTour checks one start time.
// GET /api/v1/tours/check?start=
func (s *APIV1Service) CheckTour(c echo.Context) error {
	ctx, _ := requestContext(c, observability.OpCheck)
	a := s.Tours.CheckSlot(ctx, c.QueryParam("start"))
	return c.JSON(http.StatusOK, NewAssessmentResponse(a, s.Tours.Location()))
}

// BookTour books a tour and records it in the ledger.
// POST /api/v1/tours/book
func (s *APIV1Service) BookTour(c echo.Context) error {
	ctx, reqCtx := requestContext(c, observability.OpBook)

	var req BookTourRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, errors.InvalidArgument("invalid booking request body"))
	}

	out := s.ledger.Book(ctx, &tour.BookingRequest{
		StartISO:      req.Start,
		Address:       req.Address,
		Name:          req.Name,
		Zpid:          req.Zpid,
		DetailURL:     req.DetailURL,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Notes:         req.Notes,
	})

	resp := NewBookingOutcomeResponse(out, s.Tours.Location())
	switch out.Status {
	case tour.BookingBooked:
		reqCtx.Info("tour booked", slog.String("event_id", out.EventID))
		return c.JSON(http.StatusCreated, resp)
	case tour.BookingUnavailable:
		if out.Reason == tour.ReasonCalendarError {
			return c.JSON(http.StatusBadGateway, resp)
		}
		return c.JSON(http.StatusConflict, resp)
	default:
		return c.JSON(http.StatusBadGateway, resp)
	}
}

// ListBookings lists ledger rows, newest first.
// GET /api/v1/tours/bookings?limit=
func (s *APIV1Service) ListBookings(c echo.Context) error {
	if s.Store == nil {
		return c.JSON(http.StatusOK, []BookingRecordResponse{})
	}
	limit := defaultBookingsLimit
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errorResponse(c, errors.InvalidArgument("limit must be a positive integer"))
		}
		limit = min(n, maxBookingsLimit)
	}

	list, err := s.Store.ListTourBookings(c.Request().Context(), &store.FindTourBooking{Limit: &limit})
	if err != nil {
		slog.Error("failed to list bookings", slog.String("error", err.Error()))
		return errorResponse(c, errors.Wrap(err, errors.ErrCodeInternal, "failed to list bookings"))
	}

	resp := NewBookingRecordResponses(list, s.Tours.Location())
	return c.JSON(http.StatusOK, resp)
}

// NewAvailabilityResponse renders slots in loc.
func NewAvailabilityResponse(avail *tour.Availability, loc *time.Location) AvailabilityResponse {
	resp := AvailabilityResponse{Timezone: avail.Timezone, Slots: make([]SlotResponse, 0, len(avail.Slots))}
	for _, slot := range avail.Slots {
		resp.Slots = append(resp.Slots, SlotResponse{
			Start: timezone.FormatISO(slot.Start, loc),
			End:   timezone.FormatISO(slot.End, loc),
			Label: slot.Label,
		})
	}
	return resp
}

func NewAssessmentResponse(a tour.Assessment, loc *time.Location) AssessmentResponse {
	if !a.Available {
		return AssessmentResponse{Reason: string(a.Reason), Message: a.Message}
	}
	return AssessmentResponse{
		Available: true,
		Start:     timezone.FormatISO(a.Start, loc),
		End:       timezone.FormatISO(a.End, loc),
	}
}

func NewBookingOutcomeResponse(out *tour.BookingOutcome, loc *time.Location) BookingOutcomeResponse {
	resp := BookingOutcomeResponse{Status: string(out.Status), Reason: string(out.Reason), Message: out.Message}
	if out.Booked() {
		resp.Summary = out.Summary
		resp.Start = timezone.FormatISO(out.Start, loc)
		resp.End = timezone.FormatISO(out.End, loc)
		resp.EventID = out.EventID
		resp.HTMLLink = out.Link
	}
	return resp
}

// NewBookingRecordResponses renders ledger rows in loc.
func NewBookingRecordResponses(list []*store.TourBooking, loc *time.Location) []BookingRecordResponse {
	resp := make([]BookingRecordResponse, 0, len(list))
	for _, b := range list {
		resp = append(resp, BookingRecordResponse{
			UID:          b.UID,
			EventID:      b.EventID,
			Summary:      b.Summary,
			Start:        timezone.FormatISO(time.Unix(b.StartTs, 0), loc),
			End:          timezone.FormatISO(time.Unix(b.EndTs, 0), loc),
			CustomerName: b.CustomerName,
			Zpid:         b.Zpid,
			HTMLLink:     b.HTMLLink,
			CreatedAt:    timezone.FormatISO(time.Unix(b.CreatedTs, 0), loc),
		})
	}
	return resp
}
