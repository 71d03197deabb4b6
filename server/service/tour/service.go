// Package tour schedules property tours against a single calendar.
//
// It lists open slots, checks a requested start against working hours and
// existing events, and books a tour with exactly one calendar write.
package tour

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/tourdesk/server/internal/errors"
	"github.com/hrygo/tourdesk/server/internal/observability"
)

// Service implements availability, check and book over one calendar.
// It holds no per-request state; every call fetches busy intervals afresh.
type Service struct {
	config   Config
	calendar Calendar
	listings ListingResolver
	metrics  *observability.Metrics
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithListingResolver sets the catalog used to label bookings.
func WithListingResolver(r ListingResolver) Option {
	return func(s *Service) {
		s.listings = r
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService validates cfg and returns a Service bound to cal.
func NewService(cfg Config, cal Calendar, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, errors.InvalidArgument("calendar is required")
	}
	s := &Service{
		config:   cfg,
		calendar: cal,
		listings: rawHints{},
		metrics:  observability.NewMetrics(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the scheduling policy.
func (s *Service) Config() Config {
	return s.config
}

// Location returns the zone all instants are normalized to.
func (s *Service) Location() *time.Location {
	return s.config.Location
}

// Metrics returns the collector this service records into.
func (s *Service) Metrics() *observability.Metrics {
	return s.metrics
}

func (s *Service) clock() time.Time {
	return s.now().In(s.config.Location)
}

func (s *Service) track(op string) func() {
	s.metrics.RecordRequest(op)
	started := time.Now()
	return func() {
		s.metrics.RecordDuration(op, time.Since(started))
	}
}

func (s *Service) logAssessment(ctx context.Context, op string, a Assessment) {
	logger := observability.Logger(ctx)
	if a.Available {
		logger.Debug("slot admissible",
			slog.String(observability.LogFieldOperation, op),
			slog.Time(observability.LogFieldStart, a.Start),
		)
		return
	}
	s.metrics.RecordRejection(op, string(a.Reason))
	if a.Reason == ReasonCalendarError {
		s.metrics.RecordCalendarError(op)
		logger.Warn("calendar read failed",
			slog.String(observability.LogFieldOperation, op),
			slog.String("message", a.Message),
		)
		return
	}
	logger.Debug("slot rejected",
		slog.String(observability.LogFieldOperation, op),
		slog.String(observability.LogFieldReason, string(a.Reason)),
	)
}

// rawHints is the resolver used when no catalog is configured.
type rawHints struct{}

func (rawHints) Resolve(hints ...string) ListingContext {
	return HintsListing(hints...)
}
