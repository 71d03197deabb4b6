package tour

import (
	"context"
	"time"

	"github.com/hrygo/tourdesk/server/internal/observability"
	"github.com/hrygo/tourdesk/server/timezone"
)

// CheckSlot reports whether a visit can start at startISO.
// A calendar read failure yields ReasonCalendarError, never ReasonConflict.
func (s *Service) CheckSlot(ctx context.Context, startISO string) Assessment {
	defer s.track(observability.OpCheck)()

	a := s.assess(ctx, startISO)
	s.logAssessment(ctx, observability.OpCheck, a)
	return a
}

// Check is CheckSlot for an already parsed instant.
func (s *Service) Check(ctx context.Context, start time.Time) Assessment {
	defer s.track(observability.OpCheck)()

	a := s.assessInstant(ctx, start)
	s.logAssessment(ctx, observability.OpCheck, a)
	return a
}

func (s *Service) assess(ctx context.Context, startISO string) Assessment {
	start, err := timezone.ParseInstant(startISO, s.config.Location)
	if err != nil {
		return rejected(ReasonInvalidStart, "Invalid start time provided.")
	}
	return s.assessInstant(ctx, start)
}

func (s *Service) assessInstant(ctx context.Context, start time.Time) Assessment {
	cfg := s.config
	policy := cfg.AssessPolicy(start, s.clock())
	if !policy.Available {
		return policy
	}

	// Any busy interval whose own buffered window reaches the candidate's
	// buffered window ends after start-2*buffer and starts before end+2*buffer.
	fetch := BufferedWindow(policy.Start, cfg.VisitDuration, 2*cfg.TravelBuffer)
	busy, err := s.calendar.ListEvents(ctx, fetch.Start, fetch.End)
	if err != nil {
		return rejected(ReasonCalendarError, "Unable to read the calendar: "+err.Error())
	}

	if _, ok := firstConflict(policy.Start, cfg.VisitDuration, cfg.TravelBuffer, busy); ok {
		return rejected(ReasonConflict, "Requested time conflicts with another scheduled tour (including travel buffer).")
	}
	return policy
}
