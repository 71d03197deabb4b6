package tour

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/tourdesk/server/internal/errors"
	"github.com/hrygo/tourdesk/server/internal/observability"
	"github.com/hrygo/tourdesk/server/timezone"
)

// Availability parses an optional ISO range and returns up to maxSlots open slots.
// An empty fromISO means now; an empty toISO means seven days after the start.
func (s *Service) Availability(ctx context.Context, fromISO, toISO string, maxSlots int) (*Availability, error) {
	var from, to time.Time
	if v := strings.TrimSpace(fromISO); v != "" {
		t, err := timezone.ParseInstant(v, s.config.Location)
		if err != nil {
			return nil, errors.InvalidArgument(fmt.Sprintf("invalid from time %q", fromISO))
		}
		from = t
	}
	if v := strings.TrimSpace(toISO); v != "" {
		t, err := timezone.ParseInstant(v, s.config.Location)
		if err != nil {
			return nil, errors.InvalidArgument(fmt.Sprintf("invalid to time %q", toISO))
		}
		to = t
	}

	slots, err := s.GenerateSlots(ctx, from, to, maxSlots)
	if err != nil {
		return nil, err
	}
	return &Availability{
		Slots:    slots,
		Timezone: s.config.Location.String(),
	}, nil
}

// GenerateSlots walks [from, to] day by day and returns the first maxSlots
// grid-aligned, conflict-free slots. Zero bounds take the defaults.
// The calendar is read once; a read failure fails the whole call.
func (s *Service) GenerateSlots(ctx context.Context, from, to time.Time, maxSlots int) ([]Slot, error) {
	defer s.track(observability.OpAvailability)()

	cfg := s.config
	now := s.clock()

	if from.IsZero() {
		from = now
	}
	from = from.In(cfg.Location)
	if to.IsZero() {
		to = from.Add(DefaultSearchWindow)
	}
	to = to.In(cfg.Location)
	if to.Before(from) {
		return nil, errors.InvalidArgument("range end is before range start")
	}
	maxSlots = normalizeMaxSlots(maxSlots)

	busy, err := s.calendar.ListEvents(ctx, from.Add(-busyFetchPadding), to.Add(busyFetchPadding))
	if err != nil {
		s.metrics.RecordCalendarError(observability.OpAvailability)
		observability.Logger(ctx).Warn("calendar read failed",
			slog.String(observability.LogFieldOperation, observability.OpAvailability),
			slog.String("error", err.Error()),
		)
		return nil, errors.CalendarUnavailable("unable to read calendar", err)
	}

	step := cfg.Step()
	slots := make([]Slot, 0, maxSlots)
	lastDay := timezone.StartOfDay(to, cfg.Location)
	for day := timezone.StartOfDay(from, cfg.Location); !day.After(lastDay) && len(slots) < maxSlots; day = day.AddDate(0, 0, 1) {
		if !cfg.IsWorkingDay(day.Weekday()) {
			continue
		}
		bounds := cfg.DayBounds(day)
		if !bounds.WorkEnd.After(now) || !bounds.HasRoom() {
			continue
		}

		seed := latest(bounds.EarliestVisit, from.Add(cfg.TravelBuffer), now.Add(cfg.TravelBuffer))
		working := bounds.Working()
		for candidate := alignToGrid(seed, bounds.EarliestVisit, step); !candidate.After(bounds.LatestVisit); candidate = candidate.Add(step) {
			if !BufferedWindow(candidate, cfg.VisitDuration, cfg.TravelBuffer).Within(working) {
				continue
			}
			if HasConflict(candidate, cfg.VisitDuration, cfg.TravelBuffer, busy) {
				continue
			}
			end := candidate.Add(cfg.VisitDuration)
			slots = append(slots, Slot{
				Start: candidate,
				End:   end,
				Label: timezone.FormatSlotLabel(candidate, end),
			})
			if len(slots) >= maxSlots {
				break
			}
		}
	}

	observability.Logger(ctx).Debug("availability generated",
		slog.String(observability.LogFieldOperation, observability.OpAvailability),
		slog.Int("slots", len(slots)),
		slog.Int("busy", len(busy)),
	)
	return slots, nil
}

// alignToGrid returns origin when seed is not after it, otherwise the first grid
// point origin + k*step strictly after seed. A seed already on the grid moves one step.
func alignToGrid(seed, origin time.Time, step time.Duration) time.Time {
	if !seed.After(origin) {
		return origin
	}
	steps := seed.Sub(origin)/step + 1
	return origin.Add(steps * step)
}

func latest(first time.Time, rest ...time.Time) time.Time {
	out := first
	for _, t := range rest {
		if t.After(out) {
			out = t
		}
	}
	return out
}

func normalizeMaxSlots(n int) int {
	if n <= 0 {
		return DefaultMaxSlots
	}
	if n > MaxSlotsLimit {
		return MaxSlotsLimit
	}
	return n
}
