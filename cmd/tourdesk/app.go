package main

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/hrygo/tourdesk/internal/profile"
	"github.com/hrygo/tourdesk/plugin/ai"
	"github.com/hrygo/tourdesk/plugin/ai/agent"
	"github.com/hrygo/tourdesk/plugin/ai/agent/tools"
	"github.com/hrygo/tourdesk/plugin/catalog"
	"github.com/hrygo/tourdesk/plugin/gcal"
	"github.com/hrygo/tourdesk/server/service/tour"
	"github.com/hrygo/tourdesk/store"
	"github.com/hrygo/tourdesk/store/db"
)

// app holds the collaborators every command is built from.
type app struct {
	profile *profile.Profile
	tours   *tour.Service
	store   *store.Store
}

func newApp(ctx context.Context, p *profile.Profile) (*app, error) {
	cfg, err := p.TourConfig()
	if err != nil {
		return nil, err
	}

	cal, err := gcal.NewClient(ctx, gcal.Config{
		CalendarID:          p.CalendarID,
		Location:            cfg.Location,
		ServiceAccountEmail: p.ServiceAccountEmail,
		PrivateKey:          p.PrivateKey(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create calendar client")
	}

	listings, err := catalog.Load(p.ListingsPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("listings loaded", slog.Int("count", listings.Len()))

	tours, err := tour.NewService(cfg, cal, tour.WithListingResolver(listings))
	if err != nil {
		return nil, err
	}

	s, err := db.Open(ctx, p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open booking ledger")
	}

	return &app{profile: p, tours: tours, store: s}, nil
}

// newAgent returns nil when no LLM is configured; /run then answers 503.
func (a *app) newAgent(scheduler tools.TourScheduler) (*agent.TourAgent, error) {
	cfg := ai.NewConfigFromProfile(a.profile)
	if !cfg.Enabled {
		slog.Warn("OPENAI_API_KEY is not set; the scheduling assistant is disabled")
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := ai.NewClient(&cfg.LLM)
	if err != nil {
		return nil, err
	}
	return agent.NewTourAgent(client, cfg.LLM, scheduler, a.tours.Config()), nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("failed to close booking ledger", slog.String("error", err.Error()))
	}
}
