// Package server wires the HTTP surface and runs it until the context ends.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/tourdesk/internal/profile"
	"github.com/hrygo/tourdesk/plugin/ai/timeout"
	apiv1 "github.com/hrygo/tourdesk/server/router/api/v1"
	"github.com/hrygo/tourdesk/server/service/tour"
	"github.com/hrygo/tourdesk/store"
)

// limiterPruneInterval is how often idle per-client rate limiters are dropped.
const limiterPruneInterval = time.Minute

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	api        *apiv1.APIV1Service
}

// NewServer builds the echo instance and registers all routes.
func NewServer(profile *profile.Profile, store *store.Store, tours *tour.Service, runner apiv1.AgentRunner) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins(profile.CORSOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, apiv1.HeaderRequestID},
	}))

	api := apiv1.NewAPIV1Service(profile, store, tours, runner)
	api.RegisterRoutes(e)

	return &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
		api:        api,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := s.Profile.ListenAddr()
		slog.Info("tourdesk server started", slog.String("addr", addr), slog.String("version", s.Profile.Version))
		if err := s.echoServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(limiterPruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				s.api.RateLimiter().Prune(now)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown()
	})

	return g.Wait()
}

// Shutdown stops accepting requests and waits up to timeout.ShutdownTimeout for the rest.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout.ShutdownTimeout)
	defer cancel()

	slog.Info("server shutting down")
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
