package v1

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/tourdesk/internal/profile"
	"github.com/hrygo/tourdesk/plugin/ai/agent"
	"github.com/hrygo/tourdesk/plugin/ai/timeout"
	"github.com/hrygo/tourdesk/server/internal/observability"
	"github.com/hrygo/tourdesk/server/middleware"
	"github.com/hrygo/tourdesk/server/service/tour"
	"github.com/hrygo/tourdesk/store"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// AgentRunner runs one agent conversation turn.
type AgentRunner interface {
	ExecuteWithCallback(ctx context.Context, messages []agent.Message, callback agent.EventCallback) error
}

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Tours   *tour.Service
	// Agent is nil when no LLM is configured.
	Agent AgentRunner

	ledger *LedgerScheduler

	// runSemaphore caps concurrent agent runs.
	runSemaphore *semaphore.Weighted
	rateLimiter  *middleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, tours *tour.Service, runner AgentRunner) *APIV1Service {
	return &APIV1Service{
		Profile:      profile,
		Store:        store,
		Tours:        tours,
		Agent:        runner,
		ledger:       NewLedgerScheduler(tours, store),
		runSemaphore: semaphore.NewWeighted(timeout.MaxConcurrentRuns),
		rateLimiter:  middleware.NewRateLimiter(),
	}
}

// RegisterRoutes registers the HTTP routes with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	limited := s.rateLimiter.Middleware()

	e.GET("/healthz", s.Healthz)
	e.POST("/run", s.RunAgent, limited)

	g := e.Group("/api/v1", limited)
	g.GET("/tours/availability", s.GetAvailability)
	g.GET("/tours/check", s.CheckTour)
	g.POST("/tours/book", s.BookTour)
	g.GET("/tours/bookings", s.ListBookings)
	g.GET("/metrics", s.GetMetrics)
}

// RateLimiter exposes the limiter so the server can prune idle clients.
func (s *APIV1Service) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Healthz reports liveness.
// GET /healthz
func (s *APIV1Service) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// requestContext attaches a request-scoped logger to the request context.
func requestContext(c echo.Context, operation string) (context.Context, *observability.RequestContext) {
	reqCtx := observability.NewRequestContextWithID(slog.Default(), c.Request().Header.Get(HeaderRequestID), operation)
	c.Response().Header().Set(HeaderRequestID, reqCtx.RequestID)
	return observability.WithRequestContext(c.Request().Context(), reqCtx), reqCtx
}
