package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/hrygo/tourdesk/server/internal/errors"
)

const (
	// DefaultRate is the sustained request rate per client.
	DefaultRate = rate.Limit(10)
	// DefaultBurst is the request burst allowed per client.
	DefaultBurst = 20
)

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter
	rate   rate.Limit
	burst  int
}

// NewRateLimiter creates a limiter allowing 10 requests per second with a burst of 20.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithLimit(DefaultRate, DefaultBurst)
}

// NewRateLimiterWithLimit creates a limiter with a custom rate and burst.
func NewRateLimiterWithLimit(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limits: make(map[string]*rate.Limiter),
		rate:   r,
		burst:  burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limits[key]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limits[key] = limiter
	return limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Wait blocks until a request is allowed or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context, key string) error {
	return rl.getLimiter(key).Wait(ctx)
}

// Prune drops limiters that have refilled completely, so idle clients do not accumulate.
func (rl *RateLimiter) Prune(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, limiter := range rl.limits {
		if limiter.TokensAt(now) >= float64(rl.burst) {
			delete(rl.limits, key)
			removed++
		}
	}
	return removed
}

// Middleware rejects requests over the per-IP limit with 429.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				appErr := errors.RateLimitExceeded("too many requests")
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"code":  string(appErr.Code),
					"error": appErr.Message,
				})
			}
			return next(c)
		}
	}
}
