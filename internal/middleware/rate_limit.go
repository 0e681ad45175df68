package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultRateLimit is the number of registration writes a user may make per minute
	DefaultRateLimit = 30
	// DefaultBurstSize is how many writes may happen back to back
	DefaultBurstSize = 10

	sweepInterval = 5 * time.Minute
	idleTTL       = 10 * time.Minute
)

// RateLimiter throttles registration writes per user with a token bucket each
type RateLimiter struct {
	perMinute int
	burst     int
	now       func() time.Time

	mu      sync.Mutex
	buckets map[int32]*bucket
	stopCh  chan struct{}
	stopped sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// decision is the outcome of one take, with what the response headers need
type decision struct {
	allowed    bool
	remaining  int
	retryAfter time.Duration
	resetAt    time.Time
}

// NewRateLimiter creates a RateLimiter with the default limits
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(DefaultRateLimit, DefaultBurstSize)
}

// NewRateLimiterWithConfig creates a RateLimiter and starts its idle sweep
func NewRateLimiterWithConfig(requestsPerMinute, burstSize int) *RateLimiter {
	rl := newRateLimiter(requestsPerMinute, burstSize, time.Now)
	go rl.sweepLoop()
	return rl
}

func newRateLimiter(requestsPerMinute, burstSize int, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		perMinute: requestsPerMinute,
		burst:     burstSize,
		now:       now,
		buckets:   make(map[int32]*bucket),
		stopCh:    make(chan struct{}),
	}
}

func (r *RateLimiter) perSecond() rate.Limit {
	return rate.Limit(float64(r.perMinute) / 60)
}

// Allow consumes one token for the user if one is available
func (r *RateLimiter) Allow(userID int32) bool {
	return r.take(userID).allowed
}

func (r *RateLimiter) take(userID int32) decision {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b, ok := r.buckets[userID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.perSecond(), r.burst)}
		r.buckets[userID] = b
	}
	b.lastSeen = now

	if b.limiter.AllowN(now, 1) {
		tokens := b.limiter.TokensAt(now)
		return decision{
			allowed:   true,
			remaining: int(math.Max(0, math.Floor(tokens))),
			resetAt:   now.Add(r.refillTime(tokens)),
		}
	}

	wait := time.Minute
	if res := b.limiter.ReserveN(now, 1); res.OK() {
		wait = res.DelayFrom(now)
		res.CancelAt(now)
	}
	return decision{
		retryAfter: wait,
		resetAt:    now.Add(r.refillTime(b.limiter.TokensAt(now))),
	}
}

// refillTime is how long until a bucket holding tokens is full again
func (r *RateLimiter) refillTime(tokens float64) time.Duration {
	missing := float64(r.burst) - tokens
	if missing <= 0 || r.perMinute <= 0 {
		return 0
	}
	return time.Duration(missing / float64(r.perSecond()) * float64(time.Second))
}

// Remaining reports the tokens a user has left without consuming one
func (r *RateLimiter) Remaining(userID int32) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[userID]
	if !ok {
		return r.burst
	}
	return int(math.Max(0, math.Floor(b.limiter.TokensAt(r.now()))))
}

// sweep drops buckets idle for longer than idleTTL
func (r *RateLimiter) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idleTTL)
	removed := 0
	for userID, b := range r.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(r.buckets, userID)
			removed++
		}
	}
	return removed
}

func (r *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("Swept idle rate limiters")
			}
		case <-r.stopCh:
			return
		}
	}
}

// Stop ends the idle sweep. Safe to call more than once.
func (r *RateLimiter) Stop() {
	r.stopped.Do(func() { close(r.stopCh) })
}

// RateLimitMiddleware throttles authenticated callers. Anonymous requests pass
// through untouched, so it belongs after the auth middleware.
func RateLimitMiddleware(rl *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := GetUserID(c)
			if userID == 0 {
				return next(c)
			}

			d := rl.take(userID)
			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(rl.perMinute))
			header.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
			header.Set("X-RateLimit-Reset", strconv.FormatInt(d.resetAt.Unix(), 10))

			if d.allowed {
				return next(c)
			}

			retryAfter := int(math.Ceil(d.retryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			header.Set("Retry-After", strconv.Itoa(retryAfter))
			log.Warn().Int32("user_id", userID).Int("retry_after", retryAfter).Msg("Rate limit exceeded")

			return writeProblem(c, http.StatusTooManyRequests, errorTypeRateLimit, "Rate Limit Exceeded",
				fmt.Sprintf("Too many requests. Please retry after %d seconds.", retryAfter))
		}
	}
}
