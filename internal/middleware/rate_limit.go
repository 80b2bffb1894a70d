package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitPerIP throttles each client IP with its own token bucket.
// Buckets idle for longer than limiterIdleTTL are dropped.
func RateLimitPerIP(rps rate.Limit, burst int) echo.MiddlewareFunc {
	var mu sync.Mutex
	buckets := make(map[string]*ipLimiter)
	lastSweep := time.Now()

	allow := func(ip string) bool {
		mu.Lock()
		defer mu.Unlock()
		now := time.Now()
		if now.Sub(lastSweep) > limiterIdleTTL {
			for k, b := range buckets {
				if now.Sub(b.lastSeen) > limiterIdleTTL {
					delete(buckets, k)
				}
			}
			lastSweep = now
		}
		b, ok := buckets[ip]
		if !ok {
			b = &ipLimiter{limiter: rate.NewLimiter(rps, burst)}
			buckets[ip] = b
		}
		b.lastSeen = now
		return b.limiter.Allow()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
