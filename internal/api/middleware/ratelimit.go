package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/storefront/commerce/internal/api/metrics"
	"github.com/storefront/commerce/internal/core/domain"
)

// keyedLimiter holds one token bucket per key and forgets keys idle for ttl.
type keyedLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	entries map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newKeyedLimiter(limit rate.Limit, burst int, ttl time.Duration) *keyedLimiter {
	return &keyedLimiter{
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
		entries: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (k *keyedLimiter) allow(key string) bool {
	now := k.now()
	k.mu.Lock()
	defer k.mu.Unlock()

	b := k.entries[key]
	if b == nil {
		b = &bucket{lim: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = b
	}
	b.lastSeen = now

	for key, v := range k.entries {
		if now.Sub(v.lastSeen) > k.ttl {
			delete(k.entries, key)
		}
	}
	return b.lim.AllowN(now, 1)
}

// RateLimitByIP rejects callers that exceed perSecond requests per second
// (with the given burst) from one client IP.
func RateLimitByIP(perSecond float64, burst int) echo.MiddlewareFunc {
	if burst <= 0 {
		burst = 1
	}
	lim := newKeyedLimiter(rate.Limit(perSecond), burst, 10*time.Minute)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !lim.allow(c.RealIP()) {
				metrics.LoginsTotal.WithLabelValues("rate_limited").Inc()
				return domain.ErrTooManyRequests
			}
			return next(c)
		}
	}
}
