package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/freee021022/onconet/internal/config"
)

const limiterIdle = 10 * time.Minute

// RateLimiter keeps one token bucket per client IP. Buckets of idle
// clients expire from the cache.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *cache.Cache
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		limiters: cache.New(limiterIdle, limiterIdle),
	}
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	if l, ok := rl.limiters.Get(ip); ok {
		rl.limiters.SetDefault(ip, l)
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(rl.limit, rl.burst)
	// Add fails when a concurrent request created the bucket first.
	if err := rl.limiters.Add(ip, l, cache.DefaultExpiration); err != nil {
		if existing, ok := rl.limiters.Get(ip); ok {
			return existing.(*rate.Limiter)
		}
	}
	return l
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			Abort(c, http.StatusTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}
