package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per key (client IP, user id).
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	idle     time.Duration
	lastGC   time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows rps requests per second per key with the given burst.
// rps <= 0 disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    limit,
		burst:    burst,
		idle:     10 * time.Minute,
		lastGC:   time.Now(),
	}
}

// Allow reports whether a request for key may proceed now.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.lastGC) > r.idle {
		for k, e := range r.limiters {
			if now.Sub(e.lastSeen) > r.idle {
				delete(r.limiters, k)
			}
		}
		r.lastGC = now
	}

	e, ok := r.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.Allow()
}

// Middleware rejects requests over the limit with 429. keyFn picks the bucket.
func (r *RateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(keyFn(c)) {
			abortWithDetail(c, http.StatusTooManyRequests, "Bạn thao tác quá nhanh, vui lòng thử lại sau", "rate limit exceeded")
			return
		}
		c.Next()
	}
}

func byClientIP(c *gin.Context) string { return c.ClientIP() }

// byUser must run after AuthMiddleware.
func byUser(c *gin.Context) string {
	if id, err := getUserIDFromContext(c); err == nil {
		return id
	}
	return c.ClientIP()
}
