package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// bucket holds one token bucket and its last-seen time.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles AI-assist calls per tenant. The tenant is the unit
// of isolation for templates and usage ledgers, so it is the unit of
// throttling too: one tenant exhausting its budget never starves another.
// Requests without tenant context fall back to the client IP.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     rate.Limit
	burst   int
}

// NewRateLimiter creates a new RateLimiter.
// rps is the allowed requests per second per tenant; burst is the max burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
	// Background cleanup of stale entries every 3 minutes
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) take(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[key]
	if !exists {
		limiter := rate.NewLimiter(rl.rps, rl.burst)
		rl.buckets[key] = &bucket{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	b.lastSeen = time.Now()
	return b.limiter
}

// cleanup removes buckets not seen for 5 minutes.
func (rl *RateLimiter) cleanup() {
	for {
		time.Sleep(3 * time.Minute)
		rl.mu.Lock()
		for key, b := range rl.buckets {
			if time.Since(b.lastSeen) > 5*time.Minute {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware returns a Gin middleware enforcing the per-tenant limit. It
// must run after AuthRequired so the tenant claim is on the context.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := GetTenantID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		if !rl.take(key).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": "AI assistance rate limit reached, please try again later",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
