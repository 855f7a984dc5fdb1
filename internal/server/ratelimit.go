// file: internal/server/ratelimit.go
// version: 1.0.0
// guid: 8e836f77-3007-4285-9f10-901398d06cd6

package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 15 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter is a per-IP token bucket guarding the API. Entries for
// idle clients age out on each lookup.
type ipRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	perSec  rate.Limit
	burst   int
}

func newIPRateLimiter(requestsPerMinute, burst int) *ipRateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &ipRateLimiter{
		clients: make(map[string]*clientLimiter),
		perSec:  rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:   burst,
	}
}

func (r *ipRateLimiter) allow(ip string) bool {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, entry := range r.clients {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(r.clients, key)
		}
	}

	entry, ok := r.clients[ip]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(r.perSec, r.burst)}
		r.clients[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

func (r *ipRateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !r.allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
