package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/facecards/config"
	"github.com/use-agent/facecards/models"
	"golang.org/x/time/rate"
)

const (
	evictEvery = 5 * time.Minute
	idleTTL    = time.Hour
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit throttles outbound scrapes with a token bucket per identity (API
// key when authenticated, else client IP).
//
// Identities idle for an hour are evicted every 5 minutes.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*limiterEntry)

	getLimiter := func(identity string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		entry, ok := limiters[identity]
		if !ok {
			entry = &limiterEntry{
				limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
			}
			limiters[identity] = entry
		}
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	go func() {
		ticker := time.NewTicker(evictEvery)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-idleTTL)
			mu.Lock()
			for id, entry := range limiters {
				if entry.lastSeen.Before(cutoff) {
					delete(limiters, id)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		identity := c.ClientIP()
		if key, ok := c.Get(apiKeyContextKey); ok {
			identity = key.(string)
		}

		limiter := getLimiter(identity)
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error: "Too many scrapes. Wait a moment and try again.",
				Code:  models.ErrCodeRateLimited,
			})
			return
		}

		c.Next()
	}
}
