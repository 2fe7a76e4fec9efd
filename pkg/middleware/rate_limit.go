package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/workexp/workexp-api/pkg/metrics"
	"golang.org/x/time/rate"
)

// limiterStore holds one token bucket per client key.
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	lim, ok := s.limiters[key]
	if !ok {
		lim = rate.NewLimiter(s.limit, s.burst)
		s.limiters[key] = lim
	}
	return lim
}

// clientKey prefers the authenticated subject over the client IP.
func clientKey(c *gin.Context) string {
	if claims, ok := Claims(c); ok {
		if sub, _ := claims["sub"].(string); sub != "" {
			return "sub:" + sub
		}
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// RateLimitMiddleware allows max requests per window for each client, as an
// in-memory token bucket that refills evenly across the window.
func RateLimitMiddleware(max int, window time.Duration) gin.HandlerFunc {
	if max <= 0 {
		max = 1
	}
	store := &limiterStore{
		limiters: map[string]*rate.Limiter{},
		limit:    rate.Every(window / time.Duration(max)),
		burst:    max,
	}
	return func(c *gin.Context) {
		lim := store.get(clientKey(c))
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		if !lim.Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later."})
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(lim.Tokens())))
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
