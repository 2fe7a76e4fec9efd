package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/workexp/workexp-api/pkg/logger"
	"github.com/workexp/workexp-api/pkg/metrics"
)

// RedisRateLimitMiddleware is a fixed-window limiter shared by every
// instance: INCR a per-window key and reject once it passes max.
// Without a client it falls back to the in-memory limiter.
func RedisRateLimitMiddleware(client *redis.Client, max int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(max, window)
	}
	windowSeconds := int64(window.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	return func(c *gin.Context) {
		bucket := time.Now().Unix() / windowSeconds
		redisKey := fmt.Sprintf("workexp:rl:%s:%d", clientKey(c), bucket)

		cnt, err := client.Incr(c.Request.Context(), redisKey).Result()
		if err != nil {
			logger.Errorf("rate limit: redis incr: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			return
		}
		if cnt == 1 {
			_ = client.Expire(c.Request.Context(), redisKey, time.Duration(windowSeconds+1)*time.Second).Err()
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		if cnt > int64(max) {
			c.Header("Retry-After", strconv.FormatInt(windowSeconds, 10))
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later."})
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(max)-cnt, 10))
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
