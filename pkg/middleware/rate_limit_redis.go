package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/idextract/idextract/pkg/logger"
	"github.com/idextract/idextract/pkg/metrics"
)

// RedisRateLimitMiddleware is a fixed-window limiter shared by every replica.
// It INCRs a per-window key and allows floor(rps*window)+burst requests per
// window. When Redis cannot be reached the request is checked against an
// in-process bucket instead of being rejected.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rps, burst)
	}
	windowSeconds := int(window.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	allowedPerWindow := int(rps*float64(windowSeconds)) + burst
	fallback := newLimiterStore(rps, burst)
	log := logger.Named("ratelimit")

	return func(c *gin.Context) {
		key := "rl:" + clientKey(c)
		redisKey := fmt.Sprintf("%s:%d", key, time.Now().Unix()/int64(windowSeconds))

		ctx := c.Request.Context()
		cnt, err := client.Incr(ctx, redisKey).Result()
		if err != nil {
			log.Warnf("redis check failed, using local bucket: %v", err)
			if !fallback.get(key).Allow() {
				metrics.RateLimitRejected.WithLabelValues("redis_fallback").Inc()
				c.Header("Retry-After", "1")
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Rate limit exceeded"})
				return
			}
			metrics.RateLimitAllowed.WithLabelValues("redis_fallback").Inc()
			c.Next()
			return
		}
		if cnt == 1 {
			_ = client.Expire(ctx, redisKey, time.Duration(windowSeconds+1)*time.Second).Err()
		}
		if int(cnt) > allowedPerWindow {
			c.Header("Retry-After", fmt.Sprintf("%d", windowSeconds))
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
