package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bgpstack/roa-history/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CORS allows any origin. The lookup API is a public, read-only data
// service; browsers querying it from arbitrary pages is the expected use.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RateLimiterConfig configures the per-IP request limit.
type RateLimiterConfig struct {
	MaxRequests   int // requests allowed inside the window
	WindowSeconds int // window size in seconds
}

// rateLimitScript implements an atomic sliding window in Redis.
const rateLimitScript = `
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_start = now - window

	redis.call('ZREMRANGEBYSCORE', key, 0, window_start)

	local current = redis.call('ZCARD', key)

	if current < limit then
		redis.call('ZADD', key, now, now)
		redis.call('EXPIRE', key, window)
		return {1, limit - current - 1}
	else
		return {0, 0}
	end
`

// RateLimiter limits requests per client IP using a Redis sliding window.
// When Redis is unavailable the limiter fails open.
func RateLimiter(redisClient *redis.Client, cfg RateLimiterConfig, log *logger.Logger) gin.HandlerFunc {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 60
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:ip:%s", c.ClientIP())
		now := time.Now().Unix()

		result, err := redisClient.Eval(c.Request.Context(), rateLimitScript,
			[]string{key}, now, cfg.WindowSeconds, cfg.MaxRequests).Result()
		if err != nil {
			log.Error("rate limiter error", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		values, ok := result.([]interface{})
		if !ok || len(values) != 2 {
			log.Error("rate limiter returned unexpected result", zap.String("key", key))
			c.Next()
			return
		}

		allowed, _ := values[0].(int64)
		remaining, _ := values[1].(int64)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if allowed != 1 {
			c.Header("Retry-After", fmt.Sprintf("%d", cfg.WindowSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("too many requests, please try again in %d seconds", cfg.WindowSeconds),
			})
			return
		}

		c.Next()
	}
}
