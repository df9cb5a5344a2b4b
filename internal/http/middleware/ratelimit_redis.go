package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter initializes a shared Redis client used by the
// middleware. If addr is empty or the ping fails, the client stays nil and
// all limiters act fail-open so the API remains available.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	redisClient = redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient = nil
	}
}

// RedisRateLimit is a fixed-window per-IP limiter using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<ip>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		if !allow(c, key, maxRequests, window) {
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}

// WalletRateLimit limits mutating transitions per wallet, not per IP. It
// requires the JWT middleware to have put the wallet into the context.
func WalletRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		wallet, ok := c.Get("wallet")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "tx_rl:" + wallet.(string) + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		if !allow(c, key, maxRequests, window) {
			return
		}

		RLRequests.WithLabelValues("tx:" + c.FullPath()).Inc()
		c.Next()
	}
}

// allow performs the INCR/EXPIRE check. Redis errors fail open.
func allow(c *gin.Context, key string, maxRequests int, window time.Duration) bool {
	ctx := context.Background()

	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		c.Header("X-RateLimit-Error", "redis-error")
		c.Next()
		return false
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}

	remaining := int64(maxRequests) - val
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

	if val > int64(maxRequests) {
		RLBlocked.WithLabelValues(c.FullPath()).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return false
	}
	return true
}
