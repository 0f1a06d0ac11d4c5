package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// PlayerRateLimit limits room actions per player (not per IP) using Redis.
// It reads the player id set by the JWT middleware, so JWT must run first.
func PlayerRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			// Redis not configured, fail-open
			c.Next()
			return
		}

		playerIDVal, exists := c.Get("player_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		playerID, ok := playerIDVal.(string)
		if !ok || playerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid player"})
			return
		}

		key := "room_rl:" + playerID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		ctx := context.Background()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// On Redis error, fail-open
			c.Header("X-RoomRateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-RoomRateLimit-Limit", strconv.Itoa(maxRequests))
		remaining := int64(maxRequests) - val
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RoomRateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues("room:" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues("room:" + c.FullPath()).Inc()
		c.Next()
	}
}
