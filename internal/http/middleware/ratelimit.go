package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type visitorInfo struct {
	last  time.Time
	count int
}

var rlMu sync.Mutex
var visitors = make(map[string]*visitorInfo)

// SimpleRateLimit blocks clients that send more than maxRequests per window.
// In-memory and per-IP; used where Redis is overkill, like the ws upgrade.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		rlMu.Lock()
		vi, ok := visitors[ip]
		if !ok || now.Sub(vi.last) > window {
			visitors[ip] = &visitorInfo{last: now, count: 1}
			// drop long-gone visitors while we hold the lock
			for k, v := range visitors {
				if now.Sub(v.last) > 10*window {
					delete(visitors, k)
				}
			}
			rlMu.Unlock()
			c.Next()
			return
		}

		vi.count++
		blocked := vi.count > maxRequests
		rlMu.Unlock()

		if blocked {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
