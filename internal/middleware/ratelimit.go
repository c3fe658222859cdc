package middleware

import (
	"net/http"
	"strconv"
	"time"

	"real-estate-crm/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// LoginRateLimit throttles attempts per client IP
func LoginRateLimit(limiter *ratelimit.KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, stats := limiter.Allow(c.ClientIP(), time.Now())
		if !ok {
			if stats.RetryAfterSeconds > 0 {
				c.Header("Retry-After", strconv.Itoa(stats.RetryAfterSeconds))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many login attempts. Please try again later.",
				"stats":   stats,
			})
			return
		}
		c.Next()
	}
}
