package ratelimit

import (
	"net/http"
	"strconv"

	"cinetix/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware returns a gin middleware enforcing the given rate limit class.
// Redis failures fail open so the API stays available without the limiter.
func Middleware(limiter *RateLimiter, limitType RateLimitType) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		result, err := limiter.IsAllowed(c.Request.Context(), c.ClientIP(), limitType)
		if err != nil {
			logger.GetDefault().ErrorWithContext(c.Request.Context(), "rate limit check failed", err, map[string]interface{}{
				"ip":   c.ClientIP(),
				"path": c.Request.URL.Path,
			})
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if !result.Allowed {
			logger.GetDefault().LogRateLimitExceeded(c.Request.Context(), c.ClientIP(), c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":      "error",
				"status_code": http.StatusTooManyRequests,
				"message":     "Too many requests, please try again later",
			})
			return
		}

		c.Next()
	}
}
