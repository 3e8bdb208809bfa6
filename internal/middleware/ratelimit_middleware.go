// internal/middleware/ratelimit_middleware.go
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"atriumcrm-service/internal/pkg/ratelimit"
	"atriumcrm-service/internal/pkg/response"
)

// RateLimit caps how often a single user may hit the wrapped endpoint.
func RateLimit(limiter *ratelimit.Limiter, operation string, maxRequests int64, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.Unauthorized(c, "Authentication required")
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), userID, operation, maxRequests, window)
		if err != nil {
			// Redis being down should not block the operation
			logger.Warn("Rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			response.Error(c, http.StatusTooManyRequests, "Too many merge requests, slow down", nil)
			return
		}

		c.Next()
	}
}
