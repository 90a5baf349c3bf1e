package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/authentic/internal/errors"
	"github.com/kbukum/authentic/internal/ratelimit"
)

// RateLimit returns middleware that applies a fixed-window rule keyed by
// client IP. Auth flows apply their own per-identity limits; this covers the
// general API surface.
func RateLimit(limiter *ratelimit.Limiter, rule ratelimit.Rule, endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := limiter.Check(c.ClientIP(), endpoint, rule.MaxRequests, rule.Window())
		if err != nil {
			var limitErr *ratelimit.LimitError
			if errors.As(err, &limitErr) {
				abortWithError(c, apperrors.RateLimitExceeded(limitErr.RetryAfter))
				return
			}
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}
