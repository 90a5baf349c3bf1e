package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/authentic/internal/logger"
)

// RequestIDHeader is the header the request ID is read from and echoed on.
const RequestIDHeader = "X-Request-Id"

// RequestID tags every request with an ID so log lines and audit events
// for the same request can be correlated. An incoming header value is
// reused; otherwise a fresh UUID is minted. The ID lives in the gin
// context under logger.FieldRequestID, where RequestLogger picks it up.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(logger.FieldRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFrom returns the request ID assigned by RequestID, or "" when
// the middleware is not mounted.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(logger.FieldRequestID)
}
