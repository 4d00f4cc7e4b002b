package middleware

import (
	"context"

	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

// RequestIDHeader echoes the request id to the client.
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags each request with an id, reusing a well-formed
// incoming one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !security.IsVisitorID(requestID) {
			requestID = security.GenerateULID()
		}

		c.Set("requestId", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logging.RequestIDKey, requestID))

		c.Next()
	}
}
