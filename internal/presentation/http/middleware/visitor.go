package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

const visitorKey = "visitorId"

// VisitorConfig configures the visitor cookie.
type VisitorConfig struct {
	Tokens     *security.VisitorTokens
	CookieName string
	Secure     bool
}

// VisitorMiddleware resolves the visitor that owns the request's storage
// area. A missing, expired or tampered cookie starts a new visitor with an
// empty area, the way clearing site data does in a browser.
func VisitorMiddleware(cfg VisitorConfig, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		marker := perfTracker.StartOperation("middleware_visitor_resolution", "unknown")
		defer marker.Complete()

		visitorID := ""
		if raw, err := c.Cookie(cfg.CookieName); err == nil && raw != "" {
			if id, err := cfg.Tokens.Validate(raw); err == nil {
				visitorID = id
			} else {
				logger.HTTP().Debug("Discarding visitor cookie", "error", err.Error(), "path", c.Request.URL.Path)
			}
		}

		if visitorID == "" {
			visitorID = security.GenerateULID()
			token, err := cfg.Tokens.Issue(visitorID)
			if err != nil {
				logger.HTTP().Error("Failed to issue visitor token", "error", err.Error())
				marker.SetError(err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start visitor session"})
				c.Abort()
				return
			}
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(cfg.Tokens.TTL().Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
			logger.HTTP().Debug("New visitor", "visitorId", logging.SanitizeVisitorID(visitorID), "duration", time.Since(start))
		}

		marker.VisitorID = visitorID
		marker.SetSuccess(true)

		c.Set(visitorKey, visitorID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logging.VisitorIDKey, visitorID))

		c.Next()
	}
}

// GetVisitorID returns the visitor resolved by VisitorMiddleware.
func GetVisitorID(c *gin.Context) (string, bool) {
	id := c.GetString(visitorKey)
	return id, id != ""
}

// GetConnectionID returns the storage-event connection of the calling page.
func GetConnectionID(c *gin.Context) string {
	return c.GetHeader(ConnectionHeader)
}
