package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/folio-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/folio-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// StorageHandlers serves the storage-event websocket.
type StorageHandlers struct {
	hub      *messaging.StorageHub
	upgrader websocket.Upgrader
	logger   *logging.ChanneledLogger
}

// NewStorageHandlers creates storage handlers. checkOrigin may be nil to
// accept same-origin upgrades only.
func NewStorageHandlers(hub *messaging.StorageHub, checkOrigin func(r *http.Request) bool, logger *logging.ChanneledLogger) *StorageHandlers {
	return &StorageHandlers{
		hub:      hub,
		upgrader: messaging.Upgrader(checkOrigin),
		logger:   logger,
	}
}

// Events handles GET /ws/storage. The connection stays open until the page
// goes away or the server shuts down.
func (h *StorageHandlers) Events(c *gin.Context) {
	visitorID, ok := middleware.GetVisitorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "visitor context not found"})
		return
	}

	if err := h.hub.Serve(&h.upgrader, c.Writer, c.Request, visitorID); err != nil {
		// the upgrader has already written the failure response
		h.logger.Messaging().Warn("Storage websocket upgrade failed",
			"visitorId", logging.SanitizeVisitorID(visitorID), "error", err.Error())
	}
}
