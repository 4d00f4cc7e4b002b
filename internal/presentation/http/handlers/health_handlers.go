package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/application/services"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *database.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandlers reports liveness.
type HealthHandlers struct {
	engagementService *services.EngagementService
	db                Pinger
	perfTracker       *performance.Tracker
}

// NewHealthHandlers creates health handlers. db may be nil in wasm-host mode.
func NewHealthHandlers(engagementService *services.EngagementService, db Pinger, perfTracker *performance.Tracker) *HealthHandlers {
	return &HealthHandlers{engagementService: engagementService, db: db, perfTracker: perfTracker}
}

// Health handles GET /healthz
func (h *HealthHandlers) Health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status": "ok",
		"works":  len(h.engagementService.Index()),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = err.Error()
		} else {
			body["database"] = "ok"
		}
	}

	if h.perfTracker != nil {
		body["uptime"] = h.perfTracker.Uptime().Round(time.Second).String()
		body["operations"] = h.perfTracker.Stats()
	}

	c.JSON(status, body)
}
