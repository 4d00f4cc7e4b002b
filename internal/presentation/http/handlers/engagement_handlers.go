package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/application/engagement"
	"github.com/AtRiskMedia/folio-go/internal/application/services"
	"github.com/AtRiskMedia/folio-go/internal/domain/entities/content"
	entity "github.com/AtRiskMedia/folio-go/internal/domain/entities/engagement"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/folio-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// ModalRequest carries the modal state the page shows.
type ModalRequest struct {
	State   string `form:"state"`
	Trigger string `form:"trigger"`
}

// ShareRequest reports what the browser observed while trying each share
// capability: unavailable, succeeded, aborted or failed.
type ShareRequest struct {
	Native    string `form:"native"`
	Clipboard string `form:"clipboard"`
}

// CommentRequest is the comment form.
type CommentRequest struct {
	State string `form:"state"`
	Text  string `form:"text"`
	Name  string `form:"name"`
}

// EngagementResponse is the JSON view of a visitor's record for one work.
type EngagementResponse struct {
	WorkID   string        `json:"workId"`
	Slug     string        `json:"slug"`
	Record   entity.Record `json:"record"`
	Comments int           `json:"commentCount"`
}

// EngagementHandlers contains the widget action endpoints. Each responds with
// htmx out-of-band fragments, or 204 when the action was rejected.
type EngagementHandlers struct {
	engagementService *services.EngagementService
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewEngagementHandlers creates engagement handlers with injected dependencies
func NewEngagementHandlers(engagementService *services.EngagementService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *EngagementHandlers {
	return &EngagementHandlers{
		engagementService: engagementService,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

func (h *EngagementHandlers) action(c *gin.Context, state string) (services.Action, bool) {
	visitorID, ok := middleware.GetVisitorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "visitor context not found"})
		return services.Action{}, false
	}
	return services.Action{
		VisitorID: visitorID,
		Slug:      c.Param("slug"),
		Origin:    middleware.GetConnectionID(c),
		Modal:     entity.ParseModalState(state),
	}, true
}

// respond writes fragments, or 204 when there are none.
func (h *EngagementHandlers) respond(c *gin.Context, marker *performance.Marker, out string, err error) {
	if err != nil {
		marker.SetError(err)
		if errors.Is(err, content.ErrWorkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "work not found"})
			return
		}
		h.logger.Engagement().Error("Engagement action failed", "path", c.Request.URL.Path, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if out == "" {
		marker.AddMetadata("rejected", true)
		c.Status(http.StatusNoContent)
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(out))
}

// Like handles POST /works/:slug/like
func (h *EngagementHandlers) Like(c *gin.Context) {
	a, ok := h.action(c, "")
	if !ok {
		return
	}
	marker := h.perfTracker.StartOperation("engagement_like", a.VisitorID)
	defer marker.Complete()

	out, err := h.engagementService.Like(c.Request.Context(), a)
	h.respond(c, marker, out, err)
}

// Share handles POST /works/:slug/share
func (h *EngagementHandlers) Share(c *gin.Context) {
	a, ok := h.action(c, "")
	if !ok {
		return
	}
	marker := h.perfTracker.StartOperation("engagement_share", a.VisitorID)
	defer marker.Complete()

	var req ShareRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format", "details": err.Error()})
		return
	}

	platform := engagement.ReportedPlatform{
		Native:    engagement.ParseOutcome(req.Native),
		Clipboard: engagement.ParseOutcome(req.Clipboard),
	}
	marker.AddMetadata("native", string(platform.Native))
	marker.AddMetadata("clipboard", string(platform.Clipboard))

	out, err := h.engagementService.Share(c.Request.Context(), a, platform)
	h.respond(c, marker, out, err)
}

// OpenComments handles POST /works/:slug/comments/open
func (h *EngagementHandlers) OpenComments(c *gin.Context) {
	var req ModalRequest
	_ = c.ShouldBind(&req)
	a, ok := h.action(c, req.State)
	if !ok {
		return
	}
	marker := h.perfTracker.StartOperation("engagement_comments_open", a.VisitorID)
	defer marker.Complete()

	out, err := h.engagementService.OpenComments(c.Request.Context(), a)
	h.respond(c, marker, out, err)
}

// CloseComments handles POST /works/:slug/comments/close
func (h *EngagementHandlers) CloseComments(c *gin.Context) {
	var req ModalRequest
	_ = c.ShouldBind(&req)
	a, ok := h.action(c, req.State)
	if !ok {
		return
	}
	marker := h.perfTracker.StartOperation("engagement_comments_close", a.VisitorID)
	defer marker.Complete()
	marker.AddMetadata("trigger", req.Trigger)

	out, err := h.engagementService.CloseComments(c.Request.Context(), a, req.Trigger)
	h.respond(c, marker, out, err)
}

// CountCharacters handles POST /works/:slug/comments/count
func (h *EngagementHandlers) CountCharacters(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format", "details": err.Error()})
		return
	}
	a, ok := h.action(c, req.State)
	if !ok {
		return
	}
	marker := h.perfTracker.StartOperation("engagement_comments_count", a.VisitorID)
	defer marker.Complete()

	out, err := h.engagementService.CountCharacters(c.Request.Context(), a, req.Text)
	h.respond(c, marker, out, err)
}

// SubmitComment handles POST /works/:slug/comments/submit
func (h *EngagementHandlers) SubmitComment(c *gin.Context) {
	start := time.Now()
	var req CommentRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format", "details": err.Error()})
		return
	}
	a, ok := h.action(c, req.State)
	if !ok {
		return
	}
	marker := h.perfTracker.StartOperation("engagement_comments_submit", a.VisitorID)
	defer marker.Complete()

	out, err := h.engagementService.SubmitComment(c.Request.Context(), a, req.Text, req.Name)
	h.logger.WithContext(logging.ChannelEngagement, c.Request.Context()).Debug("Comment submit handled",
		"slug", a.Slug, "duration", time.Since(start))
	h.respond(c, marker, out, err)
}

// Widget handles GET /works/:slug/widget. Pages call it after a storage event
// from another tab of the same visitor.
func (h *EngagementHandlers) Widget(c *gin.Context) {
	a, ok := h.action(c, "")
	if !ok {
		return
	}
	marker := h.perfTracker.StartOperation("engagement_widget", a.VisitorID)
	defer marker.Complete()

	out, err := h.engagementService.Widget(c.Request.Context(), a)
	h.respond(c, marker, out, err)
}

// Engagement handles GET /works/:slug/engagement
func (h *EngagementHandlers) Engagement(c *gin.Context) {
	a, ok := h.action(c, "")
	if !ok {
		return
	}
	marker := h.perfTracker.StartOperation("engagement_record", a.VisitorID)
	defer marker.Complete()

	work, record, err := h.engagementService.Record(c.Request.Context(), a)
	if err != nil {
		marker.SetError(err)
		if errors.Is(err, content.ErrWorkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "work not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, EngagementResponse{
		WorkID:   work.ID,
		Slug:     work.Slug,
		Record:   record,
		Comments: record.CommentCount(),
	})
}
