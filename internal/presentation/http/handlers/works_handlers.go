// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/application/services"
	"github.com/AtRiskMedia/folio-go/internal/domain/entities/content"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/folio-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/folio-go/internal/presentation/templates"
	"github.com/gin-gonic/gin"
)

const htmlContentType = "text/html; charset=utf-8"

// WorksHandlers serves the works index and work pages.
type WorksHandlers struct {
	engagementService *services.EngagementService
	site              templates.Page
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewWorksHandlers creates works handlers with injected dependencies
func NewWorksHandlers(engagementService *services.EngagementService, site templates.Page, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *WorksHandlers {
	return &WorksHandlers{
		engagementService: engagementService,
		site:              site,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// Index handles GET /
func (h *WorksHandlers) Index(c *gin.Context) {
	visitorID, _ := middleware.GetVisitorID(c)
	marker := h.perfTracker.StartOperation("page_index", visitorID)
	defer marker.Complete()

	works := h.engagementService.Index()

	page := h.site
	page.Title = "Works · " + page.SiteName
	page.Canonical = h.engagementService.BaseURL() + "/"

	var buf bytes.Buffer
	if err := templates.RenderIndex(&buf, templates.IndexPage{Page: page, Works: works}); err != nil {
		marker.SetError(err)
		h.logger.Content().Error("Failed to render index", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render page"})
		return
	}

	c.Data(http.StatusOK, htmlContentType, buf.Bytes())
}

// Work handles GET /works/:slug
func (h *WorksHandlers) Work(c *gin.Context) {
	start := time.Now()
	slug := c.Param("slug")
	visitorID, _ := middleware.GetVisitorID(c)

	marker := h.perfTracker.StartOperation("page_work", visitorID)
	defer marker.Complete()
	marker.AddMetadata("slug", slug)

	page, work, err := h.engagementService.WorkPage(c.Request.Context(), services.Action{VisitorID: visitorID, Slug: slug}, h.site)
	if err != nil {
		marker.SetError(err)
		h.renderError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := templates.RenderWork(&buf, page); err != nil {
		marker.SetError(err)
		h.logger.Content().Error("Failed to render work", "slug", slug, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render page"})
		return
	}

	h.logger.WithContext(logging.ChannelContent, c.Request.Context()).Debug("Work page rendered",
		"workId", work.ID, "slug", slug, "duration", time.Since(start))
	c.Data(http.StatusOK, htmlContentType, buf.Bytes())
}

func (h *WorksHandlers) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	p := templates.ErrorPage{Page: h.site, Heading: "Something went wrong", Message: "This page could not be shown."}
	if errors.Is(err, content.ErrWorkNotFound) {
		status = http.StatusNotFound
		p.Heading = "Not found"
		p.Message = "There is no published work at this address."
	} else {
		h.logger.Content().Error("Failed to build work page", "path", c.Request.URL.Path, "error", err.Error())
	}
	p.Page.Title = p.Heading

	var buf bytes.Buffer
	if renderErr := templates.RenderError(&buf, p); renderErr != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Data(status, htmlContentType, buf.Bytes())
}
