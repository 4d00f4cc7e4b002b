package handlers

import (
	"net/http"
	"os"

	"github.com/AtRiskMedia/folio-go/internal/application/sitemap"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// SitemapHandlers serves the generated sitemap.
type SitemapHandlers struct {
	generator *sitemap.Generator
	logger    *logging.ChanneledLogger
}

// NewSitemapHandlers creates sitemap handlers.
func NewSitemapHandlers(generator *sitemap.Generator, logger *logging.ChanneledLogger) *SitemapHandlers {
	return &SitemapHandlers{generator: generator, logger: logger}
}

// Sitemap handles GET /sitemap.xml, generating the file on first request.
func (h *SitemapHandlers) Sitemap(c *gin.Context) {
	path := h.generator.Path()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := h.generator.Generate(); err != nil {
			h.logger.Sitemap().Error("On-demand sitemap generation failed", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sitemap unavailable"})
			return
		}
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.File(path)
}
