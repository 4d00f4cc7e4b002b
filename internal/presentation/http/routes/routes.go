// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"net/http"
	"slices"
	"strings"

	"github.com/AtRiskMedia/folio-go/internal/application/container"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/folio-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/folio-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/folio-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	origins := middleware.ParseOrigins(config.AllowedOrigins)
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(origins))

	r.Static("/static", config.StaticDir)
	r.Static(media.URLPrefix, config.MediaDir)

	// Initialize handlers
	worksHandlers := handlers.NewWorksHandlers(container.EngagementService, container.Site, container.Logger, container.PerfTracker)
	engagementHandlers := handlers.NewEngagementHandlers(container.EngagementService, container.Logger, container.PerfTracker)
	storageHandlers := handlers.NewStorageHandlers(container.Hub, checkOrigin(origins), container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container.EngagementService, container.DB, container.PerfTracker)
	sitemapHandlers := handlers.NewSitemapHandlers(container.Sitemap, container.Logger)

	r.GET("/healthz", healthHandlers.Health)
	r.GET("/sitemap.xml", sitemapHandlers.Sitemap)

	visitor := r.Group("/")
	visitor.Use(middleware.VisitorMiddleware(middleware.VisitorConfig{
		Tokens:     container.Tokens,
		CookieName: config.VisitorCookieName,
		Secure:     strings.HasPrefix(config.BaseURL, "https://"),
	}, container.Logger, container.PerfTracker))
	{
		visitor.GET("/", worksHandlers.Index)
		visitor.GET("/ws/storage", storageHandlers.Events)

		works := visitor.Group("/works/:slug")
		{
			works.GET("", worksHandlers.Work)
			works.GET("/widget", engagementHandlers.Widget)
			works.GET("/engagement", engagementHandlers.Engagement)
			works.POST("/like", engagementHandlers.Like)
			works.POST("/share", engagementHandlers.Share)
			works.POST("/comments/open", engagementHandlers.OpenComments)
			works.POST("/comments/close", engagementHandlers.CloseComments)
			works.POST("/comments/count", engagementHandlers.CountCharacters)
			works.POST("/comments/submit", engagementHandlers.SubmitComment)
		}
	}

	return r
}

// checkOrigin accepts same-origin upgrades plus the configured origins.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://") == r.Host {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}
