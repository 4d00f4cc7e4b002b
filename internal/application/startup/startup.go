// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/application/container"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/content"
	"github.com/AtRiskMedia/folio-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/folio-go/pkg/config"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Initialize performs the complete startup sequence and blocks until SIGINT
// or SIGTERM, then shuts everything down in reverse order.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("\033[32m" + `
   ▄▄▄▄▄  ▄▄▄▄  ▄     ▄  ▄▄▄▄
   █▄▄▄  █    █ █     █ █    █
   █     ▀▄▄▄▄▀ █▄▄▄▄ █ ▀▄▄▄▄▀
` + "\033[97m" + `
  made by At Risk Media
` + "\033[0m")

	// Step 1: Logging
	log.Println("Initializing logging...")
	logger, err := container.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()

	// Step 2: Container, database and schema
	phaseStart := time.Now()
	appContainer, err := container.NewContainer(ctx, logger)
	if err != nil {
		logger.LogStartupPhase("container", time.Since(phaseStart), false, map[string]any{"error": err.Error()})
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer func() {
		if err := appContainer.Close(); err != nil {
			logger.Shutdown().Error("Error closing container", "error", err.Error())
		}
	}()
	logger.LogStartupPhase("container", time.Since(phaseStart), true, map[string]any{
		"database": appContainer.DB.ConnectionInfo(),
	})

	// Step 3: Load the works catalog
	phaseStart = time.Now()
	if err := appContainer.Catalog.Reload(); err != nil {
		logger.LogStartupPhase("catalog", time.Since(phaseStart), false, map[string]any{"error": err.Error()})
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.LogStartupPhase("catalog", time.Since(phaseStart), true, map[string]any{
		"works": len(appContainer.Catalog.FindAll()),
	})

	g, gctx := errgroup.WithContext(ctx)

	// Step 4: Watch the content directory
	watcher, err := content.NewWatcher(appContainer.Catalog, config.CatalogReloadDebounce, logger, func() {
		if err := appContainer.Sitemap.Generate(); err != nil {
			logger.Sitemap().Error("Sitemap regeneration after reload failed", "error", err.Error())
		}
	})
	if err != nil {
		logger.Startup().Warn("Content watcher unavailable, catalog will not hot reload", "error", err.Error())
	} else if err := watcher.Start(gctx); err != nil {
		logger.Startup().Warn("Content watcher failed to start", "error", err.Error())
		watcher = nil
	}

	// Step 5: Storage event hub
	g.Go(func() error {
		appContainer.Hub.Run(gctx)
		return nil
	})
	logger.Startup().Info("Storage event hub started")

	// Step 6: Sitemap schedule
	if config.SitemapSchedule != "" {
		if err := appContainer.SitemapScheduler.Schedule(config.SitemapSchedule, appContainer.Sitemap); err != nil {
			return err
		}
		appContainer.SitemapScheduler.Start()
		logger.Startup().Info("Sitemap schedule registered",
			"schedule", config.SitemapSchedule, "next", appContainer.SitemapScheduler.Next())
	}

	// Step 7: HTTP server
	httpServer := server.New(config.Port, appContainer)
	g.Go(httpServer.Start)

	g.Go(func() error {
		<-gctx.Done()
		logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Stop(shutdownCtx); err != nil {
			logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
			return err
		}
		logger.Shutdown().Info("HTTP server stopped successfully")
		return nil
	})

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"host", appContainer.Site.Host,
		"address", httpServer.Addr())

	err = g.Wait()
	shutdownStart := time.Now()

	if watcher != nil {
		watcher.Stop()
	}
	appContainer.SitemapScheduler.Stop()
	<-appContainer.Hub.Done()

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))
	return err
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
