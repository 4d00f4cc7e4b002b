// Package container provides dependency injection for all singleton services
package container

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/application/engagement"
	"github.com/AtRiskMedia/folio-go/internal/application/services"
	"github.com/AtRiskMedia/folio-go/internal/application/sitemap"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/content"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/storage/sqlstore"
	"github.com/AtRiskMedia/folio-go/internal/presentation/templates"
	"github.com/AtRiskMedia/folio-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services
	EngagementService *services.EngagementService
	Sitemap           *sitemap.Generator
	SitemapScheduler  *sitemap.Scheduler

	// Infrastructure Dependencies
	DB       *database.DB
	Storage  *sqlstore.Store
	Catalog  *content.Catalog
	Covers   *media.CoverProcessor
	Tokens   *security.VisitorTokens
	Hub      *messaging.StorageHub
	Notifier *email.Notifier

	// Presentation
	Site templates.Page

	// Observability
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
}

// NewLogger builds the channeled logger from the logging settings.
func NewLogger() (*logging.ChanneledLogger, error) {
	cfg := logging.DefaultLoggerConfig()
	cfg.OutputToFile = config.LogToFile
	cfg.LogDirectory = config.LogDirectory
	cfg.JSONFormat = config.LogJSON
	if config.LogLevelDebug {
		cfg.DefaultLevel = slog.LevelDebug
	}
	return logging.NewChanneledLogger(cfg)
}

// NewContainer creates and wires all singleton services. The database schema
// is created before the container is returned; the catalog is not loaded.
func NewContainer(ctx context.Context, logger *logging.ChanneledLogger) (*Container, error) {
	db, err := database.Open(database.Config{
		SQLitePath:      config.DBPath,
		TursoURL:        config.TursoDatabaseURL,
		TursoToken:      config.TursoAuthToken,
		MaxOpenConns:    config.DBMaxOpenConns,
		MaxIdleConns:    config.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(config.DBConnMaxIdleMinutes) * time.Minute,
		SlowThreshold:   config.SlowQueryThreshold,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := database.NewTableCreator().CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	secret := config.Secret
	if secret == "" {
		// Tokens issued now will not survive a restart.
		secret, err = security.GenerateSecureKey(64)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Println("FOLIO_SECRET not set - using an ephemeral visitor token key")
	}
	tokens, err := security.NewVisitorTokens(secret, config.VisitorTokenTTL)
	if err != nil {
		db.Close()
		return nil, err
	}

	catalog := content.NewCatalog(config.ContentDir, logger)
	covers := media.NewCoverProcessor(config.MediaDir, logger)
	hub := messaging.NewStorageHub(config.StorageEventBacklog, logger)
	store := sqlstore.New(db, config.StorageQuotaBytes, logger)

	baseURL := strings.TrimRight(config.BaseURL, "/")
	var (
		notifier  *email.Notifier
		onComment engagement.CommentHook
	)
	mailer, err := email.NewService(email.Options{
		APIKey:   config.ResendAPIKey,
		To:       config.NotifyEmail,
		From:     config.EmailFrom,
		FromName: config.EmailFromName,
	})
	if err == nil {
		notifier = email.NewNotifier(mailer, func(workID string) string {
			if w, err := catalog.FindByID(workID); err == nil {
				return baseURL + "/works/" + w.Slug
			}
			return baseURL
		}, logger)
		onComment = notifier.CommentStored
	} else {
		logger.Notify().Info("Comment notifications disabled", "reason", err.Error())
	}

	engagementService := services.NewEngagementService(services.EngagementServiceConfig{
		Works:     catalog,
		Areas:     store,
		Covers:    covers,
		Events:    hub,
		OnComment: onComment,
		BaseURL:   baseURL,
		Host:      templates.ParseHost(config.WidgetHost),
		Logger:    logger,
	})

	return &Container{
		EngagementService: engagementService,
		Sitemap:           sitemap.NewGenerator(catalog, config.PublicDir, baseURL, sitemap.DefaultPath(config.PublicDir), logger),
		SitemapScheduler:  sitemap.NewScheduler(time.UTC),

		DB:       db,
		Storage:  store,
		Catalog:  catalog,
		Covers:   covers,
		Tokens:   tokens,
		Hub:      hub,
		Notifier: notifier,

		Site: templates.Page{
			SiteName: config.SiteName,
			Host:     templates.ParseHost(config.WidgetHost),
		},

		Logger:      logger,
		PerfTracker: performance.NewTracker(config.SlowQueryThreshold*4, logger),
	}, nil
}

// Close releases the database and waits for pending notifications.
func (c *Container) Close() error {
	c.Notifier.Wait()
	return c.DB.Close()
}
