// Package config provides centralized default values for folio
package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		// godotenv.Load never overrides variables already present in the environment.
		if err := godotenv.Load(); err == nil {
			log.Println("Loaded configuration overrides from .env file")
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

// getEnvSecret behaves like getEnvString but never logs the value.
func getEnvSecret(key string) string {
	val := os.Getenv(key)
	if val != "" {
		log.Printf("Config override: %s=<redacted>", key)
	}
	return val
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	BaseURL            string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	AllowedOrigins     string
	SiteName           string
	WidgetHost         string

	// Filesystem Layout
	ContentDir string
	MediaDir   string
	StaticDir  string
	PublicDir  string

	// Database Pool
	DBPath                   string
	TursoDatabaseURL         string
	TursoAuthToken           string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	SlowQueryThreshold       time.Duration

	// Visitor Storage
	Secret              string
	VisitorCookieName   string
	VisitorTokenTTL     time.Duration
	StorageQuotaBytes   int64
	StorageEventBacklog int

	// Content
	CatalogReloadDebounce time.Duration

	// Sitemap
	SitemapSchedule string

	// Notification
	ResendAPIKey  string
	NotifyEmail   string
	EmailFrom     string
	EmailFromName string

	// Logging
	LogDirectory  string
	LogJSON       bool
	LogToFile     bool
	LogLevelDebug bool
)

func init() {
	Load()
}

// Load (re)reads every setting from the environment. It runs once at package
// initialization; tests call it again after changing the environment.
func Load() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	BaseURL = getEnvString("FOLIO_BASE_URL", "http://localhost:8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	AllowedOrigins = getEnvString("FOLIO_ALLOWED_ORIGINS", "http://localhost:4321,http://127.0.0.1:4321")
	SiteName = getEnvString("FOLIO_SITE_NAME", "Folio")
	WidgetHost = getEnvString("FOLIO_WIDGET_HOST", "server")

	// Filesystem Layout
	ContentDir = getEnvString("FOLIO_CONTENT_DIR", "content")
	MediaDir = getEnvString("FOLIO_MEDIA_DIR", "media")
	StaticDir = getEnvString("FOLIO_STATIC_DIR", "web/static")
	PublicDir = getEnvString("FOLIO_PUBLIC_DIR", "public")

	// Database Pool
	DBPath = getEnvString("FOLIO_DB_PATH", "db/folio.db")
	TursoDatabaseURL = getEnvString("TURSO_DATABASE_URL", "")
	TursoAuthToken = getEnvSecret("TURSO_AUTH_TOKEN")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	SlowQueryThreshold = getEnvDuration("DB_SLOW_QUERY_THRESHOLD", 50*time.Millisecond)

	// Visitor Storage
	Secret = getEnvSecret("FOLIO_SECRET")
	VisitorCookieName = getEnvString("FOLIO_VISITOR_COOKIE", "folio_visitor")
	VisitorTokenTTL = time.Duration(getEnvInt("FOLIO_VISITOR_TTL_DAYS", 365)) * 24 * time.Hour
	// Browsers give an origin roughly 5MB of local storage.
	StorageQuotaBytes = getEnvInt64("FOLIO_STORAGE_QUOTA_BYTES", 5*1024*1024)
	StorageEventBacklog = getEnvInt("FOLIO_STORAGE_EVENT_BACKLOG", 16)

	// Content
	CatalogReloadDebounce = getEnvDuration("FOLIO_CATALOG_DEBOUNCE", 500*time.Millisecond)

	// Sitemap
	SitemapSchedule = getEnvString("FOLIO_SITEMAP_SCHEDULE", "")

	// Notification
	ResendAPIKey = getEnvSecret("RESEND_API_KEY")
	NotifyEmail = getEnvString("FOLIO_NOTIFY_EMAIL", "")
	EmailFrom = getEnvString("FOLIO_EMAIL_FROM", "noreply@localhost")
	EmailFromName = getEnvString("FOLIO_EMAIL_FROM_NAME", "Folio")

	// Logging
	LogDirectory = getEnvString("FOLIO_LOG_DIR", "logs")
	LogJSON = getEnvBool("FOLIO_LOG_JSON", true)
	LogToFile = getEnvBool("FOLIO_LOG_TO_FILE", false)
	LogLevelDebug = getEnvBool("FOLIO_LOG_DEBUG", false)
}
