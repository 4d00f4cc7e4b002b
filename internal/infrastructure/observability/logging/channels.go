// Package logging provides structured logging channels for folio operations
// with per-channel levels and optional per-channel log files.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Channel represents a logical logging channel for different system components
type Channel string

const (
	// System channels
	ChannelSystem   Channel = "system"   // General system operations
	ChannelStartup  Channel = "startup"  // Application startup and initialization
	ChannelShutdown Channel = "shutdown" // Application shutdown and cleanup

	// Business logic channels
	ChannelContent    Channel = "content"    // Works catalog loading and rendering
	ChannelEngagement Channel = "engagement" // Likes, shares and comments
	ChannelSitemap    Channel = "sitemap"    // Sitemap generation

	// Infrastructure channels
	ChannelStorage   Channel = "storage"   // Visitor key-value storage
	ChannelDatabase  Channel = "database"  // Database connections and queries
	ChannelHTTP      Channel = "http"      // Request handling
	ChannelMedia     Channel = "media"     // Cover image processing
	ChannelMessaging Channel = "messaging" // Storage-event websocket hub
	ChannelNotify    Channel = "notify"    // Outbound email notifications

	// Performance and debugging channels
	ChannelSlowQuery Channel = "slow-query" // Slow database queries
	ChannelDebug     Channel = "debug"      // Debug information
)

var allChannels = []Channel{
	ChannelSystem, ChannelStartup, ChannelShutdown,
	ChannelContent, ChannelEngagement, ChannelSitemap,
	ChannelStorage, ChannelDatabase, ChannelHTTP, ChannelMedia, ChannelMessaging, ChannelNotify,
	ChannelSlowQuery, ChannelDebug,
}

// ChanneledLogger provides structured logging with multiple channels
type ChanneledLogger struct {
	channels map[Channel]*slog.Logger
	config   *LoggerConfig
	files    []*os.File
	mu       sync.RWMutex
}

// LoggerConfig contains configuration options for the channeled logger
type LoggerConfig struct {
	// Output configuration
	OutputToFile    bool      `json:"outputToFile"`    // Whether to write logs to files
	OutputToConsole bool      `json:"outputToConsole"` // Whether to write logs to console
	LogDirectory    string    `json:"logDirectory"`    // Directory for log files
	Console         io.Writer `json:"-"`               // Console writer, stdout when nil

	// Formatting configuration
	JSONFormat    bool `json:"jsonFormat"`    // Use JSON format for structured logging
	IncludeSource bool `json:"includeSource"` // Include source file and line in logs

	// Level configuration per channel
	DefaultLevel  slog.Level             `json:"defaultLevel"`  // Default log level
	ChannelLevels map[Channel]slog.Level `json:"channelLevels"` // Per-channel log levels
}

// DefaultLoggerConfig returns a sensible default configuration
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: true,
		LogDirectory:    "logs",
		JSONFormat:      true,
		IncludeSource:   false,
		DefaultLevel:    slog.LevelInfo,
		ChannelLevels:   make(map[Channel]slog.Level),
	}
}

// NewChanneledLogger creates a new channeled logger with the given configuration
func NewChanneledLogger(config *LoggerConfig) (*ChanneledLogger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	if config.ChannelLevels == nil {
		config.ChannelLevels = make(map[Channel]slog.Level)
	}

	logger := &ChanneledLogger{
		channels: make(map[Channel]*slog.Logger),
		config:   config,
	}

	if config.OutputToFile {
		if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	for _, channel := range allChannels {
		channelLogger, err := logger.createChannelLogger(channel)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger for channel %s: %w", channel, err)
		}
		logger.channels[channel] = channelLogger
	}

	return logger, nil
}

// NewDiscardLogger returns a logger that drops every record. Used by tests and
// by components constructed without a logger.
func NewDiscardLogger() *ChanneledLogger {
	logger, _ := NewChanneledLogger(&LoggerConfig{
		OutputToConsole: true,
		Console:         io.Discard,
		DefaultLevel:    slog.LevelError + 4,
	})
	return logger
}

// createChannelLogger creates a slog.Logger for a specific channel
func (cl *ChanneledLogger) createChannelLogger(channel Channel) (*slog.Logger, error) {
	level := cl.config.DefaultLevel
	if channelLevel, exists := cl.config.ChannelLevels[channel]; exists {
		level = channelLevel
	}

	var writers []io.Writer

	if cl.config.OutputToConsole {
		if cl.config.Console != nil {
			writers = append(writers, cl.config.Console)
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	if cl.config.OutputToFile {
		path := filepath.Join(cl.config.LogDirectory, fmt.Sprintf("%s.log", string(channel)))
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		cl.files = append(cl.files, file)
		writers = append(writers, file)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cl.config.IncludeSource,
	}

	var handler slog.Handler
	if cl.config.JSONFormat {
		handler = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	return slog.New(handler).With(slog.String("channel", string(channel))), nil
}

func (cl *ChanneledLogger) get(channel Channel) *slog.Logger {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.channels[channel]
}

func (cl *ChanneledLogger) System() *slog.Logger     { return cl.get(ChannelSystem) }
func (cl *ChanneledLogger) Startup() *slog.Logger    { return cl.get(ChannelStartup) }
func (cl *ChanneledLogger) Shutdown() *slog.Logger   { return cl.get(ChannelShutdown) }
func (cl *ChanneledLogger) Content() *slog.Logger    { return cl.get(ChannelContent) }
func (cl *ChanneledLogger) Engagement() *slog.Logger { return cl.get(ChannelEngagement) }
func (cl *ChanneledLogger) Sitemap() *slog.Logger    { return cl.get(ChannelSitemap) }
func (cl *ChanneledLogger) Storage() *slog.Logger    { return cl.get(ChannelStorage) }
func (cl *ChanneledLogger) Database() *slog.Logger   { return cl.get(ChannelDatabase) }
func (cl *ChanneledLogger) HTTP() *slog.Logger       { return cl.get(ChannelHTTP) }
func (cl *ChanneledLogger) Media() *slog.Logger      { return cl.get(ChannelMedia) }
func (cl *ChanneledLogger) Messaging() *slog.Logger  { return cl.get(ChannelMessaging) }
func (cl *ChanneledLogger) Notify() *slog.Logger     { return cl.get(ChannelNotify) }
func (cl *ChanneledLogger) SlowQuery() *slog.Logger  { return cl.get(ChannelSlowQuery) }
func (cl *ChanneledLogger) Debug() *slog.Logger      { return cl.get(ChannelDebug) }

// GetChannel returns a logger for a specific channel
func (cl *ChanneledLogger) GetChannel(channel Channel) *slog.Logger {
	if logger := cl.get(channel); logger != nil {
		return logger
	}
	return cl.get(ChannelSystem)
}

// WithVisitor returns a logger with visitor context. The id is masked.
func (cl *ChanneledLogger) WithVisitor(channel Channel, visitorID string) *slog.Logger {
	return cl.GetChannel(channel).With(slog.String("visitorId", SanitizeVisitorID(visitorID)))
}

// WithOperation returns a logger with operation context
func (cl *ChanneledLogger) WithOperation(channel Channel, operation string) *slog.Logger {
	return cl.GetChannel(channel).With(slog.String("operation", operation))
}

type contextKey string

const (
	// RequestIDKey carries the request id placed by the HTTP middleware.
	RequestIDKey contextKey = "requestId"
	// VisitorIDKey carries the authenticated visitor id.
	VisitorIDKey contextKey = "visitorId"
)

// WithContext returns a logger with request and visitor ids found in ctx
func (cl *ChanneledLogger) WithContext(channel Channel, ctx context.Context) *slog.Logger {
	logger := cl.GetChannel(channel)
	if ctx == nil {
		return logger
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		logger = logger.With(slog.String("requestId", requestID))
	}
	if visitorID, ok := ctx.Value(VisitorIDKey).(string); ok && visitorID != "" {
		logger = logger.With(slog.String("visitorId", SanitizeVisitorID(visitorID)))
	}

	return logger
}

// LogSlowQuery logs a slow database query
func (cl *ChanneledLogger) LogSlowQuery(query string, duration time.Duration) {
	cl.SlowQuery().Warn("Slow query detected",
		slog.String("query", sanitizeQuery(query)),
		slog.Duration("duration", duration),
	)
}

// LogError logs an error with appropriate context and channel
func (cl *ChanneledLogger) LogError(channel Channel, operation string, err error, metadata map[string]any) {
	logger := cl.GetChannel(channel).With(
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)

	for key, value := range metadata {
		logger = logger.With(slog.Any(key, value))
	}

	logger.Error("Operation failed")
}

// LogStartupPhase logs application startup phases
func (cl *ChanneledLogger) LogStartupPhase(phase string, duration time.Duration, success bool, metadata map[string]any) {
	logger := cl.Startup().With(
		slog.String("phase", phase),
		slog.Duration("duration", duration),
		slog.Bool("success", success),
	)

	for key, value := range metadata {
		logger = logger.With(slog.Any(key, value))
	}

	if success {
		logger.Info("Startup phase completed")
	} else {
		logger.Error("Startup phase failed")
	}
}

// sanitizeQuery flattens whitespace and truncates long queries
func sanitizeQuery(query string) string {
	query = strings.ReplaceAll(query, "\n", " ")
	query = strings.ReplaceAll(query, "\t", " ")

	if len(query) > 500 {
		query = query[:500] + "..."
	}

	return query
}

// SanitizeVisitorID partially masks visitor ids for privacy
func SanitizeVisitorID(visitorID string) string {
	if len(visitorID) <= 8 {
		return "********"
	}
	return visitorID[:4] + "****" + visitorID[len(visitorID)-4:]
}

// Close closes all log file handles
func (cl *ChanneledLogger) Close() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	var firstErr error
	for _, f := range cl.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	cl.files = nil
	return firstErr
}

// SetChannelLevel dynamically sets the log level for a specific channel
func (cl *ChanneledLogger) SetChannelLevel(channel Channel, level slog.Level) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.channels[channel]; !exists {
		return fmt.Errorf("channel %s does not exist", channel)
	}

	cl.config.ChannelLevels[channel] = level

	newLogger, err := cl.createChannelLogger(channel)
	if err != nil {
		return fmt.Errorf("failed to recreate logger for channel %s: %w", channel, err)
	}
	cl.channels[channel] = newLogger

	return nil
}

// GetChannelLevels returns the current log levels for all channels.
func (cl *ChanneledLogger) GetChannelLevels() map[string]string {
	cl.mu.RLock()
	defer cl.mu.RUnlock()

	levels := make(map[string]string)
	for channel := range cl.channels {
		if level, ok := cl.config.ChannelLevels[channel]; ok {
			levels[string(channel)] = level.String()
		} else {
			levels[string(channel)] = cl.config.DefaultLevel.String()
		}
	}
	return levels
}
