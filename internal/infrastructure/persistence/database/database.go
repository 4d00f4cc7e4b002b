// Package database provides the core functionality for creating and managing
// the folio database connection.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

const (
	DriverSQLite = "sqlite3"
	DriverLibSQL = "libsql"
)

// Config selects the backing database. When TursoURL and TursoToken are both
// set the libsql driver is used, otherwise a local SQLite file at SQLitePath.
type Config struct {
	SQLitePath      string
	TursoURL        string
	TursoToken      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	SlowThreshold   time.Duration
}

// DB represents a wrapper around the standard SQL database connection.
type DB struct {
	*sql.DB
	Driver        string
	slowThreshold time.Duration
	logger        *logging.ChanneledLogger
}

// NewConnection establishes a new database connection for the specified driver.
func NewConnection(driverName, dataSourceName string) (*DB, error) {
	return NewConnectionWithLogger(driverName, dataSourceName, logging.NewDiscardLogger())
}

// NewConnectionWithLogger establishes a new database connection for the specified driver with logging.
func NewConnectionWithLogger(driverName, dataSourceName string, logger *logging.ChanneledLogger) (*DB, error) {
	start := time.Now()
	logger.Database().Debug("Creating new database connection", "driverName", driverName)

	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		logger.Database().Error("Failed to open database connection", "error", err.Error(), "driverName", driverName)
		return nil, err
	}

	if err = db.Ping(); err != nil {
		logger.Database().Error("Database ping failed", "error", err.Error(), "driverName", driverName)
		db.Close()
		return nil, err
	}

	logger.Database().Info("Database connection established", "driverName", driverName, "duration", time.Since(start))

	return &DB{DB: db, Driver: driverName, slowThreshold: 50 * time.Millisecond, logger: logger}, nil
}

// Open connects to Turso or SQLite according to cfg and applies pool limits.
func Open(cfg Config, logger *logging.ChanneledLogger) (*DB, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	var (
		db  *DB
		err error
	)

	if cfg.TursoURL != "" && cfg.TursoToken != "" {
		db, err = NewConnectionWithLogger(DriverLibSQL, cfg.TursoURL+"?authToken="+cfg.TursoToken, logger)
		if err != nil {
			return nil, fmt.Errorf("turso connection failed: %w", err)
		}
	} else {
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path is required when turso is not configured")
		}
		dsn := cfg.SQLitePath
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
			// WAL keeps readers off the writer; busy_timeout covers short
			// write bursts from simultaneous visitors.
			dsn += "?_journal_mode=WAL&_busy_timeout=5000"
		}
		db, err = NewConnectionWithLogger(DriverSQLite, dsn, logger)
		if err != nil {
			return nil, fmt.Errorf("sqlite connection failed: %w", err)
		}
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.SlowThreshold > 0 {
		db.slowThreshold = cfg.SlowThreshold
	}

	return db, nil
}

// ExecContext runs a statement and reports it on the slow-query channel when
// it exceeds the configured threshold.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := db.DB.ExecContext(ctx, query, args...)
	db.observe(query, time.Since(start))
	return res, err
}

// QueryRowContext runs a single-row query with slow-query reporting.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := db.DB.QueryRowContext(ctx, query, args...)
	db.observe(query, time.Since(start))
	return row
}

func (db *DB) observe(query string, elapsed time.Duration) {
	if db.logger != nil && elapsed > db.slowThreshold {
		db.logger.LogSlowQuery(query, elapsed)
	}
}

// ConnectionInfo describes the backing store for status output.
func (db *DB) ConnectionInfo() string {
	if db.Driver == DriverLibSQL {
		return "Turso (libsql)"
	}
	return "SQLite"
}
