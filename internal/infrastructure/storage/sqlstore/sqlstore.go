// Package sqlstore keeps visitor storage areas in the application database.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/storage"
)

// Store keeps every visitor's area in the visitor_storage table.
type Store struct {
	db     *database.DB
	quota  int64
	logger *logging.ChanneledLogger
}

// New creates a store over db. A quota of zero means unlimited.
func New(db *database.DB, quota int64, logger *logging.ChanneledLogger) *Store {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Store{db: db, quota: quota, logger: logger}
}

// Area returns the storage area owned by visitorID.
func (s *Store) Area(visitorID string) storage.KeyValue {
	return &sqlArea{store: s, visitorID: visitorID}
}

type sqlArea struct {
	store     *Store
	visitorID string
}

func (a *sqlArea) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := a.store.db.QueryRowContext(ctx,
		`SELECT storage_value FROM visitor_storage WHERE visitor_id = ? AND storage_key = ?`,
		a.visitorID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (a *sqlArea) SetItem(ctx context.Context, key, value string) error {
	start := time.Now()

	tx, err := a.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin storage write: %w", err)
	}
	defer tx.Rollback()

	if a.store.quota > 0 {
		var used int64
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(LENGTH(storage_key) + LENGTH(storage_value)), 0)
			 FROM visitor_storage WHERE visitor_id = ? AND storage_key <> ?`,
			a.visitorID, key).Scan(&used)
		if err != nil {
			return fmt.Errorf("failed to measure storage usage: %w", err)
		}
		if used+storage.EntrySize(key, value) > a.store.quota {
			return storage.ErrQuotaExceeded
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO visitor_storage (visitor_id, storage_key, storage_value, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(visitor_id, storage_key) DO UPDATE SET
		   storage_value = excluded.storage_value,
		   updated_at = excluded.updated_at`,
		a.visitorID, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit storage write: %w", err)
	}

	a.store.logger.Storage().Debug("Storage item written",
		"visitorId", logging.SanitizeVisitorID(a.visitorID),
		"key", key,
		"size", len(value),
		"duration", time.Since(start))
	return nil
}

func (a *sqlArea) RemoveItem(ctx context.Context, key string) error {
	_, err := a.store.db.ExecContext(ctx,
		`DELETE FROM visitor_storage WHERE visitor_id = ? AND storage_key = ?`,
		a.visitorID, key)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
