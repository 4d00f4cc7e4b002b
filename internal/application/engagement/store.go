package engagement

import (
	"context"
	"encoding/json"
	"fmt"

	entity "github.com/AtRiskMedia/folio-go/internal/domain/entities/engagement"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/storage"
)

// SaveObserver is told about every successful save.
type SaveObserver func(key string)

// Store reads and writes one work's record in a storage area.
type Store struct {
	kv       storage.KeyValue
	workID   string
	key      string
	logger   *logging.ChanneledLogger
	observer SaveObserver
}

// NewStore creates a store for workID over kv.
func NewStore(kv storage.KeyValue, workID string, logger *logging.ChanneledLogger) *Store {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Store{
		kv:     kv,
		workID: workID,
		key:    entity.StorageKey(workID),
		logger: logger,
	}
}

// WithObserver registers fn to run after each successful save.
func (s *Store) WithObserver(fn SaveObserver) *Store {
	s.observer = fn
	return s
}

// Key returns the storage key of the record.
func (s *Store) Key() string { return s.key }

// Load returns the stored record. A missing key, a read failure or malformed
// JSON all yield the zero record; the stored value is left untouched.
func (s *Store) Load(ctx context.Context) entity.Record {
	raw, ok, err := s.kv.GetItem(ctx, s.key)
	if err != nil {
		s.logger.Storage().Warn("Failed to read engagement record, using defaults",
			"workId", s.workID, "key", s.key, "error", err.Error())
		return entity.NewRecord()
	}
	if !ok {
		return entity.NewRecord()
	}

	var record entity.Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.logger.Storage().Warn("Discarding malformed engagement record",
			"workId", s.workID, "key", s.key, "error", err.Error())
		return entity.NewRecord()
	}

	return record.Normalize()
}

// Save writes record in a single SetItem. Failures are logged and returned;
// the caller's in-memory record stays authoritative for the session.
func (s *Store) Save(ctx context.Context, record entity.Record) error {
	payload, err := json.Marshal(record.Normalize())
	if err != nil {
		s.logger.Storage().Error("Failed to encode engagement record", "workId", s.workID, "error", err.Error())
		return fmt.Errorf("failed to encode engagement record: %w", err)
	}

	if err := s.kv.SetItem(ctx, s.key, string(payload)); err != nil {
		s.logger.Storage().Error("Failed to save engagement record",
			"workId", s.workID, "key", s.key, "size", len(payload), "error", err.Error())
		return fmt.Errorf("failed to save engagement record: %w", err)
	}

	if s.observer != nil {
		s.observer(s.key)
	}
	return nil
}
