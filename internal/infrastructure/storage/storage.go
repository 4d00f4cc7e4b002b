// Package storage provides the key-value storage areas that back visitor
// engagement state. An Area behaves like a browser's local storage: string
// keys, string values, a size quota, and single-assignment writes.
package storage

import (
	"context"
	"errors"
	"sync"
	"unicode/utf8"
)

// ErrQuotaExceeded is returned when a write would push an area past its quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KeyValue is one visitor's storage area.
type KeyValue interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(ctx context.Context, key string) (string, bool, error)
	// SetItem replaces the value under key in a single write.
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// EntrySize is the quota cost of one entry. Browsers count characters rather
// than bytes, so runes are used here.
func EntrySize(key, value string) int64 {
	return int64(utf8.RuneCountInString(key) + utf8.RuneCountInString(value))
}

// MemoryArea is an in-process KeyValue. A quota of zero means unlimited.
type MemoryArea struct {
	mu    sync.RWMutex
	items map[string]string
	quota int64
}

// NewMemoryArea creates an empty area with the given quota.
func NewMemoryArea(quota int64) *MemoryArea {
	return &MemoryArea{
		items: make(map[string]string),
		quota: quota,
	}
}

func (m *MemoryArea) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.items[key]
	return value, ok, nil
}

func (m *MemoryArea) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quota > 0 {
		var used int64
		for k, v := range m.items {
			if k != key {
				used += EntrySize(k, v)
			}
		}
		if used+EntrySize(key, value) > m.quota {
			return ErrQuotaExceeded
		}
	}

	m.items[key] = value
	return nil
}

func (m *MemoryArea) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryArea) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
