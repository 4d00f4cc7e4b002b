package engagement

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entity "github.com/AtRiskMedia/folio-go/internal/domain/entities/engagement"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/storage"
)

type brokenReads struct{ storage.KeyValue }

func (brokenReads) GetItem(context.Context, string) (string, bool, error) {
	return "", false, errors.New("SecurityError")
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryArea(0)
	var saved []string
	store := NewStore(kv, "tides", nil).WithObserver(func(key string) { saved = append(saved, key) })

	assert.Equal(t, "engagement:tides", store.Key())
	assert.Equal(t, entity.NewRecord(), store.Load(ctx))

	want := entity.Record{
		Likes: 3, UserLiked: true, Shares: 9,
		Comments: []entity.Comment{{ID: 42, Text: "ok", Name: "Kit", Timestamp: "2025-01-01T00:00:00.000Z"}},
	}
	require.NoError(t, store.Save(ctx, want))
	if diff := cmp.Diff(want, store.Load(ctx)); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"engagement:tides"}, saved)
}

func TestStoreLoadFallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("read error", func(t *testing.T) {
		store := NewStore(brokenReads{storage.NewMemoryArea(0)}, "x", nil)
		assert.Equal(t, entity.NewRecord(), store.Load(ctx))
	})

	t.Run("wrong shape", func(t *testing.T) {
		kv := storage.NewMemoryArea(0)
		require.NoError(t, kv.SetItem(ctx, entity.StorageKey("x"), `{"likes":"many"}`))
		assert.Equal(t, entity.NewRecord(), NewStore(kv, "x", nil).Load(ctx))
	})

	t.Run("partial record is completed", func(t *testing.T) {
		kv := storage.NewMemoryArea(0)
		require.NoError(t, kv.SetItem(ctx, entity.StorageKey("x"), `{"likes":2}`))
		got := NewStore(kv, "x", nil).Load(ctx)
		assert.Equal(t, 2, got.Likes)
		assert.NotNil(t, got.Comments)
	})
}

func TestStoreSaveQuota(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryArea(40)
	called := false
	store := NewStore(kv, "x", nil).WithObserver(func(string) { called = true })

	rec := entity.NewRecord().AddComment(entity.Comment{ID: 1, Text: "this comment will not fit in the area", Name: "A"})
	err := store.Save(ctx, rec)
	require.ErrorIs(t, err, storage.ErrQuotaExceeded)
	assert.False(t, called)
	assert.Zero(t, kv.Len())
}
