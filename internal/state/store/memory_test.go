package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreMergeKeepsExistingFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SetMerge(ctx, "trading_state", "current", map[string]any{"a": 1, "b": "x"}))
	require.NoError(t, s.SetMerge(ctx, "trading_state", "current", map[string]any{"b": "y"}))

	doc, err := s.Get(ctx, "trading_state", "current")
	require.NoError(t, err)
	require.Equal(t, 1, doc["a"])
	require.Equal(t, "y", doc["b"])
}

func TestMemoryStoreSetReplaces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "trading_state_history", "state_1", map[string]any{"a": 1}))
	require.NoError(t, s.Set(ctx, "trading_state_history", "state_1", map[string]any{"b": 2}))

	doc, err := s.Get(ctx, "trading_state_history", "state_1")
	require.NoError(t, err)
	require.NotContains(t, doc, "a")
	require.Equal(t, 2, doc["b"])
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "trading_state", "current")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreServerTimestamp(t *testing.T) {
	s := NewMemoryStore()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })
	ctx := context.Background()

	require.NoError(t, s.SetMerge(ctx, "trading_state", "current", map[string]any{"last_updated": ServerTimestamp}))

	doc, err := s.Get(ctx, "trading_state", "current")
	require.NoError(t, err)
	require.Equal(t, fixed, doc["last_updated"])
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "c", "d", map[string]any{"a": 1}))

	doc, err := s.Get(ctx, "c", "d")
	require.NoError(t, err)
	doc["a"] = 99

	again, err := s.Get(ctx, "c", "d")
	require.NoError(t, err)
	require.Equal(t, 1, again["a"])
}
