package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(time.Hour, zap.NewNop(), time.Minute)
	defer store.Stop()

	testStoreContract(t, store)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, zap.NewNop(), 0)
	defer store.Stop()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, err := store.Update(ctx, "s1", begin)
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = store.Load(ctx, "s1")
	require.NoError(t, err)

	// An update refreshes the TTL
	_, err = store.Update(ctx, "s1", begin)
	require.NoError(t, err)
	now = now.Add(59 * time.Minute)
	state, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), state.Seq)

	now = now.Add(time.Hour)
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	// An expired session starts over
	next, err := store.Update(ctx, "s1", begin)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next.Seq)
}

func TestMemoryStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute, zap.NewNop(), 0)
	defer store.Stop()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, err := store.Update(ctx, "old", begin)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = store.Update(ctx, "new", begin)
	require.NoError(t, err)

	require.NoError(t, store.Cleanup(ctx))
	assert.Len(t, store.entries, 1)
	assert.Contains(t, store.entries, "new")
}
