package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
)

func newTestSQLiteStore(t *testing.T, ttl time.Duration) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"), ttl, zap.NewNop(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(store.Stop)
	return store
}

func TestSQLiteStore(t *testing.T) {
	testStoreContract(t, newTestSQLiteStore(t, time.Hour))
}

func TestSQLiteStore_ExpiryAndCleanup(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t, time.Minute)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, err := store.Update(ctx, "old", begin)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Load(ctx, "old")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	_, err = store.Update(ctx, "new", begin)
	require.NoError(t, err)

	require.NoError(t, store.Cleanup(ctx))

	var count int
	require.NoError(t, store.db.Get(&count, `SELECT COUNT(*) FROM sessions`))
	assert.Equal(t, 1, count)

	// The expired row was replaced by a fresh state
	state, err := store.Update(ctx, "old", begin)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.Seq)
}
