package factory

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/config"
)

func testConfig() *config.Config {
	return config.NewFromViper(config.NewEmptyViper())
}

func TestSessionStoreFactory(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, err := NewSessionStoreFactory(testConfig(), zap.NewNop()).CreateSessionStore()
		require.NoError(t, err)
		store.Stop()
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := testConfig()
		cfg.Set("session.store", "sqlite")
		cfg.Set("session.sqlite_path", filepath.Join(t.TempDir(), "nested", "sessions.db"))

		store, err := NewSessionStoreFactory(cfg, zap.NewNop()).CreateSessionStore()
		require.NoError(t, err)
		store.Stop()
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig()
		cfg.Set("session.store", "redis")
		cfg.Set("session.redis_addr", mr.Addr())

		store, err := NewSessionStoreFactory(cfg, zap.NewNop()).CreateSessionStore()
		require.NoError(t, err)
		store.Stop()
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := testConfig()
		cfg.Set("session.store", "etcd")

		_, err := NewSessionStoreFactory(cfg, zap.NewNop()).CreateSessionStore()
		assert.ErrorContains(t, err, "unsupported session store")
	})
}

func TestAPIClientFactory(t *testing.T) {
	classifier, err := NewAPIClientFactory(testConfig(), zap.NewNop()).CreateClassifier()
	require.NoError(t, err)
	assert.NotNil(t, classifier)

	cfg := testConfig()
	cfg.Set("api.timeout_ms", 0)
	_, err = NewAPIClientFactory(cfg, zap.NewNop()).CreateClassifier()
	assert.Error(t, err)
}

func TestTextProcessorFactory(t *testing.T) {
	processor := NewTextProcessorFactory(zap.NewNop()).CreateTextProcessor()
	require.NotNil(t, processor)
	assert.Equal(t, "hello", processor.ProcessText("  hello\x00  ", 100))
}
