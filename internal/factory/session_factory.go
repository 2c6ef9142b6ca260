package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/adapters/session"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
)

// SessionStore is a session store that owns background resources
type SessionStore interface {
	core.SessionStore
	Stop()
}

// SessionStoreFactory creates session stores based on configuration
type SessionStoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSessionStoreFactory creates a new session store factory
func NewSessionStoreFactory(cfg *config.Config, logger *zap.Logger) *SessionStoreFactory {
	return &SessionStoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSessionStore creates a session store based on the configuration
func (f *SessionStoreFactory) CreateSessionStore() (SessionStore, error) {
	sessionCfg, err := f.cfg.GetSession()
	if err != nil {
		return nil, err
	}

	f.logger.Info("Using session store",
		zap.String("store", sessionCfg.Store),
		zap.Duration("ttl", sessionCfg.TTL))

	switch sessionCfg.Store {
	case "memory":
		return session.NewMemoryStore(sessionCfg.TTL, f.logger, sessionCfg.CleanupFrequency), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sessionCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		store, err := session.NewSQLiteStore(sessionCfg.SQLitePath, sessionCfg.TTL, f.logger, sessionCfg.CleanupFrequency)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "mysql":
		store, err := session.NewMySQLStore(sessionCfg.MySQLDSN, sessionCfg.TTL, f.logger, sessionCfg.CleanupFrequency)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store, err := session.NewRedisStore(ctx, &redis.Options{
			Addr:     sessionCfg.RedisAddr,
			Password: sessionCfg.RedisPassword,
			DB:       sessionCfg.RedisDB,
		}, sessionCfg.TTL, f.logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported session store: %s", sessionCfg.Store)
	}
}
