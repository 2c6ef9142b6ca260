package session

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLite has no row locks; the single connection serializes transactions
var sqliteDialect = dialect{
	name:            "sqlite",
	selectForUpdate: `SELECT state, expires_at FROM sessions WHERE session_id = ?`,
	upsert: `
		INSERT INTO sessions (session_id, state, updated_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at
	`,
}

// SQLiteStore is a SQLite implementation of the SessionStore interface
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore creates a new SQLite session store
func NewSQLiteStore(dbPath string, ttl time.Duration, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index on expires_at for faster cleanup
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	store := &SQLiteStore{newSQLStore(db, sqliteDialect, ttl, logger, cleanupFreq)}
	store.startCleanupTask()

	return store, nil
}
