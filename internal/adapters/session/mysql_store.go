package session

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var mysqlDialect = dialect{
	name:            "mysql",
	selectForUpdate: `SELECT state, expires_at FROM sessions WHERE session_id = ? FOR UPDATE`,
	upsert: `
		INSERT INTO sessions (session_id, state, updated_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			state = VALUES(state),
			updated_at = VALUES(updated_at),
			expires_at = VALUES(expires_at)
	`,
}

// MySQLStore is a MySQL implementation of the SessionStore interface
type MySQLStore struct {
	*sqlStore
}

// NewMySQLStore creates a new MySQL session store
func NewMySQLStore(dsn string, ttl time.Duration, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLStore, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id VARCHAR(64) PRIMARY KEY,
			state MEDIUMTEXT NOT NULL,
			updated_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_sessions_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	store := &MySQLStore{newSQLStore(db, mysqlDialect, ttl, logger, cleanupFreq)}
	store.startCleanupTask()

	return store, nil
}
