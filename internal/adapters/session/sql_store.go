package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
)

// dialect holds the statements that differ between SQL backends
type dialect struct {
	name            string
	selectForUpdate string
	upsert          string
}

type sessionRow struct {
	State     string `db:"state"`
	ExpiresAt int64  `db:"expires_at"`
}

// sqlStore implements the SessionStore interface over any sqlx database.
// Expiry times are unix seconds so both backends compare them the same way.
type sqlStore struct {
	db          *sqlx.DB
	dialect     dialect
	ttl         time.Duration
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

func newSQLStore(db *sqlx.DB, d dialect, ttl time.Duration, logger *zap.Logger, cleanupFreq time.Duration) *sqlStore {
	return &sqlStore{
		db:          db,
		dialect:     d,
		ttl:         ttl,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}
}

// Load retrieves the state of a session
func (s *sqlStore) Load(ctx context.Context, sessionID string) (*core.SubmissionState, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `
		SELECT state, expires_at
		FROM sessions
		WHERE session_id = ? AND expires_at > ?
	`, sessionID, s.now().Unix())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return decodeState([]byte(row.State))
}

// Update replaces the state of a session inside a transaction
func (s *sqlStore) Update(
	ctx context.Context,
	sessionID string,
	fn func(core.SubmissionState) core.SubmissionState,
) (core.SubmissionState, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.SubmissionState{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := s.now()
	current := core.NewSubmissionState()

	var row sessionRow
	err = tx.GetContext(ctx, &row, s.dialect.selectForUpdate, sessionID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return core.SubmissionState{}, fmt.Errorf("failed to query session: %w", err)
	case row.ExpiresAt > now.Unix():
		stored, err := decodeState([]byte(row.State))
		if err != nil {
			return core.SubmissionState{}, err
		}
		current = *stored
	}

	next := fn(current)
	data, err := encodeState(next)
	if err != nil {
		return core.SubmissionState{}, err
	}

	if _, err := tx.ExecContext(ctx, s.dialect.upsert,
		sessionID, string(data), now.Unix(), now.Add(s.ttl).Unix()); err != nil {
		return core.SubmissionState{}, fmt.Errorf("failed to store session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.SubmissionState{}, fmt.Errorf("failed to commit session: %w", err)
	}
	return next, nil
}

// Delete removes a session
func (s *sqlStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// Cleanup removes expired sessions
func (s *sqlStore) Cleanup(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE expires_at <= ?
	`, s.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to clean up expired sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		s.logger.Debug("Cleaned up expired sessions", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

func (s *sqlStore) startCleanupTask() {
	go runCleanup(s, s.cleanupFreq, s.stopCh, s.logger)
}

// Stop stops the background cleanup task and closes the database connection
func (s *sqlStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close session database",
				zap.String("dialect", s.dialect.name),
				zap.Error(err))
		}
	})
}
