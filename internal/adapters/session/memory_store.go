package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
)

type memoryEntry struct {
	state     core.SubmissionState
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of the SessionStore interface
type MemoryStore struct {
	entries     map[string]*memoryEntry
	mu          sync.Mutex
	ttl         time.Duration
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(ttl time.Duration, logger *zap.Logger, cleanupFreq time.Duration) *MemoryStore {
	store := &MemoryStore{
		entries:     make(map[string]*memoryEntry),
		ttl:         ttl,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}

	// Start background cleanup
	go runCleanup(store, cleanupFreq, store.stopCh, logger)

	return store
}

// Load retrieves the state of a session
func (s *MemoryStore) Load(_ context.Context, sessionID string) (*core.SubmissionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, core.ErrSessionNotFound
	}

	state := entry.state
	return &state, nil
}

// Update replaces the state of a session under the store lock
func (s *MemoryStore) Update(
	_ context.Context,
	sessionID string,
	fn func(core.SubmissionState) core.SubmissionState,
) (core.SubmissionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	current := core.NewSubmissionState()
	if entry, ok := s.entries[sessionID]; ok && now.Before(entry.expiresAt) {
		current = entry.state
	}

	next := fn(current)
	s.entries[sessionID] = &memoryEntry{
		state:     next,
		expiresAt: now.Add(s.ttl),
	}
	return next, nil
}

// Delete removes a session
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	return nil
}

// Cleanup removes expired sessions
func (s *MemoryStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expiredCount := 0

	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			expiredCount++
		}
	}

	s.logger.Debug("Cleaned up expired sessions", zap.Int("expired_count", expiredCount))
	return nil
}

// Stop stops the background cleanup task
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}
