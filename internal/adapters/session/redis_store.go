package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
)

const (
	redisKeyPrefix = "email-classifier:session:"
	// maxUpdateRetries bounds optimistic transaction retries on a contended key
	maxUpdateRetries = 50
)

// RedisStore is a Redis implementation of the SessionStore interface.
// Expiry is delegated to Redis key TTLs.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore creates a new Redis session store
func NewRedisStore(ctx context.Context, opts *redis.Options, ttl time.Duration, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

// Load retrieves the state of a session
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*core.SubmissionState, error) {
	data, err := s.client.Get(ctx, redisKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return decodeState(data)
}

// Update replaces the state of a session in an optimistic transaction
func (s *RedisStore) Update(
	ctx context.Context,
	sessionID string,
	fn func(core.SubmissionState) core.SubmissionState,
) (core.SubmissionState, error) {
	key := redisKey(sessionID)
	var next core.SubmissionState

	txf := func(tx *redis.Tx) error {
		current := core.NewSubmissionState()

		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("failed to get session: %w", err)
		default:
			stored, err := decodeState(data)
			if err != nil {
				return err
			}
			current = *stored
		}

		next = fn(current)
		encoded, err := encodeState(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return core.SubmissionState{}, fmt.Errorf("failed to update session: %w", err)
		}
		s.logger.Debug("Session update conflicted, retrying",
			zap.String("session", sessionID),
			zap.Int("attempt", i+1))
	}

	return core.SubmissionState{}, fmt.Errorf("failed to update session %s: too many concurrent updates", sessionID)
}

// Delete removes a session
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Cleanup is a no-op: Redis expires sessions on its own
func (s *RedisStore) Cleanup(context.Context) error {
	return nil
}

// Stop closes the Redis connection
func (s *RedisStore) Stop() {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Failed to close Redis connection", zap.Error(err))
	}
}
