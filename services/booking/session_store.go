package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"glowapp/models"

	"github.com/go-redis/redis/v8"
)

const (
	sessionKeyPrefix      = "booking:session:"
	defaultSessionTTL     = 30 * time.Minute
	maxSessionTxnAttempts = 5
)

// RedisSessionStore keeps booking sessions as JSON with a sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore returns a store on client. A zero ttl uses 30 minutes.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (s *RedisSessionStore) Create(ctx context.Context, session *models.BookingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, sessionKey(session.SessionID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store booking session: %w", err)
	}
	if !ok {
		return fmt.Errorf("booking session %s already exists", session.SessionID)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}
	var session models.BookingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse booking session: %w", err)
	}
	return &session, nil
}

// Update applies fn inside a WATCH/MULTI transaction. fn may run more than
// once when another request commits first, so it must not keep side effects
// from earlier attempts.
func (s *RedisSessionStore) Update(ctx context.Context, sessionID string, fn func(*models.BookingSession) error) (*models.BookingSession, error) {
	key := sessionKey(sessionID)
	var updated *models.BookingSession

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load booking session: %w", err)
		}
		var session models.BookingSession
		if err := json.Unmarshal(data, &session); err != nil {
			return fmt.Errorf("failed to parse booking session: %w", err)
		}
		if err := fn(&session); err != nil {
			return err
		}
		session.UpdatedAt = time.Now()
		out, err := json.Marshal(&session)
		if err != nil {
			return fmt.Errorf("failed to marshal booking session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = &session
		return nil
	}

	for attempt := 0; attempt < maxSessionTxnAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrSessionConflict
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete booking session: %w", err)
	}
	return nil
}
