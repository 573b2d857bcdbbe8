package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crisis-quiz-service/internal/app"
	"crisis-quiz-service/internal/domain"
	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const maxUpdateRetries = 16

// SessionStore keeps each game session as a JSON document under
// crisis:session:{id}. Updates are optimistic: WATCH the key, apply the
// mutation, and commit in MULTI; a concurrent writer aborts the transaction
// and the mutation is re-run against the fresh document.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a store; ttl 0 keeps sessions forever, otherwise
// every write refreshes the expiry.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, session domain.GameSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	ok, err := s.client.SetNX(ctx, s.key(session.ID), data, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.GameSession, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.GameSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.GameSession{}, err
	}
	return decodeSession(id, raw)
}

func (s *SessionStore) Update(ctx context.Context, id string, mutate app.SessionMutation) (domain.GameSession, bool, error) {
	key := s.key(id)
	var (
		result  domain.GameSession
		changed bool
	)
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		session, err := decodeSession(id, raw)
		if err != nil {
			return err
		}
		changed, err = mutate(&session)
		if err != nil {
			return err
		}
		result = session
		if !changed {
			return nil
		}
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return domain.GameSession{}, false, err
		}
		return result, changed, nil
	}
	return domain.GameSession{}, false, fmt.Errorf("update session %s: gave up after %d conflicting writes", id, maxUpdateRetries)
}

func (s *SessionStore) key(id string) string {
	return "crisis:session:" + id
}

func decodeSession(id string, raw []byte) (domain.GameSession, error) {
	var session domain.GameSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.GameSession{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return session, nil
}
