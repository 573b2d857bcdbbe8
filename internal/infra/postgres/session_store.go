package postgres

import (
	"context"
	"errors"
	"fmt"

	"crisis-quiz-service/internal/app"
	"crisis-quiz-service/internal/domain"
	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SessionStore persists game sessions as JSONB documents. Update holds a row
// lock for the duration of the mutation.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) Create(ctx context.Context, session domain.GameSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO game_sessions (id, data) VALUES ($1, $2)`, session.ID, string(data))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.GameSession, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM game_sessions WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.GameSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.GameSession{}, fmt.Errorf("load session: %w", err)
	}
	return decodeSession(raw)
}

func (s *SessionStore) Update(ctx context.Context, id string, mutate app.SessionMutation) (domain.GameSession, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.GameSession{}, false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT data FROM game_sessions WHERE id=$1 FOR UPDATE`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.GameSession{}, false, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.GameSession{}, false, fmt.Errorf("lock session: %w", err)
	}
	session, err := decodeSession(raw)
	if err != nil {
		return domain.GameSession{}, false, err
	}

	changed, err := mutate(&session)
	if err != nil {
		return domain.GameSession{}, false, err
	}
	if !changed {
		return session, false, nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return domain.GameSession{}, false, fmt.Errorf("marshal session: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE game_sessions SET data=$2, updated_at=now() WHERE id=$1`, id, string(data)); err != nil {
		return domain.GameSession{}, false, fmt.Errorf("update session: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.GameSession{}, false, err
	}
	return session, true, nil
}

func decodeSession(raw []byte) (domain.GameSession, error) {
	var session domain.GameSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.GameSession{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, nil
}
