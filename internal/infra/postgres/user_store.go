package postgres

import (
	"context"
	"errors"
	"fmt"

	"crisis-quiz-service/internal/domain"
	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UserStore keeps player records; stats live in a JSONB column.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const selectUser = `SELECT id, name, COALESCE(email, ''), password_hash, stats, created_at FROM users WHERE id=$1`

func (s *UserStore) Get(ctx context.Context, id string) (domain.User, error) {
	return scanUser(s.pool.QueryRow(ctx, selectUser, id))
}

func (s *UserStore) Ensure(ctx context.Context, id, name string) (domain.User, error) {
	if _, err := s.pool.Exec(ctx, `INSERT INTO users (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, id, name); err != nil {
		return domain.User{}, fmt.Errorf("ensure user: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *UserStore) UpdateStats(ctx context.Context, id string, mutate func(*domain.UserStats)) (domain.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	user, err := scanUser(tx.QueryRow(ctx, selectUser+` FOR UPDATE`, id))
	if err != nil {
		return domain.User{}, err
	}
	mutate(&user.Stats)
	data, err := json.Marshal(user.Stats)
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal stats: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET stats=$2 WHERE id=$1`, id, string(data)); err != nil {
		return domain.User{}, fmt.Errorf("update stats: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u   domain.User
		raw []byte
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &raw, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	if err := json.Unmarshal(raw, &u.Stats); err != nil {
		return domain.User{}, fmt.Errorf("unmarshal stats: %w", err)
	}
	return u, nil
}
