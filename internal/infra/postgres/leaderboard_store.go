package postgres

import (
	"context"
	"fmt"
	"time"

	"crisis-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// LeaderboardStore keeps one cumulative row per (player_name, game_mode).
type LeaderboardStore struct {
	pool *pgxpool.Pool
}

func NewLeaderboardStore(pool *pgxpool.Pool) *LeaderboardStore {
	return &LeaderboardStore{pool: pool}
}

func (s *LeaderboardStore) UpsertIncrement(ctx context.Context, playerName string, mode domain.LeaderboardMode, delta int, at time.Time) (domain.LeaderboardEntry, error) {
	entry := domain.LeaderboardEntry{PlayerName: playerName, GameMode: mode}
	var score int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO leaderboard (player_name, game_mode, score, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (player_name, game_mode) DO UPDATE SET score = leaderboard.score + EXCLUDED.score
		RETURNING score, created_at`,
		playerName, string(mode), int64(delta), at,
	).Scan(&score, &entry.CreatedAt)
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("upsert leaderboard: %w", err)
	}
	entry.Score = int(score)
	return entry, nil
}

func (s *LeaderboardStore) Top(ctx context.Context, mode domain.LeaderboardMode, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT player_name, score, created_at FROM leaderboard
		WHERE game_mode=$1
		ORDER BY score DESC, created_at ASC
		LIMIT $2`, string(mode), limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []domain.LeaderboardEntry{}
	for rows.Next() {
		e := domain.LeaderboardEntry{GameMode: mode}
		var score int64
		if err := rows.Scan(&e.PlayerName, &score, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		e.Score = int(score)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
