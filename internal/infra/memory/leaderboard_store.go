package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"crisis-quiz-service/internal/domain"
)

// LeaderboardStore keeps one row per (player, mode). Rows are held in creation
// order so equal scores rank oldest first.
type LeaderboardStore struct {
	mu   sync.RWMutex
	rows map[domain.LeaderboardMode][]*domain.LeaderboardEntry
}

func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{rows: make(map[domain.LeaderboardMode][]*domain.LeaderboardEntry)}
}

func (s *LeaderboardStore) UpsertIncrement(_ context.Context, playerName string, mode domain.LeaderboardMode, delta int, at time.Time) (domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows[mode] {
		if row.PlayerName == playerName {
			row.Score += delta
			return *row, nil
		}
	}
	row := &domain.LeaderboardEntry{PlayerName: playerName, GameMode: mode, Score: delta, CreatedAt: at}
	s.rows[mode] = append(s.rows[mode], row)
	return *row, nil
}

func (s *LeaderboardStore) Top(_ context.Context, mode domain.LeaderboardMode, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	out := make([]domain.LeaderboardEntry, 0, len(s.rows[mode]))
	for _, row := range s.rows[mode] {
		out = append(out, *row)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
