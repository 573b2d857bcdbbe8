package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"crisis-quiz-service/internal/domain"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// LeaderboardService maintains cumulative per-mode scores and fans out
// snapshots to live subscribers.
type LeaderboardService struct {
	repo   LeaderboardRepository
	logger *slog.Logger
	now    func() time.Time

	// pubMu orders snapshot delivery; mu guards the subscriber sets.
	pubMu       sync.Mutex
	mu          sync.Mutex
	subscribers map[domain.LeaderboardMode]map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardService(repo LeaderboardRepository, logger *slog.Logger) *LeaderboardService {
	return NewLeaderboardServiceWithClock(repo, logger, time.Now)
}

// NewLeaderboardServiceWithClock is test-only for deterministic timestamps.
func NewLeaderboardServiceWithClock(repo LeaderboardRepository, logger *slog.Logger, now func() time.Time) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardService{
		repo:        repo,
		logger:      logger,
		now:         now,
		subscribers: make(map[domain.LeaderboardMode]map[chan domain.Leaderboard]struct{}),
	}
}

// Upsert adds delta to the (playerName, mode) row, creating it if absent.
func (s *LeaderboardService) Upsert(ctx context.Context, playerName string, mode domain.LeaderboardMode, delta int) (domain.LeaderboardEntry, error) {
	if !mode.Valid() {
		return domain.LeaderboardEntry{}, fmt.Errorf("%w: %q", domain.ErrInvalidGameMode, mode)
	}
	if delta < 0 {
		return domain.LeaderboardEntry{}, fmt.Errorf("%w: %d", domain.ErrInvalidScore, delta)
	}
	entry, err := s.repo.UpsertIncrement(ctx, playerName, mode, delta, s.now())
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	s.publish(ctx, mode)
	return entry, nil
}

// Submit is the manual entry path; it only accepts canonical labels and positive scores.
func (s *LeaderboardService) Submit(ctx context.Context, playerName, gameMode string, score int) (domain.LeaderboardEntry, error) {
	mode := domain.LeaderboardMode(gameMode)
	if !mode.Valid() {
		return domain.LeaderboardEntry{}, fmt.Errorf("%w: %q", domain.ErrInvalidGameMode, gameMode)
	}
	if score <= 0 {
		return domain.LeaderboardEntry{}, fmt.Errorf("%w: %d", domain.ErrInvalidScore, score)
	}
	name := strings.TrimSpace(playerName)
	if name == "" {
		return domain.LeaderboardEntry{}, domain.ErrInvalidPlayerName
	}
	return s.Upsert(ctx, name, mode, score)
}

// Query returns the top entries for mode, highest score first.
func (s *LeaderboardService) Query(ctx context.Context, mode domain.LeaderboardMode, limit int) ([]domain.LeaderboardEntry, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidGameMode, mode)
	}
	return s.repo.Top(ctx, mode, clampLimit(limit))
}

// Snapshot wraps Query in a timestamped leaderboard.
func (s *LeaderboardService) Snapshot(ctx context.Context, mode domain.LeaderboardMode) (domain.Leaderboard, error) {
	entries, err := s.Query(ctx, mode, DefaultLeaderboardLimit)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{GameMode: mode, Entries: entries, UpdatedAt: s.now()}, nil
}

// Subscribe returns a channel that receives leaderboard snapshots for mode,
// starting with the current one. The caller must invoke cancel to avoid leaks.
func (s *LeaderboardService) Subscribe(ctx context.Context, mode domain.LeaderboardMode) (<-chan domain.Leaderboard, func(), error) {
	ch := make(chan domain.Leaderboard, 8)

	// Register before the first snapshot so no upsert falls between the two.
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Lock()
	if s.subscribers[mode] == nil {
		s.subscribers[mode] = make(map[chan domain.Leaderboard]struct{})
	}
	s.subscribers[mode][ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subscribers[mode]
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(s.subscribers, mode)
		}
	}

	initial, err := s.Snapshot(ctx, mode)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	ch <- initial
	return ch, cancel, nil
}

func (s *LeaderboardService) hasSubscribers(mode domain.LeaderboardMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers[mode]) > 0
}

// publish takes and delivers snapshots one at a time, so a subscriber never
// receives an older snapshot after a newer one.
func (s *LeaderboardService) publish(ctx context.Context, mode domain.LeaderboardMode) {
	if !s.hasSubscribers(mode) {
		return
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	lb, err := s.Snapshot(ctx, mode)
	if err != nil {
		s.logger.Warn("leaderboard snapshot failed", "game_mode", mode, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers[mode] {
		select {
		case ch <- lb:
		default:
			// Slow subscriber: replace the oldest queued snapshot.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}
