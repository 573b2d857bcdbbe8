package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"crisis-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// LeaderboardStore keeps cumulative scores in one sorted set per mode and the
// first-seen time of each player in a companion hash:
//
//	ZINCRBY crisis:leaderboard:{mode}         {delta} {player}
//	HSETNX  crisis:leaderboard:{mode}:created {player} {unixNano}
type LeaderboardStore struct {
	client *redis.Client
}

func NewLeaderboardStore(client *redis.Client) *LeaderboardStore {
	return &LeaderboardStore{client: client}
}

func (s *LeaderboardStore) UpsertIncrement(ctx context.Context, playerName string, mode domain.LeaderboardMode, delta int, at time.Time) (domain.LeaderboardEntry, error) {
	var (
		score   *redis.FloatCmd
		created *redis.StringCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		score = pipe.ZIncrBy(ctx, s.scoresKey(mode), float64(delta), playerName)
		pipe.HSetNX(ctx, s.createdKey(mode), playerName, at.UnixNano())
		created = pipe.HGet(ctx, s.createdKey(mode), playerName)
		return nil
	})
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("upsert leaderboard %s/%s: %w", mode, playerName, err)
	}
	return domain.LeaderboardEntry{
		PlayerName: playerName,
		GameMode:   mode,
		Score:      int(score.Val()),
		CreatedAt:  parseNano(created.Val(), at),
	}, nil
}

// Top ranks by score, breaking ties by first-seen time. Sorted sets order
// ties lexicographically, so the whole set is ranked client side.
func (s *LeaderboardStore) Top(ctx context.Context, mode domain.LeaderboardMode, limit int) ([]domain.LeaderboardEntry, error) {
	members, err := s.client.ZRevRangeWithScores(ctx, s.scoresKey(mode), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}
	created, err := s.client.HGetAll(ctx, s.createdKey(mode)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]domain.LeaderboardEntry, 0, len(members))
	for _, m := range members {
		name, _ := m.Member.(string)
		out = append(out, domain.LeaderboardEntry{
			PlayerName: name,
			GameMode:   mode,
			Score:      int(m.Score),
			CreatedAt:  parseNano(created[name], time.Time{}),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *LeaderboardStore) scoresKey(mode domain.LeaderboardMode) string {
	return "crisis:leaderboard:" + string(mode)
}

func (s *LeaderboardStore) createdKey(mode domain.LeaderboardMode) string {
	return s.scoresKey(mode) + ":created"
}

func parseNano(raw string, fallback time.Time) time.Time {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return time.Unix(0, n).UTC()
}
