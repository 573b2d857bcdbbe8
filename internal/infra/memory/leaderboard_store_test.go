package memory

import (
	"context"
	"testing"
	"time"

	"crisis-quiz-service/internal/domain"
)

func TestLeaderboardStoreOrdersByScoreThenCreation(t *testing.T) {
	ctx := context.Background()
	store := NewLeaderboardStore()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mode := domain.LeaderboardAIvsHuman

	for i, p := range []struct {
		name  string
		score int
	}{{"a", 50}, {"b", 90}, {"c", 90}, {"d", 10}} {
		if _, err := store.UpsertIncrement(ctx, p.name, mode, p.score, at.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	top, _ := store.Top(ctx, mode, 10)
	want := []string{"b", "c", "a", "d"}
	for i, name := range want {
		if top[i].PlayerName != name {
			t.Fatalf("position %d: want %s got %+v", i, name, top)
		}
	}

	top, _ = store.Top(ctx, mode, 2)
	if len(top) != 2 {
		t.Fatalf("expected limit 2, got %d", len(top))
	}
}

func TestLeaderboardStoreAccumulates(t *testing.T) {
	ctx := context.Background()
	store := NewLeaderboardStore()
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, _ = store.UpsertIncrement(ctx, "alice", domain.LeaderboardSinglePlayer, 20, first)
	entry, _ := store.UpsertIncrement(ctx, "alice", domain.LeaderboardSinglePlayer, 5, first.Add(time.Hour))
	if entry.Score != 25 || !entry.CreatedAt.Equal(first) {
		t.Fatalf("expected cumulative 25 with original createdAt, got %+v", entry)
	}

	other, _ := store.Top(ctx, domain.LeaderboardMultiplayer, 10)
	if len(other) != 0 {
		t.Fatalf("expected modes isolated, got %+v", other)
	}
}
