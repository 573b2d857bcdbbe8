package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"crisis-quiz-service/internal/app"
	"crisis-quiz-service/internal/domain"
	"crisis-quiz-service/internal/infra/memory"
	"crisis-quiz-service/internal/logging"
)

func TestLeaderboardOrdering(t *testing.T) {
	ctx := context.Background()
	svc := newLeaderboard()

	for _, p := range []struct {
		name  string
		score int
	}{{"p1", 50}, {"p2", 90}, {"p3", 90}, {"p4", 10}} {
		if _, err := svc.Submit(ctx, p.name, string(domain.LeaderboardMultiplayer), p.score); err != nil {
			t.Fatalf("submit %s: %v", p.name, err)
		}
	}

	top, err := svc.Query(ctx, domain.LeaderboardMultiplayer, 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	var scores []int
	for _, e := range top {
		scores = append(scores, e.Score)
	}
	if len(scores) != 4 || scores[0] != 90 || scores[1] != 90 || scores[2] != 50 || scores[3] != 10 {
		t.Fatalf("unexpected order: %v", scores)
	}
	if top[0].PlayerName != "p2" {
		t.Fatalf("expected earlier entry first on tie, got %s", top[0].PlayerName)
	}
}

func TestLeaderboardUpsertIsCumulative(t *testing.T) {
	ctx := context.Background()
	svc := newLeaderboard()

	_, _ = svc.Upsert(ctx, "Alice", domain.LeaderboardPolicy, 20)
	entry, err := svc.Upsert(ctx, "Alice", domain.LeaderboardPolicy, 5)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if entry.Score != 25 {
		t.Fatalf("expected 25, got %d", entry.Score)
	}
	top, _ := svc.Query(ctx, domain.LeaderboardPolicy, 10)
	if len(top) != 1 {
		t.Fatalf("expected one row per player, got %d", len(top))
	}
}

func TestLeaderboardRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc := newLeaderboard()

	if _, err := svc.Submit(ctx, "Alice", "ai-vs-human", 10); !errors.Is(err, domain.ErrInvalidGameMode) {
		t.Fatalf("expected invalid mode for slug, got %v", err)
	}
	if _, err := svc.Submit(ctx, "Alice", "Multiplayer", 0); !errors.Is(err, domain.ErrInvalidScore) {
		t.Fatalf("expected invalid score, got %v", err)
	}
	if _, err := svc.Submit(ctx, "   ", "Multiplayer", 5); !errors.Is(err, domain.ErrInvalidPlayerName) {
		t.Fatalf("expected invalid player name, got %v", err)
	}
	if top, _ := svc.Query(ctx, domain.LeaderboardMultiplayer, 10); len(top) != 0 {
		t.Fatalf("rejected submissions left rows: %+v", top)
	}
	if _, err := svc.Upsert(ctx, "Alice", domain.LeaderboardMultiplayer, -1); !errors.Is(err, domain.ErrInvalidScore) {
		t.Fatalf("expected invalid delta, got %v", err)
	}
	if _, err := svc.Query(ctx, domain.LeaderboardMode("Chess"), 10); !errors.Is(err, domain.ErrInvalidGameMode) {
		t.Fatalf("expected invalid query mode, got %v", err)
	}
}

func TestLeaderboardQueryClampsLimit(t *testing.T) {
	ctx := context.Background()
	svc := newLeaderboard()
	for i := 0; i < 120; i++ {
		_, _ = svc.Upsert(ctx, "player-"+string(rune('A'+i%26))+string(rune('a'+i/26)), domain.LeaderboardOlympics, i+1)
	}
	top, _ := svc.Query(ctx, domain.LeaderboardOlympics, 500)
	if len(top) != app.MaxLeaderboardLimit {
		t.Fatalf("expected %d, got %d", app.MaxLeaderboardLimit, len(top))
	}
	top, _ = svc.Query(ctx, domain.LeaderboardOlympics, -1)
	if len(top) != app.DefaultLeaderboardLimit {
		t.Fatalf("expected default limit, got %d", len(top))
	}
}

func TestLeaderboardSubscribeReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	svc := newLeaderboard()

	ch, cancel, err := svc.Subscribe(ctx, domain.LeaderboardRealWorld)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	initial := <-ch
	if len(initial.Entries) != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", initial)
	}

	if _, err := svc.Upsert(ctx, "Alice", domain.LeaderboardRealWorld, 15); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	select {
	case update := <-ch:
		if len(update.Entries) != 1 || update.Entries[0].Score != 15 {
			t.Fatalf("expected score 15, got %+v", update.Entries)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for update")
	}

	// Other modes do not notify this subscriber.
	_, _ = svc.Upsert(ctx, "Bob", domain.LeaderboardPolicy, 5)
	select {
	case lb := <-ch:
		t.Fatalf("unexpected update %+v", lb)
	default:
	}
}

func TestLeaderboardSubscribeSeesEveryUpsertInOrder(t *testing.T) {
	ctx := context.Background()
	svc := newLeaderboard()
	const writers = 20

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, _ = svc.Upsert(ctx, "Alice", domain.LeaderboardMultiplayer, 1)
		}()
	}

	close(start)
	ch, cancel, err := svc.Subscribe(ctx, domain.LeaderboardMultiplayer)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	wg.Wait()

	last := -1
	timeout := time.After(2 * time.Second)
	for last != writers {
		select {
		case lb := <-ch:
			score := 0
			if len(lb.Entries) == 1 {
				score = lb.Entries[0].Score
			}
			if score < last {
				t.Fatalf("snapshot went backwards: %d after %d", score, last)
			}
			last = score
		case <-timeout:
			t.Fatalf("never saw final score %d, last %d", writers, last)
		}
	}
}

func newLeaderboard() *app.LeaderboardService {
	return app.NewLeaderboardService(memory.NewLeaderboardStore(), logging.Discard())
}
