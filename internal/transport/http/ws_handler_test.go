package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"crisis-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

func TestWebSocketLeaderboardFlow(t *testing.T) {
	env := newTestEnv(t)

	u := "ws" + env.server.URL[len("http"):] + "/ws/leaderboard?gameMode=AI-vs-Human"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot arrives first.
	snap := readLeaderboard(t, conn)
	if snap.GameMode != domain.LeaderboardAIvsHuman || len(snap.Entries) != 0 {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}

	if _, err := env.board.Submit(context.Background(), "Alice", "AI-vs-Human", 30); err != nil {
		t.Fatalf("submit: %v", err)
	}
	snap = readLeaderboard(t, conn)
	if len(snap.Entries) != 1 || snap.Entries[0].PlayerName != "Alice" || snap.Entries[0].Score != 30 {
		t.Fatalf("unexpected update: %+v", snap)
	}

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if typ := readType(t, conn); typ != "pong" {
		t.Fatalf("expected pong, got %s", typ)
	}

	if err := conn.WriteJSON(map[string]string{"type": "answer"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if typ := readType(t, conn); typ != "error" {
		t.Fatalf("expected error, got %s", typ)
	}
}

func TestWebSocketRejectsUnknownMode(t *testing.T) {
	env := newTestEnv(t)

	u := "ws" + env.server.URL[len("http"):] + "/ws/leaderboard?gameMode=Chess"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial failure")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 response, got %+v", resp)
	}
}

func readLeaderboard(t *testing.T, conn *websocket.Conn) domain.Leaderboard {
	t.Helper()
	var msg struct {
		Type    string             `json:"type"`
		Payload domain.Leaderboard `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("expected leaderboard, got %s", msg.Type)
	}
	return msg.Payload
}

func readType(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	var msg struct {
		Type string `json:"type"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type
}
