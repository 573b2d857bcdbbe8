package http

import (
	"log/slog"
	"net/http"

	"crisis-quiz-service/internal/app"
	"crisis-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler streams live leaderboard snapshots for one game mode.
type WSHandler struct {
	board    *app.LeaderboardService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(board *app.LeaderboardService, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		board:  board,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type string `json:"type"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and pushes a snapshot after every score change
// in the requested mode. Clients may send {"type":"ping"}; anything else is an error.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	mode, ok := domain.ParseLeaderboardMode(r.URL.Query().Get("gameMode"))
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid gameMode")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.board.Subscribe(r.Context(), mode)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorResponse]{Type: "error", Payload: errorResponse{Message: "leaderboard unavailable"}})
		h.logger.Error("leaderboard subscribe failed", "game_mode", mode, "error", err)
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var reply outboundMessage[any]
		switch inbound.Type {
		case "ping":
			reply = outboundMessage[any]{Type: "pong", Payload: struct{}{}}
		default:
			reply = outboundMessage[any]{Type: "error", Payload: errorResponse{Message: "unsupported message type"}}
		}
		select {
		case send <- reply:
		case <-writerDone:
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
