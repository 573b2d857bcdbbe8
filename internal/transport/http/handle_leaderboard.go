package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"crisis-quiz-service/internal/app"
	"crisis-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// LeaderboardSubmitRequest credits the caller. PlayerName may be omitted; when
// set it must match the caller's display name.
type LeaderboardSubmitRequest struct {
	PlayerName string `json:"playerName,omitempty" validate:"max=100"`
	Score      int    `json:"score" validate:"gt=0"`
	GameMode   string `json:"gameMode" validate:"required"`
}

// handleLeaderboard reads the mode from the path when present, else from ?gameMode=.
// Any spelling of a mode is accepted here.
func handleLeaderboard(board *app.LeaderboardService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "gameMode")
		if raw == "" {
			raw = r.URL.Query().Get("gameMode")
		}
		mode, ok := domain.ParseLeaderboardMode(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid game mode")
			return
		}
		limit := 0
		if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}
		entries, err := board.Query(r.Context(), mode, limit)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func handleLeaderboardSubmit(board *app.LeaderboardService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LeaderboardSubmitRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		caller := identityFrom(r)
		if name := strings.TrimSpace(req.PlayerName); name != "" && name != caller.Name {
			writeError(w, http.StatusForbidden, "Cannot submit scores for another player")
			return
		}
		entry, err := board.Submit(r.Context(), caller.Name, req.GameMode, req.Score)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}
