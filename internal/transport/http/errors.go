package http

import (
	"errors"
	"log/slog"
	"net/http"

	"crisis-quiz-service/internal/domain"
)

// writeServiceError maps domain errors to a status and a client-safe message.
// Upstream AI failures are logged in full but reported generically.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	}
	writeError(w, status, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrScenarioNotFound):
		return http.StatusNotFound, "Scenario not found"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "Game session not found"
	case errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound, "Invalid question index"
	case errors.Is(err, domain.ErrOptionNotFound):
		return http.StatusNotFound, "Invalid answer index"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrPolicyTooShort):
		return http.StatusBadRequest, "Policy text must be at least 50 characters long."
	case errors.Is(err, domain.ErrInvalidGameMode):
		return http.StatusBadRequest, "Invalid game mode"
	case errors.Is(err, domain.ErrInvalidPlayerName):
		return http.StatusBadRequest, "Player name is required"
	case errors.Is(err, domain.ErrInvalidScore):
		return http.StatusBadRequest, "Score must be a positive number"
	case errors.Is(err, domain.ErrSessionEnded):
		return http.StatusConflict, "Game session has already ended"
	case errors.Is(err, domain.ErrInvalidQuestions):
		return http.StatusBadGateway, "The AI failed to generate a valid game. Please try starting a new game."
	case errors.Is(err, domain.ErrInvalidEvaluation):
		return http.StatusBadGateway, "AI evaluation failed to return a valid score."
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, "The AI service is unavailable. Please try again."
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
