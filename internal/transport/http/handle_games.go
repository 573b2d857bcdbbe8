package http

import (
	"log/slog"
	"net/http"

	"crisis-quiz-service/internal/app"
	"crisis-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

type StartGameRequest struct {
	ScenarioID string `json:"scenarioId" validate:"required"`
}

type DecisionRequest struct {
	QuestionIndex *int `json:"questionIndex" validate:"required"`
	AnswerIndex   *int `json:"answerIndex" validate:"required"`
}

type PolicyRequest struct {
	PolicyText string `json:"policyText"`
}

type EndGameResponse struct {
	Message     string             `json:"message"`
	GameSession domain.GameSession `json:"gameSession"`
}

type PolicyResponse struct {
	Message     string              `json:"message"`
	GameSession domain.GameSession  `json:"gameSession"`
	Review      domain.PolicyReview `json:"review"`
}

func handleStartGame(games *app.GameService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartGameRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		session, err := games.StartGame(r.Context(), req.ScenarioID, identityFrom(r).PlayerID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	}
}

func handleGetGame(games *app.GameService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := games.GetGameDetails(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

func handleDecision(games *app.GameService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DecisionRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		session, err := games.SubmitDecision(r.Context(), chi.URLParam(r, "id"), identityFrom(r).PlayerID, *req.QuestionIndex, *req.AnswerIndex)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

func handleEndGame(games *app.GameService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := games.EndGame(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, EndGameResponse{Message: "Game ended", GameSession: session})
	}
}

// handleEvaluatePolicy serves both policy routes; param names the session id path segment.
func handleEvaluatePolicy(games *app.GameService, logger *slog.Logger, param string, wrap bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PolicyRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		session, review, err := games.EvaluatePolicy(r.Context(), chi.URLParam(r, param), identityFrom(r).PlayerID, req.PolicyText)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		if !wrap {
			writeJSON(w, http.StatusOK, session)
			return
		}
		writeJSON(w, http.StatusOK, PolicyResponse{Message: "Policy evaluated successfully", GameSession: session, Review: review})
	}
}
