package http

import (
	"log/slog"
	"net/http"

	"crisis-quiz-service/internal/app"
	"github.com/go-chi/chi/v5"
)

func handleListScenarios(games *app.GameService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scenarios, err := games.Scenarios(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, scenarios)
	}
}

func handleGetScenario(games *app.GameService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scenario, err := games.Scenario(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, scenario)
	}
}
