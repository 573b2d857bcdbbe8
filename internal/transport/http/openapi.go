package http

import (
	"net/http"

	"crisis-quiz-service/internal/domain"
	json "github.com/goccy/go-json"
	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// Documentation-only request shapes for routes with path parameters.
type idPath struct {
	ID string `path:"id"`
}

type modePath struct {
	GameMode string `path:"gameMode"`
	Limit    int    `query:"limit" minimum:"1"`
}

type wsQuery struct {
	GameMode string `query:"gameMode" required:"true"`
}

type decisionInput struct {
	ID            string `path:"id"`
	QuestionIndex int    `json:"questionIndex" required:"true" minimum:"0"`
	AnswerIndex   int    `json:"answerIndex" required:"true" minimum:"0"`
}

type policyInput struct {
	ID         string `path:"id"`
	PolicyText string `json:"policyText" minLength:"50"`
}

type aiPolicyInput struct {
	GameID     string `path:"gameId"`
	PolicyText string `json:"policyText" minLength:"50"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Crisis Quiz API"
	r.Spec.Info.Version = "1.0.0"
	r.Spec.Info.WithDescription("Crisis scenarios, AI-generated decision games and per-mode leaderboards.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/scenarios
	listScenarios, _ := r.NewOperationContext(http.MethodGet, "/api/scenarios")
	listScenarios.SetSummary("List scenarios")
	listScenarios.AddRespStructure([]domain.Scenario{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listScenarios)

	// GET /api/scenarios/{id}
	getScenario, _ := r.NewOperationContext(http.MethodGet, "/api/scenarios/{id}")
	getScenario.SetSummary("Get scenario")
	getScenario.AddReqStructure(idPath{})
	getScenario.AddRespStructure(domain.Scenario{}, openapi.WithHTTPStatus(http.StatusOK))
	getScenario.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getScenario)

	// POST /api/games/start
	startGame, _ := r.NewOperationContext(http.MethodPost, "/api/games/start")
	startGame.SetSummary("Start game")
	startGame.SetDescription("Generates questions for the scenario and creates a session owned by the caller. Requires Bearer token.")
	startGame.AddReqStructure(StartGameRequest{})
	startGame.AddRespStructure(domain.GameSession{}, openapi.WithHTTPStatus(http.StatusCreated))
	startGame.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	startGame.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(startGame)

	// GET /api/games/{id}
	getGame, _ := r.NewOperationContext(http.MethodGet, "/api/games/{id}")
	getGame.SetSummary("Get game")
	getGame.AddReqStructure(idPath{})
	getGame.AddRespStructure(domain.GameSession{}, openapi.WithHTTPStatus(http.StatusOK))
	getGame.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getGame)

	// POST /api/games/{id}/decision
	decision, _ := r.NewOperationContext(http.MethodPost, "/api/games/{id}/decision")
	decision.SetSummary("Submit decision")
	decision.SetDescription("Records the caller's answer. Re-answering a question returns the session unchanged.")
	decision.AddReqStructure(decisionInput{})
	decision.AddRespStructure(domain.GameSession{}, openapi.WithHTTPStatus(http.StatusOK))
	decision.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	decision.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(decision)

	// POST /api/games/{id}/end
	endGame, _ := r.NewOperationContext(http.MethodPost, "/api/games/{id}/end")
	endGame.SetSummary("End game")
	endGame.AddReqStructure(idPath{})
	endGame.AddRespStructure(EndGameResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	endGame.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(endGame)

	// POST /api/games/{id}/evaluate-policy
	evaluate, _ := r.NewOperationContext(http.MethodPost, "/api/games/{id}/evaluate-policy")
	evaluate.SetSummary("Evaluate policy")
	evaluate.SetDescription("Scores free-text policy; the caller's session score is replaced by the total.")
	evaluate.AddReqStructure(policyInput{})
	evaluate.AddRespStructure(PolicyResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	evaluate.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	evaluate.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(evaluate)

	// POST /api/ai/evaluate-policy/{gameId}
	aiEvaluate, _ := r.NewOperationContext(http.MethodPost, "/api/ai/evaluate-policy/{gameId}")
	aiEvaluate.SetSummary("Evaluate policy (session only)")
	aiEvaluate.AddReqStructure(aiPolicyInput{})
	aiEvaluate.AddRespStructure(domain.GameSession{}, openapi.WithHTTPStatus(http.StatusOK))
	aiEvaluate.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(aiEvaluate)

	// GET /api/leaderboard/{gameMode}
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard/{gameMode}")
	getBoard.SetSummary("Leaderboard")
	getBoard.SetDescription("Top entries for a mode, highest score first. Also served at /api/leaderboard?gameMode=.")
	getBoard.AddReqStructure(modePath{})
	getBoard.AddRespStructure([]domain.LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getBoard)

	// POST /api/leaderboard
	postBoard, _ := r.NewOperationContext(http.MethodPost, "/api/leaderboard")
	postBoard.SetSummary("Add leaderboard score")
	postBoard.SetDescription("Adds to the caller's cumulative score for a mode. Requires Bearer token.")
	postBoard.AddReqStructure(LeaderboardSubmitRequest{})
	postBoard.AddRespStructure(domain.LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusCreated))
	postBoard.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postBoard.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postBoard.AddRespStructure(errorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(postBoard)

	// GET /ws/leaderboard
	wsBoard, _ := r.NewOperationContext(http.MethodGet, "/ws/leaderboard")
	wsBoard.SetSummary("Live leaderboard")
	wsBoard.SetDescription("Upgrades to a WebSocket that pushes leaderboard snapshots for ?gameMode=.")
	wsBoard.AddReqStructure(wsQuery{})
	wsBoard.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols), openapi.WithContentType("text/plain"))
	_ = r.AddOperation(wsBoard)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	data, _ := json.MarshalIndent(newOpenAPISpec(), "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
