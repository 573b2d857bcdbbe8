package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crisis-quiz-service/internal/app"
	"crisis-quiz-service/internal/catalog"
	"crisis-quiz-service/internal/domain"
	"crisis-quiz-service/internal/infra/memory"
	"crisis-quiz-service/internal/logging"
	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

type stubGenerator struct {
	err error
}

func (g *stubGenerator) GenerateQuestions(_ context.Context, _ string, _ domain.Mode, count int) ([]domain.GeneratedQuestion, error) {
	if g.err != nil {
		return nil, g.err
	}
	out := make([]domain.GeneratedQuestion, count)
	for i := range out {
		out[i] = domain.GeneratedQuestion{
			QuestionText: "What now?",
			Options: []domain.GeneratedOption{
				{Text: "a", Score: float64(20)},
				{Text: "b", Score: float64(15)},
				{Text: "c", Score: float64(10)},
				{Text: "d", Score: float64(5)},
			},
		}
	}
	return out, nil
}

type stubEvaluator struct {
	total any
}

func (e *stubEvaluator) EvaluatePolicy(context.Context, string, string) (domain.PolicyEvaluation, error) {
	return domain.PolicyEvaluation{
		Evaluation: "Solid plan.",
		Scores:     map[string]any{"RiskMitigation": float64(20)},
		TotalScore: e.total,
	}, nil
}

type testEnv struct {
	server    *httptest.Server
	board     *app.LeaderboardService
	generator *stubGenerator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logging.Discard()
	scenarios := memory.NewScenarioRepository(memory.NewStaticScenarioLoader(catalog.Scenarios()), time.Minute)
	board := app.NewLeaderboardService(memory.NewLeaderboardStore(), logger)
	gen := &stubGenerator{}
	games := app.NewGameService(scenarios, memory.NewSessionStore(), memory.NewUserStore(), board, gen, &stubEvaluator{total: float64(62)},
		app.WithLogger(logger))

	handler := NewRouter(Deps{
		Games:       games,
		Leaderboard: board,
		Auth:        NewAuthenticator(testSecret),
		Checks: map[string]Checker{
			"memory": CheckFunc(func(context.Context) error { return nil }),
		},
		Logger: logger,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, board: board, generator: gen}
}

func signToken(t *testing.T, secret, subject, name string, ttl time.Duration) string {
	t.Helper()
	claims := playerClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestGameFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, testSecret, "u1", "Alice", time.Hour)

	resp := env.do(t, http.MethodPost, "/api/games/start", token, StartGameRequest{ScenarioID: "ai-vs-human"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d", resp.StatusCode)
	}
	session := decode[domain.GameSession](t, resp)
	if session.GameType != domain.GameTypeAIvsHuman || len(session.Questions) != app.DefaultQuestionCount {
		t.Fatalf("unexpected session: %+v", session)
	}

	zero, three := 0, 3
	resp = env.do(t, http.MethodPost, "/api/games/"+session.ID+"/decision", token, DecisionRequest{QuestionIndex: &zero, AnswerIndex: &zero})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("decision: expected 200, got %d", resp.StatusCode)
	}
	if got := decode[domain.GameSession](t, resp); got.Scores["u1"] != 20 {
		t.Fatalf("expected 20, got %+v", got.Scores)
	}

	resp = env.do(t, http.MethodPost, "/api/games/"+session.ID+"/decision", token, DecisionRequest{QuestionIndex: &zero, AnswerIndex: &three})
	if got := decode[domain.GameSession](t, resp); got.Scores["u1"] != 20 {
		t.Fatalf("replay should not rescore, got %+v", got.Scores)
	}

	resp = env.do(t, http.MethodGet, "/api/leaderboard/ai-vs-human", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leaderboard: expected 200, got %d", resp.StatusCode)
	}
	entries := decode[[]domain.LeaderboardEntry](t, resp)
	if len(entries) != 1 || entries[0].PlayerName != "Alice" || entries[0].Score != 20 {
		t.Fatalf("unexpected leaderboard: %+v", entries)
	}

	resp = env.do(t, http.MethodGet, "/api/games/"+session.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, "/api/games/"+session.ID+"/end", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end: expected 200, got %d", resp.StatusCode)
	}
	ended := decode[EndGameResponse](t, resp)
	if ended.Message != "Game ended" || ended.GameSession.IsActive || ended.GameSession.EndedAt == nil {
		t.Fatalf("unexpected end response: %+v", ended)
	}

	resp = env.do(t, http.MethodPost, "/api/games/"+session.ID+"/decision", token, DecisionRequest{QuestionIndex: &three, AnswerIndex: &zero})
	if resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected rejection after end, got %d", resp.StatusCode)
	}
}

func TestDecisionValidation(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, testSecret, "u1", "Alice", time.Hour)
	resp := env.do(t, http.MethodPost, "/api/games/start", token, StartGameRequest{ScenarioID: "single-player"})
	session := decode[domain.GameSession](t, resp)

	resp = env.do(t, http.MethodPost, "/api/games/"+session.ID+"/decision", token, map[string]int{"questionIndex": 0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing answerIndex: expected 400, got %d", resp.StatusCode)
	}

	bad, zero := 9, 0
	resp = env.do(t, http.MethodPost, "/api/games/"+session.ID+"/decision", token, DecisionRequest{QuestionIndex: &bad, AnswerIndex: &zero})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("out of range: expected 404, got %d", resp.StatusCode)
	}
	if msg := decode[errorResponse](t, resp); msg.Message != "Invalid question index" {
		t.Fatalf("unexpected message %q", msg.Message)
	}

	resp = env.do(t, http.MethodGet, "/api/games/nope", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown session: expected 404, got %d", resp.StatusCode)
	}
}

func TestStartGameErrors(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, testSecret, "u1", "Alice", time.Hour)

	resp := env.do(t, http.MethodPost, "/api/games/start", token, StartGameRequest{ScenarioID: "missing"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown scenario: expected 404, got %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, "/api/games/start", token, map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing scenarioId: expected 400, got %d", resp.StatusCode)
	}

	env.generator.err = errors.New("quota exceeded")
	resp = env.do(t, http.MethodPost, "/api/games/start", token, StartGameRequest{ScenarioID: "ai-vs-human"})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("upstream failure: expected 502, got %d", resp.StatusCode)
	}
	if msg := decode[errorResponse](t, resp); strings.Contains(msg.Message, "quota") {
		t.Fatalf("upstream detail leaked: %q", msg.Message)
	}
}

func TestEvaluatePolicyRoutes(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, testSecret, "u1", "Alice", time.Hour)
	session := decode[domain.GameSession](t, env.do(t, http.MethodPost, "/api/games/start", token, StartGameRequest{ScenarioID: "policy-governance"}))

	resp := env.do(t, http.MethodPost, "/api/games/"+session.ID+"/evaluate-policy", token, PolicyRequest{PolicyText: "too short"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("short policy: expected 400, got %d", resp.StatusCode)
	}

	policy := strings.Repeat("Evacuate coastal districts and stage supplies inland. ", 2)
	resp = env.do(t, http.MethodPost, "/api/games/"+session.ID+"/evaluate-policy", token, PolicyRequest{PolicyText: policy})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("evaluate: expected 200, got %d", resp.StatusCode)
	}
	wrapped := decode[PolicyResponse](t, resp)
	if wrapped.GameSession.Scores["u1"] != 62 || wrapped.Review.TotalScore != 62 {
		t.Fatalf("unexpected policy response: %+v", wrapped)
	}

	resp = env.do(t, http.MethodPost, "/api/ai/evaluate-policy/"+session.ID, token, PolicyRequest{PolicyText: policy})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ai route: expected 200, got %d", resp.StatusCode)
	}
	plain := decode[domain.GameSession](t, resp)
	if plain.ID != session.ID || plain.Scores["u1"] != 62 {
		t.Fatalf("unexpected plain session: %+v", plain)
	}
}

func TestAuthRejections(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/games/start", "", StartGameRequest{ScenarioID: "ai-vs-human"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", resp.StatusCode)
	}
	if msg := decode[errorResponse](t, resp); msg.Message != "No token, authorization denied" {
		t.Fatalf("unexpected message %q", msg.Message)
	}

	cases := map[string]string{
		"wrong secret": signToken(t, "other", "u1", "Alice", time.Hour),
		"expired":      signToken(t, testSecret, "u1", "Alice", -time.Minute),
		"no subject":   signToken(t, testSecret, "", "Alice", time.Hour),
		"garbage":      "not-a-jwt",
	}
	for name, token := range cases {
		resp := env.do(t, http.MethodGet, "/api/games/any", token, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, resp.StatusCode)
		}
	}

	submit := LeaderboardSubmitRequest{PlayerName: "victim", Score: 100000, GameMode: "Crisis-Olympics"}
	for name, token := range map[string]string{"anonymous": "", "expired": cases["expired"]} {
		resp := env.do(t, http.MethodPost, "/api/leaderboard", token, submit)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s leaderboard submit: expected 401, got %d", name, resp.StatusCode)
		}
	}
	entries, _ := env.board.Query(context.Background(), domain.LeaderboardOlympics, 10)
	if len(entries) != 0 {
		t.Fatalf("unauthenticated submit reached the board: %+v", entries)
	}
}

func TestAuthenticatorFallsBackToSubjectForName(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	id, err := auth.Verify(signToken(t, testSecret, "u9", "  ", time.Hour))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.PlayerID != "u9" || id.Name != "u9" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestLeaderboardRoutes(t *testing.T) {
	env := newTestEnv(t)
	zed := signToken(t, testSecret, "u-zed", "Zed", time.Hour)
	amy := signToken(t, testSecret, "u-amy", "Amy", time.Hour)

	resp := env.do(t, http.MethodPost, "/api/leaderboard", zed, LeaderboardSubmitRequest{PlayerName: "Zed", Score: 40, GameMode: "Crisis-Olympics"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d", resp.StatusCode)
	}
	// The name defaults to the caller's.
	env.do(t, http.MethodPost, "/api/leaderboard", zed, LeaderboardSubmitRequest{Score: 10, GameMode: "Crisis-Olympics"})
	env.do(t, http.MethodPost, "/api/leaderboard", amy, LeaderboardSubmitRequest{Score: 90, GameMode: "Crisis-Olympics"})

	resp = env.do(t, http.MethodGet, "/api/leaderboard?gameMode=Crisis-Olympics&limit=1", "", nil)
	entries := decode[[]domain.LeaderboardEntry](t, resp)
	if len(entries) != 1 || entries[0].PlayerName != "Amy" {
		t.Fatalf("unexpected top entry: %+v", entries)
	}

	resp = env.do(t, http.MethodGet, "/api/leaderboard/Crisis%20Olympics", "", nil)
	entries = decode[[]domain.LeaderboardEntry](t, resp)
	if len(entries) != 2 || entries[1].PlayerName != "Zed" || entries[1].Score != 50 {
		t.Fatalf("expected cumulative Zed=50, got %+v", entries)
	}

	resp = env.do(t, http.MethodPost, "/api/leaderboard", amy, LeaderboardSubmitRequest{PlayerName: "Zed", Score: 500, GameMode: "Crisis-Olympics"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("crediting another player: expected 403, got %d", resp.StatusCode)
	}

	badSubmits := []LeaderboardSubmitRequest{
		{Score: 10, GameMode: "Crisis Olympics"},
		{Score: 0, GameMode: "Crisis-Olympics"},
		{Score: -5, GameMode: "Crisis-Olympics"},
		{Score: 5},
	}
	for _, req := range badSubmits {
		if resp := env.do(t, http.MethodPost, "/api/leaderboard", zed, req); resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%+v: expected 400, got %d", req, resp.StatusCode)
		}
	}

	entries, _ = env.board.Query(context.Background(), domain.LeaderboardOlympics, 10)
	if len(entries) != 2 || entries[0].Score != 90 || entries[1].Score != 50 {
		t.Fatalf("rejected submissions changed the board: %+v", entries)
	}

	for _, path := range []string{"/api/leaderboard/Chess", "/api/leaderboard", "/api/leaderboard/Multiplayer?limit=x"} {
		if resp := env.do(t, http.MethodGet, path, "", nil); resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, resp.StatusCode)
		}
	}
}

func TestScenarioRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/scenarios", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	if got := decode[[]domain.Scenario](t, resp); len(got) != len(catalog.Scenarios()) {
		t.Fatalf("expected full catalog, got %d", len(got))
	}

	resp = env.do(t, http.MethodGet, "/api/scenarios/crisis-olympics", "", nil)
	if got := decode[domain.Scenario](t, resp); got.Mode != domain.ModeOlympics {
		t.Fatalf("unexpected scenario: %+v", got)
	}
	if resp := env.do(t, http.MethodGet, "/api/scenarios/missing", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing: expected 404, got %d", resp.StatusCode)
	}
}

func TestHealthAndDocs(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/healthz", "", nil)
	if got := decode[HealthResponse](t, resp); resp.StatusCode != http.StatusOK || got.Status != "ok" {
		t.Fatalf("unexpected health: %d %+v", resp.StatusCode, got)
	}

	resp = env.do(t, http.MethodGet, "/openapi.json", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("openapi: expected 200, got %d", resp.StatusCode)
	}
	doc := decode[map[string]any](t, resp)
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/api/games/start"]; !ok {
		t.Fatalf("start route missing from openapi paths")
	}
}

func TestHealthDegraded(t *testing.T) {
	rec := httptest.NewRecorder()
	h := handleHealth(logging.Discard(), map[string]Checker{
		"redis": CheckFunc(func(context.Context) error { return errors.New("down") }),
	})
	h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrScenarioNotFound, http.StatusNotFound},
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{domain.ErrOptionNotFound, http.StatusNotFound},
		{domain.ErrPolicyTooShort, http.StatusBadRequest},
		{domain.ErrInvalidGameMode, http.StatusBadRequest},
		{domain.ErrSessionEnded, http.StatusConflict},
		{domain.ErrInvalidQuestions, http.StatusBadGateway},
		{domain.ErrInvalidEvaluation, http.StatusBadGateway},
		{errors.Join(domain.ErrUpstream, errors.New("boom")), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if status, _ := classify(tc.err); status != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, status)
		}
	}
}
