package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"crisis-quiz-service/internal/domain"
	"crisis-quiz-service/internal/metrics"
)

const (
	DefaultQuestionCount = 3
	MinPolicyLength      = 50
)

// GameService owns the lifecycle of game sessions: creation from a scenario
// and generated questions, answer and policy scoring, and termination.
type GameService struct {
	scenarios ScenarioRepository
	sessions  SessionRepository
	users     UserRepository
	board     *LeaderboardService
	generator QuestionGenerator
	evaluator PolicyEvaluator

	logger        *slog.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
	newID         func() string
	questionCount int
}

// Option customises a GameService.
type Option func(*GameService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *GameService) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *GameService) { s.metrics = m }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *GameService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *GameService) { s.newID = newID }
}

func WithQuestionCount(n int) Option {
	return func(s *GameService) {
		if n > 0 {
			s.questionCount = n
		}
	}
}

func NewGameService(
	scenarios ScenarioRepository,
	sessions SessionRepository,
	users UserRepository,
	board *LeaderboardService,
	generator QuestionGenerator,
	evaluator PolicyEvaluator,
	opts ...Option,
) *GameService {
	s := &GameService{
		scenarios:     scenarios,
		sessions:      sessions,
		users:         users,
		board:         board,
		generator:     generator,
		evaluator:     evaluator,
		logger:        slog.Default(),
		now:           time.Now,
		newID:         uuid.NewString,
		questionCount: DefaultQuestionCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsurePlayer makes sure an authenticated caller has a user record.
func (s *GameService) EnsurePlayer(ctx context.Context, playerID, name string) (domain.User, error) {
	if strings.TrimSpace(name) == "" {
		name = playerID
	}
	return s.users.Ensure(ctx, playerID, name)
}

// Scenarios lists every scenario available to start.
func (s *GameService) Scenarios(ctx context.Context) ([]domain.Scenario, error) {
	return s.scenarios.ListScenarios(ctx)
}

// Scenario returns one scenario by id.
func (s *GameService) Scenario(ctx context.Context, id string) (domain.Scenario, error) {
	return s.scenarios.GetScenario(ctx, id)
}

// StartGame generates questions for a scenario and persists a new session
// owned by playerID. Nothing is persisted if generation or validation fails.
func (s *GameService) StartGame(ctx context.Context, scenarioID, playerID string) (domain.GameSession, error) {
	scenario, err := s.scenarios.GetScenario(ctx, scenarioID)
	if err != nil {
		return domain.GameSession{}, err
	}

	generated, err := s.generator.GenerateQuestions(ctx, scenario.Context, scenario.Mode, s.questionCount)
	if err != nil {
		s.metrics.GenerationFailed("upstream")
		s.logger.Error("question generation failed", "scenario_id", scenario.ID, "mode", scenario.Mode, "error", err)
		if errors.Is(err, domain.ErrUpstream) {
			return domain.GameSession{}, err
		}
		return domain.GameSession{}, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	questions, err := BuildQuestions(generated, s.questionCount)
	if err != nil {
		s.metrics.GenerationFailed("invalid")
		s.logger.Error("generator returned invalid questions", "scenario_id", scenario.ID, "error", err)
		return domain.GameSession{}, err
	}

	session := domain.GameSession{
		ID:         s.newID(),
		Players:    []string{playerID},
		ScenarioID: scenario.ID,
		GameType:   domain.GameTypeFor(string(scenario.Mode)),
		Questions:  questions,
		Scores:     map[string]int{playerID: 0},
		IsActive:   true,
		StartedAt:  s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return domain.GameSession{}, fmt.Errorf("save session: %w", err)
	}
	s.metrics.GameStarted()

	s.bumpStats(ctx, playerID, func(st *domain.UserStats) { st.GamesPlayed++ })
	return session, nil
}

// GetGameDetails returns the stored session.
func (s *GameService) GetGameDetails(ctx context.Context, sessionID string) (domain.GameSession, error) {
	return s.sessions.Get(ctx, sessionID)
}

// SubmitDecision records playerID's answer to one question. A repeated answer
// to the same question is ignored and the session returned unchanged.
func (s *GameService) SubmitDecision(ctx context.Context, sessionID, playerID string, questionIndex, answerIndex int) (domain.GameSession, error) {
	var delta int
	session, changed, err := s.sessions.Update(ctx, sessionID, func(gs *domain.GameSession) (bool, error) {
		if questionIndex < 0 || questionIndex >= len(gs.Questions) {
			return false, fmt.Errorf("question %d: %w", questionIndex, domain.ErrQuestionNotFound)
		}
		q := &gs.Questions[questionIndex]
		if answerIndex < 0 || answerIndex >= len(q.Options) {
			return false, fmt.Errorf("answer %d: %w", answerIndex, domain.ErrOptionNotFound)
		}
		if q.AnsweredBy(playerID) {
			return false, nil
		}
		if gs.Ended() {
			return false, domain.ErrSessionEnded
		}

		delta = q.Options[answerIndex].Score
		q.PlayerAnswers = append(q.PlayerAnswers, domain.PlayerAnswer{PlayerID: playerID, AnswerIndex: answerIndex})
		if gs.Scores == nil {
			gs.Scores = make(map[string]int)
		}
		gs.Scores[playerID] += delta
		if !gs.HasPlayer(playerID) {
			gs.Players = append(gs.Players, playerID)
		}
		return true, nil
	})
	if err != nil {
		return domain.GameSession{}, err
	}
	if !changed {
		s.metrics.Decision("duplicate")
		return session, nil
	}
	s.metrics.Decision("recorded")

	if err := s.recordAnswerScore(ctx, session, playerID, delta); err != nil {
		return domain.GameSession{}, err
	}
	return session, nil
}

// recordAnswerScore applies the per-answer side effects: player stats, then
// leaderboard. These are independent writes; a failure leaves earlier ones in place.
func (s *GameService) recordAnswerScore(ctx context.Context, session domain.GameSession, playerID string, delta int) error {
	user, err := s.users.UpdateStats(ctx, playerID, func(st *domain.UserStats) {
		st.TotalScore += delta
		st.Recompute()
	})
	if errors.Is(err, domain.ErrUserNotFound) {
		s.metrics.LeaderboardUpdate("skipped")
		s.logger.Warn("player record missing, skipping stats and leaderboard", "session_id", session.ID, "player_id", playerID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("update player stats: %w", err)
	}

	mode, ok := s.leaderboardMode(ctx, session)
	if !ok {
		s.metrics.LeaderboardUpdate("skipped")
		s.logger.Warn("no valid game mode, leaderboard not updated", "session_id", session.ID, "game_type", session.GameType)
		return nil
	}
	if _, err := s.board.Upsert(ctx, user.Name, mode, delta); err != nil {
		s.metrics.LeaderboardUpdate("failed")
		return fmt.Errorf("update leaderboard: %w", err)
	}
	s.metrics.LeaderboardUpdate("applied")
	return nil
}

// leaderboardMode prefers the scenario's own mode and falls back to the
// session's game type.
func (s *GameService) leaderboardMode(ctx context.Context, session domain.GameSession) (domain.LeaderboardMode, bool) {
	scenario, err := s.scenarios.GetScenario(ctx, session.ScenarioID)
	if err == nil {
		if mode, ok := scenario.Mode.LeaderboardMode(); ok {
			return mode, true
		}
	} else {
		s.logger.Debug("scenario lookup for leaderboard failed", "scenario_id", session.ScenarioID, "error", err)
	}
	return session.GameType.LeaderboardMode()
}

// EvaluatePolicy scores free-text policy and overwrites playerID's score with
// the evaluator's total.
func (s *GameService) EvaluatePolicy(ctx context.Context, sessionID, playerID, policyText string) (domain.GameSession, domain.PolicyReview, error) {
	if utf8.RuneCountInString(strings.TrimSpace(policyText)) < MinPolicyLength {
		return domain.GameSession{}, domain.PolicyReview{}, domain.ErrPolicyTooShort
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.GameSession{}, domain.PolicyReview{}, err
	}
	if session.Ended() {
		return domain.GameSession{}, domain.PolicyReview{}, domain.ErrSessionEnded
	}
	scenario, err := s.scenarios.GetScenario(ctx, session.ScenarioID)
	if err != nil {
		return domain.GameSession{}, domain.PolicyReview{}, err
	}

	eval, err := s.evaluator.EvaluatePolicy(ctx, policyText, scenario.Context)
	if err != nil {
		s.metrics.PolicyEvaluated("upstream")
		s.logger.Error("policy evaluation failed", "session_id", sessionID, "error", err)
		if errors.Is(err, domain.ErrUpstream) {
			return domain.GameSession{}, domain.PolicyReview{}, err
		}
		return domain.GameSession{}, domain.PolicyReview{}, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	review, err := ReviewFromEvaluation(eval, s.now())
	if err != nil {
		s.metrics.PolicyEvaluated("invalid")
		s.logger.Error("evaluator returned invalid payload", "session_id", sessionID, "total_score", eval.TotalScore)
		return domain.GameSession{}, domain.PolicyReview{}, err
	}

	updated, _, err := s.sessions.Update(ctx, sessionID, func(gs *domain.GameSession) (bool, error) {
		if gs.Ended() {
			return false, domain.ErrSessionEnded
		}
		if gs.Scores == nil {
			gs.Scores = make(map[string]int)
		}
		gs.Scores[playerID] = review.TotalScore
		if gs.PolicyReviews == nil {
			gs.PolicyReviews = make(map[string]domain.PolicyReview)
		}
		gs.PolicyReviews[playerID] = review
		if !gs.HasPlayer(playerID) {
			gs.Players = append(gs.Players, playerID)
		}
		return true, nil
	})
	if err != nil {
		return domain.GameSession{}, domain.PolicyReview{}, err
	}
	s.metrics.PolicyEvaluated("ok")
	return updated, review, nil
}

// EndGame stamps endedAt and deactivates the session. Ending twice is a no-op.
func (s *GameService) EndGame(ctx context.Context, sessionID string) (domain.GameSession, error) {
	session, changed, err := s.sessions.Update(ctx, sessionID, func(gs *domain.GameSession) (bool, error) {
		if gs.Ended() {
			return false, nil
		}
		ended := s.now()
		gs.EndedAt = &ended
		gs.IsActive = false
		return true, nil
	})
	if err != nil {
		return domain.GameSession{}, err
	}
	if changed {
		for _, playerID := range session.Players {
			s.bumpStats(ctx, playerID, func(st *domain.UserStats) { st.ScenariosCompleted++ })
		}
	}
	return session, nil
}

// bumpStats is best effort: missing players are ignored, failures logged.
func (s *GameService) bumpStats(ctx context.Context, playerID string, mutate func(*domain.UserStats)) {
	_, err := s.users.UpdateStats(ctx, playerID, func(st *domain.UserStats) {
		mutate(st)
		st.Recompute()
	})
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Warn("player stats update failed", "player_id", playerID, "error", err)
	}
}
