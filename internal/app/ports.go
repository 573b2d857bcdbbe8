package app

import (
	"context"
	"time"

	"crisis-quiz-service/internal/domain"
)

// ScenarioLoader fetches scenarios from a backing store (document DB or the
// built-in catalog).
type ScenarioLoader interface {
	LoadScenario(ctx context.Context, id string) (domain.Scenario, error)
	LoadScenarios(ctx context.Context) ([]domain.Scenario, error)
}

// ScenarioRepository reads crisis scenarios (from cache/backing store).
type ScenarioRepository interface {
	GetScenario(ctx context.Context, id string) (domain.Scenario, error)
	ListScenarios(ctx context.Context) ([]domain.Scenario, error)
}

// SessionMutation edits a session in place. Returning false leaves the stored
// session untouched. Stores may run a mutation more than once under contention,
// so it must derive everything from the session it is handed.
type SessionMutation func(session *domain.GameSession) (changed bool, err error)

// SessionRepository persists game sessions. Update is atomic per session.
type SessionRepository interface {
	Create(ctx context.Context, session domain.GameSession) error
	Get(ctx context.Context, id string) (domain.GameSession, error)
	Update(ctx context.Context, id string, mutate SessionMutation) (domain.GameSession, bool, error)
}

// UserRepository stores player records and their stats.
type UserRepository interface {
	Get(ctx context.Context, id string) (domain.User, error)
	Ensure(ctx context.Context, id, name string) (domain.User, error)
	UpdateStats(ctx context.Context, id string, mutate func(*domain.UserStats)) (domain.User, error)
}

// LeaderboardRepository keeps one cumulative row per (playerName, gameMode).
type LeaderboardRepository interface {
	UpsertIncrement(ctx context.Context, playerName string, mode domain.LeaderboardMode, delta int, at time.Time) (domain.LeaderboardEntry, error)
	Top(ctx context.Context, mode domain.LeaderboardMode, limit int) ([]domain.LeaderboardEntry, error)
}

// QuestionGenerator produces count questions for a scenario context.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, scenarioContext string, mode domain.Mode, count int) ([]domain.GeneratedQuestion, error)
}

// PolicyEvaluator scores free-text policy against a scenario context.
type PolicyEvaluator interface {
	EvaluatePolicy(ctx context.Context, policyText, scenarioContext string) (domain.PolicyEvaluation, error)
}
