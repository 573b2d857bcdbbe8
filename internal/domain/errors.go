package domain

import "errors"

var (
	// ErrScenarioNotFound is returned when a scenario id does not resolve.
	ErrScenarioNotFound = errors.New("scenario not found")
	// ErrSessionNotFound is returned when a game session does not exist.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrQuestionNotFound indicates a question index outside the session's questions.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates an answer index outside the question's options.
	ErrOptionNotFound = errors.New("option not found")
	// ErrUserNotFound is returned when a player record does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidQuestions means the generator returned a malformed question set.
	ErrInvalidQuestions = errors.New("generated questions are invalid")
	// ErrPolicyTooShort is returned for policy text under the minimum length.
	ErrPolicyTooShort = errors.New("policy text must be at least 50 characters long")
	// ErrInvalidGameMode is returned for a leaderboard mode outside the canonical labels.
	ErrInvalidGameMode = errors.New("invalid game mode")
	// ErrInvalidPlayerName is returned for a blank leaderboard player name.
	ErrInvalidPlayerName = errors.New("player name must not be empty")
	// ErrInvalidScore is returned for a non-positive leaderboard submission.
	ErrInvalidScore = errors.New("score must be positive")

	// ErrInvalidEvaluation means the evaluator response lacked a numeric total score.
	ErrInvalidEvaluation = errors.New("policy evaluation is invalid")
	// ErrUpstream wraps failures of the question generator or policy evaluator.
	ErrUpstream = errors.New("ai upstream failure")

	// ErrSessionEnded is returned when writing to a session after EndGame.
	ErrSessionEnded = errors.New("game session has ended")
)

// IsNotFound reports whether err belongs to the not-found family.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrScenarioNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrOptionNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
