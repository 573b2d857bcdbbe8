package domain

import "time"

// Scenario is a titled crisis context used to seed question generation.
type Scenario struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Mode        Mode   `json:"mode"`
	Context     string `json:"context"`
}

// Option is one of the four scored choices of a question.
type Option struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// PlayerAnswer records which option a player picked.
type PlayerAnswer struct {
	PlayerID    string `json:"player"`
	AnswerIndex int    `json:"answerIndex"`
}

// Question is a generated multiple-choice question embedded in a session.
type Question struct {
	QuestionText  string         `json:"questionText"`
	Options       []Option       `json:"options"`
	PlayerAnswers []PlayerAnswer `json:"playerAnswers"`
}

// AnsweredBy reports whether playerID already has an answer recorded.
func (q Question) AnsweredBy(playerID string) bool {
	for _, a := range q.PlayerAnswers {
		if a.PlayerID == playerID {
			return true
		}
	}
	return false
}

// PolicyReview is the retained outcome of a policy evaluation.
type PolicyReview struct {
	Evaluation string         `json:"evaluation"`
	Scores     map[string]int `json:"scores"`
	TotalScore int            `json:"totalScore"`
	ReviewedAt time.Time      `json:"reviewedAt"`
}

// GameSession is one playthrough of a scenario.
type GameSession struct {
	ID            string                  `json:"id"`
	Players       []string                `json:"players"`
	ScenarioID    string                  `json:"scenarioId"`
	GameType      GameType                `json:"gameType"`
	Questions     []Question              `json:"questions"`
	Scores        map[string]int          `json:"scores"`
	PolicyReviews map[string]PolicyReview `json:"policyReviews,omitempty"`
	IsActive      bool                    `json:"isActive"`
	StartedAt     time.Time               `json:"startedAt"`
	EndedAt       *time.Time              `json:"endedAt,omitempty"`
}

// Ended reports whether EndGame has been applied.
func (s GameSession) Ended() bool {
	return s.EndedAt != nil
}

// HasPlayer reports whether playerID is listed on the session.
func (s GameSession) HasPlayer(playerID string) bool {
	for _, p := range s.Players {
		if p == playerID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so stores never share nested slices or maps with callers.
func (s GameSession) Clone() GameSession {
	out := s
	out.Players = append([]string(nil), s.Players...)
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = Question{
			QuestionText:  q.QuestionText,
			Options:       append([]Option(nil), q.Options...),
			PlayerAnswers: append([]PlayerAnswer(nil), q.PlayerAnswers...),
		}
	}
	out.Scores = make(map[string]int, len(s.Scores))
	for k, v := range s.Scores {
		out.Scores[k] = v
	}
	if s.PolicyReviews != nil {
		out.PolicyReviews = make(map[string]PolicyReview, len(s.PolicyReviews))
		for k, v := range s.PolicyReviews {
			scores := make(map[string]int, len(v.Scores))
			for sk, sv := range v.Scores {
				scores[sk] = sv
			}
			v.Scores = scores
			out.PolicyReviews[k] = v
		}
	}
	if s.EndedAt != nil {
		ended := *s.EndedAt
		out.EndedAt = &ended
	}
	return out
}

// LeaderboardEntry is a cumulative per-player, per-mode score.
type LeaderboardEntry struct {
	PlayerName string          `json:"playerName"`
	GameMode   LeaderboardMode `json:"gameMode"`
	Score      int             `json:"score"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Leaderboard is an ordered snapshot of one mode's entries.
type Leaderboard struct {
	GameMode  LeaderboardMode    `json:"gameMode"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// UserStats are aggregate counters maintained as side effects of play.
type UserStats struct {
	GamesPlayed        int `json:"gamesPlayed"`
	TotalScore         int `json:"totalScore"`
	AverageScore       int `json:"averageScore"`
	ScenariosCompleted int `json:"scenariosCompleted"`
}

// Recompute refreshes derived fields.
func (s *UserStats) Recompute() {
	if s.GamesPlayed <= 0 {
		s.AverageScore = 0
		return
	}
	s.AverageScore = s.TotalScore / s.GamesPlayed
}

// User is a registered player.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Stats        UserStats `json:"stats"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GeneratedOption is an option exactly as the question generator returned it.
// Score is left untyped so malformed payloads can be rejected explicitly.
type GeneratedOption struct {
	Text  string `json:"text"`
	Score any    `json:"score"`
}

// GeneratedQuestion is a question exactly as the question generator returned it.
type GeneratedQuestion struct {
	QuestionText string            `json:"questionText"`
	Options      []GeneratedOption `json:"options"`
}

// PolicyEvaluation is the raw rubric returned by the policy evaluator.
type PolicyEvaluation struct {
	Evaluation string         `json:"evaluation"`
	Scores     map[string]any `json:"scores"`
	TotalScore any            `json:"totalScore"`
}
