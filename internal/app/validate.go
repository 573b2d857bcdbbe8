package app

import (
	"fmt"
	"math"
	"strings"
	"time"

	"crisis-quiz-service/internal/domain"
)

const (
	optionsPerQuestion = 4
	// maxScore bounds every score taken from upstream so it fits an int on any platform.
	maxScore = math.MaxInt32
)

// BuildQuestions validates generator output and converts it to session questions.
// Any malformed element rejects the whole set. A positive want also requires
// exactly that many questions.
func BuildQuestions(generated []domain.GeneratedQuestion, want int) ([]domain.Question, error) {
	if len(generated) == 0 {
		return nil, fmt.Errorf("%w: no questions", domain.ErrInvalidQuestions)
	}
	if want > 0 && len(generated) != want {
		return nil, fmt.Errorf("%w: got %d questions, want %d", domain.ErrInvalidQuestions, len(generated), want)
	}
	questions := make([]domain.Question, 0, len(generated))
	for i, g := range generated {
		if strings.TrimSpace(g.QuestionText) == "" {
			return nil, fmt.Errorf("%w: question %d has no text", domain.ErrInvalidQuestions, i)
		}
		if len(g.Options) != optionsPerQuestion {
			return nil, fmt.Errorf("%w: question %d has %d options", domain.ErrInvalidQuestions, i, len(g.Options))
		}
		options := make([]domain.Option, 0, optionsPerQuestion)
		for j, o := range g.Options {
			if strings.TrimSpace(o.Text) == "" {
				return nil, fmt.Errorf("%w: question %d option %d has no text", domain.ErrInvalidQuestions, i, j)
			}
			score, ok := optionScore(o.Score)
			if !ok {
				return nil, fmt.Errorf("%w: question %d option %d score %v", domain.ErrInvalidQuestions, i, j, o.Score)
			}
			options = append(options, domain.Option{Text: o.Text, Score: score})
		}
		questions = append(questions, domain.Question{
			QuestionText:  g.QuestionText,
			Options:       options,
			PlayerAnswers: []domain.PlayerAnswer{},
		})
	}
	return questions, nil
}

// ReviewFromEvaluation requires a numeric total score in [0, maxScore];
// sub-scores are kept for display and non-numeric or out-of-range ones are dropped.
func ReviewFromEvaluation(eval domain.PolicyEvaluation, at time.Time) (domain.PolicyReview, error) {
	total, ok := boundedScore(eval.TotalScore)
	if !ok {
		return domain.PolicyReview{}, fmt.Errorf("%w: total score %v", domain.ErrInvalidEvaluation, eval.TotalScore)
	}
	scores := make(map[string]int, len(eval.Scores))
	for name, raw := range eval.Scores {
		if v, ok := boundedScore(raw); ok {
			scores[name] = v
		}
	}
	return domain.PolicyReview{
		Evaluation: eval.Evaluation,
		Scores:     scores,
		TotalScore: total,
		ReviewedAt: at,
	}, nil
}

// optionScore accepts whole numbers in [0, maxScore] only.
func optionScore(raw any) (int, bool) {
	v, ok := number(raw)
	if !ok || v < 0 || v > maxScore || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

// boundedScore rounds to the nearest integer and rejects anything outside [0, maxScore].
func boundedScore(raw any) (int, bool) {
	v, ok := number(raw)
	if !ok {
		return 0, false
	}
	v = math.Round(v)
	if v < 0 || v > maxScore {
		return 0, false
	}
	return int(v), true
}

func number(raw any) (float64, bool) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case int32:
		v = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
