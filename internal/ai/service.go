// Package ai generates scenario questions and scores policy text with Gemini.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"crisis-quiz-service/internal/config"
	"crisis-quiz-service/internal/domain"
	json "github.com/goccy/go-json"
)

const (
	defaultModel   = "gemini-1.5-flash"
	defaultTimeout = 60 * time.Second
)

// Service implements app.QuestionGenerator and app.PolicyEvaluator.
type Service struct {
	keys   config.APIKeys
	model  textModel
	logger *slog.Logger
}

func NewService(cfg config.AIConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := config.TTLDuration(cfg.Timeout, defaultTimeout)
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Service{
		keys:   cfg.Keys,
		model:  newGeminiModel(model, timeout, cfg.Temperature),
		logger: logger,
	}
}

func (s *Service) GenerateQuestions(ctx context.Context, scenarioContext string, mode domain.Mode, count int) ([]domain.GeneratedQuestion, error) {
	key, err := s.keyFor(mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	s.logger.Debug("generating questions", "mode", mode, "count", count)

	text, err := s.model.Generate(ctx, key, questionsPrompt(scenarioContext, count))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	var questions []domain.GeneratedQuestion
	if err := json.Unmarshal([]byte(stripFences(text)), &questions); err != nil {
		s.logger.Error("unparseable question payload", "mode", mode, "raw", text, "error", err)
		return nil, fmt.Errorf("%w: decode questions: %w", domain.ErrUpstream, err)
	}
	return questions, nil
}

func (s *Service) EvaluatePolicy(ctx context.Context, policyText, scenarioContext string) (domain.PolicyEvaluation, error) {
	key, err := s.keyFor(domain.ModePolicy)
	if err != nil {
		return domain.PolicyEvaluation{}, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	text, err := s.model.Generate(ctx, key, policyPrompt(policyText, scenarioContext))
	if err != nil {
		return domain.PolicyEvaluation{}, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	var eval domain.PolicyEvaluation
	if err := json.Unmarshal([]byte(stripFences(text)), &eval); err != nil {
		s.logger.Error("unparseable policy evaluation", "raw", text, "error", err)
		return domain.PolicyEvaluation{}, fmt.Errorf("%w: decode evaluation: %w", domain.ErrUpstream, err)
	}
	return eval, nil
}

// keyFor picks the per-mode API key. Single-player and unknown modes use the default key.
func (s *Service) keyFor(mode domain.Mode) (string, error) {
	var key string
	switch mode {
	case domain.ModeMultiplayer:
		key = s.keys.Multiplayer
	case domain.ModePolicy:
		key = s.keys.Policy
	case domain.ModeOlympics:
		key = s.keys.CrisisOlympics
	case domain.ModeRealWorld:
		key = s.keys.RealWorld
	case domain.ModeAIvsHuman:
		key = s.keys.AIvsHuman
	default:
		key = s.keys.Default
	}
	if key == "" {
		return "", fmt.Errorf("%w for mode %q", ErrMissingAPIKey, mode)
	}
	return key, nil
}

func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
