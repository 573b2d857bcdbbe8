package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"
)

// ErrMissingAPIKey is returned when no key is configured for a mode.
var ErrMissingAPIKey = errors.New("gemini api key not configured")

// textModel sends one prompt and returns the raw text of the reply.
type textModel interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// geminiModel calls the Gemini API, keeping one client per API key.
type geminiModel struct {
	model       string
	timeout     time.Duration
	temperature float32

	mu      sync.Mutex
	clients map[string]*genai.Client
}

func newGeminiModel(model string, timeout time.Duration, temperature float32) *geminiModel {
	return &geminiModel{
		model:       model,
		timeout:     timeout,
		temperature: temperature,
		clients:     make(map[string]*genai.Client),
	}
}

func (g *geminiModel) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	client, err := g.client(ctx, apiKey)
	if err != nil {
		return "", err
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		ResponseMIMEType: "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	response, err := client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return response.Text(), nil
}

func (g *geminiModel) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if client, ok := g.clients[apiKey]; ok {
		return client, nil
	}
	client, err := genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			Timeout: genai.Ptr(g.timeout),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.clients[apiKey] = client
	return client, nil
}
