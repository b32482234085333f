package translate

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/Hazealign/black-angus-main/internal/config"
	"github.com/Hazealign/black-angus-main/internal/resilience"
)

const defaultGeminiModel = "gemini-2.0-flash"

type geminiBackend struct {
	client *genai.Client
	model  string
}

func newGemini(ctx context.Context, cfg config.TranslationConfig) (*geminiBackend, error) {
	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiBackend{client: gi, model: model}, nil
}

func (g *geminiBackend) complete(ctx context.Context, system, user string) (string, error) {
	temperature := float32(0.2)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), &genai.GenerateContentConfig{
		Temperature: &temperature,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	})
	if err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code != 429 && apiErr.Code < 500 {
			return "", resilience.Permanent(fmt.Errorf("gemini API call failed (code %d): %w", apiErr.Code, err))
		}
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	return resp.Text(), nil
}
