package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/Hazealign/black-angus-main/internal/config"
	"github.com/Hazealign/black-angus-main/internal/resilience"
)

const defaultOpenAIModel = openai.GPT4oMini

type openAIBackend struct {
	client *openai.Client
	model  string
}

func newOpenAI(cfg config.TranslationConfig) *openAIBackend {
	openAICfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openAICfg.BaseURL = cfg.BaseURL
	}
	openAICfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openAIBackend{client: openai.NewClientWithConfig(openAICfg), model: model}
}

func (o *openAIBackend) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != http.StatusTooManyRequests && apiErr.HTTPStatusCode < 500 {
			return "", resilience.Permanent(fmt.Errorf("openai API call failed (status %d): %w", apiErr.HTTPStatusCode, err))
		}
		return "", fmt.Errorf("openai API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
