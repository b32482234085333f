// Package translate turns text from one language into another through an
// LLM backend.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Hazealign/black-angus-main/internal/config"
	"github.com/Hazealign/black-angus-main/internal/resilience"
)

// ErrUnsupportedLanguage is returned for language names not in Languages.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Translator translates text between two languages named as in Languages.
type Translator interface {
	Translate(ctx context.Context, from, to, text string) (string, error)
}

// Languages maps accepted names (Korean names and ISO codes) to the English
// name given to the model.
var Languages = map[string]string{
	"한국어": "Korean", "ko": "Korean",
	"영어": "English", "en": "English",
	"일본어": "Japanese", "ja": "Japanese",
	"중국어_간체": "Simplified Chinese", "zh-cn": "Simplified Chinese",
	"중국어_번체": "Traditional Chinese", "zh-tw": "Traditional Chinese",
	"베트남어": "Vietnamese", "vi": "Vietnamese",
	"인도네시아어": "Indonesian", "id": "Indonesian",
	"태국어": "Thai", "th": "Thai",
	"독일어": "German", "de": "German",
	"러시아어": "Russian", "ru": "Russian",
	"스페인어": "Spanish", "es": "Spanish",
	"이탈리아어": "Italian", "it": "Italian",
	"프랑스어": "French", "fr": "French",
}

// Language resolves a user-supplied language name.
func Language(name string) (string, error) {
	lang, ok := Languages[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, name)
	}
	return lang, nil
}

// backend sends one prompt and returns the model's answer.
type backend interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// Client implements Translator over a backend with a breaker and retries.
type Client struct {
	backend backend
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	logger  *slog.Logger
}

var _ Translator = (*Client)(nil)

// New builds the Translator selected by cfg.Provider.
func New(ctx context.Context, cfg config.TranslationConfig, logger *slog.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("translation provider and api key are required")
	}

	var (
		b   backend
		err error
	)
	switch cfg.Provider {
	case config.ProviderGemini:
		b, err = newGemini(ctx, cfg)
	case config.ProviderOpenAI:
		b = newOpenAI(cfg)
	default:
		err = fmt.Errorf("unknown translation provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return newClient(b, cfg, logger), nil
}

func newClient(b backend, cfg config.TranslationConfig, logger *slog.Logger) *Client {
	log := logger.With("component", "translate", "provider", cfg.Provider)
	retry := resilience.DefaultRetryConfig()
	retry.Logger = log
	return &Client{
		backend: b,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:    "translate:" + cfg.Provider,
			Timeout: cfg.Timeout,
			Logger:  log,
		}),
		retry:  retry,
		logger: log,
	}
}

func (c *Client) Translate(ctx context.Context, from, to, text string) (string, error) {
	src, err := Language(from)
	if err != nil {
		return "", err
	}
	dst, err := Language(to)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("nothing to translate")
	}

	system := fmt.Sprintf(SystemInstruction, src, dst)
	var out string
	err = resilience.WithRetry(ctx, func(ctx context.Context) error {
		return c.breaker.Execute(ctx, func(ctx context.Context) error {
			res, err := c.backend.complete(ctx, system, text)
			if err != nil {
				return err
			}
			out = strings.TrimSpace(res)
			return nil
		})
	}, c.retry)
	if err != nil {
		c.logger.ErrorContext(ctx, "Translation failed", "from", src, "to", dst, "error", err)
		return "", fmt.Errorf("translate %s to %s: %w", src, dst, err)
	}
	if out == "" {
		return "", errors.New("empty translation")
	}
	return out, nil
}
