package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hazealign/black-angus-main/internal/config"
	"github.com/Hazealign/black-angus-main/internal/logger"
)

type fakeBackend struct {
	calls  int
	system string
	fail   int
	reply  string
}

func (f *fakeBackend) complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system = system
	if f.calls <= f.fail {
		return "", errors.New("unavailable")
	}
	if f.reply != "" {
		return f.reply, nil
	}
	return "[" + user + "]", nil
}

func testConfig() config.TranslationConfig {
	return config.TranslationConfig{Provider: "fake", APIKey: "k", Timeout: time.Second}
}

func TestLanguage(t *testing.T) {
	t.Parallel()

	lang, err := Language("한국어")
	require.NoError(t, err)
	assert.Equal(t, "Korean", lang)

	lang, err = Language(" EN ")
	require.NoError(t, err)
	assert.Equal(t, "English", lang)

	_, err = Language("klingon")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestTranslateRetriesAndBuildsPrompt(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{fail: 1}
	c := newClient(fb, testConfig(), logger.Discard())
	c.retry.Delay = time.Millisecond

	out, err := c.Translate(context.Background(), "영어", "한국어", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "[hello]", out)
	assert.Equal(t, 2, fb.calls)
	assert.Contains(t, fb.system, "from English to Korean")
}

func TestTranslateRejectsBadInput(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{}
	c := newClient(fb, testConfig(), logger.Discard())

	_, err := c.Translate(context.Background(), "영어", "klingon", "hi")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	_, err = c.Translate(context.Background(), "영어", "한국어", "   ")
	assert.Error(t, err)
	assert.Zero(t, fb.calls)
}

func TestTranslateEmptyAnswer(t *testing.T) {
	t.Parallel()

	c := newClient(&fakeBackend{reply: "   "}, testConfig(), logger.Discard())
	_, err := c.Translate(context.Background(), "en", "ko", "hi")
	assert.Error(t, err)
}

func TestOpenAIBackend(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"안녕하세요"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), config.TranslationConfig{
		Provider: config.ProviderOpenAI,
		APIKey:   "k",
		BaseURL:  srv.URL + "/v1",
		Timeout:  time.Second,
	}, logger.Discard())
	require.NoError(t, err)

	out, err := c.Translate(context.Background(), "en", "ko", "hello")
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요", out)
}

func TestNewRequiresProvider(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), config.TranslationConfig{}, logger.Discard())
	assert.Error(t, err)
}
