package handlers_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Hazealign/black-angus-main/internal/bot/handlers"
	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/config"
	"github.com/Hazealign/black-angus-main/internal/database"
	"github.com/Hazealign/black-angus-main/internal/feed"
	"github.com/Hazealign/black-angus-main/internal/logger"
	"github.com/Hazealign/black-angus-main/internal/scraper"
)

// fixedNow is 2024-05-01 18:00 in Asia/Seoul.
var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Bot.Prefix = "!"
	cfg.Bot.EmoticonPrefix = "~"
	cfg.Bot.ReplyOnError = true
	cfg.Scheduler.Timezone = "Asia/Seoul"
	cfg.YouTube.MaxResults = 5
	return cfg
}

func newStore(t *testing.T) database.Store {
	t.Helper()
	log := logger.Discard()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "handlers.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db, log) })
	return database.NewStore(db, log)
}

func baseDeps(t *testing.T) handlers.HandlerDeps {
	t.Helper()
	return handlers.HandlerDeps{
		Logger:    logger.Discard(),
		Config:    testConfig(),
		Store:     newStore(t),
		Sender:    chat.NewSerialSender(&chat.Recorder{}),
		Directory: fakeDirectory{"news": "c-news", "general": "c-general"},
		Now:       func() time.Time { return fixedNow },
	}
}

func message(content string) chat.Message {
	return chat.Message{ID: "m1", Content: content, AuthorID: "u1", ChannelID: "c1", GuildID: "g1"}
}

// dispatch runs one handler's pipeline the way the router does.
func dispatch(t *testing.T, h handlers.Handler, content string) (*handlers.Command, *chat.Reply) {
	t.Helper()
	msg := message(content)
	require.True(t, h.Match(msg), "handler %s should match %q", h.Name(), content)

	cmd, err := h.Parse(context.Background(), msg)
	require.NoError(t, err)
	require.NotNil(t, cmd)

	reply, err := h.Present(context.Background(), cmd)
	require.NoError(t, err)
	return cmd, reply
}

type fakeDirectory map[string]string

func (d fakeDirectory) ResolveChannel(_ context.Context, _ string, name string) (string, error) {
	if id, ok := d[name]; ok {
		return id, nil
	}
	return "", errors.New("no such channel")
}

type fakeFeeds struct {
	entries []feed.Entry
	err     error
}

func (f fakeFeeds) Fetch(_ context.Context, _ string, since time.Time) ([]feed.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return feed.Since(f.entries, since), nil
}

type fakeTranslator struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeTranslator) Translate(_ context.Context, from, to, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, from+">"+to+":"+text)
	if f.err != nil {
		return "", f.err
	}
	return "[" + to + "] " + text, nil
}

type fakeSearcher struct {
	videos []scraper.Video
	err    error
}

func (f fakeSearcher) Search(_ context.Context, _ string, count int) ([]scraper.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	if count < len(f.videos) {
		return f.videos[:count], nil
	}
	return f.videos, nil
}
