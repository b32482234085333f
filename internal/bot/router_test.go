package bot_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hazealign/black-angus-main/internal/bot"
	"github.com/Hazealign/black-angus-main/internal/bot/handlers"
	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/config"
	"github.com/Hazealign/black-angus-main/internal/logger"
)

const generalError = "something went wrong"

type stubHandler struct {
	name     string
	off      bool
	keyword  string
	parseErr error
	panicAt  string
	reply    *chat.Reply
	present  func(ctx context.Context, cmd *handlers.Command) (*chat.Reply, error)

	matched, parsed, presented atomic.Int32
}

func (h *stubHandler) Name() string   { return h.name }
func (h *stubHandler) Disabled() bool { return h.off }

func (h *stubHandler) Match(msg chat.Message) bool {
	h.matched.Add(1)
	if h.panicAt == "match" {
		panic("match exploded")
	}
	return handlers.Trigger{Prefix: "!", Keywords: []string{h.keyword}}.Match(msg)
}

func (h *stubHandler) Parse(_ context.Context, msg chat.Message) (*handlers.Command, error) {
	h.parsed.Add(1)
	if h.panicAt == "parse" {
		panic("parse exploded")
	}
	if h.parseErr != nil {
		return nil, h.parseErr
	}
	return &handlers.Command{Message: msg}, nil
}

func (h *stubHandler) Present(ctx context.Context, cmd *handlers.Command) (*chat.Reply, error) {
	h.presented.Add(1)
	if h.panicAt == "present" {
		panic("present exploded")
	}
	if h.present != nil {
		return h.present(ctx, cmd)
	}
	return h.reply, nil
}

func routerConfig(replyOnError bool) *config.Config {
	cfg := &config.Config{}
	cfg.Bot.Prefix = "!"
	cfg.Bot.ReplyOnError = replyOnError
	cfg.Messages.GeneralError = generalError
	return cfg
}

func newRouter(t *testing.T, replyOnError bool, hs ...handlers.Handler) (*bot.Router, *chat.Recorder, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	rec := &chat.Recorder{}
	hl := make([]handlers.Handler, len(hs))
	copy(hl, hs)
	r := bot.NewRouter(logger.New(&logs, "debug", false), routerConfig(replyOnError), hl,
		chat.NewSerialSender(rec), func() string { return "bot-id" })
	return r, rec, &logs
}

func msg(content string) chat.Message {
	return chat.Message{ID: "m1", Content: content, AuthorID: "u1", ChannelID: "c1"}
}

func texts(sent []chat.Sent) []string {
	out := make([]string, 0, len(sent))
	for _, s := range sent {
		out = append(out, s.Reply.Text)
	}
	return out
}

func TestRouterSkipsDisabledAndNonMatching(t *testing.T) {
	t.Parallel()

	disabled := &stubHandler{name: "disabled", off: true, keyword: "ping", reply: chat.TextReply("no")}
	other := &stubHandler{name: "other", keyword: "pong", reply: chat.TextReply("no")}
	ping := &stubHandler{name: "ping", keyword: "ping", reply: chat.TextReply("pong")}

	r, rec, _ := newRouter(t, true, disabled, other, ping)
	r.Dispatch(context.Background(), msg("!ping"))
	r.Wait()

	assert.Zero(t, disabled.matched.Load())
	assert.Zero(t, disabled.parsed.Load())
	assert.Equal(t, int32(1), other.matched.Load())
	assert.Zero(t, other.parsed.Load())
	assert.Zero(t, other.presented.Load())
	assert.Equal(t, int32(1), ping.presented.Load())
	assert.Equal(t, []string{"pong"}, texts(rec.Sent()))
}

func TestRouterIgnoresSelfAndEmptyMessages(t *testing.T) {
	t.Parallel()

	h := &stubHandler{name: "ping", keyword: "ping", reply: chat.TextReply("pong")}
	r, rec, _ := newRouter(t, true, h)

	self := msg("!ping")
	self.AuthorID = "bot-id"
	r.Dispatch(context.Background(), self)
	r.Dispatch(context.Background(), msg("   "))
	r.Wait()

	assert.Zero(t, h.matched.Load())
	assert.Empty(t, rec.Sent())
}

func TestRouterContainsFailures(t *testing.T) {
	t.Parallel()

	panicky := &stubHandler{name: "panicky", keyword: "go", panicAt: "present"}
	broken := &stubHandler{name: "broken", keyword: "go", parseErr: errors.New("db down")}
	failing := &stubHandler{name: "failing", keyword: "go", present: func(context.Context, *handlers.Command) (*chat.Reply, error) {
		return nil, errors.New("upstream timeout")
	}}
	healthy := &stubHandler{name: "healthy", keyword: "go", reply: chat.TextReply("ok")}
	matchPanic := &stubHandler{name: "match_panic", keyword: "go", panicAt: "match"}

	r, rec, logs := newRouter(t, true, panicky, broken, failing, healthy, matchPanic)
	r.Dispatch(context.Background(), msg("!go"))
	r.Wait()

	assert.Equal(t, int32(1), healthy.presented.Load())
	assert.ElementsMatch(t, []string{"ok", generalError, generalError, generalError}, texts(rec.Sent()),
		"a panic in Match happens before the handler is addressed, so it gets no reply")

	out := logs.String()
	assert.Contains(t, out, "Handler panicked")
	assert.Contains(t, out, "present exploded")
	assert.Contains(t, out, "match exploded")
	assert.Contains(t, out, "Failed to parse command")
	assert.Contains(t, out, "db down")
	assert.Contains(t, out, "Failed to present command")
	assert.Contains(t, out, "handler=panicky")
}

func TestRouterReplyOnErrorDisabled(t *testing.T) {
	t.Parallel()

	panicky := &stubHandler{name: "panicky", keyword: "go", panicAt: "parse"}
	r, rec, logs := newRouter(t, false, panicky)
	r.Dispatch(context.Background(), msg("!go"))
	r.Wait()

	assert.Empty(t, rec.Sent())
	assert.Contains(t, logs.String(), "parse exploded")
}

func TestRouterNilCommandAndEmptyReply(t *testing.T) {
	t.Parallel()

	silent := &stubHandler{name: "silent", keyword: "go", reply: &chat.Reply{Text: "  "}}
	r, rec, _ := newRouter(t, true, silent)
	r.Dispatch(context.Background(), msg("!go"))
	r.Wait()

	assert.Equal(t, int32(1), silent.presented.Load())
	assert.Empty(t, rec.Sent())
}

func TestRouterRunsHandlersConcurrently(t *testing.T) {
	t.Parallel()

	const n = 3
	arrived := make(chan struct{}, n)
	release := make(chan struct{})
	barrier := func(context.Context, *handlers.Command) (*chat.Reply, error) {
		arrived <- struct{}{}
		select {
		case <-release:
			return chat.TextReply("done"), nil
		case <-time.After(5 * time.Second):
			return nil, errors.New("handlers did not run concurrently")
		}
	}

	hs := make([]handlers.Handler, 0, n)
	for i := range n {
		hs = append(hs, &stubHandler{name: fmt.Sprintf("h%d", i), keyword: "go", present: barrier})
	}
	r, rec, _ := newRouter(t, true, hs...)
	r.Dispatch(context.Background(), msg("!go"))

	for range n {
		select {
		case <-arrived:
		case <-time.After(5 * time.Second):
			t.Fatal("not every handler started while the others were still running")
		}
	}
	close(release)
	r.Wait()

	assert.Equal(t, []string{"done", "done", "done"}, texts(rec.Sent()))
}

func TestRouterKeepsBatchesContiguous(t *testing.T) {
	t.Parallel()

	var sender chat.Sender
	batch := &stubHandler{name: "batch", keyword: "go", present: func(ctx context.Context, cmd *handlers.Command) (*chat.Reply, error) {
		replies := make([]*chat.Reply, 0, 5)
		for i := range 5 {
			replies = append(replies, chat.TextReply(fmt.Sprintf("batch-%d", i)))
		}
		return nil, chat.SendAll(ctx, sender, cmd.Message.ChannelID, replies)
	}}
	singles := make([]handlers.Handler, 0, 5)
	for i := range 5 {
		singles = append(singles, &stubHandler{name: fmt.Sprintf("single%d", i), keyword: "go", reply: chat.TextReply("single")})
	}

	rec := &chat.Recorder{}
	serial := chat.NewSerialSender(rec)
	sender = serial
	r := bot.NewRouter(logger.Discard(), routerConfig(true), append([]handlers.Handler{batch}, singles...), serial, func() string { return "" })

	r.Dispatch(context.Background(), msg("!go"))
	r.Wait()

	got := texts(rec.Sent())
	require.Len(t, got, 10)
	start := -1
	for i, text := range got {
		if text == "batch-0" {
			start = i
			break
		}
	}
	require.GreaterOrEqual(t, start, 0)
	require.LessOrEqual(t, start+5, len(got))
	for i := range 5 {
		assert.Equal(t, fmt.Sprintf("batch-%d", i), got[start+i])
	}
}

func TestRouterDrainsAfterCancel(t *testing.T) {
	t.Parallel()

	slow := &stubHandler{name: "slow", keyword: "go", present: func(ctx context.Context, _ *handlers.Command) (*chat.Reply, error) {
		time.Sleep(50 * time.Millisecond)
		return chat.TextReply("finished"), ctx.Err()
	}}
	r, rec, _ := newRouter(t, true, slow)

	ctx, cancel := context.WithCancel(context.Background())
	r.Dispatch(ctx, msg("!go"))
	cancel()
	r.Wait()

	assert.Equal(t, []string{"finished"}, texts(rec.Sent()))
}
