package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/Hazealign/black-angus-main/internal/bot/handlers"
	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/config"
	"github.com/Hazealign/black-angus-main/internal/logger"
)

// Router fans each inbound message out to every handler. Each handler runs
// in its own goroutine and nothing it does, panics included, reaches the
// router or its siblings.
type Router struct {
	logger   *slog.Logger
	handlers []handlers.Handler
	sender   chat.Sender
	selfID   func() string

	replyOnError bool
	generalError string

	dispatch logger.DispatchFunc
	wg       sync.WaitGroup
}

// NewRouter creates a router over hs. Replies go through sender, which should
// serialize per channel. selfID reports the bot's own user id.
func NewRouter(log *slog.Logger, cfg *config.Config, hs []handlers.Handler, sender chat.Sender, selfID func() string) *Router {
	r := &Router{
		logger:       log.With("component", "router"),
		handlers:     hs,
		sender:       sender,
		selfID:       selfID,
		replyOnError: cfg.Bot.ReplyOnError,
		generalError: cfg.Messages.GeneralError,
	}
	r.dispatch = logger.Middleware(r.logger)(r.fanOut)
	return r
}

// Dispatch handles one inbound message without blocking the caller.
// Pipelines outlive ctx cancellation so that shutdown can drain them.
func (r *Router) Dispatch(ctx context.Context, msg chat.Message) {
	if strings.TrimSpace(msg.Content) == "" {
		return
	}
	if self := r.selfID(); self != "" && msg.AuthorID == self {
		return
	}

	ctx = context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.dispatch(ctx, msg)
	}()
}

// Wait blocks until every dispatched pipeline has finished.
func (r *Router) Wait() {
	r.wg.Wait()
}

func (r *Router) fanOut(ctx context.Context, msg chat.Message) {
	var wg sync.WaitGroup
	for _, h := range r.handlers {
		if h.Disabled() {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.run(ctx, h, msg)
		}()
	}
	wg.Wait()
}

// run is the failure boundary of one handler's pipeline.
func (r *Router) run(ctx context.Context, h handlers.Handler, msg chat.Message) {
	log := r.logger.With("handler", h.Name(), "channel_id", msg.ChannelID, "author_id", msg.AuthorID)

	matched := false
	defer func() {
		if p := recover(); p != nil {
			log.ErrorContext(ctx, "Handler panicked", "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
			if matched {
				r.replyError(ctx, log, msg)
			}
		}
	}()

	if !h.Match(msg) {
		return
	}
	matched = true

	cmd, err := h.Parse(ctx, msg)
	if err != nil {
		log.ErrorContext(ctx, "Failed to parse command", "error", err)
		r.replyError(ctx, log, msg)
		return
	}
	if cmd == nil {
		return
	}

	reply, err := h.Present(ctx, cmd)
	if err != nil {
		log.ErrorContext(ctx, "Failed to present command", "error", err)
		r.replyError(ctx, log, msg)
		return
	}
	if reply.Empty() {
		return
	}

	if err := r.sender.Send(ctx, msg.ChannelID, reply); err != nil {
		log.ErrorContext(ctx, "Failed to deliver reply", "error", err)
	}
}

func (r *Router) replyError(ctx context.Context, log *slog.Logger, msg chat.Message) {
	if !r.replyOnError || r.generalError == "" {
		return
	}
	if err := r.sender.Send(ctx, msg.ChannelID, chat.TextReply(r.generalError)); err != nil {
		log.ErrorContext(ctx, "Failed to send error reply", "error", err)
	}
}
