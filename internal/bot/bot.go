// Package bot implements the bot runtime: the message router, the task
// scheduler and the lifecycle that ties them to a chat platform.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/config"
)

// Bot represents the main bot application and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	platform  chat.Platform
	sender    chat.Sender
	router    *Router
	scheduler *Scheduler
}

// NewBot creates the runtime. sender is the serialized sender shared with
// the router and the tasks.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	platform chat.Platform,
	sender chat.Sender,
	router *Router,
	scheduler *Scheduler,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		platform:  platform,
		sender:    sender,
		router:    router,
		scheduler: scheduler,
	}
}

// Run starts the platform listener and the scheduler and blocks until ctx is
// cancelled or the listener fails. On the way out the scheduler is stopped,
// in-flight message pipelines are drained and the platform is closed.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator", "platform", b.cfg.Bot.Platform)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting platform listener")

		err := b.platform.Start(gCtx, b.onReady, b.router.Dispatch)
		b.logger.Info("Platform listener stopped")

		if err != nil {
			return fmt.Errorf("platform listener: %w", err)
		}
		if gCtx.Err() == nil {
			b.logger.Warn("Platform listener stopped unexpectedly without context cancellation")
			return errors.New("platform listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler")
		if err := b.scheduler.Start(gCtx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()

	b.logger.Info("Waiting for in-flight messages")
	b.router.Wait()

	if cerr := b.platform.Close(); cerr != nil {
		b.logger.Error("Error closing platform", "error", cerr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}

// onReady announces readiness in the log channel when configured.
func (b *Bot) onReady(ctx context.Context) {
	b.logger.InfoContext(ctx, "Platform session ready", "self_id", b.platform.SelfID())

	if !b.cfg.Bot.LogWhenReady || b.cfg.Bot.LogChannel == "" {
		return
	}
	if err := b.sender.Send(ctx, b.cfg.Bot.LogChannel, chat.TextReply(b.cfg.Messages.Ready)); err != nil {
		b.logger.ErrorContext(ctx, "Failed to announce readiness", "channel_id", b.cfg.Bot.LogChannel, "error", err)
	}
}
