// Package logger provides structured logging functionality for the bot.
// It uses Go's slog package for logging with configurable levels and formats.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Hazealign/black-angus-main/internal/chat"
)

// ParseLevel maps a config level name to a slog level, falling back to info.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new slog Logger with the specified level and format.
// If jsonOutput is true, logs will be formatted as JSON, otherwise as text.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	logger := New(os.Stdout, levelStr, jsonOutput)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w without touching the slog default.
func New(w io.Writer, levelStr string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(levelStr),
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// DispatchFunc receives one inbound chat message.
type DispatchFunc func(ctx context.Context, msg chat.Message)

// Middleware wraps a dispatch function and logs every inbound message
// together with how long dispatching it took.
func Middleware(log *slog.Logger) func(DispatchFunc) DispatchFunc {
	return func(next DispatchFunc) DispatchFunc {
		return func(ctx context.Context, msg chat.Message) {
			startTime := time.Now()

			logEntry := log.With(
				"message_id", msg.ID,
				"channel_id", msg.ChannelID,
				"author_id", msg.AuthorID,
			)
			if msg.GuildID != "" {
				logEntry = logEntry.With("guild_id", msg.GuildID)
			}

			logEntry.DebugContext(ctx, "Processing message", "text_preview", truncateString(msg.Content, 50))

			next(ctx, msg)

			logEntry.DebugContext(ctx, "Finished dispatching message", "duration", time.Since(startTime))
		}
	}
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}
