package logger

import (
	"log/slog"

	"github.com/go-co-op/gocron/v2"
)

// GocronLogger adapts slog to gocron.Logger so scheduler internals end up in
// the same stream as everything else.
type GocronLogger struct {
	log *slog.Logger
}

var _ gocron.Logger = (*GocronLogger)(nil)

// NewGocronLogger returns a gocron.Logger backed by log.
func NewGocronLogger(log *slog.Logger) *GocronLogger {
	return &GocronLogger{log: log.With("component", "gocron")}
}

func (l *GocronLogger) Debug(msg string, args ...any) { l.log.Debug(msg, args...) }
func (l *GocronLogger) Info(msg string, args ...any)  { l.log.Info(msg, args...) }
func (l *GocronLogger) Warn(msg string, args ...any)  { l.log.Warn(msg, args...) }
func (l *GocronLogger) Error(msg string, args ...any) { l.log.Error(msg, args...) }
