// Package tasks implements the periodic jobs run by the bot scheduler.
package tasks

import (
	"log/slog"
	"time"

	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/config"
	"github.com/Hazealign/black-angus-main/internal/database"
	"github.com/Hazealign/black-angus-main/internal/feed"
	"github.com/Hazealign/black-angus-main/internal/sanitize"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Store  database.Store
	Sender chat.Sender
	// Feeds is nil when feed polling is not available.
	Feeds  feed.Reader
	Policy *sanitize.Policy

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d TaskDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
