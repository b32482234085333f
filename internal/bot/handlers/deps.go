package handlers

import (
	"log/slog"
	"time"

	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/config"
	"github.com/Hazealign/black-angus-main/internal/database"
	"github.com/Hazealign/black-angus-main/internal/emoticon"
	"github.com/Hazealign/black-angus-main/internal/feed"
	"github.com/Hazealign/black-angus-main/internal/scraper"
	"github.com/Hazealign/black-angus-main/internal/translate"
)

// HandlerDeps provides dependencies for chat command handlers. Optional
// services are nil when not configured; handlers needing them are built
// disabled.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     database.Store
	Sender    chat.Sender
	Directory chat.Directory

	Emoticons  *emoticon.Service
	Feeds      feed.Reader
	Translator translate.Translator
	Searcher   scraper.Searcher

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d HandlerDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d HandlerDeps) trigger(app string, needs bool, keywords ...string) Trigger {
	return Trigger{
		Prefix:   d.Config.Bot.Prefix,
		Keywords: keywords,
		Off:      !needs || !d.Config.AppEnabled(app),
	}
}
