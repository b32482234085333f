package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Hazealign/black-angus-main/internal/bot"
	"github.com/Hazealign/black-angus-main/internal/bot/handlers"
	"github.com/Hazealign/black-angus-main/internal/bot/tasks"
	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/chat/discord"
	"github.com/Hazealign/black-angus-main/internal/chat/telegram"
	"github.com/Hazealign/black-angus-main/internal/config"
	"github.com/Hazealign/black-angus-main/internal/database"
	"github.com/Hazealign/black-angus-main/internal/emoticon"
	"github.com/Hazealign/black-angus-main/internal/feed"
	"github.com/Hazealign/black-angus-main/internal/httpclient"
	"github.com/Hazealign/black-angus-main/internal/logger"
	"github.com/Hazealign/black-angus-main/internal/objectstore"
	"github.com/Hazealign/black-angus-main/internal/sanitize"
	"github.com/Hazealign/black-angus-main/internal/scraper"
	"github.com/Hazealign/black-angus-main/internal/translate"
)

// components holds everything built from the configuration.
type components struct {
	cfg      *config.Config
	log      *slog.Logger
	db       *sqlx.DB
	platform chat.Platform
	sender   *chat.SerialSender
	hDeps    handlers.HandlerDeps
	tDeps    tasks.TaskDeps
}

func (c *components) close() {
	database.CloseDB(c.db, c.log)
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, nil
}

// build loads the configuration and assembles the stores, clients and the
// platform adapter. Optional services stay nil when unconfigured.
func build(ctx context.Context, opts *rootOptions) (*components, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		slog.Error("Failed to load configuration", "path", opts.configPath, "error", err)
		return nil, err
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path, log)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return nil, err
	}
	c := &components{cfg: cfg, log: log, db: db}

	if err := c.wire(ctx); err != nil {
		c.close()
		return nil, err
	}
	return c, nil
}

func (c *components) wire(ctx context.Context) error {
	cfg, log := c.cfg, c.log

	store := database.NewStore(c.db, log)
	fetcher := httpclient.New(cfg.HTTP.Timeout, cfg.HTTP.Retries, log)
	policy := sanitize.NewPolicy()

	switch cfg.Bot.Platform {
	case config.PlatformDiscord:
		p, err := discord.New(cfg.Discord.Token, log)
		if err != nil {
			log.Error("Failed to create Discord client", "error", err)
			return err
		}
		c.platform = p
	case config.PlatformTelegram:
		p, err := telegram.New(cfg.Telegram.Token, policy, log)
		if err != nil {
			log.Error("Failed to create Telegram client", "error", err)
			return err
		}
		c.platform = p
	default:
		return fmt.Errorf("unsupported platform %q", cfg.Bot.Platform)
	}
	c.sender = chat.NewSerialSender(c.platform)

	feeds := feed.NewClient(fetcher)

	var emoticons *emoticon.Service
	if cfg.Emoticon.Enabled() {
		objects, err := objectstore.NewClient(cfg.Emoticon, log)
		if err != nil {
			log.Error("Failed to create object storage client", "error", err)
			return err
		}
		if err := objects.EnsureBucket(ctx); err != nil {
			log.Error("Failed to prepare emoticon bucket", "bucket", cfg.Emoticon.Bucket, "error", err)
			return err
		}
		emoticons = emoticon.NewService(store, objects, fetcher, log)
	} else {
		log.Info("Emoticon storage not configured, emoticon apps disabled")
	}

	var translator translate.Translator
	if cfg.Translation.Enabled() {
		t, err := translate.New(ctx, cfg.Translation, log)
		if err != nil {
			log.Error("Failed to initialize translation client", "provider", cfg.Translation.Provider, "error", err)
			return err
		}
		translator = t
	} else {
		log.Info("Translation not configured, translate app disabled")
	}

	var searcher scraper.Searcher
	if cfg.YouTube.Enabled {
		searcher = scraper.NewYouTube(cfg.YouTube.MinInterval, cfg.YouTube.Timeout, log)
	}

	c.hDeps = handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Store:      store,
		Sender:     c.sender,
		Directory:  c.platform,
		Emoticons:  emoticons,
		Feeds:      feeds,
		Translator: translator,
		Searcher:   searcher,
	}
	c.tDeps = tasks.TaskDeps{
		Logger: log,
		Config: cfg,
		Store:  store,
		Sender: c.sender,
		Feeds:  feeds,
		Policy: policy,
	}
	return nil
}

func runBot(ctx context.Context, opts *rootOptions) error {
	c, err := build(ctx, opts)
	if err != nil {
		return err
	}
	defer c.close()
	log := c.log

	router := bot.NewRouter(log, c.cfg, handlers.RegisterAll(c.hDeps), c.sender, c.platform.SelfID)
	sched, err := bot.NewScheduler(log, c.cfg, tasks.RegisterAllTasks(c.tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return err
	}
	app := bot.NewBot(log, c.cfg, c.platform, c.sender, router, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return runErr
	}

	log.Info("Bot stopped gracefully.")
	return nil
}

// runTaskOnce runs one scheduled task without connecting to the gateway.
// Replies go out over the platform's REST API.
func runTaskOnce(ctx context.Context, opts *rootOptions, name string) error {
	c, err := build(ctx, opts)
	if err != nil {
		return err
	}
	defer c.close()
	defer func() {
		if err := c.platform.Close(); err != nil {
			c.log.Error("Error closing platform", "error", err)
		}
	}()

	for _, task := range tasks.RegisterAllTasks(c.tDeps) {
		if task.Name != name {
			continue
		}
		c.log.Info("Running task once", "task_name", name)
		if err := task.Run(ctx); err != nil {
			c.log.Error("Task failed", "task_name", name, "error", err)
			return err
		}
		c.log.Info("Task finished", "task_name", name)
		return nil
	}
	return fmt.Errorf("unknown task %q", name)
}
