// Package config provides configuration loading, validation, and defaults
// for the black-angus bot. Configuration is read once at startup from a YAML
// or TOML file (plus BLACKANGUS_* environment overrides) and is immutable
// afterwards.
package config

import (
	"time"
)

// Platform names accepted in bot.platform.
const (
	PlatformDiscord  = "discord"
	PlatformTelegram = "telegram"
)

// Overlap policies accepted in scheduler.overlap.
const (
	OverlapAllow = "allow"
	OverlapSkip  = "skip"
)

// Translation providers accepted in translation.provider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config defines the application configuration parameters for all components.
type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Bot         BotConfig         `mapstructure:"bot"`
	Discord     DiscordConfig     `mapstructure:"discord"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Emoticon    EmoticonConfig    `mapstructure:"emoticon"`
	Translation TranslationConfig `mapstructure:"translation"`
	YouTube     YouTubeConfig     `mapstructure:"youtube"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Messages    MessagesConfig    `mapstructure:"messages"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// BotConfig holds dispatch-level settings shared by every handler.
type BotConfig struct {
	Platform       string   `mapstructure:"platform"        validate:"required,oneof=discord telegram"`
	Prefix         string   `mapstructure:"prefix"          validate:"required"`
	EmoticonPrefix string   `mapstructure:"emoticon_prefix" validate:"required"`
	LogWhenReady   bool     `mapstructure:"log_when_ready"`
	LogChannel     string   `mapstructure:"log_channel"     validate:"required_if=LogWhenReady true"`
	ReplyOnError   bool     `mapstructure:"reply_on_error"`
	Apps           []string `mapstructure:"apps"`
}

// DiscordConfig holds Discord credentials.
type DiscordConfig struct {
	Token string `mapstructure:"token"`
}

// TelegramConfig holds Telegram credentials.
type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

// DatabaseConfig holds the SQLite store location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// TaskConfig enables a periodic job and optionally overrides its schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig holds periodic job settings.
type SchedulerConfig struct {
	Timezone string                `mapstructure:"timezone" validate:"required,timezone"`
	Overlap  string                `mapstructure:"overlap"  validate:"required,oneof=allow skip"`
	Tasks    map[string]TaskConfig `mapstructure:"tasks"`
}

// EmoticonConfig holds the S3-compatible bucket used for emoticon images.
type EmoticonConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether enough storage settings are present to serve emoticons.
func (c EmoticonConfig) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// TranslationConfig selects and configures the translation backend.
type TranslationConfig struct {
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini openai"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout  time.Duration `mapstructure:"timeout"  validate:"min=1s,max=5m"`
}

// Enabled reports whether a translation backend can be constructed.
func (c TranslationConfig) Enabled() bool {
	return c.Provider != "" && c.APIKey != ""
}

// YouTubeConfig controls the headless-browser search handler.
type YouTubeConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxResults  int           `mapstructure:"max_results"  validate:"min=1,max=10"`
	MinInterval time.Duration `mapstructure:"min_interval"`
	Timeout     time.Duration `mapstructure:"timeout"      validate:"min=1s"`
}

// HTTPConfig tunes the shared outbound HTTP client.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1s,max=5m"`
	Retries uint          `mapstructure:"retries" validate:"min=1,max=10"`
}

// MessagesConfig holds user-facing strings produced by the core.
type MessagesConfig struct {
	GeneralError string `mapstructure:"general_error" validate:"required"`
	Ready        string `mapstructure:"ready"         validate:"required"`
}

// Location returns the scheduler timezone. Validation guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AppEnabled reports whether the named app passes the bot.apps allow-list.
// An empty list enables every app.
func (c *Config) AppEnabled(name string) bool {
	if len(c.Bot.Apps) == 0 {
		return true
	}
	for _, app := range c.Bot.Apps {
		if app == name {
			return true
		}
	}
	return false
}
