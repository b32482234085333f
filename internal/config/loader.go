package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ErrConfiguration marks every error returned by LoadConfig.
var ErrConfiguration = errors.New("configuration error")

// EnvPrefix is the prefix of environment variables that override file values,
// e.g. BLACKANGUS_DISCORD_TOKEN.
const EnvPrefix = "BLACKANGUS"

// LoadConfig loads and validates configuration from:
//  1. Default values
//  2. the YAML or TOML file at path
//  3. BLACKANGUS_* environment variables
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: config path is empty", ErrConfiguration)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrConfiguration, path)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigFile(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		v.SetConfigType("toml")
	case ".yml", ".yaml", "":
		v.SetConfigType("yaml")
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrConfiguration, filepath.Ext(path))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only sees keys viper already knows about.
	for _, key := range []string{"discord.token", "telegram.token", "translation.api_key", "emoticon.access_key", "emoticon.secret_key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("%w: bind env %s: %v", ErrConfiguration, key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}
	applyTaskDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return cfg, nil
}

// applyTaskDefaults fills in jobs missing from scheduler.tasks and empty
// schedules of jobs that are listed.
func applyTaskDefaults(cfg *Config) {
	if cfg.Scheduler.Tasks == nil {
		cfg.Scheduler.Tasks = make(map[string]TaskConfig, len(DefaultTasks))
	}
	for name, def := range DefaultTasks {
		task, ok := cfg.Scheduler.Tasks[name]
		if !ok {
			cfg.Scheduler.Tasks[name] = def
			continue
		}
		if task.Schedule == "" {
			task.Schedule = def.Schedule
			cfg.Scheduler.Tasks[name] = task
		}
	}
}

// Validate checks struct tags and the cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Bot.Platform {
	case PlatformDiscord:
		if c.Discord.Token == "" {
			return errors.New("discord.token is required when bot.platform is discord")
		}
	case PlatformTelegram:
		if c.Telegram.Token == "" {
			return errors.New("telegram.token is required when bot.platform is telegram")
		}
	}

	if c.Bot.Prefix == c.Bot.EmoticonPrefix {
		return errors.New("bot.prefix and bot.emoticon_prefix must differ")
	}

	if c.Emoticon.Endpoint != "" && c.Emoticon.Bucket == "" {
		return errors.New("emoticon.bucket is required when emoticon.endpoint is set")
	}

	for name, task := range c.Scheduler.Tasks {
		if task.Enabled && strings.TrimSpace(task.Schedule) == "" {
			return fmt.Errorf("scheduler.tasks.%s: schedule is required", name)
		}
	}
	return nil
}
