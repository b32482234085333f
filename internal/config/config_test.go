package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hazealign/black-angus-main/internal/config"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
discord:
  token: "discord-token"
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, config.PlatformDiscord, cfg.Bot.Platform)
	assert.Equal(t, "!", cfg.Bot.Prefix)
	assert.Equal(t, "~", cfg.Bot.EmoticonPrefix)
	assert.True(t, cfg.Bot.ReplyOnError)
	assert.Equal(t, "Asia/Seoul", cfg.Scheduler.Timezone)
	assert.Equal(t, config.OverlapAllow, cfg.Scheduler.Overlap)
	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "Asia/Seoul", cfg.Location().String())

	require.Contains(t, cfg.Scheduler.Tasks, "alarm_checker")
	assert.Equal(t, "* * * * *", cfg.Scheduler.Tasks["alarm_checker"].Schedule)
	assert.Equal(t, "*/2 * * * *", cfg.Scheduler.Tasks["rss_subscriber"].Schedule)
	assert.False(t, cfg.Translation.Enabled())
	assert.False(t, cfg.Emoticon.Enabled())
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[bot]
prefix = "?"
log_when_ready = true
log_channel = "1234"

[discord]
token = "discord-token"

[scheduler]
timezone = "UTC"
overlap = "skip"

[scheduler.tasks.rss_subscriber]
enabled = false
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "?", cfg.Bot.Prefix)
	assert.Equal(t, "1234", cfg.Bot.LogChannel)
	assert.Equal(t, config.OverlapSkip, cfg.Scheduler.Overlap)
	assert.Equal(t, time.UTC, cfg.Location())

	rss := cfg.Scheduler.Tasks["rss_subscriber"]
	assert.False(t, rss.Enabled)
	assert.Equal(t, "*/2 * * * *", rss.Schedule, "empty schedule falls back to the default")
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", "log:\n  level: debug\n")
	t.Setenv("BLACKANGUS_DISCORD_TOKEN", "from-env")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Discord.Token)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{name: "missing platform token", file: "config.yaml", body: "log:\n  level: info\n"},
		{name: "telegram without token", file: "config.yaml", body: "bot:\n  platform: telegram\ndiscord:\n  token: x\n"},
		{name: "bad log level", file: "config.yaml", body: "log:\n  level: loud\ndiscord:\n  token: x\n"},
		{name: "bad timezone", file: "config.yaml", body: "scheduler:\n  timezone: Mars/Olympus\ndiscord:\n  token: x\n"},
		{name: "bad overlap", file: "config.yaml", body: "scheduler:\n  overlap: queue\ndiscord:\n  token: x\n"},
		{name: "ready without channel", file: "config.yaml", body: "bot:\n  log_when_ready: true\ndiscord:\n  token: x\n"},
		{name: "same prefixes", file: "config.yaml", body: "bot:\n  emoticon_prefix: \"!\"\ndiscord:\n  token: x\n"},
		{name: "unsupported format", file: "config.ini", body: "x=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := config.LoadConfig(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrConfiguration)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, config.ErrConfiguration)
}

func TestAppEnabled(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	assert.True(t, cfg.AppEnabled("alarm"))

	cfg.Bot.Apps = []string{"alarm", "random"}
	assert.True(t, cfg.AppEnabled("random"))
	assert.False(t, cfg.AppEnabled("youtube"))
}
