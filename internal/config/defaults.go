package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"

	DefaultPlatform       = PlatformDiscord
	DefaultPrefix         = "!"
	DefaultEmoticonPrefix = "~"

	DefaultDBPath = "blackangus.db"

	// The bot's operating timezone, independent of the host's local zone.
	DefaultTimezone = "Asia/Seoul"
	DefaultOverlap  = OverlapAllow

	DefaultTranslationTimeout = 30 * time.Second

	DefaultYouTubeMaxResults  = 10
	DefaultYouTubeMinInterval = 5 * time.Second
	DefaultYouTubeTimeout     = 45 * time.Second

	DefaultHTTPTimeout = 15 * time.Second
	DefaultHTTPRetries = 3

	DefaultGeneralErrorMsg = "❌ 명령을 처리하는 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
	DefaultReadyMsg        = "🐂 흑우봇이 준비되었습니다."
)

// DefaultTasks lists the periodic jobs and the schedules they run on unless
// overridden under scheduler.tasks.
var DefaultTasks = map[string]TaskConfig{
	"alarm_checker":   {Enabled: true, Schedule: "* * * * *"},
	"rss_subscriber":  {Enabled: true, Schedule: "*/2 * * * *"},
	"sql_maintenance": {Enabled: true, Schedule: "0 4 * * *"},
}

// defaults is applied to viper before the config file is read.
var defaults = map[string]any{
	"log.level": DefaultLogLevel,
	"log.json":  false,

	"bot.platform":        DefaultPlatform,
	"bot.prefix":          DefaultPrefix,
	"bot.emoticon_prefix": DefaultEmoticonPrefix,
	"bot.log_when_ready":  false,
	"bot.reply_on_error":  true,

	"database.path": DefaultDBPath,

	"scheduler.timezone": DefaultTimezone,
	"scheduler.overlap":  DefaultOverlap,

	"translation.timeout": DefaultTranslationTimeout,

	"youtube.enabled":      false,
	"youtube.max_results":  DefaultYouTubeMaxResults,
	"youtube.min_interval": DefaultYouTubeMinInterval,
	"youtube.timeout":      DefaultYouTubeTimeout,

	"http.timeout": DefaultHTTPTimeout,
	"http.retries": DefaultHTTPRetries,

	"messages.general_error": DefaultGeneralErrorMsg,
	"messages.ready":         DefaultReadyMsg,
}
