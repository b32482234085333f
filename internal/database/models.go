package database

import (
	"database/sql"
	"time"
)

// Alarm is a reminder registered by a user. One-shot alarms are disabled
// after they fire; repeating alarms move Time to the next crontab match.
type Alarm struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	CreatedBy string `db:"created_by"`
	ChannelID string `db:"channel_id"`
	Name      string `db:"name"`
	Content   string `db:"content"`
	IsRepeat  bool   `db:"is_repeat"`

	// Time is the next firing time, always stored in UTC.
	Time    time.Time `db:"time"`
	Crontab string    `db:"crontab"` // empty for one-shot alarms

	LastActivatedAt sql.NullTime `db:"last_activated_at"`
	Enabled         bool         `db:"enabled"`
}

// Subscription is an RSS or Atom feed posted into a channel.
type Subscription struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	CreatedBy string `db:"created_by"`
	GuildID   string `db:"guild_id"`
	ChannelID string `db:"channel_id"`
	Name      string `db:"name"`
	Link      string `db:"link"`

	LatestPublishedAt sql.NullTime `db:"latest_published_at"`
}

// Document is one feed entry already seen for a subscription.
type Document struct {
	ID             string    `db:"id"`
	SubscriptionID string    `db:"subscription_id"`
	Title          string    `db:"title"`
	Link           string    `db:"link"`
	Author         string    `db:"author"`
	Description    string    `db:"description"`
	PublishedAt    time.Time `db:"published_at"`
	CreatedAt      time.Time `db:"created_at"`
}

// Emoticon maps a short name to an image in object storage. Emoticons that
// share OriginalURL are equivalents of each other.
type Emoticon struct {
	ID          string    `db:"id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	Name        string    `db:"name"`
	OriginalURL string    `db:"original_url"`
	ImagePath   string    `db:"image_path"`
	Removed     bool      `db:"removed"`
}
