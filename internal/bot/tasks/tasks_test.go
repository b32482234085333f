package tasks

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/config"
	"github.com/Hazealign/black-angus-main/internal/database"
	"github.com/Hazealign/black-angus-main/internal/feed"
	"github.com/Hazealign/black-angus-main/internal/logger"
)

type fakeFeeds map[string][]feed.Entry

func (f fakeFeeds) Fetch(_ context.Context, url string, since time.Time) ([]feed.Entry, error) {
	entries, ok := f[url]
	if !ok {
		return nil, errors.New("404 not found")
	}
	return feed.Since(entries, since), nil
}

func newDeps(t *testing.T, now time.Time) (TaskDeps, *chat.Recorder) {
	t.Helper()
	log := logger.Discard()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "tasks.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db, log) })

	cfg := &config.Config{}
	cfg.Scheduler.Timezone = "Asia/Seoul"

	rec := &chat.Recorder{}
	return TaskDeps{
		Logger: log,
		Config: cfg,
		Store:  database.NewStore(db, log),
		Sender: chat.NewSerialSender(rec),
		Now:    func() time.Time { return now },
	}, rec
}

func TestAlarmChecker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 30, 20, 0, time.UTC) // 18:30:20 in Seoul
	deps, rec := newDeps(t, now)

	once := &database.Alarm{
		ID: uuid.NewString(), CreatedBy: "u1", ChannelID: "c1", Name: "once", Content: "one shot",
		Time: now.Add(-time.Minute), Enabled: true,
	}
	repeat := &database.Alarm{
		ID: uuid.NewString(), CreatedBy: "u2", ChannelID: "c2", Name: "daily", Content: "every day",
		IsRepeat: true, Crontab: "30 18 * * *", Time: now.Truncate(time.Minute), Enabled: true,
	}
	later := &database.Alarm{
		ID: uuid.NewString(), CreatedBy: "u1", ChannelID: "c1", Name: "later", Content: "not yet",
		Time: now.Add(time.Hour), Enabled: true,
	}
	for _, a := range []*database.Alarm{once, repeat, later} {
		require.NoError(t, deps.Store.CreateAlarm(ctx, a))
	}

	require.NoError(t, newAlarmCheckerTask(deps)(ctx))

	sent := rec.Sent()
	require.Len(t, sent, 2)
	byChannel := map[string]*chat.Reply{}
	for _, s := range sent {
		byChannel[s.ChannelID] = s.Reply
	}
	require.Contains(t, byChannel, "c1")
	assert.Equal(t, "<@u1>", byChannel["c1"].Text)
	assert.Equal(t, "once", byChannel["c1"].Embed.Title)
	assert.Equal(t, "one shot", byChannel["c1"].Embed.Description)
	assert.Equal(t, alarmFooter, byChannel["c1"].Embed.Footer)
	assert.Equal(t, "<@u2>", byChannel["c2"].Text)

	gone, err := deps.Store.FindEnabledAlarm(ctx, "u1", "once")
	require.NoError(t, err)
	assert.Nil(t, gone, "one-shot alarms are disabled after firing")

	daily, err := deps.Store.FindEnabledAlarm(ctx, "u2", "daily")
	require.NoError(t, err)
	require.NotNil(t, daily)
	assert.True(t, daily.Time.Equal(time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)), daily.Time)
	require.True(t, daily.LastActivatedAt.Valid)
	assert.True(t, daily.LastActivatedAt.Time.Equal(now.Truncate(time.Minute)))

	// Nothing is due on the next run.
	require.NoError(t, newAlarmCheckerTask(deps)(ctx))
	assert.Len(t, rec.Sent(), 2)
}

func TestAlarmCheckerSendFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	deps, _ := newDeps(t, now)
	deps.Sender = &chat.Recorder{Err: errors.New("missing access")}

	require.NoError(t, deps.Store.CreateAlarm(ctx, &database.Alarm{
		ID: uuid.NewString(), CreatedBy: "u1", ChannelID: "c1", Name: "a", Time: now, Enabled: true,
	}))

	err := newAlarmCheckerTask(deps)(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing access")

	// The alarm was still consumed, so it does not fire every minute.
	a, err := deps.Store.FindEnabledAlarm(ctx, "u1", "a")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestRSSSubscriber(t *testing.T) {
	ctx := context.Background()
	deps, rec := newDeps(t, time.Now())
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	feeds := fakeFeeds{
		"https://example.com/a.xml": {
			{Title: "seen", Link: "https://example.com/a/1", PublishedAt: base},
			{Title: "first", Link: "https://example.com/a/2", Description: "<p>hello <b>world</b></p>", PublishedAt: base.Add(time.Hour)},
			{Title: "second", Link: "https://example.com/a/3", PublishedAt: base.Add(2 * time.Hour)},
		},
	}
	deps.Feeds = feeds

	good := &database.Subscription{
		ID: uuid.NewString(), CreatedBy: "u1", GuildID: "g1", ChannelID: "c-news", Name: "blog",
		Link: "https://example.com/a.xml", LatestPublishedAt: sql.NullTime{Time: base, Valid: true},
	}
	broken := &database.Subscription{
		ID: uuid.NewString(), CreatedBy: "u1", GuildID: "g1", ChannelID: "c-news", Name: "broken",
		Link: "https://example.com/missing.xml",
	}
	require.NoError(t, deps.Store.CreateSubscription(ctx, good, nil))
	require.NoError(t, deps.Store.CreateSubscription(ctx, broken, nil))

	task := newRSSSubscriberTask(deps)
	err := task(ctx)
	require.Error(t, err, "the broken subscription is reported")

	sent := rec.Sent()
	require.Len(t, sent, 2, "the good subscription is still posted")
	assert.Equal(t, "[blog] first", sent[0].Reply.Embed.Title)
	assert.Equal(t, "hello world", sent[0].Reply.Embed.Description)
	assert.Equal(t, "https://example.com/a/2", sent[0].Reply.Embed.URL)
	assert.Equal(t, rssFooter, sent[0].Reply.Embed.Footer)
	assert.Equal(t, "[blog] second", sent[1].Reply.Embed.Title)

	sub, err := deps.Store.FindSubscription(ctx, "g1", "blog")
	require.NoError(t, err)
	require.True(t, sub.LatestPublishedAt.Valid)
	assert.True(t, sub.LatestPublishedAt.Time.Equal(base.Add(2*time.Hour)))

	// A second run posts nothing new.
	_ = task(ctx)
	assert.Len(t, rec.Sent(), 2)
}

func TestSQLMaintenance(t *testing.T) {
	deps, _ := newDeps(t, time.Now())
	require.NoError(t, newSQLMaintenanceTask(deps)(context.Background()))
}

func TestRegisterAllTasks(t *testing.T) {
	deps, _ := newDeps(t, time.Now())

	names := func(ts []Task) []string {
		out := make([]string, 0, len(ts))
		for _, task := range ts {
			out = append(out, task.Name)
		}
		return out
	}

	assert.Equal(t, []string{"alarm_checker", "sql_maintenance"}, names(RegisterAllTasks(deps)))

	deps.Feeds = fakeFeeds{}
	assert.Equal(t, []string{"alarm_checker", "sql_maintenance", "rss_subscriber"}, names(RegisterAllTasks(deps)))
}
