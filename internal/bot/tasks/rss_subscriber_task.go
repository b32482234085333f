package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/database"
	"github.com/Hazealign/black-angus-main/internal/feed"
	"github.com/Hazealign/black-angus-main/internal/sanitize"
)

const (
	rssFooter         = "인공흑우가 구독한 글입니다."
	rssDescriptionMax = 1000
)

// newRSSSubscriberTask posts new entries of every subscription, oldest first.
// A failing subscription is logged and skipped.
func newRSSSubscriberTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "rss_subscriber")
	policy := deps.Policy
	if policy == nil {
		policy = sanitize.NewPolicy()
	}

	return func(ctx context.Context) error {
		subs, err := deps.Store.ListSubscriptions(ctx)
		if err != nil {
			return fmt.Errorf("list subscriptions: %w", err)
		}

		var errs []error
		posted := 0
		for i := range subs {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := pollSubscription(ctx, deps, policy, &subs[i])
			if err != nil {
				log.WarnContext(ctx, "Failed to update subscription", "subscription_id", subs[i].ID, "name", subs[i].Name, "error", err)
				errs = append(errs, err)
				continue
			}
			posted += n
		}

		log.InfoContext(ctx, "RSS subscriptions updated", "subscriptions", len(subs), "posted", posted, "failed", len(errs))
		return errors.Join(errs...)
	}
}

func pollSubscription(ctx context.Context, deps TaskDeps, policy *sanitize.Policy, sub *database.Subscription) (int, error) {
	var since time.Time
	if sub.LatestPublishedAt.Valid {
		since = sub.LatestPublishedAt.Time
	}

	entries, err := deps.Feeds.Fetch(ctx, sub.Link, since)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	sub.LatestPublishedAt = sql.NullTime{Time: feed.Latest(entries), Valid: true}
	if err := deps.Store.AppendDocuments(ctx, sub, feed.Documents(entries)); err != nil {
		return 0, err
	}

	replies := make([]*chat.Reply, 0, len(entries))
	for _, e := range entries {
		replies = append(replies, chat.EmbedReply(&chat.Embed{
			Title:       fmt.Sprintf("[%s] %s", sub.Name, e.Title),
			Description: policy.PlainText(e.Description, rssDescriptionMax),
			URL:         e.Link,
			Color:       chat.ColorBlue,
			Footer:      rssFooter,
		}))
	}
	if err := chat.SendAll(ctx, deps.Sender, sub.ChannelID, replies); err != nil {
		return 0, fmt.Errorf("post entries: %w", err)
	}
	return len(entries), nil
}
