package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Hazealign/black-angus-main/internal/apperrors"
)

const (
	subscriptionColumns = `id, created_at, created_by, guild_id, channel_id, name, link, latest_published_at`
	documentColumns     = `id, subscription_id, title, link, author, description, published_at, created_at`
)

func insertDocuments(ctx context.Context, tx *sqlx.Tx, subscriptionID string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range docs {
		docs[i].SubscriptionID = subscriptionID
		docs[i].PublishedAt = utc(docs[i].PublishedAt)
		if docs[i].CreatedAt.IsZero() {
			docs[i].CreatedAt = now
		}
	}

	query := `INSERT INTO rss_documents (` + documentColumns + `)
        VALUES (:id, :subscription_id, :title, :link, :author, :description, :published_at, :created_at);`
	for i := range docs {
		if _, err := tx.NamedExecContext(ctx, query, &docs[i]); err != nil {
			return fmt.Errorf("insert document %q: %w", docs[i].Link, err)
		}
	}
	return nil
}

func (s *sqlxStore) CreateSubscription(ctx context.Context, sub *Subscription, docs []Document) error {
	if sub == nil || sub.ID == "" || sub.Name == "" || sub.Link == "" {
		return errors.New("subscription must have an id, a name and a link")
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	sub.CreatedAt = utc(sub.CreatedAt)
	sub.LatestPublishedAt = utcNull(sub.LatestPublishedAt)

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `INSERT INTO rss_subscriptions (` + subscriptionColumns + `)
            VALUES (:id, :created_at, :created_by, :guild_id, :channel_id, :name, :link, :latest_published_at);`
		if _, err := tx.NamedExecContext(ctx, query, sub); err != nil {
			return err
		}
		return insertDocuments(ctx, tx, sub.ID, docs)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("이미 %s 이름의 구독이 있습니다.", sub.Name))
		}
		s.logger.ErrorContext(ctx, "Error saving subscription", "name", sub.Name, "error", err)
		return dbError("failed to save subscription", err)
	}

	s.logger.DebugContext(ctx, "Subscription saved", "subscription_id", sub.ID, "documents", len(docs))
	return nil
}

func (s *sqlxStore) FindSubscription(ctx context.Context, guildID, name string) (*Subscription, error) {
	var sub Subscription
	query := `SELECT ` + subscriptionColumns + ` FROM rss_subscriptions WHERE guild_id = ? AND name = ? LIMIT 1;`

	err := s.db.GetContext(ctx, &sub, query, guildID, name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, dbError("failed to find subscription", err)
	}
	return &sub, nil
}

func (s *sqlxStore) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	query := `SELECT ` + subscriptionColumns + ` FROM rss_subscriptions ORDER BY created_at ASC;`

	if err := s.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, dbError("failed to list subscriptions", err)
	}
	return subs, nil
}

func (s *sqlxStore) AppendDocuments(ctx context.Context, sub *Subscription, docs []Document) error {
	if sub == nil || sub.ID == "" {
		return errors.New("cannot append documents without a subscription id")
	}
	sub.LatestPublishedAt = utcNull(sub.LatestPublishedAt)

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertDocuments(ctx, tx, sub.ID, docs); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE rss_subscriptions SET latest_published_at = ? WHERE id = ?;`,
			sub.LatestPublishedAt, sub.ID)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error appending documents", "subscription_id", sub.ID, "error", err)
		return dbError("failed to append documents", err)
	}
	return nil
}
