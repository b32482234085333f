package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Hazealign/black-angus-main/internal/apperrors"
)

// Store defines the interface for database operations.
// Lookups return nil, nil when nothing matches.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error

	// CreateAlarm inserts a new alarm. A ConflictError is returned when the
	// author already has an enabled alarm with the same name.
	CreateAlarm(ctx context.Context, alarm *Alarm) error
	// FindEnabledAlarm returns the author's enabled alarm with the given name.
	FindEnabledAlarm(ctx context.Context, createdBy, name string) (*Alarm, error)
	// ListEnabledAlarms returns the author's enabled alarms ordered by next firing time.
	ListEnabledAlarms(ctx context.Context, createdBy string) ([]Alarm, error)
	// ListDueAlarms returns every enabled alarm whose time is at or before now.
	ListDueAlarms(ctx context.Context, now time.Time) ([]Alarm, error)
	// ReplaceAlarm overwrites the stored alarm with the same id.
	ReplaceAlarm(ctx context.Context, alarm *Alarm) error

	// CreateSubscription inserts a subscription together with the entries
	// already present in the feed.
	CreateSubscription(ctx context.Context, sub *Subscription, docs []Document) error
	// FindSubscription returns the subscription with the given name in a guild.
	FindSubscription(ctx context.Context, guildID, name string) (*Subscription, error)
	// ListSubscriptions returns every subscription.
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
	// AppendDocuments stores new entries and advances the subscription's
	// latest_published_at in one transaction.
	AppendDocuments(ctx context.Context, sub *Subscription, docs []Document) error

	// CreateEmoticon inserts a new emoticon. A ConflictError is returned when
	// an active emoticon with the same name exists.
	CreateEmoticon(ctx context.Context, e *Emoticon) error
	// FindEmoticon returns the active emoticon with the given name.
	FindEmoticon(ctx context.Context, name string) (*Emoticon, error)
	// SearchEmoticons returns active emoticons whose name contains keyword.
	SearchEmoticons(ctx context.Context, keyword string) ([]Emoticon, error)
	// ListEmoticonNames returns the names of all active emoticons, sorted.
	ListEmoticonNames(ctx context.Context) ([]string, error)
	// FindEquivalentEmoticons returns active emoticons sharing originalURL.
	FindEquivalentEmoticons(ctx context.Context, originalURL string) ([]Emoticon, error)
	// ReplaceEmoticons overwrites every given emoticon in one transaction.
	ReplaceEmoticons(ctx context.Context, emoticons []Emoticon) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RunSQLMaintenance executes VACUUM and PRAGMA optimize on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		s.logger.WarnContext(ctx, "PRAGMA optimize failed", "error", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}

// withTx runs fn inside a transaction, rolling back when fn fails.
func (s *sqlxStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(sqliteErr.Error(), "UNIQUE")
	}
	return false
}

// dbError wraps err as a DatabaseError unless it is a context error, which
// callers handle on their own.
func dbError(message string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperrors.NewDatabaseError(message, err)
}

func utc(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func utcNull(t sql.NullTime) sql.NullTime {
	if !t.Valid {
		return t
	}
	return sql.NullTime{Time: utc(t.Time), Valid: true}
}
