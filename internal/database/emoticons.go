package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Hazealign/black-angus-main/internal/apperrors"
)

const emoticonColumns = `id, created_at, updated_at, name, original_url, image_path, removed`

func (s *sqlxStore) CreateEmoticon(ctx context.Context, e *Emoticon) error {
	if e == nil || e.ID == "" || e.Name == "" {
		return errors.New("emoticon must have an id and a name")
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.CreatedAt = utc(e.CreatedAt)
	e.UpdatedAt = e.CreatedAt

	query := `INSERT INTO emoticons (` + emoticonColumns + `)
        VALUES (:id, :created_at, :updated_at, :name, :original_url, :image_path, :removed);`

	if _, err := s.db.NamedExecContext(ctx, query, e); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("이미 존재하는 이모티콘입니다: %s", e.Name))
		}
		s.logger.ErrorContext(ctx, "Error saving emoticon", "name", e.Name, "error", err)
		return dbError("failed to save emoticon", err)
	}
	return nil
}

func (s *sqlxStore) FindEmoticon(ctx context.Context, name string) (*Emoticon, error) {
	var e Emoticon
	query := `SELECT ` + emoticonColumns + ` FROM emoticons WHERE name = ? AND removed = 0 LIMIT 1;`

	err := s.db.GetContext(ctx, &e, query, name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, dbError("failed to find emoticon", err)
	}
	return &e, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *sqlxStore) SearchEmoticons(ctx context.Context, keyword string) ([]Emoticon, error) {
	var list []Emoticon
	query := `SELECT ` + emoticonColumns + ` FROM emoticons
        WHERE removed = 0 AND name LIKE ? ESCAPE '\' ORDER BY name ASC;`

	if err := s.db.SelectContext(ctx, &list, query, "%"+escapeLike(keyword)+"%"); err != nil {
		return nil, dbError("failed to search emoticons", err)
	}
	return list, nil
}

func (s *sqlxStore) ListEmoticonNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, `SELECT name FROM emoticons WHERE removed = 0 ORDER BY name ASC;`); err != nil {
		return nil, dbError("failed to list emoticons", err)
	}
	return names, nil
}

func (s *sqlxStore) FindEquivalentEmoticons(ctx context.Context, originalURL string) ([]Emoticon, error) {
	var list []Emoticon
	query := `SELECT ` + emoticonColumns + ` FROM emoticons WHERE original_url = ? AND removed = 0 ORDER BY name ASC;`

	if err := s.db.SelectContext(ctx, &list, query, originalURL); err != nil {
		return nil, dbError("failed to find equivalent emoticons", err)
	}
	return list, nil
}

func (s *sqlxStore) ReplaceEmoticons(ctx context.Context, emoticons []Emoticon) error {
	if len(emoticons) == 0 {
		return nil
	}
	now := time.Now().UTC()

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `UPDATE emoticons SET
                updated_at = :updated_at, name = :name, original_url = :original_url,
                image_path = :image_path, removed = :removed
            WHERE id = :id;`
		for i := range emoticons {
			emoticons[i].UpdatedAt = now
			if _, err := tx.NamedExecContext(ctx, query, &emoticons[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("이미 존재하는 이모티콘 이름입니다.")
		}
		s.logger.ErrorContext(ctx, "Error updating emoticons", "count", len(emoticons), "error", err)
		return dbError("failed to update emoticons", err)
	}
	return nil
}
