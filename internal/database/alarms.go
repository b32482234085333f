package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Hazealign/black-angus-main/internal/apperrors"
)

const alarmColumns = `id, created_at, created_by, channel_id, name, content, is_repeat, time, crontab, last_activated_at, enabled`

func normalizeAlarm(a *Alarm) {
	a.CreatedAt = utc(a.CreatedAt)
	a.Time = utc(a.Time)
	a.LastActivatedAt = utcNull(a.LastActivatedAt)
}

func (s *sqlxStore) CreateAlarm(ctx context.Context, alarm *Alarm) error {
	if alarm == nil {
		return errors.New("cannot save nil alarm")
	}
	if alarm.ID == "" || alarm.CreatedBy == "" || alarm.Name == "" {
		return errors.New("alarm must have an id, an author and a name")
	}
	if alarm.CreatedAt.IsZero() {
		alarm.CreatedAt = time.Now()
	}
	normalizeAlarm(alarm)

	query := `INSERT INTO alarms (` + alarmColumns + `)
        VALUES (:id, :created_at, :created_by, :channel_id, :name, :content, :is_repeat, :time, :crontab, :last_activated_at, :enabled);`

	if _, err := s.db.NamedExecContext(ctx, query, alarm); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("이미 %s 이름의 알람이 있습니다.", alarm.Name))
		}
		s.logger.ErrorContext(ctx, "Error saving alarm", "name", alarm.Name, "created_by", alarm.CreatedBy, "error", err)
		return dbError("failed to save alarm", err)
	}

	s.logger.DebugContext(ctx, "Alarm saved", "alarm_id", alarm.ID, "name", alarm.Name)
	return nil
}

func (s *sqlxStore) FindEnabledAlarm(ctx context.Context, createdBy, name string) (*Alarm, error) {
	var alarm Alarm
	query := `SELECT ` + alarmColumns + ` FROM alarms WHERE created_by = ? AND name = ? AND enabled = 1 LIMIT 1;`

	err := s.db.GetContext(ctx, &alarm, query, createdBy, name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, dbError("failed to find alarm", err)
	}
	return &alarm, nil
}

func (s *sqlxStore) ListEnabledAlarms(ctx context.Context, createdBy string) ([]Alarm, error) {
	var alarms []Alarm
	query := `SELECT ` + alarmColumns + ` FROM alarms WHERE created_by = ? AND enabled = 1 ORDER BY time ASC;`

	if err := s.db.SelectContext(ctx, &alarms, query, createdBy); err != nil {
		return nil, dbError("failed to list alarms", err)
	}
	return alarms, nil
}

// ListDueAlarms filters in Go rather than comparing timestamps as text in SQL.
func (s *sqlxStore) ListDueAlarms(ctx context.Context, now time.Time) ([]Alarm, error) {
	var alarms []Alarm
	query := `SELECT ` + alarmColumns + ` FROM alarms WHERE enabled = 1;`

	if err := s.db.SelectContext(ctx, &alarms, query); err != nil {
		return nil, dbError("failed to list due alarms", err)
	}

	due := alarms[:0]
	for _, a := range alarms {
		if !a.Time.After(now) {
			due = append(due, a)
		}
	}
	return due, nil
}

func (s *sqlxStore) ReplaceAlarm(ctx context.Context, alarm *Alarm) error {
	if alarm == nil || alarm.ID == "" {
		return errors.New("cannot replace alarm without id")
	}
	normalizeAlarm(alarm)

	query := `UPDATE alarms SET
            channel_id = :channel_id, name = :name, content = :content, is_repeat = :is_repeat,
            time = :time, crontab = :crontab, last_activated_at = :last_activated_at, enabled = :enabled
        WHERE id = :id;`

	result, err := s.db.NamedExecContext(ctx, query, alarm)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("이미 %s 이름의 알람이 있습니다.", alarm.Name))
		}
		return dbError("failed to update alarm", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError("알람을 찾을 수 없습니다.")
	}
	return nil
}
