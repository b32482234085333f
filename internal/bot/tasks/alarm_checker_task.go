package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Hazealign/black-angus-main/internal/apperrors"
	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/crontab"
	"github.com/Hazealign/black-angus-main/internal/database"
)

const alarmFooter = "흑우에 등록한 알람이 작동하였습니다."

// newAlarmCheckerTask fires every enabled alarm whose time has come. One-shot
// alarms are disabled; repeating alarms move to their next crontab match.
//
// An alarm unregistered while it fires may be written back by this task.
// That race is accepted; the store has no row versioning.
func newAlarmCheckerTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "alarm_checker")

	return func(ctx context.Context) error {
		now := deps.now().Truncate(time.Minute)

		due, err := deps.Store.ListDueAlarms(ctx, now)
		if err != nil {
			return fmt.Errorf("list due alarms: %w", err)
		}
		if len(due) == 0 {
			log.DebugContext(ctx, "No alarms due")
			return nil
		}
		log.InfoContext(ctx, "Firing due alarms", "count", len(due))

		var errs []error
		for i := range due {
			if err := fireAlarm(ctx, deps, &due[i], now); err != nil {
				log.ErrorContext(ctx, "Failed to fire alarm", "alarm_id", due[i].ID, "name", due[i].Name, "error", err)
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

func fireAlarm(ctx context.Context, deps TaskDeps, alarm *database.Alarm, now time.Time) error {
	alarm.LastActivatedAt = sql.NullTime{Time: now, Valid: true}

	if alarm.IsRepeat {
		next, err := crontab.Next(alarm.Crontab, now, deps.Config.Location())
		if err != nil {
			// A stored crontab that no longer parses can never fire again.
			alarm.Enabled = false
		} else {
			alarm.Time = next
		}
	} else {
		alarm.Enabled = false
	}

	if err := deps.Store.ReplaceAlarm(ctx, alarm); err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("update alarm %s: %w", alarm.ID, err)
	}

	reply := &chat.Reply{
		Text: chat.Mention(alarm.CreatedBy),
		Embed: &chat.Embed{
			Title:       alarm.Name,
			Description: alarm.Content,
			Color:       chat.ColorYellow,
			Footer:      alarmFooter,
		},
	}
	if err := deps.Sender.Send(ctx, alarm.ChannelID, reply); err != nil {
		return fmt.Errorf("send alarm %s: %w", alarm.ID, err)
	}
	return nil
}
