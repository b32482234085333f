package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/crontab"
	"github.com/Hazealign/black-angus-main/internal/database"
)

// alarmTimeLayouts are accepted for one-shot alarms. Seconds are dropped.
var alarmTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

type alarmRegister struct {
	AuthorID  string
	ChannelID string
	Name      string
	Content   string
	Repeat    bool
	Time      time.Time
	Crontab   string
}

type alarmUnregister struct {
	AuthorID string
	Name     string
}

type alarmList struct {
	AuthorID string
}

// NewAlarmHandler returns the handler for one-shot and repeating alarms.
func NewAlarmHandler(deps HandlerDeps) Handler {
	return &alarmHandler{
		Trigger: deps.trigger("alarm", deps.Store != nil, "alarm", "알람"),
		deps:    deps,
		log:     deps.Logger.With("handler", "alarm"),
	}
}

type alarmHandler struct {
	Trigger
	deps HandlerDeps
	log  *slog.Logger
}

func (h *alarmHandler) Name() string { return "alarm" }

func (h *alarmHandler) Parse(ctx context.Context, msg chat.Message) (*Command, error) {
	args, err := splitArgs(h.Rest(msg.Content))
	if err != nil {
		return invalidCommand(msg, err), nil
	}
	if wantsHelp(args) {
		return helpCommand(msg), nil
	}

	switch args[0] {
	case "register", "등록":
		return h.parseRegister(ctx, msg, args[1:])
	case "unregister", "삭제":
		if len(args) < 2 {
			return invalidCommand(msg, errMissingArgs), nil
		}
		return payloadCommand(msg, alarmUnregister{AuthorID: msg.AuthorID, Name: args[1]}), nil
	case "list", "목록":
		return payloadCommand(msg, alarmList{AuthorID: msg.AuthorID}), nil
	default:
		return helpCommand(msg), nil
	}
}

func (h *alarmHandler) parseRegister(ctx context.Context, msg chat.Message, args []string) (*Command, error) {
	args, channelName, hasChannel, err := takeFlag(args, "--channel", "-c")
	if err != nil {
		return invalidCommand(msg, err), nil
	}
	if len(args) < 4 {
		return invalidCommand(msg, errMissingArgs), nil
	}

	reg := alarmRegister{
		AuthorID:  msg.AuthorID,
		ChannelID: msg.ChannelID,
		Name:      args[0],
		Content:   args[1],
	}

	if hasChannel {
		if h.deps.Directory == nil {
			return invalidCommand(msg, errors.New("채널을 지정할 수 없는 환경입니다")), nil
		}
		id, err := h.deps.Directory.ResolveChannel(ctx, msg.GuildID, strings.TrimPrefix(channelName, "#"))
		if err != nil {
			return invalidCommand(msg, fmt.Errorf("채널 %s을(를) 찾을 수 없습니다: %w", channelName, err)), nil
		}
		reg.ChannelID = id
	}

	switch args[2] {
	case "repeat", "반복":
		if err := crontab.Validate(args[3]); err != nil {
			return invalidCommand(msg, err), nil
		}
		reg.Repeat = true
		reg.Crontab = args[3]
	case "once", "1회", "일회":
		t, err := parseAlarmTime(args[3], h.deps.Config.Location())
		if err != nil {
			return invalidCommand(msg, err), nil
		}
		reg.Time = t
	default:
		return invalidCommand(msg, fmt.Errorf("알람 종류는 1회 또는 반복이어야 합니다: %s", args[2])), nil
	}

	return payloadCommand(msg, reg), nil
}

func parseAlarmTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range alarmTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Truncate(time.Minute), nil
		}
	}
	return time.Time{}, fmt.Errorf("시간 형식이 올바르지 않습니다: %s", s)
}

func (h *alarmHandler) Present(ctx context.Context, cmd *Command) (*chat.Reply, error) {
	switch {
	case cmd.Help:
		return chat.EmbedReply(alarmHelp(h.deps.Config.Bot.Prefix)), nil
	case cmd.Invalid:
		return invalidReply("알람 옵션 오류",
			"알람 커맨드의 사용법을 확인해주세요. 이 문제는 주로 제대로 커맨드를 입력하지 않았거나, 등록한 채널이 정확하지 않으면 발생합니다.",
			cmd.Diagnostic), nil
	}

	switch p := cmd.Payload.(type) {
	case alarmRegister:
		return h.register(ctx, p)
	case alarmUnregister:
		return h.unregister(ctx, p)
	case alarmList:
		return h.list(ctx, p)
	default:
		return nil, fmt.Errorf("unexpected alarm payload %T", cmd.Payload)
	}
}

func (h *alarmHandler) register(ctx context.Context, p alarmRegister) (*chat.Reply, error) {
	loc := h.deps.Config.Location()
	now := h.deps.now()

	alarm := &database.Alarm{
		ID:        uuid.NewString(),
		CreatedAt: now,
		CreatedBy: p.AuthorID,
		ChannelID: p.ChannelID,
		Name:      p.Name,
		Content:   p.Content,
		IsRepeat:  p.Repeat,
		Enabled:   true,
	}

	if p.Repeat {
		next, err := crontab.Next(p.Crontab, now, loc)
		if err != nil {
			return failureReply("알람 등록 실패", err.Error()), nil
		}
		alarm.Crontab = p.Crontab
		alarm.Time = next
	} else {
		if !p.Time.After(now) {
			return failureReply("알람 등록 실패", "과거를 대상으로 알람을 등록할 수 없습니다."), nil
		}
		alarm.Time = p.Time
	}

	if err := h.deps.Store.CreateAlarm(ctx, alarm); err != nil {
		return errorReply("알람 등록 실패", err)
	}

	h.log.InfoContext(ctx, "Alarm registered", "alarm_id", alarm.ID, "author_id", p.AuthorID, "repeat", p.Repeat)
	return successReply("알람 등록 완료", fmt.Sprintf("[%s] 알람이 등록 완료되었습니다. 다음 알람: %s",
		alarm.Name, alarm.Time.In(loc).Format("2006-01-02 15:04"))), nil
}

func (h *alarmHandler) unregister(ctx context.Context, p alarmUnregister) (*chat.Reply, error) {
	alarm, err := h.deps.Store.FindEnabledAlarm(ctx, p.AuthorID, p.Name)
	if err != nil {
		return nil, err
	}
	if alarm == nil {
		return failureReply("알람 삭제 실패", "해당 사용자가 해당 이름으로 등록한 알람이 없습니다."), nil
	}

	alarm.Enabled = false
	if err := h.deps.Store.ReplaceAlarm(ctx, alarm); err != nil {
		return errorReply("알람 삭제 실패", err)
	}

	h.log.InfoContext(ctx, "Alarm unregistered", "alarm_id", alarm.ID, "author_id", p.AuthorID)
	return successReply("알람 삭제 완료", "해당 알람을 삭제했습니다."), nil
}

func (h *alarmHandler) list(ctx context.Context, p alarmList) (*chat.Reply, error) {
	alarms, err := h.deps.Store.ListEnabledAlarms(ctx, p.AuthorID)
	if err != nil {
		return nil, err
	}
	if len(alarms) == 0 {
		return successReply("알람 목록 조회", "해당 사용자가 등록한 알람이 없습니다."), nil
	}

	loc := h.deps.Config.Location()
	e := &chat.Embed{
		Title:       "알람 목록 조회",
		Description: "해당 사용자가 등록한 알람은 다음과 같습니다.",
		Color:       chat.ColorGreen,
	}
	for _, a := range alarms {
		value := "일회성 알람: " + a.Time.In(loc).Format("2006-01-02 15:04")
		if a.IsRepeat {
			value = fmt.Sprintf("반복 알람: `%s` (다음: %s)", a.Crontab, a.Time.In(loc).Format("2006-01-02 15:04"))
		}
		e.Fields = append(e.Fields, chat.EmbedField{Name: a.Name, Value: value})
	}
	return chat.EmbedReply(e), nil
}

func alarmHelp(prefix string) *chat.Embed {
	return &chat.Embed{
		Title:       "알람 설정",
		Description: "흑우로 1회용, 다회용 알람을 설정할 수 있습니다.\nalarm, 알람 키워드로 사용할 수 있습니다.",
		Color:       chat.ColorGreen,
		Fields: []chat.EmbedField{
			{
				Name: "register / 등록",
				Value: fmt.Sprintf("알람을 새로 등록합니다. `%s알람 등록 이름 내용 1회/반복 시간 [--channel #채널_이름]` 형태로 사용할 수 있습니다.\n", prefix) +
					"시간은 1회성 알람일 경우 **`\"2024-01-01 12:34\"`**과 같이 따옴표로 감싸 입력해주세요. **초 단위는 무시됩니다.**\n" +
					"반복성 알람인 경우 crontab 문자열을 사용해야합니다. 매일 오후 6시 반이라면 `\"30 18 * * *\"`입니다.\n" +
					"분 시 날짜 월 요일(숫자) 순이며, 자세한 내용은 https://crontab.guru 를 참고해주세요.",
			},
			{
				Name:  "unregister / 삭제",
				Value: fmt.Sprintf("**내가 등록한 알람**만 해제할 수 있습니다. `%s알람 삭제 이름`으로 삭제할 수 있습니다.", prefix),
			},
			{
				Name:  "list / 목록",
				Value: "내가 등록한, 활성화된 알람 목록을 가져올 수 있습니다.",
			},
		},
	}
}
