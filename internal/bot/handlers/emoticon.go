package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Hazealign/black-angus-main/internal/chat"
)

const emoticonTitle = "흑우봇 이모티콘"

type emoticonAction int

const (
	emoticonListAction emoticonAction = iota
	emoticonCreateAction
	emoticonSearchAction
	emoticonDuplicateAction
	emoticonUpdateImageAction
	emoticonRenameAction
	emoticonRemoveAction
)

type emoticonCommand struct {
	Action      emoticonAction
	Name        string
	Value       string
	Equivalents bool
}

// NewEmoticonHandler returns the handler managing the emoticon catalogue.
func NewEmoticonHandler(deps HandlerDeps) Handler {
	return &emoticonHandler{
		Trigger: deps.trigger("emoticon", deps.Emoticons != nil, "emoticon", "이모티콘"),
		deps:    deps,
		log:     deps.Logger.With("handler", "emoticon"),
	}
}

type emoticonHandler struct {
	Trigger
	deps HandlerDeps
	log  *slog.Logger
}

func (h *emoticonHandler) Name() string { return "emoticon" }

func (h *emoticonHandler) Parse(_ context.Context, msg chat.Message) (*Command, error) {
	args, err := splitArgs(h.Rest(msg.Content))
	if err != nil {
		return invalidCommand(msg, err), nil
	}
	if wantsHelp(args) {
		return helpCommand(msg), nil
	}

	action, args := args[0], args[1:]
	args, equivalents := takeSwitch(args, "-e", "--equivalents")

	need := func(n int, c emoticonCommand) (*Command, error) {
		if len(args) < n {
			return invalidCommand(msg, errMissingArgs), nil
		}
		return payloadCommand(msg, c), nil
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	switch action {
	case "list", "목록":
		return payloadCommand(msg, emoticonCommand{Action: emoticonListAction}), nil
	case "add", "create", "추가":
		return need(2, emoticonCommand{Action: emoticonCreateAction, Name: arg(0), Value: arg(1)})
	case "search", "검색":
		return need(1, emoticonCommand{Action: emoticonSearchAction, Name: arg(0)})
	case "duplicate", "복제":
		return need(2, emoticonCommand{Action: emoticonDuplicateAction, Name: arg(0), Value: arg(1)})
	case "edit", "update", "수정":
		c := emoticonCommand{Action: emoticonRenameAction, Name: arg(1), Value: arg(2), Equivalents: equivalents}
		switch arg(0) {
		case "url", "URL", "link", "주소", "링크":
			c.Action = emoticonUpdateImageAction
		}
		return need(3, c)
	case "delete", "remove", "삭제":
		return need(1, emoticonCommand{Action: emoticonRemoveAction, Name: arg(0), Equivalents: equivalents})
	default:
		return helpCommand(msg), nil
	}
}

func (h *emoticonHandler) Present(ctx context.Context, cmd *Command) (*chat.Reply, error) {
	switch {
	case cmd.Help:
		return chat.EmbedReply(emoticonHelp(h.deps.Config.Bot.Prefix, h.deps.Config.Bot.EmoticonPrefix)), nil
	case cmd.Invalid:
		return invalidReply(emoticonTitle, "명령어를 잘못 입력했습니다. `--help`를 참고해주세요.", cmd.Diagnostic), nil
	}

	c, ok := cmd.Payload.(emoticonCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected emoticon payload %T", cmd.Payload)
	}

	reply, err := h.run(ctx, c)
	if err != nil {
		h.log.WarnContext(ctx, "Emoticon command failed", "action", c.Action, "name", c.Name, "error", err)
		return errorReply(emoticonTitle, err)
	}
	return reply, nil
}

func (h *emoticonHandler) run(ctx context.Context, c emoticonCommand) (*chat.Reply, error) {
	svc := h.deps.Emoticons

	switch c.Action {
	case emoticonListAction:
		names, err := svc.Names(ctx)
		if err != nil {
			return nil, err
		}
		return &chat.Reply{
			Text: fmt.Sprintf("현재 등록된 이모티콘은 %d개이며, 목록은 다음과 같습니다.", len(names)),
			File: &chat.File{Name: "emoticons.txt", Data: []byte(strings.Join(names, "\n"))},
		}, nil

	case emoticonCreateAction:
		if _, err := svc.Create(ctx, c.Name, c.Value); err != nil {
			return nil, err
		}
		return successReply(emoticonTitle, "이모티콘을 성공적으로 추가했습니다."), nil

	case emoticonSearchAction:
		found, err := svc.Search(ctx, c.Name)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(found))
		for _, e := range found {
			names = append(names, "`"+e.Name+"`")
		}
		e := &chat.Embed{
			Title:       emoticonTitle,
			Description: fmt.Sprintf("%s 키워드로 검색한 결과는 %d건입니다.", c.Name, len(found)),
			Color:       chat.ColorGreen,
		}
		if len(names) > 0 {
			e.Fields = []chat.EmbedField{{Name: "목록", Value: strings.Join(names, ", ")}}
		}
		return chat.EmbedReply(e), nil

	case emoticonDuplicateAction:
		if _, err := svc.Duplicate(ctx, c.Name, c.Value); err != nil {
			return nil, err
		}
		return successReply(emoticonTitle, "이모티콘을 성공적으로 복제했습니다."), nil

	case emoticonUpdateImageAction:
		n, err := svc.UpdateImage(ctx, c.Name, c.Value, c.Equivalents)
		if err != nil {
			return nil, err
		}
		if c.Equivalents {
			return successReply(emoticonTitle, fmt.Sprintf("복제된 이모티콘을 포함해 총 %d건이 업데이트되었습니다.", n)), nil
		}
		return successReply(emoticonTitle, "이모티콘이 성공적으로 업데이트되었습니다."), nil

	case emoticonRenameAction:
		if _, err := svc.Rename(ctx, c.Name, c.Value); err != nil {
			return nil, err
		}
		return successReply(emoticonTitle, "이모티콘이 성공적으로 업데이트되었습니다."), nil

	case emoticonRemoveAction:
		n, err := svc.Remove(ctx, c.Name, c.Equivalents)
		if err != nil {
			return nil, err
		}
		if c.Equivalents {
			return successReply(emoticonTitle, fmt.Sprintf("복제된 이모티콘을 포함해 총 %d건이 삭제되었습니다.", n)), nil
		}
		return successReply(emoticonTitle, "이모티콘이 성공적으로 삭제되었습니다."), nil
	}

	return nil, fmt.Errorf("unknown emoticon action %d", c.Action)
}

func emoticonHelp(prefix, emoticonPrefix string) *chat.Embed {
	return &chat.Embed{
		Title:       "흑우봇 이모티콘 사용법",
		Description: "웹에서 받은 이미지를 이모티콘으로 쓸 수 있습니다.",
		Color:       chat.ColorGrey,
		Fields: []chat.EmbedField{
			{Name: "호출", Value: fmt.Sprintf("대화 중 `%s이모티콘_이름`으로 사용할 수 있습니다.", emoticonPrefix)},
			{Name: "새 이모티콘 추가(추가, add, create)", Value: fmt.Sprintf("`%s이모티콘 추가 이름 URL`로 사용할 수 있습니다. 이름은 10글자 이내입니다.", prefix)},
			{Name: "전체 목록 보기(목록, list)", Value: fmt.Sprintf("`%s이모티콘 목록`으로 사용할 수 있습니다.", prefix)},
			{Name: "검색하기(검색, search)", Value: fmt.Sprintf("`%s이모티콘 검색 단어`로 사용할 수 있습니다.", prefix)},
			{Name: "복제하기(복제, duplicate)", Value: fmt.Sprintf("`%s이모티콘 복제 이름 복제할_이름`으로 사용할 수 있습니다.", prefix)},
			{
				Name: "수정하기(수정, edit, update)",
				Value: fmt.Sprintf("`%s이모티콘 수정 [-e] 주소 이모티콘_이름 새_URL`로 이미지를 바꾸거나, ", prefix) +
					fmt.Sprintf("`%s이모티콘 수정 이름 이모티콘_이름 새_이름`으로 이름을 바꿀 수 있습니다.\n", prefix) +
					"복제된 이모티콘까지 바꾸려면 `-e`, `--equivalents` 옵션을 넣어주세요.",
			},
			{
				Name: "삭제하기(삭제, delete, remove)",
				Value: fmt.Sprintf("`%s이모티콘 삭제 [-e] 이름`으로 사용할 수 있습니다. ", prefix) +
					"이미지는 저장소에 남습니다. 복제된 이모티콘까지 지우려면 `-e` 옵션을 넣어주세요.",
			},
		},
	}
}
