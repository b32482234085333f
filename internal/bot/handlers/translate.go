package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/translate"
)

type translateRequest struct {
	From string
	To   string
	Text string
}

// NewTranslateHandler returns the handler translating text between languages.
func NewTranslateHandler(deps HandlerDeps) Handler {
	return &translateHandler{
		Trigger: deps.trigger("translate", deps.Translator != nil, "translate", "translation", "번역"),
		deps:    deps,
		log:     deps.Logger.With("handler", "translate"),
	}
}

type translateHandler struct {
	Trigger
	deps HandlerDeps
	log  *slog.Logger
}

func (h *translateHandler) Name() string { return "translate" }

func (h *translateHandler) Parse(_ context.Context, msg chat.Message) (*Command, error) {
	rest := h.Rest(msg.Content)
	args := strings.Fields(rest)
	if wantsHelp(args) {
		return helpCommand(msg), nil
	}
	if len(args) < 3 {
		return invalidCommand(msg, errMissingArgs), nil
	}

	for _, lang := range args[:2] {
		if _, err := translate.Language(lang); err != nil {
			return invalidCommand(msg, err), nil
		}
	}

	// Keep the text's own spacing and line breaks.
	text := rest
	for range 2 {
		text = strings.TrimLeftFunc(text, unicode.IsSpace)
		text = strings.TrimLeftFunc(text, func(r rune) bool { return !unicode.IsSpace(r) })
	}

	return payloadCommand(msg, translateRequest{From: args[0], To: args[1], Text: strings.TrimSpace(text)}), nil
}

func (h *translateHandler) Present(ctx context.Context, cmd *Command) (*chat.Reply, error) {
	switch {
	case cmd.Help:
		return chat.EmbedReply(translateHelp(h.deps.Config.Bot.Prefix)), nil
	case cmd.Invalid:
		return invalidReply("번역", "명령어를 잘못 입력했습니다. `--help`를 참고해주세요.", cmd.Diagnostic), nil
	}

	req, ok := cmd.Payload.(translateRequest)
	if !ok {
		return nil, fmt.Errorf("unexpected translate payload %T", cmd.Payload)
	}

	result, err := h.deps.Translator.Translate(ctx, req.From, req.To, req.Text)
	if err != nil {
		h.log.WarnContext(ctx, "Translation failed", "from", req.From, "to", req.To, "error", err)
		if errors.Is(err, translate.ErrUnsupportedLanguage) {
			return failureReply("번역 실패", err.Error()), nil
		}
		return failureReply("번역 실패", "번역 서비스 호출에 실패했습니다."), nil
	}

	return successReply("번역 결과", result), nil
}

func translateHelp(prefix string) *chat.Embed {
	return &chat.Embed{
		Title: "번역",
		Description: "`한국어`, `영어`, `일본어`, `중국어_간체`, `중국어_번체`, `베트남어`, " +
			"`인도네시아어`, `태국어`, `독일어`, `러시아어`, `스페인어`, `이탈리아어`, " +
			"`프랑스어`(또는 `ko`, `en`, `ja` 같은 언어 코드)에 대한 번역을 지원합니다.\n" +
			fmt.Sprintf("`%s번역 원문언어 번역언어 텍스트`로 입력해주세요.", prefix),
		Color: chat.ColorGreen,
	}
}
