package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Hazealign/black-angus-main/internal/apperrors"
	"github.com/Hazealign/black-angus-main/internal/chat"
)

// NewEmoticonFetcher returns the handler posting an emoticon image for
// messages such as "~name".
func NewEmoticonFetcher(deps HandlerDeps) Handler {
	return &emoticonFetcher{
		prefix: deps.Config.Bot.EmoticonPrefix,
		off:    deps.Emoticons == nil || !deps.Config.AppEnabled("emoticon"),
		deps:   deps,
		log:    deps.Logger.With("handler", "emoticon_fetcher"),
	}
}

type emoticonFetcher struct {
	prefix string
	off    bool
	deps   HandlerDeps
	log    *slog.Logger
}

func (h *emoticonFetcher) Name() string   { return "emoticon_fetcher" }
func (h *emoticonFetcher) Disabled() bool { return h.off }

func (h *emoticonFetcher) Match(msg chat.Message) bool {
	return !h.off && h.emoticonName(msg.Content) != ""
}

// emoticonName is the first word after the prefix.
func (h *emoticonFetcher) emoticonName(content string) string {
	if h.prefix == "" {
		return ""
	}
	rest, ok := strings.CutPrefix(strings.TrimSpace(content), h.prefix)
	if !ok {
		return ""
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 || !strings.HasPrefix(rest, fields[0]) {
		return ""
	}
	return fields[0]
}

func (h *emoticonFetcher) Parse(_ context.Context, msg chat.Message) (*Command, error) {
	name := h.emoticonName(msg.Content)
	if name == "" {
		return nil, nil
	}
	return payloadCommand(msg, name), nil
}

func (h *emoticonFetcher) Present(ctx context.Context, cmd *Command) (*chat.Reply, error) {
	name, ok := cmd.Payload.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected emoticon fetcher payload %T", cmd.Payload)
	}

	e, err := h.deps.Emoticons.Find(ctx, name)
	if err == nil {
		var (
			file string
			data []byte
		)
		file, data, err = h.deps.Emoticons.Image(ctx, e)
		if err == nil {
			return &chat.Reply{File: &chat.File{Name: file, Data: data}}, nil
		}
	}

	if apperrors.IsNotFound(err) {
		return failureReply("흑우봇 이모티콘 찾기", fmt.Sprintf("이모티콘 \"%s\"을 찾을 수 없습니다.", name)), nil
	}
	h.log.WarnContext(ctx, "Failed to load emoticon", "name", name, "error", err)
	return errorReply("흑우봇 이모티콘 찾기", err)
}
