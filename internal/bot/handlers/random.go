package handlers

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/Hazealign/black-angus-main/internal/chat"
)

// NewRandomHandler returns the handler that picks one of the given options.
func NewRandomHandler(deps HandlerDeps) Handler {
	return &randomHandler{
		Trigger: deps.trigger("random", true, "random", "랜덤"),
		pick:    rand.IntN,
	}
}

type randomHandler struct {
	Trigger
	pick func(n int) int
}

func (h *randomHandler) Name() string { return "random" }

func (h *randomHandler) Parse(_ context.Context, msg chat.Message) (*Command, error) {
	return payloadCommand(msg, strings.Fields(h.Rest(msg.Content))), nil
}

func (h *randomHandler) Present(_ context.Context, cmd *Command) (*chat.Reply, error) {
	options, _ := cmd.Payload.([]string)
	if len(options) == 0 {
		return chat.TextReply("선택지를 한 개 이상 입력해주세요."), nil
	}
	return chat.TextReply(fmt.Sprintf("랜덤 뽑기 결과는 [**%s**]입니다.", options[h.pick(len(options))])), nil
}
