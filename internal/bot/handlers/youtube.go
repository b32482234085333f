package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/sanitize"
	"github.com/Hazealign/black-angus-main/internal/scraper"
)

type youtubeQuery struct {
	Keyword string
	Count   int
}

// NewYouTubeHandler returns the handler searching YouTube through a browser.
func NewYouTubeHandler(deps HandlerDeps) Handler {
	limit := deps.Config.YouTube.MaxResults
	if limit <= 0 || limit > scraper.MaxResults {
		limit = scraper.MaxResults
	}
	return &youtubeHandler{
		Trigger: deps.trigger("youtube", deps.Searcher != nil, "youtube", "유튜브"),
		deps:    deps,
		limit:   limit,
		log:     deps.Logger.With("handler", "youtube"),
	}
}

type youtubeHandler struct {
	Trigger
	deps  HandlerDeps
	limit int
	log   *slog.Logger
}

func (h *youtubeHandler) Name() string { return "youtube" }

func (h *youtubeHandler) Parse(_ context.Context, msg chat.Message) (*Command, error) {
	args := strings.Fields(h.Rest(msg.Content))
	if wantsHelp(args) {
		return helpCommand(msg), nil
	}

	q := youtubeQuery{Count: 1}
	if n, err := strconv.Atoi(args[0]); err == nil {
		q.Count = n
		args = args[1:]
	}
	q.Keyword = strings.Join(args, " ")

	if q.Count > h.limit {
		return invalidCommand(msg, fmt.Errorf("최대 %d개까지만 조회 가능합니다", h.limit)), nil
	}
	if err := scraper.ValidateQuery(q.Keyword, q.Count); err != nil {
		return invalidCommand(msg, err), nil
	}
	return payloadCommand(msg, q), nil
}

func (h *youtubeHandler) Present(ctx context.Context, cmd *Command) (*chat.Reply, error) {
	switch {
	case cmd.Help:
		return chat.EmbedReply(youtubeHelp(h.deps.Config.Bot.Prefix, h.limit)), nil
	case cmd.Invalid:
		return invalidReply("유튜브 검색", "명령어를 잘못 입력했습니다. `--help`를 참고해주세요.", cmd.Diagnostic), nil
	}

	q, ok := cmd.Payload.(youtubeQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected youtube payload %T", cmd.Payload)
	}

	videos, err := h.deps.Searcher.Search(ctx, q.Keyword, q.Count)
	if err != nil {
		h.log.WarnContext(ctx, "YouTube search failed", "keyword", q.Keyword, "error", err)
		return failureReply("유튜브 검색 오류", "유튜브 검색 중 오류가 발생했습니다.\n"+err.Error()), nil
	}
	if len(videos) == 0 {
		return chat.TextReply("검색 결과가 없습니다."), nil
	}

	replies := make([]*chat.Reply, 0, len(videos)+1)
	replies = append(replies, chat.TextReply("유튜브 검색 결과입니다."))
	for _, v := range videos {
		replies = append(replies, chat.EmbedReply(videoEmbed(v)))
	}
	if err := chat.SendAll(ctx, h.deps.Sender, cmd.Message.ChannelID, replies); err != nil {
		return nil, fmt.Errorf("send youtube results: %w", err)
	}
	return nil, nil
}

func videoEmbed(v scraper.Video) *chat.Embed {
	e := &chat.Embed{
		Title:       v.Title,
		Description: sanitize.Truncate(v.Description, 300),
		URL:         v.Link,
		Color:       chat.ColorGreen,
		ImageURL:    v.Thumbnail,
	}
	if v.Duration != "" {
		e.Fields = append(e.Fields, chat.EmbedField{Name: "재생 시간", Value: v.Duration, Inline: true})
	}
	if v.Uploader != "" {
		e.Fields = append(e.Fields, chat.EmbedField{Name: "업로더", Value: v.Uploader, Inline: true})
	}
	return e
}

func youtubeHelp(prefix string, limit int) *chat.Embed {
	return &chat.Embed{
		Title: "Youtube 검색",
		Description: "흑우로 유튜브 영상을 검색할 수 있습니다. API 방식이 아닌 스크래핑 방식을 이용하며, " +
			"비-로그인 상태 웹에서 보는 것과 동일한 결과를 얻을 수 있습니다.\n" +
			fmt.Sprintf("사용법은 `%syoutube [갯수] 검색어`이며, 추천 동영상을 배제하기 위해 %d개 이하의 결과만 가져올 수 있습니다.", prefix, limit),
		Color: chat.ColorRed,
	}
}
