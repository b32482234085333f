package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/database"
	"github.com/Hazealign/black-angus-main/internal/feed"
)

type rssRegister struct {
	AuthorID    string
	GuildID     string
	ChannelID   string
	ChannelName string
	Name        string
	Link        string
}

// NewRSSHandler returns the handler that subscribes a channel to a feed.
func NewRSSHandler(deps HandlerDeps) Handler {
	return &rssHandler{
		Trigger: deps.trigger("rss", deps.Store != nil && deps.Feeds != nil && deps.Directory != nil, "rss", "구독"),
		deps:    deps,
		log:     deps.Logger.With("handler", "rss"),
	}
}

type rssHandler struct {
	Trigger
	deps HandlerDeps
	log  *slog.Logger
}

func (h *rssHandler) Name() string { return "rss" }

func (h *rssHandler) Parse(ctx context.Context, msg chat.Message) (*Command, error) {
	args, err := splitArgs(h.Rest(msg.Content))
	if err != nil {
		return invalidCommand(msg, err), nil
	}
	if wantsHelp(args) {
		return helpCommand(msg), nil
	}
	if len(args) < 3 {
		return invalidCommand(msg, errMissingArgs), nil
	}

	link := args[1]
	if u, err := url.Parse(link); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalidCommand(msg, fmt.Errorf("올바른 주소가 아닙니다: %s", link)), nil
	}

	channelName := strings.TrimPrefix(args[2], "#")
	channelID, err := h.deps.Directory.ResolveChannel(ctx, msg.GuildID, channelName)
	if err != nil {
		return invalidCommand(msg, fmt.Errorf("채널 #%s을(를) 찾을 수 없습니다: %w", channelName, err)), nil
	}

	return payloadCommand(msg, rssRegister{
		AuthorID:    msg.AuthorID,
		GuildID:     msg.GuildID,
		ChannelID:   channelID,
		ChannelName: channelName,
		Name:        args[0],
		Link:        link,
	}), nil
}

func (h *rssHandler) Present(ctx context.Context, cmd *Command) (*chat.Reply, error) {
	switch {
	case cmd.Help:
		return chat.EmbedReply(rssHelp(h.deps.Config.Bot.Prefix)), nil
	case cmd.Invalid:
		return invalidReply("RSS 피드 구독", "명령어를 잘못 입력했습니다. `--help`를 참고해주세요.", cmd.Diagnostic), nil
	}

	p, ok := cmd.Payload.(rssRegister)
	if !ok {
		return nil, fmt.Errorf("unexpected rss payload %T", cmd.Payload)
	}

	failTitle := fmt.Sprintf("[%s] 구독 실패", p.Name)

	existing, err := h.deps.Store.FindSubscription(ctx, p.GuildID, p.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return failureReply(failTitle, "이미 같은 이름의 구독이 있습니다."), nil
	}

	entries, err := h.deps.Feeds.Fetch(ctx, p.Link, time.Time{})
	if err != nil {
		h.log.WarnContext(ctx, "Initial feed fetch failed", "link", p.Link, "error", err)
		return failureReply(failTitle, "초기 RSS 피드를 가져올 수 없었기 때문에 구독에 실패하였습니다.\n"+err.Error()), nil
	}

	sub := &database.Subscription{
		ID:        uuid.NewString(),
		CreatedAt: h.deps.now(),
		CreatedBy: p.AuthorID,
		GuildID:   p.GuildID,
		ChannelID: p.ChannelID,
		Name:      p.Name,
		Link:      p.Link,
	}
	if latest := feed.Latest(entries); !latest.IsZero() {
		sub.LatestPublishedAt = sql.NullTime{Time: latest, Valid: true}
	}

	if err := h.deps.Store.CreateSubscription(ctx, sub, feed.Documents(entries)); err != nil {
		return errorReply(failTitle, err)
	}

	h.log.InfoContext(ctx, "Subscription registered", "subscription_id", sub.ID, "link", sub.Link, "documents", len(entries))
	return successReply(fmt.Sprintf("[%s] 구독 성공", p.Name),
		fmt.Sprintf("요청하신 구독에 성공하셨습니다.\n#%s 채널에 새로운 글이 올라오면 자동으로 가져옵니다.", p.ChannelName)), nil
}

func rssHelp(prefix string) *chat.Embed {
	return &chat.Embed{
		Title: "RSS 피드 구독",
		Description: fmt.Sprintf("흑우로 RSS 피드를 특정 채널에 구독할 수 있습니다. "+
			"`%srss 구독_이름 URL #채널`로 입력해주시면 등록이 가능합니다.", prefix),
		Color: chat.ColorGreen,
	}
}
