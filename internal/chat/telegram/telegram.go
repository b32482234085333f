// Package telegram connects the bot to Telegram through go-telegram/bot.
// Telegram has no embeds, so rich replies are rendered as HTML messages.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Hazealign/black-angus-main/internal/apperrors"
	"github.com/Hazealign/black-angus-main/internal/chat"
	"github.com/Hazealign/black-angus-main/internal/sanitize"
)

// Telegram caps captions at 1024 characters.
const maxCaptionRunes = 1024

var mentionPattern = regexp.MustCompile(`<@(\d+)>`)

// Platform is a chat.Platform backed by Telegram long polling.
type Platform struct {
	bot    *bot.Bot
	logger *slog.Logger
	policy *sanitize.Policy

	mu        sync.RWMutex
	selfID    string
	onMessage func(ctx context.Context, msg chat.Message)
}

var _ chat.Platform = (*Platform)(nil)

// New creates a Telegram client for a bot token and checks it with getMe.
func New(token string, policy *sanitize.Policy, logger *slog.Logger, opts ...bot.Option) (*Platform, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if policy == nil {
		policy = sanitize.NewPolicy()
	}

	p := &Platform{logger: logger.With("component", "telegram"), policy: policy}

	options := append([]bot.Option{
		bot.WithDefaultHandler(p.handleUpdate),
		bot.WithErrorsHandler(func(err error) {
			p.logger.Error("Telegram polling error", "error", err)
		}),
	}, opts...)

	b, err := bot.New(token, options...)
	if err != nil {
		p.logger.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	p.bot = b
	return p, nil
}

// Start polls for updates until ctx is done.
func (p *Platform) Start(ctx context.Context, onReady func(ctx context.Context), onMessage func(ctx context.Context, msg chat.Message)) error {
	me, err := p.bot.GetMe(ctx)
	if err != nil {
		return apperrors.NewAPIError("failed to get telegram bot info", err)
	}

	p.mu.Lock()
	p.selfID = strconv.FormatInt(me.ID, 10)
	p.onMessage = onMessage
	p.mu.Unlock()

	p.logger.Info("Telegram session ready", "bot_id", me.ID, "bot_username", me.Username)
	onReady(ctx)

	p.bot.Start(ctx)
	p.logger.Info("Stopped receiving Telegram updates")
	return nil
}

func (p *Platform) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg, ok := fromUpdate(update)
	if !ok {
		return
	}

	p.mu.RLock()
	onMessage := p.onMessage
	p.mu.RUnlock()

	if onMessage != nil {
		onMessage(ctx, msg)
	}
}

// SelfID returns the bot's user id once Start has fetched it.
func (p *Platform) SelfID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selfID
}

// Close is a no-op: long polling stops with the Start context and the HTTP
// client holds no connection of its own.
func (p *Platform) Close() error {
	return nil
}

// Send posts reply to a chat id or @username.
func (p *Platform) Send(ctx context.Context, channelID string, reply *chat.Reply) error {
	if reply.Empty() {
		return nil
	}

	text := renderHTML(p.policy, reply)

	if reply.File == nil {
		_, err := p.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    channelID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		if err != nil {
			return apperrors.NewAPIError("failed to send telegram message", err)
		}
		return nil
	}

	caption := text
	if len([]rune(caption)) > maxCaptionRunes {
		if _, err := p.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: channelID, Text: text, ParseMode: models.ParseModeHTML}); err != nil {
			return apperrors.NewAPIError("failed to send telegram message", err)
		}
		caption = ""
	}

	upload := &models.InputFileUpload{Filename: reply.File.Name, Data: bytes.NewReader(reply.File.Data)}
	var err error
	if isPhoto(reply.File.Data) {
		_, err = p.bot.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID: channelID, Photo: upload, Caption: caption, ParseMode: models.ParseModeHTML,
		})
	} else {
		_, err = p.bot.SendDocument(ctx, &bot.SendDocumentParams{
			ChatID: channelID, Document: upload, Caption: caption, ParseMode: models.ParseModeHTML,
		})
	}
	if err != nil {
		return apperrors.NewAPIError("failed to send telegram file", err)
	}
	return nil
}

// ResolveChannel accepts a numeric chat id or a public @username and returns
// the numeric id, provided the bot can see that chat. Telegram cannot list a
// group's channels by name.
func (p *Platform) ResolveChannel(ctx context.Context, _ string, name string) (string, error) {
	name = strings.TrimPrefix(name, "#")
	if _, err := strconv.ParseInt(name, 10, 64); err != nil && !strings.HasPrefix(name, "@") {
		name = "@" + name
	}

	info, err := p.bot.GetChat(ctx, &bot.GetChatParams{ChatID: name})
	if err != nil {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("telegram chat %s not found", name))
	}
	return strconv.FormatInt(info.ID, 10), nil
}

func fromUpdate(update *models.Update) (chat.Message, bool) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return chat.Message{}, false
	}
	m := update.Message

	content := m.Text
	if content == "" {
		content = m.Caption
	}

	msg := chat.Message{
		ID:        strconv.Itoa(m.ID),
		Content:   content,
		AuthorID:  strconv.FormatInt(m.From.ID, 10),
		AuthorBot: m.From.IsBot,
		ChannelID: strconv.FormatInt(m.Chat.ID, 10),
	}
	// Groups play the role of guilds: names such as RSS subscriptions are
	// unique per group.
	if m.Chat.Type != models.ChatTypePrivate {
		msg.GuildID = msg.ChannelID
	}
	return msg, true
}

// renderHTML flattens a reply into Telegram HTML. Embed parts become bold
// titles, plain paragraphs and an italic footer.
func renderHTML(policy *sanitize.Policy, reply *chat.Reply) string {
	var parts []string
	if reply.Text != "" {
		parts = append(parts, reply.Text)
	}

	if e := reply.Embed; e != nil {
		switch {
		case e.Title != "" && e.URL != "":
			parts = append(parts, fmt.Sprintf("**[%s](%s)**", e.Title, e.URL))
		case e.Title != "":
			parts = append(parts, "**"+e.Title+"**")
		case e.URL != "":
			parts = append(parts, e.URL)
		}
		if e.Description != "" {
			parts = append(parts, e.Description)
		}
		for _, f := range e.Fields {
			parts = append(parts, fmt.Sprintf("**%s**\n%s", f.Name, f.Value))
		}
		if e.ImageURL != "" {
			parts = append(parts, e.ImageURL)
		}
		if e.Footer != "" {
			parts = append(parts, "_"+e.Footer+"_")
		}
	}

	md := strings.Join(parts, "\n\n")
	md = mentionPattern.ReplaceAllString(md, "[@$1](tg://user?id=$1)")
	return policy.TelegramHTML(md)
}

func isPhoto(data []byte) bool {
	switch http.DetectContentType(data) {
	case "image/jpeg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}
