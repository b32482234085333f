// Package discord connects the bot to Discord through discordgo.
package discord

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/Hazealign/black-angus-main/internal/apperrors"
	"github.com/Hazealign/black-angus-main/internal/chat"
)

// Platform is a chat.Platform backed by a Discord gateway session.
type Platform struct {
	session *discordgo.Session
	logger  *slog.Logger
	selfID  atomic.Value
}

var _ chat.Platform = (*Platform)(nil)

// New creates a Discord session for a bot token. Nothing connects until Start.
func New(token string, logger *slog.Logger) (*Platform, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	p := &Platform{session: session, logger: logger.With("component", "discord")}
	p.selfID.Store("")
	return p, nil
}

// Start opens the gateway and forwards messages until ctx is done.
func (p *Platform) Start(ctx context.Context, onReady func(ctx context.Context), onMessage func(ctx context.Context, msg chat.Message)) error {
	ready := p.readyHandler(ctx, onReady)
	removeReady := p.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) { ready(r) })
	defer removeReady()

	removeMessage := p.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		msg, ok := fromMessageCreate(m)
		if !ok {
			return
		}
		onMessage(ctx, msg)
	})
	defer removeMessage()

	if err := p.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}

	<-ctx.Done()
	p.logger.Info("Stopped receiving Discord messages")
	return nil
}

// readyHandler records the bot identity on every Ready event. The gateway
// sends a new Ready after each full reconnect; onReady only runs for the first.
func (p *Platform) readyHandler(ctx context.Context, onReady func(ctx context.Context)) func(r *discordgo.Ready) {
	var once sync.Once
	return func(r *discordgo.Ready) {
		if r == nil || r.User == nil {
			return
		}
		p.selfID.Store(r.User.ID)
		ran := false
		once.Do(func() {
			ran = true
			p.logger.Info("Discord session ready", "user", r.User.Username, "guilds", len(r.Guilds))
			onReady(ctx)
		})
		if !ran {
			p.logger.Info("Discord session re-established", "user", r.User.Username)
		}
	}
}

// SelfID returns the bot's user id once the session is ready.
func (p *Platform) SelfID() string {
	return p.selfID.Load().(string)
}

// Close shuts the gateway connection down.
func (p *Platform) Close() error {
	return p.session.Close()
}

// Send posts reply to channelID.
func (p *Platform) Send(ctx context.Context, channelID string, reply *chat.Reply) error {
	if reply.Empty() {
		return nil
	}
	_, err := p.session.ChannelMessageSendComplex(channelID, toMessageSend(reply), discordgo.WithContext(ctx))
	if err != nil {
		return apperrors.NewAPIError("failed to send discord message", err)
	}
	return nil
}

// ResolveChannel finds a text channel in guildID by name. A channel mention
// such as <#1234> resolves to its id directly.
func (p *Platform) ResolveChannel(ctx context.Context, guildID, name string) (string, error) {
	if id, ok := mentionID(name); ok {
		return id, nil
	}
	if guildID == "" {
		return "", apperrors.NewNotFoundError("channels can only be looked up inside a server")
	}

	channels, err := p.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", apperrors.NewAPIError("failed to list guild channels", err)
	}
	return findTextChannel(channels, name)
}

func fromMessageCreate(m *discordgo.MessageCreate) (chat.Message, bool) {
	if m == nil || m.Message == nil || m.Author == nil {
		return chat.Message{}, false
	}
	return chat.Message{
		ID:        m.ID,
		Content:   m.Content,
		AuthorID:  m.Author.ID,
		AuthorBot: m.Author.Bot,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
	}, true
}

func toMessageSend(reply *chat.Reply) *discordgo.MessageSend {
	send := &discordgo.MessageSend{Content: reply.Text}

	if e := reply.Embed; e != nil {
		embed := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
			Color:       e.Color,
		}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		if e.Footer != "" {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
		}
		if e.ImageURL != "" {
			embed.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
		}
		send.Embeds = []*discordgo.MessageEmbed{embed}
	}

	if f := reply.File; f != nil {
		send.Files = []*discordgo.File{{
			Name:        f.Name,
			ContentType: http.DetectContentType(f.Data),
			Reader:      bytes.NewReader(f.Data),
		}}
	}
	return send
}

func mentionID(name string) (string, bool) {
	if !strings.HasPrefix(name, "<#") || !strings.HasSuffix(name, ">") {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, "<#"), ">")
	return id, id != ""
}

func findTextChannel(channels []*discordgo.Channel, name string) (string, error) {
	name = strings.TrimPrefix(name, "#")
	for _, c := range channels {
		if c.Name != name {
			continue
		}
		if c.Type == discordgo.ChannelTypeGuildText || c.Type == discordgo.ChannelTypeGuildNews {
			return c.ID, nil
		}
	}
	return "", apperrors.NewNotFoundError(fmt.Sprintf("text channel #%s not found", name))
}
