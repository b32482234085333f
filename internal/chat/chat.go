// Package chat defines the platform-neutral message and reply types shared by
// the router, the handlers and the platform adapters.
package chat

import (
	"context"
	"strings"
)

// Message is one inbound chat message.
type Message struct {
	ID        string
	Content   string
	AuthorID  string
	AuthorBot bool
	ChannelID string
	// GuildID is empty for direct messages and on platforms without guilds.
	GuildID string
}

// Embed colors.
const (
	ColorRed    = 0xE74C3C
	ColorGreen  = 0x2ECC71
	ColorBlue   = 0x3498DB
	ColorYellow = 0xF1C40F
	ColorGrey   = 0x95A5A6
)

// EmbedField is a titled block inside an Embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich card. Platforms without native embeds render it as text.
type Embed struct {
	Title       string
	Description string
	URL         string
	Color       int
	Fields      []EmbedField
	Footer      string
	ImageURL    string
}

// File is an attachment sent along with a reply.
type File struct {
	Name string
	Data []byte
}

// Reply is what a handler wants posted. Any combination of parts may be set.
type Reply struct {
	Text  string
	Embed *Embed
	File  *File
}

// Empty reports whether the reply has nothing to send.
func (r *Reply) Empty() bool {
	return r == nil || (strings.TrimSpace(r.Text) == "" && r.Embed == nil && r.File == nil)
}

// TextReply is a shorthand for a text-only reply.
func TextReply(text string) *Reply {
	return &Reply{Text: text}
}

// EmbedReply is a shorthand for an embed-only reply.
func EmbedReply(e *Embed) *Reply {
	return &Reply{Embed: e}
}

// Sender posts replies to channels.
type Sender interface {
	Send(ctx context.Context, channelID string, reply *Reply) error
}

// Directory resolves channel mentions such as "#news" to channel ids.
type Directory interface {
	ResolveChannel(ctx context.Context, guildID, name string) (string, error)
}

// Platform is a connected chat backend.
type Platform interface {
	Sender
	Directory
	// Start connects and blocks until ctx is done, calling onReady once the
	// session is usable and onMessage for every inbound message. Sending
	// keeps working after Start returns, until Close.
	Start(ctx context.Context, onReady func(ctx context.Context), onMessage func(ctx context.Context, msg Message)) error
	// SelfID is the bot's own user id. Valid after onReady.
	SelfID() string
	// Close releases the connection.
	Close() error
}

// Mention formats a user mention.
func Mention(userID string) string {
	return "<@" + userID + ">"
}
