// Package handlers contains the chat command handlers, the trigger matching
// they share and their registration logic.
package handlers

import (
	"context"

	"github.com/Hazealign/black-angus-main/internal/chat"
)

// Handler is one command responder. The router calls Match, then Parse, then
// Present, each behind its own failure boundary.
type Handler interface {
	// Name identifies the handler in logs and in the bot.apps allow-list.
	Name() string
	// Disabled handlers are never matched.
	Disabled() bool
	// Match reports whether msg addresses this handler.
	Match(msg chat.Message) bool
	// Parse turns msg into a command. A nil command means "ignore".
	// Malformed input is reported through Command.Invalid, not through err.
	Parse(ctx context.Context, msg chat.Message) (*Command, error)
	// Present performs the command and returns the reply for the origin
	// channel, or nil when there is nothing more to say.
	Present(ctx context.Context, cmd *Command) (*chat.Reply, error)
}

// Command is the parsed form of a message. Payload is handler-specific and
// only read by the handler that produced it.
type Command struct {
	Message chat.Message
	// Help asks for the handler's usage reply.
	Help bool
	// Invalid marks malformed input; Diagnostic optionally says why.
	Invalid    bool
	Diagnostic error
	Payload    any
}

func helpCommand(msg chat.Message) *Command {
	return &Command{Message: msg, Help: true}
}

func invalidCommand(msg chat.Message, diag error) *Command {
	return &Command{Message: msg, Invalid: true, Diagnostic: diag}
}

func payloadCommand(msg chat.Message, payload any) *Command {
	return &Command{Message: msg, Payload: payload}
}
