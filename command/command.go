package command

import (
	"context"
	"log/slog"

	"github.com/zephyrtronium/echo/bot"
	"github.com/zephyrtronium/echo/message"
	"github.com/zephyrtronium/echo/spoken"
)

// Robot is the bot state as is visible to commands.
type Robot struct {
	// Log is the logger for the invocation.
	Log *slog.Logger
	// Sender sends messages.
	Sender bot.Sender
	// Prefix is the command prefix.
	Prefix string
	// Registry is the registry the command was resolved from.
	Registry *Registry
	// History is the echo history. It may be nil.
	History History
}

// History is the view of echo history available to commands.
type History interface {
	Last(ctx context.Context, channel string) (spoken.Echo, bool, error)
}

// Invocation is a command invocation. An Invocation and its fields must not
// be modified or retained by any command.
type Invocation struct {
	// Name is the name of the invoked command.
	Name string
	// Args is the text following the command name, with surrounding
	// whitespace removed.
	Args string
	// Message is the message which triggered the invocation. It is always
	// non-nil.
	Message *message.Received
}

// Func executes a command.
type Func func(ctx context.Context, robo *Robot, call *Invocation)

// Command is a registered command.
type Command struct {
	// Name is the exact, case-sensitive name of the command.
	Name string
	// Help is a short description of the command.
	Help string
	// Fn is the function to invoke.
	Fn Func
}

// reply sends a message, logging failures.
func reply(ctx context.Context, robo *Robot, msg message.Sent) {
	if err := robo.Sender.SendMessage(ctx, msg.To, msg.Text); err != nil {
		robo.Log.ErrorContext(ctx, "couldn't send reply", slog.String("channel", msg.To), slog.Any("err", err))
	}
}
