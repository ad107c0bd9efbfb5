// Package bot defines the capabilities the bot's handlers are built on.
//
// Each capability is a small interface. A gateway client provides all of
// them, and handlers receive only the ones they use.
package bot

import (
	"context"

	"github.com/zephyrtronium/echo/presence"
)

// Gateway event names consumed by the bot.
const (
	Ready         = "READY"
	MessageCreate = "MESSAGE_CREATE"
)

// Event is a named payload delivered by the gateway. Events and their
// payloads must not be modified by handlers.
type Event struct {
	// Name is the gateway event name, e.g. [Ready] or [MessageCreate].
	Name string
	// Payload is the event data. For [Ready] it is a *message.Ready and
	// for [MessageCreate] it is a *message.Received. Other events carry
	// whatever the gateway layer decoded, possibly nil.
	Payload any
}

// Handler handles an event.
type Handler func(ctx context.Context, ev Event)

// EventSource delivers named payloads.
type EventSource interface {
	// OnEvent subscribes h to events with the given name. The name "" means
	// all events. The returned function removes the subscription.
	OnEvent(name string, h Handler) (remove func())
}

// Sender sends text messages.
type Sender interface {
	// SendMessage sends text to a channel.
	SendMessage(ctx context.Context, channelID, text string) error
}

// StatusSetter changes the bot's presence.
type StatusSetter interface {
	SetStatus(ctx context.Context, u presence.Update) error
}

// Runner runs a gateway connection.
type Runner interface {
	// Run connects and dispatches events until ctx is done.
	Run(ctx context.Context) error
}

// Client is the full set of capabilities of a gateway client.
type Client interface {
	EventSource
	Sender
	StatusSetter
	Runner
}
