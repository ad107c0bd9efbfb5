// Package discord provides the bot's capabilities over a discordgo session.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/zephyrtronium/echo/bot"
	"github.com/zephyrtronium/echo/message"
	"github.com/zephyrtronium/echo/presence"
)

// Session is the subset of a discordgo session the client uses.
type Session interface {
	AddHandler(handler any) func()
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
	Open() error
	Close() error
}

// Client is a gateway client backed by a discordgo session.
// It implements [bot.Client].
type Client struct {
	session Session

	// mu guards ctx, the context passed to event handlers while running.
	mu  sync.Mutex
	ctx context.Context
}

var _ bot.Client = (*Client)(nil)

// Intents are the gateway intents the client requests.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

// New creates a client authenticating with a bot token. The connection is
// not opened until Run.
func New(token string) (*Client, error) {
	if token == "" {
		return nil, errors.New("no token")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("couldn't create Discord session: %w", err)
	}
	session.Identify.Intents = Intents
	// Handlers run one at a time in gateway order.
	session.SyncEvents = true
	return NewFromSession(session), nil
}

// NewFromSession creates a client from an existing session.
func NewFromSession(session Session) *Client {
	return &Client{session: session, ctx: context.Background()}
}

func (c *Client) context() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

// OnEvent subscribes h to events with the given name, or to all events if
// name is empty.
func (c *Client) OnEvent(name string, h bot.Handler) (remove func()) {
	return c.session.AddHandler(func(s *discordgo.Session, e *discordgo.Event) {
		if name != "" && e.Type != name {
			return
		}
		h(c.context(), Event(e))
	})
}

// Event converts a raw discordgo event to a bot event.
func Event(e *discordgo.Event) bot.Event {
	ev := bot.Event{Name: e.Type, Payload: e.Struct}
	switch p := e.Struct.(type) {
	case *discordgo.Ready:
		ev.Payload = message.ReadyFromDiscord(p)
	case *discordgo.MessageCreate:
		ev.Payload = message.FromDiscord(p)
	}
	return ev
}

// SendMessage sends text to a channel.
func (c *Client) SendMessage(ctx context.Context, channelID, text string) error {
	_, err := c.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("couldn't send message to %s: %w", channelID, err)
	}
	return nil
}

// SetStatus sets the bot's presence.
func (c *Client) SetStatus(ctx context.Context, u presence.Update) error {
	if err := c.session.UpdateStatusComplex(presence.ToDiscord(u)); err != nil {
		return fmt.Errorf("couldn't update status: %w", err)
	}
	return nil
}

// Run opens the gateway connection and blocks until ctx is done.
// Reconnection is handled by the session.
func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("couldn't open Discord connection: %w", err)
	}
	slog.InfoContext(ctx, "connected to Discord")
	<-ctx.Done()
	if err := c.session.Close(); err != nil {
		return fmt.Errorf("couldn't close Discord connection: %w", err)
	}
	return ctx.Err()
}
