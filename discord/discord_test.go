package discord_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/echo/bot"
	"github.com/zephyrtronium/echo/discord"
	"github.com/zephyrtronium/echo/message"
	"github.com/zephyrtronium/echo/presence"
)

type session struct {
	handlers []func(*discordgo.Session, *discordgo.Event)
	sent     [][2]string
	status   []discordgo.UpdateStatusData
	err      error
	open     bool
}

func (s *session) AddHandler(handler any) func() {
	h := handler.(func(*discordgo.Session, *discordgo.Event))
	s.handlers = append(s.handlers, h)
	k := len(s.handlers) - 1
	return func() { s.handlers[k] = nil }
}

func (s *session) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.sent = append(s.sent, [2]string{channelID, content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, s.err
}

func (s *session) UpdateStatusComplex(usd discordgo.UpdateStatusData) error {
	s.status = append(s.status, usd)
	return s.err
}

func (s *session) Open() error {
	s.open = true
	return s.err
}

func (s *session) Close() error {
	s.open = false
	return nil
}

func (s *session) emit(e *discordgo.Event) {
	for _, h := range s.handlers {
		if h != nil {
			h(nil, e)
		}
	}
}

func TestOnEvent(t *testing.T) {
	var s session
	c := discord.NewFromSession(&s)
	var named, all []bot.Event
	c.OnEvent(bot.Ready, func(ctx context.Context, ev bot.Event) { named = append(named, ev) })
	remove := c.OnEvent("", func(ctx context.Context, ev bot.Event) { all = append(all, ev) })
	s.emit(&discordgo.Event{Type: "READY", Struct: &discordgo.Ready{SessionID: "s", User: &discordgo.User{ID: "42", Username: "echo"}}})
	s.emit(&discordgo.Event{Type: "TYPING_START", Struct: &discordgo.TypingStart{ChannelID: "2"}})
	remove()
	s.emit(&discordgo.Event{Type: "READY", Struct: &discordgo.Ready{SessionID: "t"}})
	wantReady := bot.Event{Name: bot.Ready, Payload: &message.Ready{Self: message.User{ID: "42", Username: "echo"}, SessionID: "s"}}
	if len(named) != 2 {
		t.Fatalf("wrong number of named events: want 2, got %d", len(named))
	}
	if diff := cmp.Diff(wantReady, named[0]); diff != "" {
		t.Errorf("wrong ready event (-want +got):\n%s", diff)
	}
	if len(all) != 2 {
		t.Fatalf("wrong number of events: want 2, got %d", len(all))
	}
	if all[1].Name != "TYPING_START" {
		t.Errorf("wrong event name: want TYPING_START, got %q", all[1].Name)
	}
	if _, ok := all[1].Payload.(*discordgo.TypingStart); !ok {
		t.Errorf("unknown payload converted: %T", all[1].Payload)
	}
}

func TestEventMessage(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	ev := discord.Event(&discordgo.Event{
		Type: "MESSAGE_CREATE",
		Struct: &discordgo.MessageCreate{Message: &discordgo.Message{
			ID:        "1",
			ChannelID: "2",
			Content:   "<@42> hi",
			Timestamp: ts,
			Author:    &discordgo.User{ID: "7", Username: "alice"},
			Mentions:  []*discordgo.User{{ID: "42"}},
		}},
	})
	want := bot.Event{
		Name: bot.MessageCreate,
		Payload: &message.Received{
			ID:        "1",
			ChannelID: "2",
			Author:    message.User{ID: "7", Username: "alice"},
			Text:      "<@42> hi",
			Mentions:  []message.User{{ID: "42"}},
			Timestamp: ts.UnixMilli(),
		},
	}
	if diff := cmp.Diff(want, ev); diff != "" {
		t.Errorf("wrong event (-want +got):\n%s", diff)
	}
}

func TestSend(t *testing.T) {
	var s session
	c := discord.NewFromSession(&s)
	if err := c.SendMessage(context.Background(), "2", "hi"); err != nil {
		t.Errorf("couldn't send: %v", err)
	}
	if diff := cmp.Diff([][2]string{{"2", "hi"}}, s.sent); diff != "" {
		t.Errorf("wrong sends (-want +got):\n%s", diff)
	}
	s.err = errors.New("no")
	if err := c.SendMessage(context.Background(), "2", "hi"); !errors.Is(err, s.err) {
		t.Errorf("wrong error: want %v, got %v", s.err, err)
	}
}

func TestSetStatus(t *testing.T) {
	var s session
	c := discord.NewFromSession(&s)
	u := presence.ListeningTo("alice", time.Unix(1, 0))
	if err := c.SetStatus(context.Background(), u); err != nil {
		t.Errorf("couldn't set status: %v", err)
	}
	if len(s.status) != 1 {
		t.Fatalf("wrong number of status updates: want 1, got %d", len(s.status))
	}
	got := s.status[0]
	if got.Status != "online" || got.Activities[0].Name != "alice" || got.Activities[0].Type != discordgo.ActivityTypeListening {
		t.Errorf("wrong status update: %+v %+v", got, got.Activities[0])
	}
}

func TestRun(t *testing.T) {
	var s session
	c := discord.NewFromSession(&s)
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan context.Context, 1)
	c.OnEvent("", func(ctx context.Context, ev bot.Event) { got <- ctx })
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	// Wait for the client to take the context.
	for {
		s.emit(&discordgo.Event{Type: "RESUMED"})
		if hctx := <-got; hctx == ctx {
			break
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("wrong error from run: want %v, got %v", context.Canceled, err)
	}
}

func TestNewNoToken(t *testing.T) {
	if _, err := discord.New(""); err == nil {
		t.Error("no error creating client without token")
	}
}
