// Package router dispatches gateway events to the bot's behaviors: learning
// its own identity, echoing messages that mention it, and running commands.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/zephyrtronium/echo/bot"
	"github.com/zephyrtronium/echo/command"
	"github.com/zephyrtronium/echo/identity"
	"github.com/zephyrtronium/echo/mention"
	"github.com/zephyrtronium/echo/message"
	"github.com/zephyrtronium/echo/metrics"
	"github.com/zephyrtronium/echo/presence"
	"github.com/zephyrtronium/echo/spoken"
	"github.com/zephyrtronium/echo/syncmap"
)

// History records echoes and recalls them for commands.
type History interface {
	command.History
	Record(ctx context.Context, e spoken.Echo) error
}

// Config is the configuration for a router.
type Config struct {
	// Prefix is the command prefix. If empty, commands are disabled.
	Prefix string
	// Commands is the command registry.
	Commands *command.Registry
	// Sender sends echoes and command replies.
	Sender bot.Sender
	// Status sets presence after echoes.
	Status bot.StatusSetter
	// Log is the logger. If nil, [slog.Default] is used.
	Log *slog.Logger
	// Metrics are the router's metrics. If nil, nothing is observed.
	Metrics *metrics.Metrics
	// History is the echo history. It may be nil.
	History History
	// Every and Burst limit echoes per channel. If Burst is 0, echoes are
	// not limited.
	Every time.Duration
	Burst int
	// Now gives the current time. If nil, [time.Now] is used.
	Now func() time.Time
}

// Router handles gateway events.
//
// Handle is safe to call concurrently, but the gateway layer is expected to
// deliver events one at a time, in order.
type Router struct {
	prefix   string
	cmds     *command.Registry
	send     bot.Sender
	presence presence.Updater
	self     identity.Cell
	log      *slog.Logger
	metrics  *metrics.Metrics
	history  History
	limits   *syncmap.Map[string, *rate.Limiter]
	every    rate.Limit
	burst    int
	now      func() time.Time
}

// New creates a router.
func New(cfg Config) *Router {
	r := Router{
		prefix:   cfg.Prefix,
		cmds:     cfg.Commands,
		send:     cfg.Sender,
		presence: presence.Updater{Setter: cfg.Status, Now: cfg.Now},
		log:      cfg.Log,
		metrics:  cfg.Metrics,
		history:  cfg.History,
		limits:   syncmap.New[string, *rate.Limiter](),
		every:    rate.Every(cfg.Every),
		burst:    cfg.Burst,
		now:      cfg.Now,
	}
	if r.cmds == nil {
		r.cmds = command.NewRegistry(slog.Default())
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.metrics == nil {
		r.metrics = metrics.Nop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return &r
}

// Self returns the bot's identity, if it is known yet.
func (r *Router) Self() (message.User, bool) {
	return r.self.Load()
}

// Subscribe subscribes the router to the events it handles. Other events
// are observed for diagnostics. The returned function removes all
// subscriptions.
func (r *Router) Subscribe(src bot.EventSource) (remove func()) {
	rm := []func(){
		src.OnEvent(bot.Ready, r.Handle),
		src.OnEvent(bot.MessageCreate, r.Handle),
		src.OnEvent("", r.other),
	}
	return func() {
		for _, f := range rm {
			f()
		}
	}
}

func (r *Router) other(ctx context.Context, ev bot.Event) {
	switch ev.Name {
	case bot.Ready, bot.MessageCreate:
		// Subscribed by name.
		return
	}
	r.Handle(ctx, ev)
}

// Handle handles a single event. Events with unknown names or unexpected
// payloads are ignored.
func (r *Router) Handle(ctx context.Context, ev bot.Event) {
	log := r.log.With(slog.String("trace", ulid.Make().String()), slog.String("event", ev.Name))
	r.metrics.EventsCount.Observe(1, ev.Name)
	start := time.Now()
	switch ev.Name {
	case bot.Ready:
		p, ok := ev.Payload.(*message.Ready)
		if !ok || p == nil {
			log.WarnContext(ctx, "malformed event", slog.String("payload", typeName(ev.Payload)))
			return
		}
		r.ready(ctx, log, p)
	case bot.MessageCreate:
		p, ok := ev.Payload.(*message.Received)
		if !ok || p == nil {
			log.WarnContext(ctx, "malformed event", slog.String("payload", typeName(ev.Payload)))
			return
		}
		r.message(ctx, log, p)
	default:
		log.DebugContext(ctx, "unhandled event")
		return
	}
	r.metrics.HandleLatency.Observe(time.Since(start).Seconds(), ev.Name)
}

func (r *Router) ready(ctx context.Context, log *slog.Logger, p *message.Ready) {
	if p.Self.ID == "" {
		log.WarnContext(ctx, "ready without identity", slog.String("session", p.SessionID))
		return
	}
	r.self.Store(p.Self)
	log.InfoContext(ctx, "ready",
		slog.String("id", p.Self.ID),
		slog.String("username", p.Self.Username),
		slog.String("session", p.SessionID),
	)
}

func (r *Router) message(ctx context.Context, log *slog.Logger, m *message.Received) {
	log = log.With(slog.String("channel", m.ChannelID), slog.String("id", m.ID))
	self := r.self.ID()
	if self != "" && m.Author.ID == self {
		// Don't respond to ourselves, least of all to our own echoes.
		return
	}
	if mention.Mentioned(m.Mentions, self) {
		r.echo(ctx, log, self, m)
	}
	r.dispatch(ctx, log, m)
}

// echo sends a message back to its channel without mentions of self and
// then sets presence to listening to the author.
func (r *Router) echo(ctx context.Context, log *slog.Logger, self string, m *message.Received) {
	r.metrics.MentionCount.Observe(1)
	name := m.DisplayName()
	text := mention.Clean(m.Text, self)
	switch {
	case strings.TrimSpace(text) == "":
		// Nothing to say, but we still heard them.
		log.DebugContext(ctx, "empty echo")
	case !r.allow(ctx, log, m.ChannelID):
		// Rate limited sends only. We still heard them.
	default:
		if err := r.send.SendMessage(ctx, m.ChannelID, text); err != nil {
			r.metrics.FailureCount.Observe(1, "send")
			log.ErrorContext(ctx, "couldn't send echo", slog.Any("err", err))
			break
		}
		r.metrics.EchoCount.Observe(1)
		log.InfoContext(ctx, "echo", slog.String("name", name), slog.String("text", text))
		at := m.Time()
		if m.Timestamp == 0 {
			at = r.now()
		}
		r.record(ctx, log, spoken.Echo{Channel: m.ChannelID, Text: text, Name: name, Time: at})
	}
	if err := r.presence.Update(ctx, name); err != nil {
		r.metrics.FailureCount.Observe(1, "status")
		log.ErrorContext(ctx, "couldn't update presence", slog.Any("err", err))
		return
	}
	r.metrics.StatusCount.Observe(1)
}

// allow checks the echo rate limit for a channel.
func (r *Router) allow(ctx context.Context, log *slog.Logger, channel string) bool {
	if r.burst <= 0 {
		return true
	}
	lim, ok := r.limits.Load(channel)
	if !ok {
		// Racing handlers may each create a limiter for a new channel.
		// The last one wins.
		lim = rate.NewLimiter(r.every, r.burst)
		r.limits.Swap(channel, lim)
	}
	t := r.now()
	res := lim.ReserveN(t, 1)
	if d := res.DelayFrom(t); d > 0 {
		log.InfoContext(ctx, "rate limited",
			slog.String("action", "echo"),
			slog.String("delay", d.String()),
		)
		res.CancelAt(t)
		return false
	}
	return true
}

func (r *Router) record(ctx context.Context, log *slog.Logger, e spoken.Echo) {
	if r.history == nil {
		return
	}
	if err := r.history.Record(ctx, e); err != nil {
		r.metrics.FailureCount.Observe(1, "record")
		log.ErrorContext(ctx, "couldn't record echo", slog.Any("err", err))
	}
}

// dispatch runs the command the message invokes, if any.
func (r *Router) dispatch(ctx context.Context, log *slog.Logger, m *message.Received) {
	name, args, ok := command.Parse(r.prefix, m.Text)
	if !ok {
		return
	}
	cmd, ok := r.cmds.Resolve(name).Get()
	if !ok {
		log.DebugContext(ctx, "unregistered command", slog.String("name", name))
		return
	}
	r.metrics.CommandCount.Observe(1, cmd.Name)
	log.InfoContext(ctx, "command", slog.String("name", cmd.Name), slog.String("args", args))
	robo := command.Robot{
		Log:      log,
		Sender:   r.send,
		Prefix:   r.prefix,
		Registry: r.cmds,
	}
	if r.history != nil {
		robo.History = r.history
	}
	call := command.Invocation{
		Name:    cmd.Name,
		Args:    args,
		Message: m,
	}
	cmd.Fn(ctx, &robo, &call)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
