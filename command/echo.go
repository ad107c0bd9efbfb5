package command

import (
	"context"
	"log/slog"
	"strings"

	"github.com/zephyrtronium/echo/message"
)

// Text returns a command which replies with fixed text, ignoring its
// invocation other than to find the channel.
func Text(s string) Func {
	return func(ctx context.Context, robo *Robot, call *Invocation) {
		reply(ctx, robo, message.Sent{To: call.Message.ChannelID, Text: s})
	}
}

// About describes the bot to the invoker.
func About(ctx context.Context, robo *Robot, call *Invocation) {
	msg := message.Format(call.Message.ChannelID,
		"Sure thing, %s!\nI'm a simple bot meant to demonstrate echoing over a Discord gateway.\nMention me and I'll say what you said, without the mention.",
		call.Message.DisplayName(),
	)
	reply(ctx, robo, msg)
}

// Last repeats the most recent echo in the invoking channel.
func Last(ctx context.Context, robo *Robot, call *Invocation) {
	ch := call.Message.ChannelID
	if robo.History == nil {
		reply(ctx, robo, message.Format(ch, "I don't keep track of what I've said."))
		return
	}
	e, ok, err := robo.History.Last(ctx, ch)
	if err != nil {
		robo.Log.ErrorContext(ctx, "couldn't get last echo", slog.String("channel", ch), slog.Any("err", err))
		return
	}
	if !ok {
		reply(ctx, robo, message.Format(ch, "I haven't echoed anything here yet."))
		return
	}
	reply(ctx, robo, message.Format(ch, "Last time, %s said: %s", e.Name, e.Text))
}

// List lists the registered commands.
func List(ctx context.Context, robo *Robot, call *Invocation) {
	names := robo.Registry.Names()
	for i, name := range names {
		names[i] = robo.Prefix + name
	}
	reply(ctx, robo, message.Format(call.Message.ChannelID, "Commands: %s", strings.Join(names, ", ")))
}
