package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/echo/bot"
	"github.com/zephyrtronium/echo/command"
	"github.com/zephyrtronium/echo/metrics"
	"github.com/zephyrtronium/echo/router"
	"github.com/zephyrtronium/echo/spoken"
)

// defaultHelp is the reply to the help command unless configured otherwise.
const defaultHelp = "Mention me and I'll echo your message back!"

// Robot is the overall configuration for the bot.
type Robot struct {
	// cfg is the loaded configuration.
	cfg *Config
	// cmds is the command registry.
	cmds *command.Registry
	// history is the echo history. It is nil if history is disabled.
	history *spoken.History
	// metrics are the bot's metrics.
	metrics *metrics.Metrics
	// log is the bot's logger.
	log *slog.Logger
}

// New creates a Robot with the built-in commands and those from the
// configuration registered.
func New(cfg *Config, log *slog.Logger, m *metrics.Metrics) *Robot {
	robo := &Robot{
		cfg:     cfg,
		cmds:    command.NewRegistry(log),
		metrics: m,
		log:     log,
	}
	robo.cmds.Register("help", command.Text(defaultHelp), "Describe how to use the bot.")
	robo.cmds.Register("about", command.About, "Say hello.")
	robo.cmds.Register("last", command.Last, "Repeat the last echo in this channel.")
	robo.cmds.Register("commands", command.List, "List commands.")
	// Configured commands come last so that they replace built-ins.
	for name, text := range cfg.Commands {
		robo.cmds.Register(name, command.Text(text), "")
	}
	return robo
}

// SetHistory sets the echo history. h may be nil to disable history.
func (robo *Robot) SetHistory(h *spoken.History) {
	robo.history = h
}

// Router creates the event router.
func (robo *Robot) Router(client bot.Client) *router.Router {
	cfg := router.Config{
		Prefix:   robo.cfg.Prefix,
		Commands: robo.cmds,
		Sender:   client,
		Status:   client,
		Log:      robo.log,
		Metrics:  robo.metrics,
		Every:    fseconds(robo.cfg.Echo.Rate.Every),
		Burst:    robo.cfg.Echo.Rate.Num,
	}
	// Avoid a typed nil in the interface.
	if robo.history != nil {
		cfg.History = robo.history
	}
	return router.New(cfg)
}

// Run connects the client and serves the API until ctx is canceled or a
// fatal error occurs. If listen is empty, the API is not served.
func (robo *Robot) Run(ctx context.Context, client bot.Client, listen string) error {
	r := robo.Router(client)
	remove := r.Subscribe(client)
	defer remove()
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := client.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if listen != "" {
		group.Go(func() error {
			return robo.api(ctx, listen, http.NewServeMux(), robo.metrics.Collectors())
		})
	}
	err := group.Wait()
	if robo.history != nil {
		if cerr := robo.history.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("couldn't close echo history: %w", cerr))
		}
	}
	return err
}
