package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/zephyrtronium/echo/discord"
	"github.com/zephyrtronium/echo/metrics"
)

var app = cli.Command{
	Name:  "echo",
	Usage: "Discord bot that echoes mentions",

	Flags: []cli.Flag{
		&flagConfig,
		&flagEnv,
		&flagLog,
		&flagLogFormat,
	},
	Commands: []*cli.Command{
		{
			Name:   "check",
			Usage:  "Validate configuration and token without connecting",
			Action: cliCheck,
		},
	},
	Action: cliRun,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()
	err := app.Run(ctx, os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the environment, logger, and configuration.
func setup(ctx context.Context, cmd *cli.Command) (*Config, error) {
	if env := cmd.String("env"); env != "" {
		if err := godotenv.Load(env); err != nil {
			return nil, fmt.Errorf("couldn't load environment file: %w", err)
		}
	}
	slog.SetDefault(loggerFromFlags(cmd))
	r, err := os.Open(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("couldn't open config file: %w", err)
	}
	defer r.Close()
	cfg, _, err := Load(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("couldn't load config: %w", err)
	}
	return cfg, nil
}

func cliRun(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	token, err := loadToken(cfg.Token)
	if err != nil {
		return err
	}
	client, err := discord.New(token)
	if err != nil {
		return err
	}
	robo := New(cfg, slog.Default(), newMetrics())
	h, err := loadHistory(ctx, cfg.Echo.History)
	if err != nil {
		return err
	}
	robo.SetHistory(h)
	return robo.Run(ctx, client, cfg.HTTP.Listen)
}

func cliCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	if _, err := loadToken(cfg.Token); err != nil {
		return err
	}
	robo := New(cfg, slog.Default(), metrics.Nop())
	slog.InfoContext(ctx, "config ok",
		slog.String("prefix", cfg.Prefix),
		slog.Any("commands", robo.cmds.Names()),
		slog.Bool("history", cfg.Echo.History != ""),
		slog.String("listen", cfg.HTTP.Listen),
	)
	return nil
}

var (
	flagConfig = cli.StringFlag{
		Name:       "config",
		Required:   true,
		Usage:      "TOML config file",
		Persistent: true,
		Action: func(ctx context.Context, cmd *cli.Command, s string) error {
			i, err := os.Stat(s)
			if err != nil {
				return err
			}
			if !i.Mode().IsRegular() {
				return errors.New("config must be a regular file")
			}
			return nil
		},
	}

	flagEnv = cli.StringFlag{
		Name:       "env",
		Usage:      "Environment file to load before expanding the config",
		Persistent: true,
	}

	flagLog = cli.StringFlag{
		Name:       "log",
		Usage:      "Logging level, one of debug, info, warn, error",
		Value:      "info",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			var l slog.Level
			return l.UnmarshalText([]byte(s))
		},
	}

	flagLogFormat = cli.StringFlag{
		Name:       "log-format",
		Usage:      "Logging format, either text or json",
		Value:      "text",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			switch strings.ToLower(s) {
			case "text", "json":
				return nil
			default:
				return errors.New("unknown logging format")
			}
		},
	}
)

func loggerFromFlags(cmd *cli.Command) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(cmd.String("log"))); err != nil {
		panic(err)
	}
	var h slog.Handler
	switch strings.ToLower(cmd.String("log-format")) {
	case "text":
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	case "json":
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	}
	return slog.New(h)
}

// metrics configuration
func newMetrics() *metrics.Metrics {
	return &metrics.Metrics{
		EventsCount: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "echo",
					Subsystem: "gateway",
					Name:      "events",
					Help:      "Number of gateway events received.",
				},
				[]string{"event"},
			),
		),
		CommandCount: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "echo",
					Subsystem: "commands",
					Name:      "invocations",
					Help:      "Number of command invocations.",
				},
				[]string{"command"},
			),
		),
		MentionCount: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "echo",
					Subsystem: "echo",
					Name:      "mentions",
					Help:      "Number of messages mentioning the bot.",
				},
			),
		),
		EchoCount: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "echo",
					Subsystem: "echo",
					Name:      "sent",
					Help:      "Number of echoes sent.",
				},
			),
		),
		StatusCount: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "echo",
					Subsystem: "echo",
					Name:      "status_updates",
					Help:      "Number of presence updates.",
				},
			),
		),
		FailureCount: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "echo",
					Subsystem: "gateway",
					Name:      "failures",
					Help:      "Number of failed requests, by operation.",
				},
				[]string{"op"},
			),
		),
		HandleLatency: metrics.NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
					Namespace: "echo",
					Subsystem: "gateway",
					Name:      "handle_latency",
					Help:      "How long it takes to handle an event in seconds.",
				},
				[]string{"event"},
			),
		),
	}
}
