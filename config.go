package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/zephyrtronium/echo/spoken"
)

// Load loads the bot configuration from TOML.
func Load(ctx context.Context, r io.Reader) (*Config, *toml.MetaData, error) {
	cfg := Config{
		Token:  "token.dat",
		Prefix: "~",
	}
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't decode config: %w", err)
	}
	if u := md.Undecoded(); len(u) != 0 {
		slog.WarnContext(ctx, "unknown config keys", slog.Any("keys", u))
	}
	expandcfg(&cfg, os.Getenv)
	return &cfg, &md, nil
}

// loadToken reads the bot token from the first line of a file.
func loadToken(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("couldn't open token file: %w", err)
	}
	defer f.Close()
	return readToken(f)
}

func readToken(r io.Reader) (string, error) {
	s := bufio.NewScanner(r)
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return "", fmt.Errorf("couldn't read token: %w", err)
		}
		return "", errors.New("token file is empty")
	}
	// Scanner drops the LF; a Windows line ending leaves a CR.
	tok := strings.TrimRight(s.Text(), "\r")
	if tok == "" {
		return "", errors.New("token file is empty")
	}
	return tok, nil
}

// loadHistory opens the echo history database. It returns nil without error
// if dsn is empty.
func loadHistory(ctx context.Context, dsn string) (*spoken.History, error) {
	if dsn == "" {
		slog.DebugContext(ctx, "echo history disabled")
		return nil, nil
	}
	slog.DebugContext(ctx, "echo history db", slog.String("path", dsn))
	db, err := sqlitex.NewPool(dsn, sqlitex.PoolOptions{})
	if err != nil {
		return nil, fmt.Errorf("couldn't open echo history db: %w", err)
	}
	h, err := spoken.Open(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("couldn't open echo history: %w", err)
	}
	return h, nil
}

func fseconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Config is the configuration for the bot.
type Config struct {
	// Token is the path to a file whose first line is the bot token.
	Token string `toml:"token"`
	// Prefix is the command prefix.
	Prefix string `toml:"prefix"`
	// Commands maps command names to static replies. These replace built-in
	// commands of the same name.
	Commands map[string]string `toml:"commands"`
	// Echo is the table of echo settings.
	Echo EchoCfg `toml:"echo"`
	// HTTP is the table of API server settings.
	HTTP HTTP `toml:"http"`
}

// EchoCfg is the configuration for echoing mentions.
type EchoCfg struct {
	// Rate limits echoes per channel.
	Rate Rate `toml:"rate"`
	// History is the SQLite connection string for echo history. If empty,
	// history is not kept.
	History string `toml:"history"`
}

// Rate is a rate limit configuration.
type Rate struct {
	Every float64 `toml:"every"`
	Num   int     `toml:"num"`
}

// HTTP is the configuration for the API server.
type HTTP struct {
	// Listen is the address on which to serve. If empty, the server is
	// disabled.
	Listen string `toml:"listen"`
}

func expandcfg(cfg *Config, expand func(s string) string) {
	fields := []*string{
		&cfg.Token,
		&cfg.Prefix,
		&cfg.Echo.History,
		&cfg.HTTP.Listen,
	}
	for _, f := range fields {
		*f = os.Expand(*f, expand)
	}
	for k, v := range cfg.Commands {
		cfg.Commands[k] = os.Expand(v, expand)
	}
}
