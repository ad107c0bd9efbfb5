package main

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

//go:embed example.toml
var exampleToml string

func eqcase[T comparable](t *testing.T, name string, val T, eq T) {
	t.Helper()
	if val != eq {
		t.Errorf("wrong %s: want %#v, got %#v", name, eq, val)
	}
}

func TestExampleConfig(t *testing.T) {
	t.Setenv("ECHO_HOME", "/var/echo")
	cfg, md, err := Load(context.Background(), strings.NewReader(exampleToml))
	if err != nil {
		t.Fatalf("failed to load example.toml: %v", err)
	}
	eqcase(t, "Token", cfg.Token, "/var/echo/token.dat")
	eqcase(t, "Prefix", cfg.Prefix, "~")
	eqcase(t, "Commands[help]", cfg.Commands["help"], "Mention me and I'll echo your message back!")
	eqcase(t, "Commands[ping]", cfg.Commands["ping"], "pong")
	eqcase(t, "Echo.Rate.Every", cfg.Echo.Rate.Every, 1.5)
	eqcase(t, "Echo.Rate.Num", cfg.Echo.Rate.Num, 5)
	eqcase(t, "Echo.History", cfg.Echo.History, "file:/var/echo/echo.db")
	eqcase(t, "HTTP.Listen", cfg.HTTP.Listen, ":4959")
	if u := md.Undecoded(); len(u) != 0 {
		t.Errorf("undecoded keys in example: %v", u)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg, _, err := Load(context.Background(), strings.NewReader(""))
	if err != nil {
		t.Fatalf("failed to load empty config: %v", err)
	}
	eqcase(t, "Token", cfg.Token, "token.dat")
	eqcase(t, "Prefix", cfg.Prefix, "~")
	eqcase(t, "Echo.History", cfg.Echo.History, "")
	eqcase(t, "HTTP.Listen", cfg.HTTP.Listen, "")
}

func TestBadConfig(t *testing.T) {
	_, _, err := Load(context.Background(), strings.NewReader("prefix = ["))
	if err == nil {
		t.Error("no error loading malformed config")
	}
}

func TestLoadToken(t *testing.T) {
	cases := []struct {
		name string
		file string
		want string
		err  bool
	}{
		{"single", "abc.def", "abc.def", false},
		{"newline", "abc.def\n", "abc.def", false},
		{"crlf", "abc.def\r\nmore\r\n", "abc.def", false},
		{"lines", "abc.def\nghi", "abc.def", false},
		{"empty", "", "", true},
		{"blank", "\nabc", "", true},
	}
	dir := t.TempDir()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := filepath.Join(dir, c.name)
			if err := os.WriteFile(p, []byte(c.file), 0o600); err != nil {
				t.Fatal(err)
			}
			got, err := loadToken(p)
			if (err != nil) != c.err {
				t.Errorf("wrong error: want error %t, got %v", c.err, err)
			}
			if got != c.want {
				t.Errorf("wrong token: want %q, got %q", c.want, got)
			}
		})
	}
}

func TestLoadTokenMissing(t *testing.T) {
	_, err := loadToken(filepath.Join(t.TempDir(), "token.dat"))
	if err == nil {
		t.Error("no error loading missing token file")
	}
}

func TestLoadHistory(t *testing.T) {
	ctx := context.Background()
	h, err := loadHistory(ctx, "")
	if err != nil || h != nil {
		t.Errorf("empty dsn gave history %v, error %v", h, err)
	}
	h, err = loadHistory(ctx, "file:"+filepath.Join(t.TempDir(), "echo.db"))
	if err != nil {
		t.Fatalf("couldn't open history: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("couldn't close history: %v", err)
	}
}
