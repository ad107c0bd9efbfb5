package command

import (
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/samber/mo"

	"github.com/zephyrtronium/echo/syncmap"
)

// Registry maps command names to commands.
//
// Commands are registered at startup and never removed. Registering a
// command under a name that is already taken replaces the earlier command;
// the last registration wins and a warning is logged.
type Registry struct {
	log  *slog.Logger
	cmds *syncmap.Map[string, *Command]
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:  log,
		cmds: syncmap.New[string, *Command](),
	}
}

// Register registers fn under name and returns the registered command.
// Panics if name is empty or fn is nil.
func (r *Registry) Register(name string, fn Func, help string) *Command {
	if name == "" {
		panic("command: register with empty name")
	}
	if fn == nil {
		panic("command: register " + name + " with nil func")
	}
	cmd := &Command{Name: name, Help: help, Fn: fn}
	if old, ok := r.cmds.Swap(name, cmd); ok {
		r.log.Warn("command replaced", slog.String("name", name), slog.String("old", old.Help), slog.String("new", help))
	} else {
		r.log.Debug("command registered", slog.String("name", name))
	}
	return cmd
}

// Resolve returns the command registered under exactly name.
func (r *Registry) Resolve(name string) mo.Option[*Command] {
	cmd, ok := r.cmds.Load(name)
	if !ok {
		return mo.None[*Command]()
	}
	return mo.Some(cmd)
}

// Names returns the names of all registered commands in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.cmds.Len())
	for name := range r.cmds.All() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Parse parses a command invocation from message text. An invocation is the
// prefix followed immediately by a command name, optionally followed by
// whitespace and arguments. An empty prefix never matches.
func Parse(prefix, text string) (name, args string, ok bool) {
	if prefix == "" {
		return "", "", false
	}
	text, ok = strings.CutPrefix(text, prefix)
	if !ok {
		return "", "", false
	}
	k := strings.IndexFunc(text, unicode.IsSpace)
	if k < 0 {
		k = len(text)
	}
	name = text[:k]
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(text[k:]), true
}
