// Package identity holds the bot's own user record for the lifetime of a
// gateway session.
package identity

import (
	"sync/atomic"

	"github.com/zephyrtronium/echo/message"
)

// Cell holds the bot's identity. The zero value is an empty cell and is
// ready to use. A Cell is safe for concurrent use; a Store happens before
// any Load that observes it.
type Cell struct {
	p atomic.Pointer[message.User]
}

// Store records the bot's identity. It is called for each READY event; since
// a READY begins a new gateway session, a later Store replaces the identity
// of the previous session. Stores of a user with an empty ID are ignored.
func (c *Cell) Store(u message.User) {
	if u.ID == "" {
		return
	}
	c.p.Store(&u)
}

// Load returns the bot's identity and whether it is known.
func (c *Cell) Load() (message.User, bool) {
	u := c.p.Load()
	if u == nil {
		return message.User{}, false
	}
	return *u, true
}

// ID returns the bot's user ID, or the empty string if it is not yet known.
func (c *Cell) ID() string {
	u, _ := c.Load()
	return u.ID
}
