// Package message defines the messaging values that flow between the
// gateway layer and the bot's handlers.
package message

import (
	"fmt"
	"strings"
	"time"
)

// User is a user record as it appears in gateway payloads.
type User struct {
	// ID is the user's snowflake ID.
	ID string
	// Username is the user's account name.
	Username string
}

// Ready is the payload of a READY event.
type Ready struct {
	// Self is the bot's own user.
	Self User
	// SessionID is the gateway session the event began.
	SessionID string
}

// Received is a message received from a channel.
// A Received and its fields must not be modified by handlers.
type Received struct {
	// ID is the unique ID of the message.
	ID string
	// ChannelID is the channel in which the message was sent.
	ChannelID string
	// GuildID is the guild containing the channel. It is empty for direct
	// messages.
	GuildID string
	// Author is the user who sent the message.
	Author User
	// Nick is the author's guild nickname, or empty if there is none.
	Nick string
	// Text is the text of the message.
	Text string
	// Mentions is the list of users mentioned in the message, in order.
	Mentions []User
	// Timestamp is the timestamp of the message as milliseconds since the
	// Unix epoch.
	Timestamp int64
}

// Time returns the message timestamp as a time.Time.
func (m *Received) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// DisplayName returns the author's nickname if they have one and their
// username otherwise.
func (m *Received) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	return m.Author.Username
}

// Sent is a message to be sent to a channel.
type Sent struct {
	// To is the channel to which the message is sent.
	To string
	// Text is the message text.
	Text string
}

// formatString is a type to prevent misuse of format strings passed to [Format].
type formatString string

// Format constructs a message to send from a format string literal and
// formatting arguments.
func Format(to string, f formatString, args ...any) Sent {
	return Sent{
		To:   to,
		Text: strings.TrimSpace(fmt.Sprintf(string(f), args...)),
	}
}
