// Package presence builds and submits the bot's status and activity.
package presence

import (
	"context"
	"fmt"
	"time"
)

// Kind is the kind of an activity.
type Kind int

const (
	Playing Kind = iota
	Streaming
	Listening
	Watching
)

func (k Kind) String() string {
	switch k {
	case Playing:
		return "Playing"
	case Streaming:
		return "Streaming"
	case Listening:
		return "Listening"
	case Watching:
		return "Watching"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Status is an online status.
type Status string

const (
	Online       Status = "online"
	Idle         Status = "idle"
	DoNotDisturb Status = "dnd"
	Invisible    Status = "invisible"
)

// Activity is the "doing something" part of a presence.
type Activity struct {
	// Name is the name of the activity, e.g. the thing being listened to.
	Name string
	// Kind is the kind of activity.
	Kind Kind
}

// Update is a presence update. Updates are built fresh for each submission
// and not retained.
type Update struct {
	// Activity is the displayed activity.
	Activity Activity
	// Since is the time since the bot went idle as milliseconds since the
	// Unix epoch, or 0 if it is not idle.
	Since int
	// Status is the online status.
	Status Status
	// AFK indicates whether the bot is away.
	AFK bool
	// Time is the time at which the activity began.
	Time time.Time
}

// ListeningTo creates an online presence listening to name.
func ListeningTo(name string, now time.Time) Update {
	return Update{
		Activity: Activity{Name: name, Kind: Listening},
		Since:    0,
		Status:   Online,
		AFK:      false,
		Time:     now,
	}
}

// Setter submits presence updates.
type Setter interface {
	SetStatus(ctx context.Context, u Update) error
}

// Updater sets the bot's presence to listening to someone.
type Updater struct {
	// Setter is the destination for updates.
	Setter Setter
	// Now gives the current time. If nil, [time.Now] is used.
	Now func() time.Time
}

// Update sets the presence to listening to the named user.
// Failures are returned to the caller and not retried.
func (u *Updater) Update(ctx context.Context, name string) error {
	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	p := ListeningTo(name, now())
	if err := u.Setter.SetStatus(ctx, p); err != nil {
		return fmt.Errorf("couldn't set status: %w", err)
	}
	return nil
}
