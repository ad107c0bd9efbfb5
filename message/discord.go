package message

import (
	"github.com/bwmarrin/discordgo"
)

// FromDiscord adapts a discordgo MESSAGE_CREATE payload.
func FromDiscord(m *discordgo.MessageCreate) *Received {
	r := Received{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Text:      m.Content,
		Timestamp: m.Timestamp.UnixMilli(),
	}
	if m.Author != nil {
		r.Author = UserFromDiscord(m.Author)
	}
	// Member is absent in direct messages, and Nick is empty when the
	// gateway sends a null nickname.
	if m.Member != nil {
		r.Nick = m.Member.Nick
	}
	if len(m.Mentions) > 0 {
		r.Mentions = make([]User, 0, len(m.Mentions))
		for _, u := range m.Mentions {
			if u == nil {
				continue
			}
			r.Mentions = append(r.Mentions, UserFromDiscord(u))
		}
	}
	return &r
}

// ReadyFromDiscord adapts a discordgo READY payload.
func ReadyFromDiscord(r *discordgo.Ready) *Ready {
	v := Ready{SessionID: r.SessionID}
	if r.User != nil {
		v.Self = UserFromDiscord(r.User)
	}
	return &v
}

// UserFromDiscord adapts a discordgo user.
func UserFromDiscord(u *discordgo.User) User {
	return User{ID: u.ID, Username: u.Username}
}
