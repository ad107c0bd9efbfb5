package presence

import (
	"github.com/bwmarrin/discordgo"
)

// ToDiscord converts a presence update to a discordgo status update.
func ToDiscord(u Update) discordgo.UpdateStatusData {
	since := u.Since
	return discordgo.UpdateStatusData{
		IdleSince: &since,
		Activities: []*discordgo.Activity{
			{
				Name:      u.Activity.Name,
				Type:      activityType(u.Activity.Kind),
				CreatedAt: u.Time,
			},
		},
		AFK:    u.AFK,
		Status: string(u.Status),
	}
}

func activityType(k Kind) discordgo.ActivityType {
	switch k {
	case Streaming:
		return discordgo.ActivityTypeStreaming
	case Listening:
		return discordgo.ActivityTypeListening
	case Watching:
		return discordgo.ActivityTypeWatching
	default:
		return discordgo.ActivityTypeGame
	}
}
