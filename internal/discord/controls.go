package discord

import (
	"github.com/bwmarrin/discordgo"

	"tunebox/internal/session"
)

// Control button customIDs. The mapping to session actions is declarative so
// adding a button never touches the dispatch path.
const (
	controlResume     = "tunebox_resume"
	controlPause      = "tunebox_pause"
	controlSkip       = "tunebox_skip"
	controlRestart    = "tunebox_restart"
	controlClear      = "tunebox_clear"
	controlQueue      = "tunebox_queue"
	controlLeave      = "tunebox_leave"
	controlVolumeUp   = "tunebox_vol_up"
	controlVolumeDown = "tunebox_vol_down"
)

var controlActions = map[string]session.Action{
	controlResume:     session.ActionResume,
	controlPause:      session.ActionPause,
	controlSkip:       session.ActionSkip,
	controlRestart:    session.ActionRestart,
	controlClear:      session.ActionClear,
	controlQueue:      session.ActionShowQueue,
	controlLeave:      session.ActionLeave,
	controlVolumeUp:   session.ActionVolumeUp,
	controlVolumeDown: session.ActionVolumeDown,
}

func controlRows() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Resume", Style: discordgo.SuccessButton, CustomID: controlResume},
				discordgo.Button{Label: "Pause", Style: discordgo.SecondaryButton, CustomID: controlPause},
				discordgo.Button{Label: "Skip", Style: discordgo.PrimaryButton, CustomID: controlSkip},
				discordgo.Button{Label: "Restart", Style: discordgo.SecondaryButton, CustomID: controlRestart},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Vol -", Style: discordgo.SecondaryButton, CustomID: controlVolumeDown},
				discordgo.Button{Label: "Vol +", Style: discordgo.SecondaryButton, CustomID: controlVolumeUp},
				discordgo.Button{Label: "Queue", Style: discordgo.SecondaryButton, CustomID: controlQueue},
				discordgo.Button{Label: "Clear", Style: discordgo.DangerButton, CustomID: controlClear},
				discordgo.Button{Label: "Leave", Style: discordgo.DangerButton, CustomID: controlLeave},
			},
		},
	}
}
