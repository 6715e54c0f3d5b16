package session

// Action is a control request against an active session. The presentation
// layer maps its own button or command identifiers onto these values.
type Action string

const (
	ActionResume     Action = "resume"
	ActionPause      Action = "pause"
	ActionSkip       Action = "skip"
	ActionRestart    Action = "restart"
	ActionClear      Action = "clear"
	ActionShowQueue  Action = "queue"
	ActionLeave      Action = "leave"
	ActionVolumeUp   Action = "volume-up"
	ActionVolumeDown Action = "volume-down"
)
