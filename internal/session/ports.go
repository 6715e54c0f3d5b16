package session

import "context"

// Resolver turns user input into playable tracks. Implementations live in
// internal/music; errors are surfaced to the requester verbatim, never
// retried here.
type Resolver interface {
	// ResolveSingle resolves a URL or free-text query to one playable track.
	ResolveSingle(ctx context.Context, query string) (Track, error)

	// ResolvePlaylist enumerates a playlist URL into locator hints. Each
	// entry still needs ResolveSingle before playback.
	ResolvePlaylist(ctx context.Context, url string) ([]PlaylistEntry, error)

	// IsPlaylist reports whether the input should be treated as a playlist.
	IsPlaylist(input string) bool
}

// Handle controls one running playback on the audio sink.
type Handle interface {
	IsPlaying() bool
	IsPaused() bool
	Pause()
	Resume()
	Stop()
	SetVolume(v float64)
	Volume() float64
}

// Driver starts output on the audio sink. onDone fires exactly once when
// output ends, naturally or via Stop.
type Driver interface {
	Start(ctx context.Context, guildID, channelID string, track Track, volume float64, onDone func()) (Handle, error)
	Disconnect(guildID string)
}

// StatusHandle identifies the externally presented status surface.
type StatusHandle struct {
	ChannelID string
	MessageID string
}

// Participant is a member of the session's audio channel.
type Participant struct {
	UserID string
	Bot    bool
}

// Presenter is the chat-side surface: the status message and channel
// membership queries.
type Presenter interface {
	SendStatus(channelID string, st Status) (StatusHandle, error)
	EditStatus(h StatusHandle, st Status) error
	DeleteStatus(h StatusHandle) error
	ChannelMembers(guildID, channelID string) ([]Participant, error)
}
