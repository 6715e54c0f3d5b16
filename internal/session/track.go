package session

// Track is a resolved, playable item: an opaque locator the audio sink
// understands plus a human-readable title. Immutable once created.
type Track struct {
	Locator string
	Title   string
}

// PlaylistEntry is a not-yet-resolved playlist item. The locator hint still
// has to go through Resolver.ResolveSingle before it can be played.
type PlaylistEntry struct {
	Locator string
	Title   string
}

// Status is the renderable state of a session, handed to the presenter.
type Status struct {
	NowPlaying string
	QueueLen   int
	OwnerName  string
	Paused     bool
}

// Snapshot is a point-in-time copy of a session's observable state.
type Snapshot struct {
	GuildID   string
	Owner     string
	OwnerName string
	Current   *Track
	Queue     []Track
	Playing   bool
	Paused    bool
}
