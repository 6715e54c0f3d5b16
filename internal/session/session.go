package session

import (
	"sync"
)

// Session holds the mutable playback state for one guild. All fields are
// owned by this guild's session exclusively; other guilds never touch them.
//
// Two locks guard the state. mu protects plain field access and is never
// held across I/O. advanceMu serializes the dequeue-and-start section and
// every inspect-then-mutate control action, so at most one advance is in
// flight per guild at any instant.
type Session struct {
	GuildID string

	advanceMu sync.Mutex

	mu         sync.Mutex
	queue      []Track
	current    *Track
	owner      string
	ownerName  string
	playing    bool
	closed     bool
	voiceChan  string
	textChan   string
	handle     Handle
	status     *StatusHandle
	generation uint64

	tasks *TaskSet
}

func newSession(guildID, owner, ownerName string) *Session {
	return &Session{
		GuildID:   guildID,
		owner:     owner,
		ownerName: ownerName,
		tasks:     NewTaskSet(),
	}
}

// Owner returns the user bound to this session at creation.
func (s *Session) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Tasks returns the session's background task set.
func (s *Session) Tasks() *TaskSet { return s.tasks }

func (s *Session) setChannels(voiceChan, textChan string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceChan = voiceChan
	s.textChan = textChan
}

// VoiceChannel returns the audio channel this session is bound to.
func (s *Session) VoiceChannel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceChan
}

func (s *Session) textChannel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textChan
}

func (s *Session) push(t Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, t)
}

func (s *Session) popFront() (Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return Track{}, false
	}
	t := s.queue[0]
	s.queue = s.queue[1:]
	return t, true
}

func (s *Session) clearQueue() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.queue)
	s.queue = nil
	return n
}

func (s *Session) isPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// markClosed flips the session into the torn-down state. Returns false if
// teardown already began, making teardown idempotent.
func (s *Session) markClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	return true
}

// setCurrent records the track about to start and bumps the generation
// counter. A completion callback carrying a stale generation is ignored,
// which is what keeps a raced skip from advancing twice.
func (s *Session) setCurrent(t Track) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &t
	s.playing = true
	s.generation++
	return s.generation
}

func (s *Session) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Session) currentTrack() (Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Track{}, false
	}
	return *s.current, true
}

func (s *Session) setIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.playing = false
	s.handle = nil
}

func (s *Session) setHandle(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle = h
}

func (s *Session) playbackHandle() Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

func (s *Session) setStatus(h StatusHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = &h
}

func (s *Session) statusHandle() (StatusHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == nil {
		return StatusHandle{}, false
	}
	return *s.status, true
}

// takeStatus clears and returns the status handle, so teardown deletes the
// message exactly once and the refresher loop sees it gone.
func (s *Session) takeStatus() (StatusHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == nil {
		return StatusHandle{}, false
	}
	h := *s.status
	s.status = nil
	return h, true
}

// reset wipes queue, current track and owner. Called during teardown with
// advanceMu held.
func (s *Session) reset() Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.handle
	s.queue = nil
	s.current = nil
	s.playing = false
	s.handle = nil
	s.owner = ""
	s.ownerName = ""
	return h
}

// Snapshot returns a copy of the observable session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		GuildID:   s.GuildID,
		Owner:     s.owner,
		OwnerName: s.ownerName,
		Playing:   s.playing,
	}
	if s.current != nil {
		cur := *s.current
		snap.Current = &cur
	}
	if len(s.queue) > 0 {
		snap.Queue = make([]Track, len(s.queue))
		copy(snap.Queue, s.queue)
	}
	if s.handle != nil {
		snap.Paused = s.handle.IsPaused()
	}
	return snap
}

func (s *Session) statusView() Status {
	snap := s.Snapshot()
	st := Status{
		QueueLen:  len(snap.Queue),
		OwnerName: snap.OwnerName,
		Paused:    snap.Paused,
	}
	if snap.Current != nil {
		st.NowPlaying = snap.Current.Title
	}
	return st
}
