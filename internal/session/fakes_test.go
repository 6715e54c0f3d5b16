package session

import (
	"context"
	"sync"
	"time"
)

// fakeHandle is a controllable stand-in for a running playback. Completion is
// fired manually so tests decide exactly when a track "ends".
type fakeHandle struct {
	mu      sync.Mutex
	paused  bool
	playing bool
	volume  float64
	stopped bool

	onDone   func()
	doneOnce sync.Once
}

func (h *fakeHandle) IsPlaying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

func (h *fakeHandle) IsPaused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused
}

func (h *fakeHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = true
}

func (h *fakeHandle) Resume() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = false
}

func (h *fakeHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	h.playing = false
}

func (h *fakeHandle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = v
}

func (h *fakeHandle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

func (h *fakeHandle) wasStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// complete simulates the sink finishing output. Fires the completion callback
// at most once, like the real driver goroutine does.
func (h *fakeHandle) complete() {
	h.doneOnce.Do(h.onDone)
}

type startRecord struct {
	track  Track
	volume float64
	handle *fakeHandle
}

type fakeDriver struct {
	mu          sync.Mutex
	starts      []startRecord
	disconnects []string
	startErr    error
}

func (d *fakeDriver) Start(_ context.Context, _, _ string, track Track, volume float64, onDone func()) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.startErr != nil {
		return nil, d.startErr
	}
	h := &fakeHandle{playing: true, volume: volume, onDone: onDone}
	d.starts = append(d.starts, startRecord{track: track, volume: volume, handle: h})
	return h, nil
}

func (d *fakeDriver) Disconnect(guildID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disconnects = append(d.disconnects, guildID)
}

func (d *fakeDriver) startCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.starts)
}

func (d *fakeDriver) start(i int) startRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.starts[i]
}

func (d *fakeDriver) lastStart() startRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.starts[len(d.starts)-1]
}

func (d *fakeDriver) disconnectCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.disconnects)
}

type fakeResolver struct {
	mu        sync.Mutex
	playlists map[string][]PlaylistEntry
	failures  map[string]error
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		playlists: make(map[string][]PlaylistEntry),
		failures:  make(map[string]error),
	}
}

func (r *fakeResolver) ResolveSingle(_ context.Context, query string) (Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failures[query]; ok {
		return Track{}, err
	}
	return Track{Locator: "stream://" + query, Title: "title of " + query}, nil
}

func (r *fakeResolver) ResolvePlaylist(_ context.Context, url string) ([]PlaylistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failures[url]; ok {
		return nil, err
	}
	return r.playlists[url], nil
}

func (r *fakeResolver) IsPlaylist(input string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.playlists[input]
	return ok
}

type fakePresenter struct {
	mu       sync.Mutex
	sends    int
	edits    int
	deletes  int
	lastEdit Status
	editErr  error
	members  []Participant
	memErr   error
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{
		members: []Participant{{UserID: "user-1"}},
	}
}

func (p *fakePresenter) SendStatus(channelID string, _ Status) (StatusHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sends++
	return StatusHandle{ChannelID: channelID, MessageID: "msg-1"}, nil
}

func (p *fakePresenter) EditStatus(_ StatusHandle, st Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.editErr != nil {
		return p.editErr
	}
	p.edits++
	p.lastEdit = st
	return nil
}

func (p *fakePresenter) DeleteStatus(_ StatusHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletes++
	return nil
}

func (p *fakePresenter) ChannelMembers(_, _ string) ([]Participant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.memErr != nil {
		return nil, p.memErr
	}
	out := make([]Participant, len(p.members))
	copy(out, p.members)
	return out, nil
}

func (p *fakePresenter) setMembers(members []Participant) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.members = members
}

func (p *fakePresenter) setEditErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.editErr = err
}

func (p *fakePresenter) deleteCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deletes
}

func (p *fakePresenter) sendCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sends
}

type testEnv struct {
	manager   *Manager
	driver    *fakeDriver
	resolver  *fakeResolver
	presenter *fakePresenter
}

// newTestEnv builds a manager whose loops effectively never tick and whose
// cooldown never bites, so individual tests opt in to the behavior they
// exercise via cfg overrides.
func newTestEnv(overrides ...func(*Config)) *testEnv {
	cfg := Config{
		StatusRefresh:   time.Hour,
		WatchdogPoll:    time.Hour,
		ControlCooldown: time.Nanosecond,
	}
	for _, o := range overrides {
		o(&cfg)
	}

	d := &fakeDriver{}
	r := newFakeResolver()
	p := newFakePresenter()
	return &testEnv{
		manager:   NewManager(d, r, p, cfg),
		driver:    d,
		resolver:  r,
		presenter: p,
	}
}

func playRequest(guild, user, query string) PlayRequest {
	return PlayRequest{
		GuildID:        guild,
		UserID:         user,
		Username:       user + "-name",
		VoiceChannelID: "voice-1",
		TextChannelID:  "text-1",
		Query:          query,
	}
}
