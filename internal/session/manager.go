package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync/atomic"
	"time"
)

const volumeStep = 0.1

const (
	taskStatusRefresh = "status-refresh"
	taskIdleWatchdog  = "idle-watchdog"
)

// Config tunes the manager's background loops and throttling.
type Config struct {
	StatusRefresh   time.Duration
	WatchdogPoll    time.Duration
	ControlCooldown time.Duration
}

// Manager coordinates playback sessions across guilds. Each guild gets an
// isolated Session; the only cross-guild shared state is the per-user
// cooldown gate.
type Manager struct {
	registry  *Registry
	driver    Driver
	resolver  Resolver
	presenter Presenter
	gate      *CooldownGate

	refreshEvery  time.Duration
	watchdogEvery time.Duration

	expandSeq atomic.Uint64
}

// PlayRequest carries one play command from the request source.
type PlayRequest struct {
	GuildID        string
	UserID         string
	Username       string
	VoiceChannelID string
	TextChannelID  string
	Query          string
}

// PlayResult reports what a play request did.
type PlayResult struct {
	Snapshot      Snapshot
	Added         int // tracks enqueued right away
	PlaylistTotal int // total playlist entries, 0 for single tracks
}

func NewManager(d Driver, r Resolver, p Presenter, cfg Config) *Manager {
	if cfg.StatusRefresh <= 0 {
		cfg.StatusRefresh = 30 * time.Second
	}
	if cfg.WatchdogPoll <= 0 {
		cfg.WatchdogPoll = 15 * time.Second
	}
	return &Manager{
		registry:      NewRegistry(),
		driver:        d,
		resolver:      r,
		presenter:     p,
		gate:          NewCooldownGate(cfg.ControlCooldown),
		refreshEvery:  cfg.StatusRefresh,
		watchdogEvery: cfg.WatchdogPoll,
	}
}

// Registry exposes the session registry, mainly for tests and shutdown.
func (m *Manager) Registry() *Registry { return m.registry }

// Play resolves the request and enqueues one or more tracks, starting
// playback if the guild is idle. The first accepted request creates the
// session and binds the requester as its owner; requests from anyone else
// are rejected while that session lives.
func (m *Manager) Play(ctx context.Context, req PlayRequest) (PlayResult, error) {
	sess, created := m.registry.GetOrCreate(req.GuildID, req.UserID, req.Username)
	if !created && sess.Owner() != req.UserID {
		return PlayResult{}, ErrSessionBusy
	}
	if created {
		sess.setChannels(req.VoiceChannelID, req.TextChannelID)
		log.Printf("[INFO] [%s] Session created, owner %s", req.GuildID, req.UserID)
	}

	res, err := m.resolveAndEnqueue(ctx, sess, req.Query)
	if err != nil {
		if created {
			m.teardown(sess)
		}
		return PlayResult{}, err
	}

	if created {
		m.startSessionTasks(sess)
	}

	res.Snapshot = sess.Snapshot()
	return res, nil
}

func (m *Manager) resolveAndEnqueue(ctx context.Context, sess *Session, query string) (PlayResult, error) {
	if m.resolver.IsPlaylist(query) {
		entries, err := m.resolver.ResolvePlaylist(ctx, query)
		if err != nil {
			return PlayResult{}, &ResolutionError{Query: query, Err: err}
		}
		if len(entries) == 0 {
			return PlayResult{}, &ResolutionError{Query: query, Err: errors.New("playlist is empty")}
		}

		first, err := m.resolver.ResolveSingle(ctx, entries[0].Locator)
		if err != nil {
			return PlayResult{}, &ResolutionError{Query: entries[0].Locator, Err: err}
		}
		if err := m.enqueue(ctx, sess, first); err != nil {
			return PlayResult{}, err
		}

		if rest := entries[1:]; len(rest) > 0 {
			name := fmt.Sprintf("playlist-expand-%d", m.expandSeq.Add(1))
			err := sess.Tasks().Start(name, func(taskCtx context.Context) error {
				return m.expandPlaylist(taskCtx, sess, rest)
			})
			if err != nil {
				log.Printf("[WARN] [%s] Could not start playlist expansion: %v", sess.GuildID, err)
			}
		}
		return PlayResult{Added: 1, PlaylistTotal: len(entries)}, nil
	}

	track, err := m.resolver.ResolveSingle(ctx, query)
	if err != nil {
		return PlayResult{}, &ResolutionError{Query: query, Err: err}
	}
	if err := m.enqueue(ctx, sess, track); err != nil {
		return PlayResult{}, err
	}
	return PlayResult{Added: 1}, nil
}

// enqueue appends the track and, if nothing is playing, advances. Holding
// advanceMu across the check-and-trigger makes "start if idle" atomic:
// racing enqueues produce exactly one start.
func (m *Manager) enqueue(ctx context.Context, sess *Session, track Track) error {
	sess.advanceMu.Lock()
	defer sess.advanceMu.Unlock()

	if sess.isClosed() {
		return ErrNotInSession
	}
	sess.push(track)
	log.Printf("[INFO] [%s] Queued %q", sess.GuildID, track.Title)

	if !sess.isPlaying() {
		return m.advanceLocked(ctx, sess)
	}
	return nil
}

// advanceLocked pops the next track and starts output, or marks the guild
// idle when the queue is empty. Caller holds advanceMu.
func (m *Manager) advanceLocked(ctx context.Context, sess *Session) error {
	prev := sess.playbackHandle()

	track, ok := sess.popFront()
	if !ok {
		sess.setIdle()
		m.refreshStatus(sess)
		log.Printf("[INFO] [%s] Queue drained, session idle", sess.GuildID)
		return nil
	}

	volume := 1.0
	if prev != nil {
		volume = prev.Volume()
	}

	gen := sess.setCurrent(track)
	handle, err := m.driver.Start(ctx, sess.GuildID, sess.VoiceChannel(), track, volume, func() {
		m.onTrackDone(sess, gen)
	})
	if err != nil {
		sess.setIdle()
		log.Printf("[ERR] [%s] Failed to start %q: %v", sess.GuildID, track.Title, err)
		return &SinkError{Title: track.Title, Err: err}
	}
	sess.setHandle(handle)
	log.Printf("[INFO] [%s] Now playing %q", sess.GuildID, track.Title)
	return nil
}

// onTrackDone is the sink completion callback. It re-enters the advance
// algorithm under the same per-guild lock user actions use, so a completion
// can never interleave with a skip or clear. A stale generation means the
// track was stopped by skip or restart, which already handled the advance.
func (m *Manager) onTrackDone(sess *Session, gen uint64) {
	sess.advanceMu.Lock()
	defer sess.advanceMu.Unlock()

	if sess.isClosed() || sess.currentGeneration() != gen {
		return
	}
	if err := m.advanceLocked(context.Background(), sess); err != nil {
		log.Printf("[ERR] [%s] Advance after completion failed: %v", sess.GuildID, err)
	}
}

// Control dispatches an authorized control action against the guild's
// session and returns a short acknowledgement for the requester.
func (m *Manager) Control(guildID, userID string, action Action) (string, error) {
	sess, ok := m.registry.Get(guildID)
	if !ok {
		return "", ErrNotInSession
	}
	if sess.Owner() != userID {
		return "", ErrNotOwner
	}
	if !m.gate.Allow(userID) {
		return "", ErrRateLimited
	}

	switch action {
	case ActionResume:
		return m.resume(sess)
	case ActionPause:
		return m.pause(sess)
	case ActionSkip:
		return m.skip(sess)
	case ActionRestart:
		return m.restart(sess)
	case ActionClear:
		return m.clear(sess)
	case ActionShowQueue:
		return m.showQueue(sess)
	case ActionLeave:
		m.teardown(sess)
		return "Left the voice channel.", nil
	case ActionVolumeUp:
		return m.adjustVolume(sess, volumeStep)
	case ActionVolumeDown:
		return m.adjustVolume(sess, -volumeStep)
	default:
		return "", fmt.Errorf("unknown action %q", action)
	}
}

func (m *Manager) resume(sess *Session) (string, error) {
	sess.advanceMu.Lock()
	defer sess.advanceMu.Unlock()

	h := sess.playbackHandle()
	if h == nil || !h.IsPaused() {
		return "", ErrNotPaused
	}
	h.Resume()
	return "Playback resumed.", nil
}

func (m *Manager) pause(sess *Session) (string, error) {
	sess.advanceMu.Lock()
	defer sess.advanceMu.Unlock()

	h := sess.playbackHandle()
	if h == nil || !h.IsPlaying() {
		return "", ErrNothingPlaying
	}
	h.Pause()
	return "Playback paused.", nil
}

// skip stops the current track and advances. The completion callback from
// the stopped track carries a stale generation and is ignored. Skipping with
// an empty queue is allowed: the session goes idle and stays alive for
// further requests.
func (m *Manager) skip(sess *Session) (string, error) {
	sess.advanceMu.Lock()
	defer sess.advanceMu.Unlock()

	h := sess.playbackHandle()
	if h == nil {
		return "", ErrNothingPlaying
	}
	h.Stop()
	if err := m.advanceLocked(context.Background(), sess); err != nil {
		return "", err
	}
	return "Track skipped.", nil
}

// restart replays the current track from the top without touching the
// queue, carrying the active volume over to the fresh output.
func (m *Manager) restart(sess *Session) (string, error) {
	sess.advanceMu.Lock()
	defer sess.advanceMu.Unlock()

	track, ok := sess.currentTrack()
	if !ok {
		return "", ErrNothingPlaying
	}

	volume := 1.0
	if h := sess.playbackHandle(); h != nil {
		volume = h.Volume()
		h.Stop()
	}

	gen := sess.setCurrent(track)
	handle, err := m.driver.Start(context.Background(), sess.GuildID, sess.VoiceChannel(), track, volume, func() {
		m.onTrackDone(sess, gen)
	})
	if err != nil {
		sess.setIdle()
		return "", &SinkError{Title: track.Title, Err: err}
	}
	sess.setHandle(handle)
	return "Track restarted.", nil
}

func (m *Manager) clear(sess *Session) (string, error) {
	sess.advanceMu.Lock()
	n := sess.clearQueue()
	sess.advanceMu.Unlock()

	if n == 0 {
		return "The queue is already empty.", nil
	}
	return fmt.Sprintf("Cleared %d queued tracks.", n), nil
}

func (m *Manager) showQueue(sess *Session) (string, error) {
	snap := sess.Snapshot()
	if len(snap.Queue) == 0 {
		return "The queue is empty.", nil
	}
	var b strings.Builder
	for i, t := range snap.Queue {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t.Title)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (m *Manager) adjustVolume(sess *Session, delta float64) (string, error) {
	sess.advanceMu.Lock()
	defer sess.advanceMu.Unlock()

	h := sess.playbackHandle()
	if h == nil {
		return "", ErrNothingPlaying
	}
	v := clampVolume(h.Volume() + delta)
	h.SetVolume(v)
	return fmt.Sprintf("Volume set to %d%%.", int(math.Round(v*100))), nil
}

// clampVolume saturates at [0.0, 1.0] and snaps to one decimal so ten 0.1
// steps from zero land exactly on 1.0.
func clampVolume(v float64) float64 {
	v = math.Round(v*10) / 10
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Snapshot returns the observable state of a guild's session.
func (m *Manager) Snapshot(guildID string) (Snapshot, error) {
	sess, ok := m.registry.Get(guildID)
	if !ok {
		return Snapshot{}, ErrNotInSession
	}
	return sess.Snapshot(), nil
}

// Teardown ends the guild's session if one exists. Safe to call twice; both
// an explicit leave and a watchdog expiry may race to it.
func (m *Manager) Teardown(guildID string) {
	if sess, ok := m.registry.Get(guildID); ok {
		m.teardown(sess)
	}
}

func (m *Manager) teardown(sess *Session) {
	if !sess.markClosed() {
		return
	}
	log.Printf("[INFO] [%s] Tearing down session", sess.GuildID)

	sess.Tasks().StopAll()

	sess.advanceMu.Lock()
	handle := sess.reset()
	sess.advanceMu.Unlock()
	if handle != nil {
		handle.Stop()
	}

	m.driver.Disconnect(sess.GuildID)

	if h, ok := sess.takeStatus(); ok {
		if err := m.presenter.DeleteStatus(h); err != nil {
			log.Printf("[WARN] [%s] Failed to delete status message: %v", sess.GuildID, err)
		}
	}

	m.registry.Remove(sess.GuildID)
}

// Shutdown tears down every live session, used on process exit.
func (m *Manager) Shutdown() {
	for _, guildID := range m.registry.guildIDs() {
		m.Teardown(guildID)
	}
}
