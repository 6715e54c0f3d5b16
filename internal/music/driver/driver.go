package driver

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"

	"tunebox/internal/music/stream"
	"tunebox/internal/session"
)

// Driver streams resolved tracks into Discord voice connections. One voice
// connection per guild is kept and reused across tracks; Disconnect tears it
// down.
type Driver struct {
	dg         *discordgo.Session
	ffmpegPath string

	mu    sync.Mutex
	conns map[string]*discordgo.VoiceConnection
}

func New(dg *discordgo.Session, ffmpegPath string) *Driver {
	return &Driver{
		dg:         dg,
		ffmpegPath: ffmpegPath,
		conns:      make(map[string]*discordgo.VoiceConnection),
	}
}

func (d *Driver) Start(ctx context.Context, guildID, channelID string, track session.Track, volume float64, onDone func()) (session.Handle, error) {
	vc, err := d.joinVoice(guildID, channelID)
	if err != nil {
		return nil, err
	}

	pcm, cleanup, err := stream.OpenPCM(d.ffmpegPath, track.Locator)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream for %q: %w", track.Title, err)
	}

	h := &handle{volume: volume, playing: true, stop: make(chan struct{})}

	go func() {
		defer onDone()
		defer cleanup()

		if err := vc.Speaking(true); err != nil {
			log.Printf("[WARN] failed to set speaking on guild %s: %v", guildID, err)
		}
		err := stream.StreamToDiscord(pcm, h.stop, vc, h)
		if sErr := vc.Speaking(false); sErr != nil {
			log.Printf("[WARN] failed to clear speaking on guild %s: %v", guildID, sErr)
		}

		h.finish()
		if err != nil {
			log.Printf("[ERR] playback of %q ended with error: %v", track.Title, err)
		}
	}()

	return h, nil
}

func (d *Driver) Disconnect(guildID string) {
	d.mu.Lock()
	vc, ok := d.conns[guildID]
	delete(d.conns, guildID)
	d.mu.Unlock()

	if ok && vc != nil {
		if err := vc.Disconnect(); err != nil {
			log.Printf("[WARN] voice disconnect failed on guild %s: %v", guildID, err)
		}
	}
}

func (d *Driver) joinVoice(guildID, channelID string) (*discordgo.VoiceConnection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if vc, ok := d.conns[guildID]; ok && vc != nil && vc.ChannelID == channelID {
		return vc, nil
	}

	vc, err := d.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	d.conns[guildID] = vc
	return vc, nil
}

// handle is the per-track control surface handed back to the session layer.
type handle struct {
	mu      sync.Mutex
	paused  bool
	playing bool
	volume  float64

	stop     chan struct{}
	stopOnce sync.Once
}

func (h *handle) IsPlaying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

func (h *handle) IsPaused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused
}

func (h *handle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = true
}

func (h *handle) Resume() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = false
}

func (h *handle) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *handle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = v
}

func (h *handle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

func (h *handle) finish() {
	h.mu.Lock()
	h.playing = false
	h.mu.Unlock()
	h.Stop()
}
