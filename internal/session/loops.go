package session

import (
	"context"
	"log"
	"time"
)

// startSessionTasks sends the initial status message and spawns the two
// long-lived loops for a freshly created session.
func (m *Manager) startSessionTasks(sess *Session) {
	st := sess.statusView()
	h, err := m.presenter.SendStatus(sess.textChannel(), st)
	if err != nil {
		log.Printf("[WARN] [%s] Could not send status message: %v", sess.GuildID, err)
	} else {
		sess.setStatus(h)
		if err := sess.Tasks().Start(taskStatusRefresh, func(ctx context.Context) error {
			return m.refreshLoop(ctx, sess)
		}); err != nil {
			log.Printf("[WARN] [%s] %v", sess.GuildID, err)
		}
	}

	if err := sess.Tasks().Start(taskIdleWatchdog, func(ctx context.Context) error {
		return m.watchdogLoop(ctx, sess)
	}); err != nil {
		log.Printf("[WARN] [%s] %v", sess.GuildID, err)
	}
}

// refreshLoop re-renders the status message on a fixed interval. It
// terminates when the session's status handle is gone or an edit fails,
// whichever comes first.
func (m *Manager) refreshLoop(ctx context.Context, sess *Session) error {
	ticker := time.NewTicker(m.refreshEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h, ok := sess.statusHandle()
			if !ok {
				return nil
			}
			if err := m.presenter.EditStatus(h, sess.statusView()); err != nil {
				log.Printf("[WARN] [%s] Status edit failed, stopping refresher: %v", sess.GuildID, err)
				return err
			}
		}
	}
}

// watchdogLoop polls the audio channel membership and tears the session
// down once no humans remain. Membership errors are transient; the poll just
// tries again next tick.
func (m *Manager) watchdogLoop(ctx context.Context, sess *Session) error {
	ticker := time.NewTicker(m.watchdogEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			members, err := m.presenter.ChannelMembers(sess.GuildID, sess.VoiceChannel())
			if err != nil {
				log.Printf("[WARN] [%s] Membership check failed: %v", sess.GuildID, err)
				continue
			}
			if countHumans(members) == 0 {
				log.Printf("[INFO] [%s] No listeners left, ending session", sess.GuildID)
				m.teardown(sess)
				return nil
			}
		}
	}
}

func countHumans(members []Participant) int {
	n := 0
	for _, p := range members {
		if !p.Bot {
			n++
		}
	}
	return n
}

// expandPlaylist resolves and enqueues the rest of a playlist, one entry at
// a time, after the first track has already started. A bad entry is logged
// and skipped; it never aborts the remainder.
func (m *Manager) expandPlaylist(ctx context.Context, sess *Session, entries []PlaylistEntry) error {
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		track, err := m.resolver.ResolveSingle(ctx, entry.Locator)
		if err != nil {
			log.Printf("[WARN] [%s] Skipping playlist entry %q: %v", sess.GuildID, entry.Title, err)
			continue
		}
		if err := m.enqueue(ctx, sess, track); err != nil {
			if err == ErrNotInSession {
				return nil
			}
			log.Printf("[WARN] [%s] Could not queue %q: %v", sess.GuildID, track.Title, err)
		}
	}
	return nil
}

// refreshStatus pushes an immediate status edit outside the refresher's
// schedule, used when the queue drains.
func (m *Manager) refreshStatus(sess *Session) {
	h, ok := sess.statusHandle()
	if !ok {
		return
	}
	if err := m.presenter.EditStatus(h, sess.statusView()); err != nil {
		log.Printf("[WARN] [%s] Status edit failed: %v", sess.GuildID, err)
	}
}
