package session

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultCooldown is the minimum gap between control actions per user.
const DefaultCooldown = 3 * time.Second

// CooldownGate throttles control actions per user, process-wide and
// independent of guild. First press always passes; a second press inside the
// cooldown window is rejected.
type CooldownGate struct {
	mu       sync.Mutex
	cooldown time.Duration
	users    map[string]*rate.Limiter
}

func NewCooldownGate(cooldown time.Duration) *CooldownGate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &CooldownGate{
		cooldown: cooldown,
		users:    make(map[string]*rate.Limiter),
	}
}

// Allow reports whether the user may act now, consuming the user's token if
// so.
func (g *CooldownGate) Allow(userID string) bool {
	g.mu.Lock()
	lim, ok := g.users[userID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(g.cooldown), 1)
		g.users[userID] = lim
	}
	g.mu.Unlock()

	return lim.Allow()
}
