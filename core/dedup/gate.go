package dedup

import (
	"sync"
	"time"
)

// DefaultCooldown throttles background session re-validation
const DefaultCooldown = 5 * time.Second

// Gate is a cooldown throttle. ShouldProceed(false) lets one attempt through per
// window; ShouldProceed(true) always passes, for explicit user actions.
type Gate struct {
	mu          sync.Mutex
	window      time.Duration
	lastAttempt time.Time
	now         func() time.Time
}

// GateOption configures a Gate
type GateOption func(*Gate)

// WithClock replaces time.Now
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		g.now = now
	}
}

// NewGate creates a gate with the given window; a non-positive window uses DefaultCooldown
func NewGate(window time.Duration, opts ...GateOption) *Gate {
	if window <= 0 {
		window = DefaultCooldown
	}
	g := &Gate{window: window, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ShouldProceed reports whether an attempt may run now. Every true result stamps
// the attempt time, forced ones included.
func (g *Gate) ShouldProceed(force bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !force && !g.lastAttempt.IsZero() && now.Sub(g.lastAttempt) <= g.window {
		return false
	}
	g.lastAttempt = now
	return true
}

// Until returns the end of the current cooldown window, zero if no attempt was made
func (g *Gate) Until() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastAttempt.IsZero() {
		return time.Time{}
	}
	return g.lastAttempt.Add(g.window)
}

// Reset forgets the last attempt so the next check proceeds
func (g *Gate) Reset() {
	g.mu.Lock()
	g.lastAttempt = time.Time{}
	g.mu.Unlock()
}

// Window returns the cooldown length
func (g *Gate) Window() time.Duration {
	return g.window
}
