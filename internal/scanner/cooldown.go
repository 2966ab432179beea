package scanner

import (
	"sync"
	"time"
)

// DefaultCooldown absorbs duplicate decodes of the same badge from a
// continuous camera or keyboard-wedge feed.
const DefaultCooldown = 1000 * time.Millisecond

// Cooldown debounces successful decodes.
type Cooldown struct {
	Window time.Duration

	mu       sync.Mutex
	last     time.Time
	accepted bool
}

// NewCooldown returns a debouncer; a non-positive window falls back to DefaultCooldown.
func NewCooldown(window time.Duration) *Cooldown {
	if window <= 0 {
		window = DefaultCooldown
	}
	return &Cooldown{Window: window}
}

// Allow reports whether a decode at now should be processed. Ignored decodes
// do not extend the window.
func (c *Cooldown) Allow(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accepted && now.Sub(c.last) < c.Window {
		return false
	}
	c.last = now
	c.accepted = true
	return true
}

// Reset forgets the last accepted decode.
func (c *Cooldown) Reset() {
	c.mu.Lock()
	c.accepted = false
	c.last = time.Time{}
	c.mu.Unlock()
}
