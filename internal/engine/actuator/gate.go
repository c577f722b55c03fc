package actuator

import (
	"sync"
	"sync/atomic"
	"time"
)

// Gate spaces actions by a cooldown and counts the ones that went through.
// Each loop owns its own gate.
type Gate struct {
	act *Actuator
	now func() time.Time

	mu   sync.Mutex // serializes TryFire, held across the press
	last time.Time

	count    atomic.Uint64
	lastNano atomic.Int64
}

// NewGate creates a gate that fires through act.
func NewGate(act *Actuator) *Gate {
	return &Gate{act: act, now: time.Now}
}

// SetClock replaces the time source.
func (g *Gate) SetClock(now func() time.Time) {
	g.mu.Lock()
	g.now = now
	g.mu.Unlock()
}

// TryFire presses keys unless the previous successful action was less than
// cooldown ago. fired is false when skipped; a skip has no side effects.
// A failed press leaves the counter and the timestamp unchanged.
func (g *Gate) TryFire(keys []string, cooldown, hold time.Duration) (fired bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) < cooldown {
		return false, nil
	}

	if err := g.act.Press(keys, hold); err != nil {
		return false, err
	}

	g.last = now
	g.lastNano.Store(now.UnixNano())
	g.count.Add(1)
	return true, nil
}

// Count returns how many actions fired so far.
func (g *Gate) Count() uint64 {
	return g.count.Load()
}

// LastAction returns the time of the last fired action, zero if none.
func (g *Gate) LastAction() time.Time {
	n := g.lastNano.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
