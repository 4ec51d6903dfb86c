package logging

import (
	"math"
	"sync"
	"time"
)

// ProgressGate throttles render progress lines. A value passes when it
// reaches the next Step boundary, when it first hits 100, or, for unknown
// progress (negative percent), when Heartbeat has elapsed since the last
// line that passed.
type ProgressGate struct {
	Step      float64
	Heartbeat time.Duration

	mu       sync.Mutex
	now      func() time.Time
	next     float64
	done     bool
	lastPass time.Time
}

// NewProgressGate returns a gate with the given step (percent) and heartbeat.
// A non-positive step defaults to 5.
func NewProgressGate(step float64, heartbeat time.Duration) *ProgressGate {
	if step <= 0 {
		step = 5
	}
	return &ProgressGate{Step: step, Heartbeat: heartbeat, now: time.Now}
}

// Allow reports whether a line for percent should be logged. A nil gate
// allows everything.
func (g *ProgressGate) Allow(percent float64) bool {
	if g == nil {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()

	if percent < 0 || math.IsNaN(percent) {
		if g.Heartbeat <= 0 || (!g.lastPass.IsZero() && now.Sub(g.lastPass) < g.Heartbeat) {
			return false
		}
		g.lastPass = now
		return true
	}
	if g.done {
		return false
	}
	if percent >= 100 {
		g.done = true
		g.lastPass = now
		return true
	}
	if percent < g.next {
		return false
	}
	g.next = (math.Floor(percent/g.Step) + 1) * g.Step
	g.lastPass = now
	return true
}
