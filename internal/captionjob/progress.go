package captionjob

import "sync"

// ProgressTracker converts renderer frame callbacks into a percentage. It is
// safe for concurrent use: the renderer callback writes, reporters read.
type ProgressTracker struct {
	mu    sync.Mutex
	total int64
	frame int64
}

// NewProgressTracker tracks progress against total frames. A non-positive
// total makes Percent report -1 (unknown).
func NewProgressTracker(total int64) *ProgressTracker {
	return &ProgressTracker{total: total}
}

// Update records frame and returns the resulting percentage. Frame counts
// lower than the current value are ignored.
func (p *ProgressTracker) Update(frame int64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if frame > p.frame {
		p.frame = frame
	}
	return p.percentLocked()
}

// Frame returns the highest frame seen.
func (p *ProgressTracker) Frame() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

// Percent returns completion in [0,100], or -1 when the total is unknown.
func (p *ProgressTracker) Percent() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percentLocked()
}

// Complete marks the render finished.
func (p *ProgressTracker) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 && p.frame < p.total {
		p.frame = p.total
	}
}

func (p *ProgressTracker) percentLocked() float64 {
	if p.total <= 0 {
		return -1
	}
	pct := float64(p.frame) * 100 / float64(p.total)
	if pct > 100 {
		pct = 100
	}
	return pct
}
