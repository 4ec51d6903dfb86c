package subtitles

import (
	"fmt"
	"time"
)

// Cue is one timed subtitle entry.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Duration returns End - Start.
func (c Cue) Duration() time.Duration {
	return c.End - c.Start
}

// Track is an ordered cue sequence. Order is the caller's; nothing re-sorts it.
type Track []Cue

// Validate reports the first cue whose end does not follow its start.
func (t Track) Validate() error {
	for i, cue := range t {
		if cue.End <= cue.Start {
			return fmt.Errorf("cue %d: end %s is not after start %s", i+1, formatSRTTimestamp(cue.End), formatSRTTimestamp(cue.Start))
		}
	}
	return nil
}

// Bounds returns the earliest start and latest end across the track.
func (t Track) Bounds() (time.Duration, time.Duration) {
	if len(t) == 0 {
		return 0, 0
	}
	first, last := t[0].Start, t[0].End
	for _, cue := range t[1:] {
		if cue.Start < first {
			first = cue.Start
		}
		if cue.End > last {
			last = cue.End
		}
	}
	return first, last
}
