package subtitles

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ExpandStats reports what Expand did to a track.
type ExpandStats struct {
	InputCues   int
	OutputCues  int
	DroppedCues int
}

// Expand rewrites each cue into one cue per whitespace-separated word when
// enabled. Every word gets an equal share of the cue's duration and is prefixed
// with {\highlight}{\kN}, N being the share in centiseconds. Cues without words
// are dropped. When disabled the track is returned unchanged.
func Expand(track Track, enabled bool) (Track, ExpandStats) {
	stats := ExpandStats{InputCues: len(track)}
	if !enabled {
		stats.OutputCues = len(track)
		return track, stats
	}
	out := make(Track, 0, len(track))
	for _, cue := range track {
		words := strings.Fields(cue.Text)
		if len(words) == 0 {
			stats.DroppedCues++
			continue
		}
		total := cue.Duration()
		n := time.Duration(len(words))
		wordDuration := total / n
		centis := int(math.Round(wordDuration.Seconds() * 100))
		for i, word := range words {
			start := cue.Start + total*time.Duration(i)/n
			out = append(out, Cue{
				Start: start,
				End:   start + wordDuration,
				Text:  fmt.Sprintf(`{\highlight}{\k%d}%s`, centis, word),
			})
		}
	}
	stats.OutputCues = len(out)
	return out, stats
}
