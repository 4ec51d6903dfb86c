package subtitles

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"captionforge/internal/captions"
)

// Format identifies the syntax a payload was written in.
type Format string

// Input syntaxes recognized by DetectFormat.
const (
	InputSRT Format = "srt"
	InputVTT Format = "vtt"
	InputASS Format = "ass"
)

// ErrNoCues is returned when a payload contains no timed cues.
var ErrNoCues = errors.New("subtitle payload contains no cues")

// DetectFormat sniffs the payload syntax.
func DetectFormat(content string) Format {
	trimmed := strings.TrimSpace(normalizePayload(content))
	switch {
	case strings.HasPrefix(trimmed, "WEBVTT"):
		return InputVTT
	case strings.Contains(trimmed, "[Events]"), strings.Contains(trimmed, "\nDialogue:"), strings.HasPrefix(trimmed, "Dialogue:"):
		return InputASS
	default:
		return InputSRT
	}
}

// Parse decodes a payload in any supported syntax and validates cue timing.
func Parse(content string) (Track, Format, error) {
	format := DetectFormat(content)
	var (
		track Track
		err   error
	)
	switch format {
	case InputVTT:
		track, err = ParseVTT(content)
	case InputASS:
		track, err = ParseASSEvents(content)
	default:
		track, err = ParseSRT(content)
	}
	if err != nil {
		return nil, format, fmt.Errorf("parse %s: %w", format, err)
	}
	if len(track) == 0 {
		return nil, format, ErrNoCues
	}
	if err := track.Validate(); err != nil {
		return nil, format, err
	}
	return track, format, nil
}

// Prepared is a subtitle document ready to be written to staging. Start and
// End span the serialized cues.
type Prepared struct {
	Content     []byte
	InputFormat Format
	Stats       ExpandStats
	Start       time.Duration
	End         time.Duration
}

// Prepare parses payload, applies word expansion when the style requests
// highlighting, and serializes it for spec's dialect. The advanced dialect gets
// the compiled style header prepended.
func Prepare(payload string, spec captions.StyleSpec) (Prepared, error) {
	track, format, err := Parse(payload)
	if err != nil {
		return Prepared{}, err
	}
	expanded, stats := Expand(track, spec.Highlight)
	if len(expanded) == 0 {
		return Prepared{}, ErrNoCues
	}
	var content string
	if spec.Dialect.Advanced() {
		content = FormatASS(spec, expanded)
	} else {
		content = FormatSRT(expanded)
	}
	start, end := expanded.Bounds()
	return Prepared{Content: []byte(content), InputFormat: format, Stats: stats, Start: start, End: end}, nil
}
