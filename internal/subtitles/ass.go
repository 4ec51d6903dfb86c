package subtitles

import (
	"fmt"
	"strings"

	"captionforge/internal/captions"
)

const (
	assTitle        = "Highlight Current Word"
	assEventsFormat = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"
	assEventFields  = 10
)

// ParseASSEvents extracts Dialogue events from an ASS/SSA document or fragment.
// Only the Start, End, and Text columns are kept; "\N" line breaks become
// newlines.
func ParseASSEvents(content string) (Track, error) {
	lines := strings.Split(normalizePayload(content), "\n")
	track := make(Track, 0, len(lines))
	for n, line := range lines {
		line = strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(line, "Dialogue:")
		if !ok {
			continue
		}
		fields := strings.SplitN(rest, ",", assEventFields)
		if len(fields) != assEventFields {
			return nil, fmt.Errorf("line %d: dialogue has %d fields, want %d", n+1, len(fields), assEventFields)
		}
		start, err := parseTimestamp(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: start: %w", n+1, err)
		}
		end, err := parseTimestamp(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: end: %w", n+1, err)
		}
		text := strings.NewReplacer(`\N`, "\n", `\n`, "\n").Replace(strings.TrimSpace(fields[9]))
		track = append(track, Cue{Start: start, End: end, Text: text})
	}
	return track, nil
}

// FormatASS renders a complete ASS document: script info, the compiled style,
// and one Dialogue event per cue.
func FormatASS(spec captions.StyleSpec, track Track) string {
	var b strings.Builder
	b.WriteString("[Script Info]\n")
	b.WriteString("Title: " + assTitle + "\n")
	b.WriteString("ScriptType: v4.00+\n")
	b.WriteString("\n[V4+ Styles]\n")
	b.WriteString(captions.StyleFormat + "\n")
	b.WriteString(spec.StyleLine() + "\n")
	b.WriteString("\n[Events]\n")
	b.WriteString(assEventsFormat + "\n")
	for _, cue := range track {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTimestamp(cue.Start),
			formatASSTimestamp(cue.End),
			strings.ReplaceAll(cue.Text, "\n", `\N`),
		)
	}
	return b.String()
}
