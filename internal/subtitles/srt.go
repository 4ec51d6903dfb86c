package subtitles

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseSRT parses SubRip content. Blocks without a timing line are skipped;
// a timing line that does not parse is an error.
func ParseSRT(content string) (Track, error) {
	blocks := splitBlocks(normalizePayload(content))
	track := make(Track, 0, len(blocks))
	for _, block := range blocks {
		cue, ok, err := parseTimedBlock(block)
		if err != nil {
			return nil, err
		}
		if ok {
			track = append(track, cue)
		}
	}
	return track, nil
}

// parseTimedBlock reads an optional numeric (or WebVTT identifier) line, a
// "start --> end" line, and the text lines that follow.
func parseTimedBlock(lines []string) (Cue, bool, error) {
	idx := -1
	for i, line := range lines {
		if strings.Contains(line, "-->") {
			idx = i
			break
		}
	}
	if idx < 0 || idx > 1 {
		return Cue{}, false, nil
	}
	start, end, err := parseTimingLine(lines[idx])
	if err != nil {
		return Cue{}, false, err
	}
	text := make([]string, 0, len(lines)-idx-1)
	for _, line := range lines[idx+1:] {
		text = append(text, strings.TrimSpace(line))
	}
	return Cue{Start: start, End: end, Text: strings.Join(text, "\n")}, true, nil
}

func parseTimingLine(line string) (start, end time.Duration, err error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	// WebVTT allows cue settings after the end timestamp.
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	if start, err = parseTimestamp(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("timing line %q: %w", line, err)
	}
	if end, err = parseTimestamp(endFields[0]); err != nil {
		return 0, 0, fmt.Errorf("timing line %q: %w", line, err)
	}
	return start, end, nil
}

// FormatSRT serializes the track as SubRip, numbering cues from 1.
func FormatSRT(track Track) string {
	var b strings.Builder
	for i, cue := range track {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("\n")
		b.WriteString(formatSRTTimestamp(cue.Start))
		b.WriteString(" --> ")
		b.WriteString(formatSRTTimestamp(cue.End))
		b.WriteString("\n")
		b.WriteString(cue.Text)
		b.WriteString("\n")
	}
	return b.String()
}
