package subtitles

import "strings"

// ParseVTT parses WebVTT content. The header, NOTE, STYLE, and REGION blocks
// are skipped; cue settings are ignored.
func ParseVTT(content string) (Track, error) {
	blocks := splitBlocks(normalizePayload(content))
	track := make(Track, 0, len(blocks))
	for i, lines := range blocks {
		first := strings.TrimSpace(lines[0])
		header := i == 0 && strings.HasPrefix(first, "WEBVTT")
		if header && !hasTiming(lines) {
			continue
		}
		if strings.HasPrefix(first, "NOTE") || first == "STYLE" || first == "REGION" {
			continue
		}
		if header {
			lines = lines[1:]
		}
		cue, ok, err := parseTimedBlock(lines)
		if err != nil {
			return nil, err
		}
		if ok {
			track = append(track, cue)
		}
	}
	return track, nil
}

func hasTiming(lines []string) bool {
	for _, line := range lines {
		if strings.Contains(line, "-->") {
			return true
		}
	}
	return false
}
