package subtitles

import "strings"

// normalizePayload strips a UTF-8 BOM and converts CR/CRLF line endings.
func normalizePayload(raw string) string {
	raw = strings.TrimPrefix(raw, "\ufeff")
	return strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(raw)
}

// splitBlocks groups content into blank-line separated blocks. A line made
// only of spaces or tabs counts as blank. Trailing whitespace is removed from
// every kept line.
func splitBlocks(content string) [][]string {
	var (
		blocks  [][]string
		current []string
	)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}
