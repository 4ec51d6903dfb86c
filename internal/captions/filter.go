package captions

import (
	"fmt"
	"strings"
)

// FilterExpression builds the ffmpeg -vf expression that burns subtitlePath into
// the video. The advanced dialect relies on the document's own style header;
// the simple dialect passes the compiled force_style list.
func FilterExpression(spec StyleSpec, subtitlePath string) (string, error) {
	if strings.TrimSpace(subtitlePath) == "" {
		return "", fmt.Errorf("subtitle path required")
	}
	if strings.ContainsAny(subtitlePath, "'\n") {
		return "", fmt.Errorf("subtitle path %q cannot be quoted for a filter expression", subtitlePath)
	}
	quoted := "'" + subtitlePath + "'"
	if spec.Dialect.Advanced() {
		if spec.Highlight {
			return fmt.Sprintf("ass=%s,subtitles=%s:force_style='Highlight=1'", quoted, quoted), nil
		}
		return "subtitles=" + quoted, nil
	}
	return fmt.Sprintf("subtitles=%s:force_style='%s'", quoted, spec.ForceStyle()), nil
}
