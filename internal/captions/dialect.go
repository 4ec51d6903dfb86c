package captions

import (
	"fmt"
	"strings"
)

// Dialect selects how subtitles are serialized and styled.
type Dialect string

const (
	// DialectSRT is the simple text-timed dialect styled through force_style.
	DialectSRT Dialect = "srt"
	// DialectVTT is accepted as simple-dialect input and written as SRT.
	DialectVTT Dialect = "vtt"
	// DialectASS is the advanced dialect with an embedded style header.
	DialectASS Dialect = "ass"
)

// ParseDialect normalizes a dialect name. "simple" and "advanced" alias srt and ass.
func ParseDialect(value string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "srt", "simple", "":
		return DialectSRT, nil
	case "vtt", "webvtt":
		return DialectVTT, nil
	case "ass", "ssa", "advanced":
		return DialectASS, nil
	default:
		return "", fmt.Errorf("unsupported subtitle dialect %q", value)
	}
}

// Advanced reports whether the dialect carries its own style header.
func (d Dialect) Advanced() bool {
	return d == DialectASS
}

// Extension returns the staging file extension for materialized subtitles.
func (d Dialect) Extension() string {
	if d.Advanced() {
		return ".ass"
	}
	return ".srt"
}

func (d Dialect) String() string {
	return string(d)
}
