package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Markers for the job error taxonomy. Wrap attaches one so callers can test
// the category with errors.Is.
var (
	ErrValidation    = errors.New("validation error")
	ErrRetrieval     = errors.New("retrieval error")
	ErrRender        = errors.New("render error")
	ErrStorage       = errors.New("storage error")
	ErrCache         = errors.New("cache error")
	ErrConfiguration = errors.New("configuration error")
	ErrExternalTool  = errors.New("external tool error")
)

var taxonomy = []struct {
	marker error
	kind   string
	exit   int
}{
	{ErrValidation, "validation", 2},
	{ErrConfiguration, "configuration", 3},
	{ErrRetrieval, "retrieval", 4},
	{ErrRender, "render", 5},
	{ErrStorage, "storage", 6},
	{ErrCache, "cache", 7},
}

// Wrap tags err with marker and prefixes it with "stage: operation: message",
// skipping blank parts. A nil marker means ErrExternalTool.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrExternalTool
	}
	var parts []string
	for _, p := range []string{stage, operation, message} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	detail := "service failure"
	if len(parts) > 0 {
		detail = strings.Join(parts, ": ")
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// Classify returns the taxonomy label for err: "" for nil and "unknown"
// when no marker is attached.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range taxonomy {
		if errors.Is(err, k.marker) {
			return k.kind
		}
	}
	return "unknown"
}

// ExitCode maps err onto a process exit status. Each taxonomy kind has its
// own code, cancellation exits 130 and anything else exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	for _, k := range taxonomy {
		if errors.Is(err, k.marker) {
			return k.exit
		}
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
