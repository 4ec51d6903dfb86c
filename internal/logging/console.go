package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes human-oriented single-line records:
//
//	2026-01-02T15:04:05Z INFO orchestrator: render started job_id=a frames=240
//
// Attributes bound through WithAttrs are rendered once and reused. The
// component attribute is lifted in front of the message.
type consoleHandler struct {
	out       *lockedWriter
	level     *slog.LevelVar
	addSource bool
	component string
	bound     string
	keyPrefix string
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newConsoleHandler(w io.Writer, level *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{out: &lockedWriter{w: w}, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	component := h.component
	var sb strings.Builder
	sb.WriteString(ts.UTC().Format(time.RFC3339))
	sb.WriteByte(' ')
	sb.WriteString(consoleLevel(r.Level))
	sb.WriteByte(' ')

	var tail strings.Builder
	tail.WriteString(h.bound)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == FieldComponent && h.keyPrefix == "" {
			if component == "" {
				component = consoleValue(a.Value)
			}
			return true
		}
		appendConsoleAttr(&tail, h.keyPrefix, a)
		return true
	})

	if component != "" {
		sb.WriteString(component)
		sb.WriteString(": ")
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "(no message)"
	}
	sb.WriteString(msg)
	if h.addSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			fmt.Fprintf(&sb, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	sb.WriteString(tail.String())
	sb.WriteByte('\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := io.WriteString(h.out.w, sb.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	var sb strings.Builder
	sb.WriteString(h.bound)
	for _, a := range attrs {
		if a.Key == FieldComponent && h.keyPrefix == "" {
			next.component = consoleValue(a.Value)
			continue
		}
		appendConsoleAttr(&sb, h.keyPrefix, a)
	}
	next.bound = sb.String()
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.keyPrefix = h.keyPrefix + name + "."
	return &next
}

func appendConsoleAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, member := range a.Value.Group() {
			appendConsoleAttr(sb, prefix, member)
		}
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(prefix)
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	sb.WriteString(quoteConsole(consoleValue(a.Value)))
}

func consoleValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

func quoteConsole(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\r\n=\"") || strings.IndexFunc(s, func(r rune) bool { return r < ' ' }) >= 0 {
		return strconv.Quote(s)
	}
	return s
}

func consoleLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
