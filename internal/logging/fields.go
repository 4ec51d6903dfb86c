package logging

import (
	"context"
	"log/slog"
	"time"

	"captionforge/internal/services"
)

// Keys shared by every component so log lines can be filtered by job.
const (
	FieldComponent     = "component"
	FieldJobID         = "job_id"
	FieldStage         = "stage"
	FieldCorrelationID = "correlation_id"
	FieldFingerprint   = "fingerprint"

	// FieldEventType names the event a line records, e.g. "render_start".
	FieldEventType = "event_type"
	// FieldErrorHint tells an operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact describes what a warning costs the caller.
	FieldImpact = "impact"
)

type Attr = slog.Attr

func String(key, value string) Attr { return slog.String(key, value) }
func Int(key string, value int) Attr { return slog.Int(key, value) }
func Int64(key string, value int64) Attr { return slog.Int64(key, value) }
func Float64(key string, value float64) Attr { return slog.Float64(key, value) }
func Bool(key string, value bool) Attr { return slog.Bool(key, value) }
func Duration(key string, d time.Duration) Attr { return slog.Duration(key, d) }

// Error attaches err under the "error" key. A nil error is recorded
// explicitly so the key is never silently dropped.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

func toArgs(attrs []Attr) []any {
	args := make([]any, len(attrs))
	for i := range attrs {
		args[i] = attrs[i]
	}
	return args
}

// WithContext tags logger with the job, stage and correlation identifiers
// carried by ctx. A nil logger yields a no-op logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var attrs []Attr
	if id, ok := services.JobIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldJobID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		attrs = append(attrs, String(FieldStage, stage))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldCorrelationID, rid))
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(toArgs(attrs)...)
}

// NewComponentLogger scopes logger to a named component.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// NewNop returns a logger that drops everything.
func NewNop() *slog.Logger {
	return slog.New(discardHandler{})
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler { return d }
func (d discardHandler) WithGroup(string) slog.Handler { return d }
