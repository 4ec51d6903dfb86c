package services

import "context"

// Scope identifies the unit of work a context belongs to.
type Scope struct {
	JobID     string
	Stage     string
	RequestID string
}

type scopeKey struct{}

// ScopeFrom returns the scope stored in ctx, or the zero Scope.
func ScopeFrom(ctx context.Context) Scope {
	if ctx == nil {
		return Scope{}
	}
	scope, _ := ctx.Value(scopeKey{}).(Scope)
	return scope
}

func withScope(ctx context.Context, edit func(*Scope)) context.Context {
	scope := ScopeFrom(ctx)
	edit(&scope)
	return context.WithValue(ctx, scopeKey{}, scope)
}

// WithJobID tags ctx with a caption job id. Blank ids leave ctx unchanged.
func WithJobID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return withScope(ctx, func(s *Scope) { s.JobID = id })
}

// WithStage tags ctx with the pipeline stage currently running.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return withScope(ctx, func(s *Scope) { s.Stage = stage })
}

// WithRequestID tags ctx with a correlation id shared by related jobs.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return withScope(ctx, func(s *Scope) { s.RequestID = id })
}

func JobIDFromContext(ctx context.Context) (string, bool) {
	id := ScopeFrom(ctx).JobID
	return id, id != ""
}

func StageFromContext(ctx context.Context) (string, bool) {
	stage := ScopeFrom(ctx).Stage
	return stage, stage != ""
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	id := ScopeFrom(ctx).RequestID
	return id, id != ""
}
