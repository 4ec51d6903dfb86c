// Package logging builds the slog loggers used by captionforge.
//
// Two handlers are available: a single-line console format for terminals
// and a JSON format for log shippers. Pipeline code tags lines with the job
// and stage stored in a context via WithContext, and reports degraded or
// failed operations through WarnWithContext and ErrorWithContext so every
// such line carries an event type and an operator hint.
package logging
