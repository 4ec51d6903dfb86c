// Package fetch retrieves source videos and remote subtitle payloads.
//
// References starting with http:// or https:// are downloaded with an HTTP
// client that carries the configured user agent and timeout. Anything else is
// treated as a local path (optionally file://) and used in place. Every
// failure is tagged with services.ErrRetrieval.
package fetch
