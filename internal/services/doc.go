// Package services defines shared utilities consumed by the caption job pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the job error taxonomy (validation, retrieval, render, storage, cache).
//
// Sub-packages wrap the external collaborators: ffmpeg (renderer) and fetch
// (source and subtitle retrieval).
package services
