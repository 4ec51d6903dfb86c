// Package config loads, normalizes, and validates captionforge configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CAPTIONFORGE_BUCKET and AWS_REGION. The Config type centralizes every knob the
// CLI and the caption pipeline need so staging, font, cache, and storage
// locations are discovered in one pass.
package config
