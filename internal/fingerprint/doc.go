// Package fingerprint derives the cache key that identifies a caption job.
package fingerprint
