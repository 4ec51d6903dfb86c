package resultcache

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"captionforge/internal/config"
	"captionforge/internal/services"
)

// Entry is one completed job.
type Entry struct {
	Fingerprint string    `json:"fingerprint"`
	OutputRef   string    `json:"output_filename"`
	JobID       string    `json:"job_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Expired reports whether the entry is older than ttl at now. A zero ttl never
// expires.
func (e Entry) Expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 || e.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(e.CreatedAt) > ttl
}

// Store is the result cache contract shared by every backend.
type Store interface {
	// Get returns the entry for fingerprint. Missing and expired entries
	// report ok=false with a nil error.
	Get(ctx context.Context, fingerprint string) (Entry, bool, error)
	// Put records a finished job. Readers never observe a partial entry.
	Put(ctx context.Context, entry Entry) error
	// List returns all entries, newest first.
	List(ctx context.Context) ([]Entry, error)
	// Purge deletes expired entries, or every entry when all is true, and
	// returns how many were removed.
	Purge(ctx context.Context, all bool) (int, error)
	Close() error
}

var fingerprintPattern = regexp.MustCompile(`^[0-9a-f]{16,128}$`)

func validateFingerprint(fingerprint string) error {
	if !fingerprintPattern.MatchString(fingerprint) {
		return services.Wrap(services.ErrCache, "cache", "key", fmt.Sprintf("invalid fingerprint %q", fingerprint), nil)
	}
	return nil
}

func cacheError(operation string, err error) error {
	return services.Wrap(services.ErrCache, "cache", operation, "", err)
}

// Open builds the configured backend. A disabled cache yields a Nop store.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	if cfg == nil || !cfg.Cache.Enabled {
		return Nop{}, nil
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendSQLite:
		return OpenSQLite(cfg.CacheDBPath(), cfg.CacheTTL(), logger)
	default:
		return NewFileStore(cfg.Paths.CacheDir, cfg.CacheTTL(), logger)
	}
}

// Nop is a Store that never hits and discards writes.
type Nop struct{}

func (Nop) Get(context.Context, string) (Entry, bool, error) { return Entry{}, false, nil }

func (Nop) Put(context.Context, Entry) error { return nil }

func (Nop) List(context.Context) ([]Entry, error) { return nil, nil }

func (Nop) Purge(context.Context, bool) (int, error) { return 0, nil }

func (Nop) Close() error { return nil }

var (
	_ Store = Nop{}
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
