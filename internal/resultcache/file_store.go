package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"captionforge/internal/fileutil"
	"captionforge/internal/logging"
)

const (
	recordSuffix  = "_cache.json"
	lockFileName  = ".resultcache.lock"
	lockRetryWait = 25 * time.Millisecond
)

// FileStore keeps one <fingerprint>_cache.json record per entry in a directory.
type FileStore struct {
	dir    string
	ttl    time.Duration
	mu     sync.Mutex // flock does not exclude goroutines sharing one handle
	lock   *flock.Flock
	logger *slog.Logger
	now    func() time.Time
}

// NewFileStore prepares dir for cache records.
func NewFileStore(dir string, ttl time.Duration, logger *slog.Logger) (*FileStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, cacheError("open", errors.New("cache directory not configured"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, cacheError("open", fmt.Errorf("create cache directory: %w", err))
	}
	return &FileStore{
		dir:    dir,
		ttl:    ttl,
		lock:   flock.New(filepath.Join(dir, lockFileName)),
		logger: logging.NewComponentLogger(logger, "resultcache"),
		now:    time.Now,
	}, nil
}

func (s *FileStore) recordPath(fingerprint string) string {
	return filepath.Join(s.dir, fingerprint+recordSuffix)
}

// Get reads the record for fingerprint. Records written before created_at was
// tracked fall back to the file modification time for expiry.
func (s *FileStore) Get(_ context.Context, fingerprint string) (Entry, bool, error) {
	if err := validateFingerprint(fingerprint); err != nil {
		return Entry{}, false, err
	}
	entry, err := s.read(s.recordPath(fingerprint))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, cacheError("read", err)
	}
	if entry.Fingerprint == "" {
		entry.Fingerprint = fingerprint
	}
	if entry.Expired(s.ttl, s.now()) {
		s.logger.Debug("cache entry expired",
			logging.String(logging.FieldFingerprint, fingerprint),
			logging.Duration("ttl", s.ttl))
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (s *FileStore) read(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if strings.TrimSpace(entry.OutputRef) == "" {
		return Entry{}, fmt.Errorf("parse %s: missing output reference", filepath.Base(path))
	}
	if entry.CreatedAt.IsZero() {
		if info, statErr := os.Stat(path); statErr == nil {
			entry.CreatedAt = info.ModTime().UTC()
		}
	}
	return entry, nil
}

// Put writes the record through a temp file in the same directory and renames
// it into place while holding the directory lock.
func (s *FileStore) Put(ctx context.Context, entry Entry) error {
	if err := validateFingerprint(entry.Fingerprint); err != nil {
		return err
	}
	if strings.TrimSpace(entry.OutputRef) == "" {
		return cacheError("write", errors.New("output reference required"))
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return cacheError("write", fmt.Errorf("marshal entry: %w", err))
	}

	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := fileutil.WriteAtomic(s.recordPath(entry.Fingerprint), data, 0o644); err != nil {
		return cacheError("write", err)
	}

	s.logger.Debug("cached job result",
		logging.String(logging.FieldFingerprint, entry.Fingerprint),
		logging.String(logging.FieldJobID, entry.JobID),
		logging.String("output_ref", entry.OutputRef))
	return nil
}

func (s *FileStore) acquire(ctx context.Context) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	locked, err := s.lock.TryLockContext(ctx, lockRetryWait)
	if err != nil {
		s.mu.Unlock()
		return nil, cacheError("lock", err)
	}
	if !locked {
		s.mu.Unlock()
		return nil, cacheError("lock", errors.New("cache lock not acquired"))
	}
	return func() {
		defer s.mu.Unlock()
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release cache lock",
				logging.String(logging.FieldEventType, "cache_unlock_failed"),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove "+lockFileName+" if no other captionforge process is running"),
				logging.String(logging.FieldImpact, "other processes may wait for the cache lock"))
		}
	}, nil
}

// List returns every readable record, newest first. Unreadable records are
// skipped with a warning.
func (s *FileStore) List(_ context.Context) ([]Entry, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*"+recordSuffix))
	if err != nil {
		return nil, cacheError("list", err)
	}
	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		entry, err := s.read(path)
		if err != nil {
			logging.WarnWithContext(s.logger, "skipping unreadable cache record", "cache_record_invalid",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run captionforge cache purge to reset the cache"))
			continue
		}
		if entry.Fingerprint == "" {
			entry.Fingerprint = strings.TrimSuffix(filepath.Base(path), recordSuffix)
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Purge removes expired records, or all records when all is set.
func (s *FileStore) Purge(ctx context.Context, all bool) (int, error) {
	if !all && s.ttl <= 0 {
		return 0, nil
	}
	unlock, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	paths, err := filepath.Glob(filepath.Join(s.dir, "*"+recordSuffix))
	if err != nil {
		return 0, cacheError("purge", err)
	}
	now := s.now()
	removed := 0
	for _, path := range paths {
		if !all {
			entry, err := s.read(path)
			if err == nil && !entry.Expired(s.ttl, now) {
				continue
			}
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, cacheError("purge", err)
		}
		removed++
	}
	return removed, nil
}

// Close releases nothing; records are closed after each operation.
func (s *FileStore) Close() error {
	return nil
}
