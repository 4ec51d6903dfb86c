package resultcache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"captionforge/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteStore keeps cache entries in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// OpenSQLite opens or creates the cache database at path.
func OpenSQLite(path string, ttl time.Duration, logger *slog.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, cacheError("open", errors.New("database path not configured"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, cacheError("open", fmt.Errorf("create cache directory: %w", err))
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, cacheError("open", fmt.Errorf("open sqlite db: %w", err))
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, cacheError("open", fmt.Errorf("apply pragma %q: %w", pragma, execErr))
		}
	}

	store := &SQLiteStore{
		db:     db,
		path:   path,
		ttl:    ttl,
		logger: logging.NewComponentLogger(logger, "resultcache"),
		now:    time.Now,
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, cacheError("open", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild the cache)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Get returns the entry for fingerprint unless it is missing or expired.
func (s *SQLiteStore) Get(ctx context.Context, fingerprint string) (Entry, bool, error) {
	if err := validateFingerprint(fingerprint); err != nil {
		return Entry{}, false, err
	}
	ctx = ensureContext(ctx)
	var (
		entry   Entry
		created string
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT fingerprint, output_ref, job_id, created_at FROM cache_entries WHERE fingerprint = ?",
			fingerprint,
		).Scan(&entry.Fingerprint, &entry.OutputRef, &entry.JobID, &created)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, cacheError("read", err)
	}
	entry.CreatedAt = parseTime(created)
	if entry.Expired(s.ttl, s.now()) {
		s.logger.Debug("cache entry expired",
			logging.String(logging.FieldFingerprint, fingerprint),
			logging.Duration("ttl", s.ttl))
		return Entry{}, false, nil
	}
	return entry, true, nil
}

// Put inserts or replaces the entry for its fingerprint in one statement.
func (s *SQLiteStore) Put(ctx context.Context, entry Entry) error {
	if err := validateFingerprint(entry.Fingerprint); err != nil {
		return err
	}
	if strings.TrimSpace(entry.OutputRef) == "" {
		return cacheError("write", errors.New("output reference required"))
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	ctx = ensureContext(ctx)
	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO cache_entries (fingerprint, output_ref, job_id, created_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(fingerprint) DO UPDATE SET output_ref = excluded.output_ref, job_id = excluded.job_id, created_at = excluded.created_at`,
			entry.Fingerprint, entry.OutputRef, entry.JobID, formatTime(entry.CreatedAt),
		)
		return execErr
	})
	if err != nil {
		return cacheError("write", err)
	}
	s.logger.Debug("cached job result",
		logging.String(logging.FieldFingerprint, entry.Fingerprint),
		logging.String(logging.FieldJobID, entry.JobID),
		logging.String("output_ref", entry.OutputRef))
	return nil
}

// List returns every entry, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT fingerprint, output_ref, job_id, created_at FROM cache_entries ORDER BY created_at DESC")
	if err != nil {
		return nil, cacheError("list", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			created string
		)
		if err := rows.Scan(&entry.Fingerprint, &entry.OutputRef, &entry.JobID, &created); err != nil {
			return nil, cacheError("list", err)
		}
		entry.CreatedAt = parseTime(created)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, cacheError("list", err)
	}
	return entries, nil
}

// Purge deletes expired entries, or all entries when all is set.
func (s *SQLiteStore) Purge(ctx context.Context, all bool) (int, error) {
	ctx = ensureContext(ctx)
	var (
		res sql.Result
		err error
	)
	switch {
	case all:
		err = retryOnBusy(ctx, func() error {
			var execErr error
			res, execErr = s.db.ExecContext(ctx, "DELETE FROM cache_entries")
			return execErr
		})
	case s.ttl > 0:
		cutoff := formatTime(s.now().Add(-s.ttl))
		err = retryOnBusy(ctx, func() error {
			var execErr error
			res, execErr = s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE created_at < ?", cutoff)
			return execErr
		})
	default:
		return 0, nil
	}
	if err != nil {
		return 0, cacheError("purge", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, cacheError("purge", err)
	}
	return int(removed), nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Timestamps are stored as fixed-width UTC strings so lexical order matches
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		if fallback, ferr := time.Parse(time.RFC3339Nano, value); ferr == nil {
			return fallback.UTC()
		}
		return time.Time{}
	}
	return t
}
