// Package resultcache persists finished caption jobs keyed by fingerprint.
//
// Two backends share the Store interface: FileStore writes one JSON record per
// fingerprint (temp file plus rename, serialized across processes with a
// flock), and SQLiteStore keeps entries in a single database. Both honour an
// optional TTL; expired entries read as misses and are removed by Purge or the
// cron-driven Janitor.
package resultcache
