// Package cache persists approved field mappings between sessions, keyed by
// the content fingerprint. A hit skips the remote mapper entirely; entries
// age out after a validity window and the whole store is invalidated when
// the profile content changes, since every cached answer derives from it.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTTL is how long a cached mapping stays usable.
const DefaultTTL = 7 * 24 * time.Hour

// Entry is one cached mapping.
type Entry struct {
	Fingerprint string
	Label       string
	Value       string
	ProfileHash string
	HitCount    int
	UpdatedAt   time.Time
}

// Store is the SQLite-backed mapping cache. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithTTL overrides the validity window.
func WithTTL(ttl time.Duration) Option { return func(s *Store) { s.ttl = ttl } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.logger = l } }

// Open opens (and if needed creates) the cache at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, ttl: DefaultTTL, logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ProfileHash derives the invalidation key from the profile content.
func ProfileHash(profileJSON []byte) string {
	sum := sha256.Sum256(profileJSON)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached value for a fingerprint. A miss is ("", false, nil):
// unknown fingerprint, expired entry, or an entry minted under a different
// profile hash. Expired and foreign-profile entries are deleted on the way
// out, and hits bump the hit counter.
func (s *Store) Get(ctx context.Context, fingerprint, profileHash string) (string, bool, error) {
	var e Entry
	var updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, profile_hash, updated_at FROM field_mappings WHERE fingerprint = ?`,
		fingerprint).Scan(&e.Value, &e.ProfileHash, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache: get: %w", err)
	}

	if e.ProfileHash != profileHash || s.now().Sub(time.UnixMilli(updatedAt)) > s.ttl {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM field_mappings WHERE fingerprint = ?`, fingerprint); err != nil {
			return "", false, fmt.Errorf("cache: evict: %w", err)
		}
		return "", false, nil
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE field_mappings SET hit_count = hit_count + 1 WHERE fingerprint = ?`, fingerprint); err != nil {
		s.logger.Warn("cache: hit count update failed", "error", err)
	}
	return e.Value, true, nil
}

// Put stores an approved mapping, replacing any previous entry for the
// fingerprint.
func (s *Store) Put(ctx context.Context, fingerprint, label, value, profileHash string) error {
	now := s.now().UnixMilli()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO field_mappings (fingerprint, label, value, profile_hash, hit_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			label = excluded.label,
			value = excluded.value,
			profile_hash = excluded.profile_hash,
			updated_at = excluded.updated_at`,
		fingerprint, label, value, profileHash, now, now)
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}

// InvalidateProfile deletes every entry that was minted under a profile
// hash other than current. Called when the profile content changes.
func (s *Store) InvalidateProfile(ctx context.Context, current string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM field_mappings WHERE profile_hash != ?`, current)
	if err != nil {
		return 0, fmt.Errorf("cache: invalidate: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Info("cache: profile changed, entries invalidated", "count", n)
	}
	return n, nil
}

// PurgeExpired deletes entries older than the validity window. Run it
// periodically or at startup; Get already self-evicts on read.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.ttl).UnixMilli()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM field_mappings WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cache: purge: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats reports entry count and cumulative hits.
func (s *Store) Stats(ctx context.Context) (entries, hits int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(hit_count), 0) FROM field_mappings`).Scan(&entries, &hits)
	if err != nil {
		return 0, 0, fmt.Errorf("cache: stats: %w", err)
	}
	return entries, hits, nil
}
