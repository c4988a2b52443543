package cache

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DefaultTTL is how long a cached document stays fresh. Seven days keeps
// slow-moving catalog and pricing data useful across a working week while
// still forcing periodic refreshes.
const DefaultTTL = 7 * 24 * time.Hour

// ErrMiss is returned by Get when no fresh, valid entry exists for a key.
// Expired, invalid, and corrupt entries all surface as ErrMiss so the
// caller simply regenerates and overwrites them.
var ErrMiss = errors.New("cache miss")

// Store persists JSON documents keyed by opaque strings.
// It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	dbPath string
	ttl    time.Duration
	logger *slog.Logger

	// now is the clock used for TTL accounting. Injectable for tests.
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the clock used for TTL accounting.
// Intended for tests that need to age entries without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens or creates the cache database under cacheDir.
func Open(cacheDir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(cacheDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, "cspcompare.db")
	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := s.createTable(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTable creates the cache schema if it doesn't exist.
func (s *Store) createTable() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key        TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		written_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cache_written_at ON cache_entries(written_at);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Get returns the cached payload for key, or ErrMiss when no entry
// exists, the entry has outlived the TTL, or the stored payload is
// corrupt or invalid. Corruption is deliberately not an error: the
// caller regenerates the document and Set overwrites the bad row.
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var payload string
	var writtenAt int64

	err := s.db.QueryRowContext(ctx,
		"SELECT payload, written_at FROM cache_entries WHERE key = ?", key,
	).Scan(&payload, &writtenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry %q: %w", key, err)
	}

	age := s.now().Sub(time.Unix(writtenAt, 0))
	if age > s.ttl {
		s.logger.Info("cache entry expired", "key", key, "age", age)
		return nil, ErrMiss
	}

	raw := json.RawMessage(payload)
	if !json.Valid(raw) {
		s.logger.Warn("corrupt cache entry, treating as miss", "key", key)
		return nil, ErrMiss
	}
	if !ValidPayload(raw) {
		s.logger.Warn("invalid cached payload, treating as miss", "key", key)
		return nil, ErrMiss
	}

	s.logger.Info("cache hit", "key", key)
	return raw, nil
}

// Set stores payload under key, replacing any existing entry.
// Invalid payloads (null, empty object, empty array) are silently
// skipped so they can never be replayed as hits later.
func (s *Store) Set(ctx context.Context, key string, payload json.RawMessage) error {
	if !ValidPayload(payload) {
		s.logger.Warn("skipping cache write for invalid payload", "key", key)
		return nil
	}

	query := `
	INSERT INTO cache_entries (key, payload, written_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		payload = excluded.payload,
		written_at = excluded.written_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, string(payload), s.now().Unix()); err != nil {
		return fmt.Errorf("failed to write cache entry %q: %w", key, err)
	}

	s.logger.Info("cached", "key", key, "bytes", len(payload))
	return nil
}

// Clear removes all entries unconditionally. Used for explicit
// cache-busting, not part of normal operation.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	s.logger.Info("cache cleared")
	return nil
}

// ValidPayload reports whether a payload is worth persisting or replaying.
// Null documents, empty objects, and empty arrays are rejected: they
// represent "no data", and caching them would mask a recoverable failure.
func ValidPayload(payload json.RawMessage) bool {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return false
	}
	if !json.Valid(trimmed) {
		return false
	}

	var value any
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return false
	}
	switch v := value.(type) {
	case nil:
		return false
	case map[string]any:
		return len(v) > 0
	case []any:
		return len(v) > 0
	default:
		return true
	}
}
