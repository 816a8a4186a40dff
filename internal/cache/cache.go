// Package cache persists compiled bytecode containers keyed by the
// hash of the source text that produced them, so a second compile of
// an unchanged file is a lookup instead of a full pipeline run. It is
// using modernc.org/sqlite for
// embedded, file-backed persistence rather than a bespoke on-disk
// format.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed cache of source hash -> compiled bytecode.
type Store struct {
	db *sql.DB
}

// Open creates (or reuses) a cache database at path. An empty path
// opens an in-memory store, useful for tests and one-shot CLI runs
// that don't want to touch disk.
func Open(path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS compiled_units (
	source_hash TEXT PRIMARY KEY,
	file_path   TEXT NOT NULL,
	bytecode    BLOB NOT NULL,
	compiled_at INTEGER NOT NULL
);
`

// HashSource returns the cache key for a source file's contents.
func HashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached bytecode for hash, if present.
func (s *Store) Lookup(hash string) ([]byte, bool, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT bytecode FROM compiled_units WHERE source_hash = ?`, hash).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: lookup %s: %w", hash, err)
	}
	return blob, true, nil
}

// Store records bytecode for hash, replacing any prior entry under the
// same key (a source hash collision under sha256 is not a case this
// cache tries to detect).
func (s *Store) Store(hash, filePath string, bytecode []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO compiled_units (source_hash, file_path, bytecode, compiled_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(source_hash) DO UPDATE SET file_path = excluded.file_path, bytecode = excluded.bytecode, compiled_at = excluded.compiled_at`,
		hash, filePath, bytecode, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache: store %s: %w", hash, err)
	}
	return nil
}

// Invalidate drops a single cached entry, used when a file is known to
// have changed out from under its hash (e.g. a directive forces a
// recompile).
func (s *Store) Invalidate(hash string) error {
	_, err := s.db.Exec(`DELETE FROM compiled_units WHERE source_hash = ?`, hash)
	return err
}
