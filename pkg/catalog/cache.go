package catalog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/popdex/popdex/pkg/errors"
)

// Cache persists the last good catalog payload on disk so a failed fetch
// can still serve a stale-but-valid snapshot. A single-row table keeps
// exactly one payload; each successful load replaces it.
type Cache struct {
	db   *sql.DB
	path string
}

// OpenCache initializes or connects to the snapshot cache database.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	const schema = `CREATE TABLE IF NOT EXISTS snapshot (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        raw_text TEXT NOT NULL,
        last_modified TEXT NOT NULL,
        loaded_at TEXT NOT NULL
    )`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// CachedSnapshot is one persisted catalog payload.
type CachedSnapshot struct {
	RawText      string
	LastModified time.Time
	LoadedAt     time.Time
}

// Put replaces the cached payload.
func (c *Cache) Put(snap CachedSnapshot) error {
	_, err := c.db.Exec(
		`INSERT INTO snapshot (id, raw_text, last_modified, loaded_at)
         VALUES (1, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
            raw_text = excluded.raw_text,
            last_modified = excluded.last_modified,
            loaded_at = excluded.loaded_at`,
		snap.RawText,
		snap.LastModified.UTC().Format(time.RFC3339Nano),
		snap.LoadedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Get returns the cached payload, or ErrNotFound when the cache is empty.
func (c *Cache) Get() (*CachedSnapshot, error) {
	var (
		snap         CachedSnapshot
		lastModified string
		loadedAt     string
	)
	row := c.db.QueryRow(`SELECT raw_text, last_modified, loaded_at FROM snapshot WHERE id = 1`)
	if err := row.Scan(&snap.RawText, &lastModified, &loadedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var err error
	if snap.LastModified, err = time.Parse(time.RFC3339Nano, lastModified); err != nil {
		snap.LastModified = time.Time{}
	}
	if snap.LoadedAt, err = time.Parse(time.RFC3339Nano, loadedAt); err != nil {
		return nil, fmt.Errorf("parse loaded_at: %w", err)
	}

	return &snap, nil
}
