// Package buildsession is the CLI driver's build cache: it fingerprints
// whatever content it is handed for each module path (internal/pipeline
// hands it a structural summary of each parsed module). It skips no work
// itself and has no opinion about the compiler — it only answers "has path
// changed since I last saw it" and keeps a small audit trail of build runs.
package buildsession

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Cache persists module fingerprints across CLI invocations in a single
// sqlite file (or ":memory:" for a throwaway, process-local cache).
type Cache struct {
	db *sql.DB
}

// Open creates (or reuses) the sqlite database at path and ensures its
// schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening build cache %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening build cache %s: %w", path, err)
	}
	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS modules (
			path TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			seen_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS builds (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			entry_module TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("migrating build cache schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error { return c.db.Close() }

// BeginBuild records a new build run (for the audit trail a `-dump-ast`
// or status command can surface later) and returns its id.
func (c *Cache) BeginBuild(entryModule string) (string, error) {
	id := uuid.NewString()
	_, err := c.db.Exec(`INSERT INTO builds (id, started_at, entry_module) VALUES (?, ?, ?)`,
		id, nowUnix(), entryModule)
	if err != nil {
		return "", fmt.Errorf("recording build %s: %w", entryModule, err)
	}
	return id, nil
}

// Changed reports whether path's content differs from the fingerprint this
// cache last recorded for it (or is seeing path for the first time), and
// stores the new fingerprint either way — so the next call for the same
// unchanged content reports false.
func (c *Cache) Changed(path string, content []byte) (bool, error) {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	var existing string
	err := c.db.QueryRow(`SELECT content_hash FROM modules WHERE path = ?`, path).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		// first sighting; fall through to record and report changed
	case err != nil:
		return false, fmt.Errorf("reading fingerprint for %s: %w", path, err)
	case existing == hash:
		return false, nil
	}

	_, err = c.db.Exec(`
		INSERT INTO modules (path, content_hash, seen_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET content_hash = excluded.content_hash, seen_at = excluded.seen_at
	`, path, hash, nowUnix())
	if err != nil {
		return false, fmt.Errorf("recording fingerprint for %s: %w", path, err)
	}
	return true, nil
}

// Stats summarizes the cache's current contents for a human-facing status
// line (e.g. a `-cache-stats` flag): how many modules it's tracking and
// how many build runs it has recorded.
type Stats struct {
	ModuleCount int
	Builds      int
}

func (s Stats) String() string {
	return fmt.Sprintf("%s tracked, %s build runs",
		humanize.Comma(int64(s.ModuleCount)), humanize.Comma(int64(s.Builds)))
}

func (c *Cache) Stats() (Stats, error) {
	var s Stats
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM modules`).Scan(&s.ModuleCount); err != nil {
		return s, fmt.Errorf("reading cache stats: %w", err)
	}
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM builds`).Scan(&s.Builds); err != nil {
		return s, fmt.Errorf("reading cache stats: %w", err)
	}
	return s, nil
}

func nowUnix() int64 { return time.Now().Unix() }
