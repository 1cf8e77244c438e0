package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// HashCache is an SQLite-backed store of previously computed digests, so
// repeated collections of a mostly unchanged tree only hash what changed.
// An entry is reused only when size, mtime and ctime all still match.
type HashCache struct {
	db   *sql.DB
	path string

	// Batch buffer for Store calls.
	mu      sync.Mutex
	batch   []cachedDigest
	done    chan struct{}
	stopped bool
}

type cachedDigest struct {
	name      string
	algo      Algorithm
	digest    string
	size      int64
	mtimeNano int64
	ctimeNano int64
}

// OpenHashCache opens (or creates) the cache database at path.
func OpenHashCache(path string) (*HashCache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create hash cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open hash cache: %w", err)
	}

	c := &HashCache{
		db:   db,
		path: path,
		done: make(chan struct{}),
	}

	if err := c.init(); err != nil {
		db.Close()
		return nil, err
	}

	go c.flushLoop()

	return c, nil
}

func (c *HashCache) init() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS digests (
			name    TEXT NOT NULL,
			algo    TEXT NOT NULL,
			digest  TEXT NOT NULL,
			size    INTEGER NOT NULL,
			mtime   INTEGER NOT NULL,
			ctime   INTEGER NOT NULL,
			PRIMARY KEY (name, algo)
		);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Lookup returns the cached digest for name if the file still has the
// recorded size, mtime and ctime.
func (c *HashCache) Lookup(name string, algo Algorithm, size, mtimeNano, ctimeNano int64) (string, bool) {
	var digest string
	var storedSize, storedMtime, storedCtime int64
	err := c.db.QueryRow(
		"SELECT digest, size, mtime, ctime FROM digests WHERE name = ? AND algo = ?",
		name, string(algo),
	).Scan(&digest, &storedSize, &storedMtime, &storedCtime)
	if err != nil {
		return "", false
	}
	if storedSize != size || storedMtime != mtimeNano || storedCtime != ctimeNano {
		return "", false
	}
	return digest, true
}

// Store records a digest. Writes are batched and flushed periodically.
func (c *HashCache) Store(name string, algo Algorithm, digest string, size, mtimeNano, ctimeNano int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.batch = append(c.batch, cachedDigest{
		name:      name,
		algo:      algo,
		digest:    digest,
		size:      size,
		mtimeNano: mtimeNano,
		ctimeNano: ctimeNano,
	})

	if len(c.batch) >= 100 {
		return c.flushLocked()
	}
	return nil
}

// Flush writes any pending batch entries to the database.
func (c *HashCache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

func (c *HashCache) flushLocked() error {
	if len(c.batch) == 0 {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO digests (name, algo, digest, size, mtime, ctime)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range c.batch {
		if _, err := stmt.Exec(e.name, string(e.algo), e.digest, e.size, e.mtimeNano, e.ctimeNano); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s: %w", e.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	c.batch = c.batch[:0]
	return nil
}

func (c *HashCache) flushLoop() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			_ = c.flushLocked()
			c.mu.Unlock()
		}
	}
}

// Close flushes any pending writes and closes the database.
func (c *HashCache) Close() error {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.done)
	}
	flushErr := c.flushLocked()
	c.mu.Unlock()
	if err := c.db.Close(); err != nil {
		return err
	}
	return flushErr
}

// Path returns the path to the cache database file.
func (c *HashCache) Path() string {
	return c.path
}

// DefaultHashCachePath returns $XDG_CACHE_HOME/bodyfile/hashes.db, falling
// back to ~/.cache.
func DefaultHashCachePath() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "bodyfile-hashes.db")
		}
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "bodyfile", "hashes.db")
}
