package oracle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	ioutils "github.com/handiism/trackyear/internal/io"
	"github.com/handiism/trackyear/internal/model"
)

const cacheSchema = `CREATE TABLE IF NOT EXISTS answers (
    search_key  TEXT NOT NULL,
    artist      TEXT NOT NULL,
    year        INTEGER NOT NULL,
    answered_at TEXT NOT NULL,
    PRIMARY KEY (search_key, artist)
)`

// Cache stores valid oracle answers in SQLite, keyed by search key and
// artist.
type Cache struct {
	db   *sql.DB
	path string
}

// OpenCache opens or creates the cache database at path.
func OpenCache(path string) (*Cache, error) {
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}

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
	if _, err := db.Exec(cacheSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
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

// Get returns the cached year for a question, if any.
func (c *Cache) Get(ctx context.Context, searchKey, artist string) (model.Year, bool, error) {
	var year int
	err := c.db.QueryRowContext(ctx,
		`SELECT year FROM answers WHERE search_key = ? AND artist = ?`,
		cacheKey(searchKey), cacheKey(artist),
	).Scan(&year)
	if errors.Is(err, sql.ErrNoRows) {
		return model.YearUnresolved, false, nil
	}
	if err != nil {
		return model.YearUnresolved, false, fmt.Errorf("cache get: %w", err)
	}
	return model.Year(year), true, nil
}

// Put records a known year. Unresolved answers are never cached.
func (c *Cache) Put(ctx context.Context, searchKey, artist string, year model.Year) error {
	if !year.Known() {
		return nil
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO answers (search_key, artist, year, answered_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(search_key, artist) DO UPDATE SET year = excluded.year, answered_at = excluded.answered_at`,
		cacheKey(searchKey), cacheKey(artist), int(year), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Count returns the number of cached answers.
func (c *Cache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM answers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return n, nil
}

func cacheKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Cached is a Lookup that consults a Cache before asking the inner Lookup.
type Cached struct {
	inner Lookup
	cache *Cache

	// OnCacheError, if set, receives cache failures. The lookup itself
	// proceeds without the cache.
	OnCacheError func(error)
}

// NewCached wraps inner with cache.
func NewCached(inner Lookup, cache *Cache) *Cached {
	return &Cached{inner: inner, cache: cache}
}

// LookupYear returns a cached year when present, otherwise asks the inner
// Lookup and caches a valid answer.
func (c *Cached) LookupYear(ctx context.Context, title, artist string) (string, error) {
	year, ok, err := c.cache.Get(ctx, title, artist)
	if err != nil {
		c.report(err)
	} else if ok {
		return year.String(), nil
	}

	text, err := c.inner.LookupYear(ctx, title, artist)
	if err != nil {
		return "", err
	}
	if y, perr := ParseYear(text); perr == nil {
		if err := c.cache.Put(ctx, title, artist, y); err != nil {
			c.report(err)
		}
	}
	return text, nil
}

func (c *Cached) report(err error) {
	if c.OnCacheError != nil {
		c.OnCacheError(err)
	}
}
