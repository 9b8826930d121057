// Package translate enriches raw event records with human-readable text
// from the StokerCloud translation documents. Translation is best effort:
// a missing or broken document degrades enrichment, never event delivery.
package translate

import (
	"context"

	"github.com/patrickmn/go-cache"

	"boiler-status-backend/internal/logger"
)

// Table is a tagged translation lookup: either a loaded key-to-text mapping
// or the unloaded zero value, whose lookups always miss.
type Table struct {
	entries map[string]string
	loaded  bool
}

// Loaded reports whether the table was successfully downloaded.
func (t Table) Loaded() bool { return t.loaded }

// Lookup is an exact-match, case-sensitive lookup. An unknown key or an
// unloaded table returns ok=false, never an error.
func (t Table) Lookup(key string) (string, bool) {
	if !t.loaded {
		return "", false
	}
	text, ok := t.entries[key]
	return text, ok
}

// TableFromEntries builds a loaded table. Used by tests and by the cache.
func TableFromEntries(entries map[string]string) Table {
	return Table{entries: entries, loaded: true}
}

// Fetcher downloads a translation document for a language.
type Fetcher interface {
	Translations(ctx context.Context, language string) (map[string]string, error)
}

// Cache lazily downloads translation tables and keeps each loaded language
// for the process lifetime. Download failures are not cached, so the next
// caller retries.
type Cache struct {
	fetcher Fetcher
	tables  *cache.Cache
	log     *logger.Logger
}

// NewCache creates an empty cache backed by the given fetcher.
func NewCache(fetcher Fetcher, log *logger.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		tables:  cache.New(cache.NoExpiration, 0),
		log:     log,
	}
}

// EnsureLoaded returns the table for the language, downloading it on first
// use. On failure it returns an unloaded table instead of an error.
func (c *Cache) EnsureLoaded(ctx context.Context, language string) Table {
	if cached, found := c.tables.Get(language); found {
		return cached.(Table)
	}

	entries, err := c.fetcher.Translations(ctx, language)
	if err != nil {
		c.log.Debugw("failed to fetch translations", "language", language, "err", err)
		return Table{}
	}

	table := TableFromEntries(entries)
	c.tables.Set(language, table, cache.NoExpiration)
	return table
}
