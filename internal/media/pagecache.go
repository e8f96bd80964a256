package media

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/watchdeck/watchdeck/internal/notion"
)

// PageFetcher retrieves every page of a Notion database.
type PageFetcher interface {
	QueryDatabasePages(ctx context.Context, databaseID string) ([]notion.Page, error)
}

// PageCache caches existing database pages per database ID. Entries go stale
// after a TTL and are rebuilt wholesale on the next read — never patched.
// It is an explicitly constructed object passed into each Form, not a
// process-wide singleton.
type PageCache struct {
	mu      sync.RWMutex
	fetcher PageFetcher
	ttl     time.Duration
	entries map[string]*cacheEntry
	logger  zerolog.Logger
}

type cacheEntry struct {
	pages     []notion.Page
	urls      map[string]struct{}
	fetchedAt time.Time
}

// NewPageCache creates a page cache with the given staleness TTL.
func NewPageCache(fetcher PageFetcher, ttl time.Duration, logger zerolog.Logger) *PageCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PageCache{
		fetcher: fetcher,
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
		logger:  logger.With().Str("component", "pagecache").Logger(),
	}
}

// Pages returns the cached pages for the database, refetching when the entry
// is missing or stale.
func (c *PageCache) Pages(ctx context.Context, databaseID string) ([]notion.Page, error) {
	entry, err := c.entry(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	return entry.pages, nil
}

// ExistingURLs returns the set of Info URLs present in the database, for O(1)
// duplicate lookup.
func (c *PageCache) ExistingURLs(ctx context.Context, databaseID string) (map[string]struct{}, error) {
	entry, err := c.entry(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	return entry.urls, nil
}

// Invalidate drops the cached entry for the database. The next read triggers
// a full refetch.
func (c *PageCache) Invalidate(databaseID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, databaseID)
}

// Refresh forces a full rebuild of the entry for the database.
func (c *PageCache) Refresh(ctx context.Context, databaseID string) error {
	_, err := c.rebuild(ctx, databaseID)
	return err
}

// DatabaseIDs returns the database IDs currently cached.
func (c *PageCache) DatabaseIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	return ids
}

func (c *PageCache) entry(ctx context.Context, databaseID string) (*cacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[databaseID]
	c.mu.RUnlock()

	if ok && time.Since(entry.fetchedAt) < c.ttl {
		return entry, nil
	}

	// Return the freshly built entry directly. Re-reading the map here would
	// race with Invalidate, which may delete the entry between rebuild
	// storing it and the read.
	return c.rebuild(ctx, databaseID)
}

func (c *PageCache) rebuild(ctx context.Context, databaseID string) (*cacheEntry, error) {
	pages, err := c.fetcher.QueryDatabasePages(ctx, databaseID)
	if err != nil {
		return nil, err
	}

	urls := make(map[string]struct{})
	for _, page := range pages {
		if page.InfoURL != nil {
			urls[*page.InfoURL] = struct{}{}
		}
	}

	entry := &cacheEntry{
		pages:     pages,
		urls:      urls,
		fetchedAt: time.Now(),
	}

	c.mu.Lock()
	c.entries[databaseID] = entry
	c.mu.Unlock()

	c.logger.Debug().
		Str("databaseId", databaseID).
		Int("pages", len(pages)).
		Int("urls", len(urls)).
		Msg("Rebuilt existing-pages cache")

	return entry, nil
}
