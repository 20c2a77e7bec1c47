package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how long list and stats responses are reused.
const DefaultCacheTTL = 2 * time.Minute

// CachedService memoises reads from another Service per token and query.
// Every successful mutation drops the entries of the affected token, and a
// read that was in flight across a mutation is not stored.
type CachedService struct {
	next  Service
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu        sync.Mutex
	entries   map[string]map[string]cacheEntry
	gen       uint64
	lastSweep time.Time
}

type cacheEntry struct {
	value   any
	expires time.Time
}

// NewCachedService wraps next. A non-positive ttl selects DefaultCacheTTL.
func NewCachedService(next Service, ttl time.Duration) *CachedService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedService{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]map[string]cacheEntry),
	}
}

// WithClock overrides the clock used for expiry.
func (c *CachedService) WithClock(now func() time.Time) *CachedService {
	if now != nil {
		c.now = now
	}
	return c
}

// List implements Service.
func (c *CachedService) List(ctx context.Context, token string, query Query) (ListResult, error) {
	query = query.Normalize()
	key := fmt.Sprintf("list|%d|%d|%s|%s|%s|%s|%s|%s",
		query.Page, query.PageSize, query.Status, query.Type, query.Priority, query.Search,
		formatBound(query.Start), formatBound(query.End))

	value, err := c.load(token, key, func() (any, error) {
		return c.next.List(ctx, token, query)
	})
	if err != nil {
		return ListResult{}, err
	}
	return value.(ListResult), nil
}

// Stats implements Service.
func (c *CachedService) Stats(ctx context.Context, token string) (Stats, error) {
	value, err := c.load(token, "stats", func() (any, error) {
		return c.next.Stats(ctx, token)
	})
	if err != nil {
		return Stats{}, err
	}
	return value.(Stats), nil
}

// Apply implements Service.
func (c *CachedService) Apply(ctx context.Context, token string, action Action, ids []string) error {
	if err := c.next.Apply(ctx, token, action, ids); err != nil {
		return err
	}
	c.Invalidate(token)
	return nil
}

// MarkAllRead implements Service.
func (c *CachedService) MarkAllRead(ctx context.Context, token string) error {
	if err := c.next.MarkAllRead(ctx, token); err != nil {
		return err
	}
	c.Invalidate(token)
	return nil
}

// Invalidate drops every cached response for token.
func (c *CachedService) Invalidate(token string) {
	c.mu.Lock()
	delete(c.entries, token)
	c.gen++
	c.mu.Unlock()
}

// Len reports how many tokens currently hold cached responses.
func (c *CachedService) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *CachedService) load(token, key string, fetch func() (any, error)) (any, error) {
	now := c.now()

	c.mu.Lock()
	if bucket, ok := c.entries[token]; ok {
		if entry, ok := bucket[key]; ok {
			if now.Before(entry.expires) {
				c.mu.Unlock()
				return entry.value, nil
			}
			delete(bucket, key)
			if len(bucket) == 0 {
				delete(c.entries, token)
			}
		}
	}
	gen := c.gen
	c.mu.Unlock()

	flight := fmt.Sprintf("%s\x00%d\x00%s", token, gen, key)
	value, err, _ := c.group.Do(flight, func() (any, error) {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		c.store(token, key, gen, value)
		return value, nil
	})
	return value, err
}

// store keeps value unless a mutation happened since gen was read.
func (c *CachedService) store(token, key string, gen uint64, value any) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.sweep(now)
	bucket, ok := c.entries[token]
	if !ok {
		bucket = make(map[string]cacheEntry)
		c.entries[token] = bucket
	}
	bucket[key] = cacheEntry{value: value, expires: now.Add(c.ttl)}
}

// sweep drops expired entries at most once per ttl. c.mu must be held.
func (c *CachedService) sweep(now time.Time) {
	if now.Sub(c.lastSweep) < c.ttl {
		return
	}
	c.lastSweep = now
	for token, bucket := range c.entries {
		for key, entry := range bucket {
			if !now.Before(entry.expires) {
				delete(bucket, key)
			}
		}
		if len(bucket) == 0 {
			delete(c.entries, token)
		}
	}
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
