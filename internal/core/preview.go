package core

// preview.go holds fully analyzed batches under one-time tokens pending
// commit. The token state machine per entry is
// absent → present (preview) → consumed (commit) → absent; there is no
// refresh, each preview is a frozen snapshot of the catalog at analysis time.

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PreviewEntry is one analyzed batch awaiting commit.
type PreviewEntry struct {
	Token     string
	Type      UploadType
	Columns   []string
	Rows      []ParsedRow
	Summary   PreviewSummary
	CreatedAt time.Time
}

// PreviewCache owns pending preview entries. It is bounded by entry count
// and age: expired entries are swept on insert and the oldest evicted beyond
// capacity, so an abandoned preview cannot grow the process without limit.
type PreviewCache struct {
	mu         sync.Mutex
	entries    map[string]*PreviewEntry
	maxEntries int
	maxAge     time.Duration
	now        func() time.Time
}

// NewPreviewCache creates a cache bounded by maxEntries and maxAge.
// Non-positive bounds fall back to 100 entries and 30 minutes.
func NewPreviewCache(maxEntries int, maxAge time.Duration) *PreviewCache {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	if maxAge <= 0 {
		maxAge = 30 * time.Minute
	}
	return &PreviewCache{
		entries:    make(map[string]*PreviewEntry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Put stores an entry, assigns it a unique one-time token, and returns the
// token. Expired entries are swept and the oldest evicted beyond capacity.
func (c *PreviewCache) Put(entry *PreviewEntry) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for token, e := range c.entries {
		if now.Sub(e.CreatedAt) > c.maxAge {
			delete(c.entries, token)
		}
	}
	for len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	entry.Token = uuid.New().String()
	entry.CreatedAt = now
	c.entries[entry.Token] = entry
	return entry.Token
}

// Take atomically consumes the entry for a token. It fails when the token is
// absent (never issued, already consumed, or evicted) or when the stored
// upload type does not match the requested one; a mismatched take does not
// consume the entry.
func (c *PreviewCache) Take(token string, t UploadType) (*PreviewEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[token]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPreviewNotFound, token)
	}
	if entry.Type != t {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrTypeMismatch, entry.Type, t)
	}

	delete(c.entries, token)
	return entry, nil
}

// Len returns the number of pending entries.
func (c *PreviewCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *PreviewCache) evictOldestLocked() {
	var oldest string
	var oldestAt time.Time
	for token, e := range c.entries {
		if oldest == "" || e.CreatedAt.Before(oldestAt) {
			oldest = token
			oldestAt = e.CreatedAt
		}
	}
	if oldest != "" {
		delete(c.entries, oldest)
	}
}
