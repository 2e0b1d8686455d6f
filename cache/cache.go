package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/maypok86/otter/v2"
)

// Cache holds generated context summaries so the same bio is not sent to
// the model twice. It is bounded in size, entries expire after a fixed TTL,
// and it is safe for concurrent use.
type Cache struct {
	store *otter.Cache[string, string]
}

// New creates a Cache holding at most maxEntries summaries for ttl each.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Cache{
		store: otter.Must(&otter.Options[string, string]{
			MaximumSize:      maxEntries,
			ExpiryCalculator: otter.ExpiryWriting[string, string](ttl),
		}),
	}
}

// Key generates a cache key from the person's name and description.
func Key(name, description string) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte("|"))
	h.Write([]byte(description))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached summary for key.
func (c *Cache) Get(key string) (string, bool) {
	return c.store.GetIfPresent(key)
}

// Set stores a summary. Empty summaries are not cached.
func (c *Cache) Set(key, summary string) {
	if summary == "" {
		return
	}
	c.store.Set(key, summary)
}

// Len is the approximate number of cached summaries.
func (c *Cache) Len() int {
	return c.store.EstimatedSize()
}
