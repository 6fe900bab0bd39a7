package token

import (
	"sync"
	"time"
)

// MemoryCache is a best-effort, per-process access token cache. An entry
// expires at the token's staleness deadline; a miss, an expired entry, or a
// different process instance always falls back to the authoritative store.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	accessToken string
	expiresAt   time.Time
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
	}
}

// Load returns the cached access token for a user if it has not expired.
func (c *MemoryCache) Load(userID string, now time.Time) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok || !now.Before(entry.expiresAt) {
		return "", false
	}
	return entry.accessToken, true
}

// Save stores an access token until the given deadline.
func (c *MemoryCache) Save(userID, accessToken string, expiresAt time.Time) {
	c.mu.Lock()
	c.entries[userID] = cacheEntry{accessToken: accessToken, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Delete drops a user's cached token.
func (c *MemoryCache) Delete(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}
