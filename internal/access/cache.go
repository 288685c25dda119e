package access

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL bounds how long a resolved snapshot may be served without a
// fresh load. Writes to flag or role rows invalidate sooner via the
// change-notification path.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

// Cache holds resolved snapshots keyed by identity id. It is an explicit,
// injectable object rather than package state so tests can supply their own
// clock and TTL. Entries are replaced whole; a reader never observes a
// half-updated snapshot.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[uuid.UUID]cacheEntry
}

// NewCache builds a cache with the given TTL. A nil clock defaults to
// time.Now.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[uuid.UUID]cacheEntry),
	}
}

// Get returns the cached snapshot for an identity if present and unexpired.
func (c *Cache) Get(identityID uuid.UUID) (Snapshot, bool) {
	c.mu.RLock()
	entry, ok := c.entries[identityID]
	c.mu.RUnlock()
	if !ok || !c.now().Before(entry.expiresAt) {
		return Snapshot{}, false
	}
	return entry.snap, true
}

// Put stores a snapshot, replacing any previous entry for the identity.
func (c *Cache) Put(snap Snapshot) {
	c.mu.Lock()
	c.entries[snap.IdentityID] = cacheEntry{
		snap:      snap,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Invalidate drops the entry for one identity.
func (c *Cache) Invalidate(identityID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, identityID)
	c.mu.Unlock()
}

// InvalidateCommunity drops every entry resolved against a community, used
// when that community's module flags or guest permissions change.
func (c *Cache) InvalidateCommunity(communityID uuid.UUID) {
	c.mu.Lock()
	for id, entry := range c.entries {
		if entry.snap.CommunityID != nil && *entry.snap.CommunityID == communityID {
			delete(c.entries, id)
		}
	}
	c.mu.Unlock()
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[uuid.UUID]cacheEntry)
	c.mu.Unlock()
}
