// ABOUTME: Per-collection cache registry with time-based invalidation
// ABOUTME: One slot per sheet tab, shared by every reader of that tab
package store

import (
	"sync"
	"time"
)

// Cache keys, one per collection.
const (
	cacheOpportunities = "opportunities"
	cacheLeads         = "leads"
	cacheContacts      = "contacts"
	cacheCompanies     = "companies"
	cacheInteractions  = "interactions"
	cacheEventLogs     = "eventLogs"
	cacheLinks         = "oppContactLinks"
	cacheWeekly        = "weeklyBusiness"
	cacheAnnouncements = "announcements"
	cacheSystemConfig  = "systemConfig"
	cacheUsers         = "users"
)

type cacheSlot struct {
	data      any
	fetchedAt time.Time
}

// Cache holds the last fetched, parsed collection per key, valid for a fixed
// TTL window. Writers invalidate their collection's slot synchronously after
// every successful mutation; until then readers may serve data at most one
// TTL window old. Two concurrent misses may both go to the remote store,
// which is duplicate work but not a correctness problem.
type Cache struct {
	ttl time.Duration

	mu    sync.Mutex
	slots map[string]cacheSlot

	now func() time.Time
}

// NewCache creates a cache registry with the given validity window.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:   ttl,
		slots: make(map[string]cacheSlot),
		now:   time.Now,
	}
}

// Get returns the cached value for key if it is still within its TTL window.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.slots[key]
	if !ok || slot.data == nil {
		return nil, false
	}
	if c.now().Sub(slot.fetchedAt) >= c.ttl {
		return nil, false
	}
	return slot.data, true
}

// Put stores a freshly fetched collection with fetchedAt = now.
func (c *Cache) Put(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots[key] = cacheSlot{data: data, fetchedAt: c.now()}
}

// Invalidate clears one slot so the next read is forced to the remote store.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.slots, key)
}

// InvalidateAll clears every slot. Exposed to the operator cache-bust action.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = make(map[string]cacheSlot)
}
