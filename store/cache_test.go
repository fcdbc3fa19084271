// ABOUTME: Tests for the per-collection cache registry
// ABOUTME: TTL expiry is exercised with an injected clock
package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheHitWithinTTL(t *testing.T) {
	c := NewCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("opportunities", []int{1, 2, 3})

	now = now.Add(59 * time.Second)
	got, ok := c.Get("opportunities")
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestCacheMissAfterTTL(t *testing.T) {
	c := NewCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("opportunities", []int{1})

	now = now.Add(time.Minute + time.Millisecond)
	_, ok := c.Get("opportunities")
	assert.False(t, ok)
}

func TestCacheMissOnUnknownKey(t *testing.T) {
	c := NewCache(time.Minute)
	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(time.Minute)
	c.Put("a", 1)
	c.Put("b", 2)

	c.Invalidate("a")
	_, okA := c.Get("a")
	_, okB := c.Get("b")
	assert.False(t, okA)
	assert.True(t, okB)

	c.InvalidateAll()
	_, okB = c.Get("b")
	assert.False(t, okB)
}
