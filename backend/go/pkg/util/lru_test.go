package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewLRU[string, int](CacheConfig{Capacity: 2})
	require.NoError(t, err)

	c.Put("a", 1)
	c.Put("b", 2)
	_, _ = c.Get("a")
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_TTL(t *testing.T) {
	c, err := NewLRU[string, int](CacheConfig{Capacity: 10, TTL: time.Minute})
	require.NoError(t, err)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("a", 1)
	now = now.Add(2 * time.Minute)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRU_GetOrPut(t *testing.T) {
	c, err := NewLRU[string, int](CacheConfig{Capacity: 10})
	require.NoError(t, err)

	calls := 0
	create := func() int { calls++; return 42 }
	assert.Equal(t, 42, c.GetOrPut("k", create))
	assert.Equal(t, 42, c.GetOrPut("k", create))
	assert.Equal(t, 1, calls)
}

func TestNewLRU_RejectsZeroCapacity(t *testing.T) {
	_, err := NewLRU[string, int](CacheConfig{})
	assert.Error(t, err)
}
