package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheInsertWithinBudget(t *testing.T) {
	cache := NewCache(3)
	require.NoError(t, cache.Insert("A", "valueA", 1))
	require.NoError(t, cache.Insert("B", "valueB", 1))
	require.NoError(t, cache.Insert("C", "valueC", 1))

	assert.Equal(t, 3, cache.GetWeight())
	assert.Equal(t, 3, cache.GetBudget())

	value, ok := cache.Retrieve("B")
	require.True(t, ok)
	assert.Equal(t, "valueB", value)
}

func TestCacheInsertDuplicateRejected(t *testing.T) {
	cache := NewCache(2)
	require.NoError(t, cache.Insert("dupe", "valueDupe", 1))
	assert.Equal(t, ErrKeyExists, cache.Insert("dupe", "other", 1))

	value, ok := cache.Retrieve("dupe")
	require.True(t, ok)
	assert.Equal(t, "valueDupe", value)
}

func TestCacheInsertEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewCache(2)
	cache.SetVerbose(true)

	require.NoError(t, cache.Insert("evicted", "valueEvicted", 1))
	require.NoError(t, cache.Insert("A", "valueA", 1))
	require.NoError(t, cache.Insert("B", "valueB", 1))

	assert.Equal(t, 2, cache.GetWeight())

	_, found := cache.Retrieve("evicted")
	assert.False(t, found)

	_, foundA := cache.Retrieve("A")
	_, foundB := cache.Retrieve("B")
	assert.True(t, foundA)
	assert.True(t, foundB)
}

func TestCacheInsertEvictsLeastRecentlyRetrieved(t *testing.T) {
	cache := NewCache(2)
	require.NoError(t, cache.Insert("A", "valueA", 1))
	require.NoError(t, cache.Insert("B", "valueB", 1))

	// Accessing "A" makes "B" the least recently used item
	cache.Retrieve("A")
	require.NoError(t, cache.Insert("C", "valueC", 1))

	_, foundB := cache.Retrieve("B")
	assert.False(t, foundB)

	_, foundA := cache.Retrieve("A")
	assert.True(t, foundA)
}

func TestCacheInsertOverweight(t *testing.T) {
	cache := NewCache(2)
	require.NoError(t, cache.Insert("A", "valueA", 1))
	require.NoError(t, cache.Insert("heavy", "valueHeavy", 3))

	// An entry heavier than the budget evicts everything, itself included.
	assert.Equal(t, 0, cache.GetWeight())
	_, found := cache.Retrieve("heavy")
	assert.False(t, found)
}

func TestClear(t *testing.T) {
	cache := NewCache(1)
	require.NoError(t, cache.Insert("cleared", "valueCleared", 1))
	cache.Clear()

	_, found := cache.Retrieve("cleared")
	assert.False(t, found)
	assert.Equal(t, 0, cache.GetWeight())

	require.NoError(t, cache.Insert("cleared", "valueCleared", 1))
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewCache(50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d-%d", worker, j)
				_ = cache.Insert(key, j, 1)
				cache.Retrieve(key)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, cache.GetWeight())
}
