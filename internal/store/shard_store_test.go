package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardStore_RoundTrip(t *testing.T) {
	s := NewShardStore()

	s.Put("user_1", "x")
	value, ok := s.Get("user_1")
	require.True(t, ok)
	assert.Equal(t, "x", value)

	s.Put("user_1", "y")
	value, ok = s.Get("user_1")
	require.True(t, ok)
	assert.Equal(t, "y", value, "put overwrites")

	assert.True(t, s.Delete("user_1"))
	_, ok = s.Get("user_1")
	assert.False(t, ok)
}

func TestShardStore_DeleteAbsent(t *testing.T) {
	s := NewShardStore()
	assert.False(t, s.Delete("missing"))
}

func TestShardStore_GetAbsent(t *testing.T) {
	s := NewShardStore()
	value, ok := s.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestShardStore_LenAndKeys(t *testing.T) {
	s := NewShardStore()
	for i := 0; i < 10; i++ {
		s.Put(fmt.Sprintf("key-%d", i), "v")
	}

	assert.Equal(t, 10, s.Len())

	keys := s.Keys()
	assert.Len(t, keys, 10)
	seen := make(map[string]bool)
	for _, key := range keys {
		assert.False(t, seen[key], "key %s appears twice in snapshot", key)
		seen[key] = true
	}
}

func TestShardStore_ConcurrentAccess(t *testing.T) {
	s := NewShardStore()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d-%d", w, i)
				s.Put(key, "v")
				_, _ = s.Get(key)
				if i%2 == 0 {
					s.Delete(key)
				}
				_ = s.Keys()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 8*100, s.Len())
}
