// Package store provides the per-shard in-memory key-value storage.
package store

import "sync"

// ShardStore is a thread-safe in-memory key-value store owned by exactly one
// shard. Each instance has its own mutex so operations on different shards
// never contend with each other.
type ShardStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewShardStore creates an empty shard store.
func NewShardStore() *ShardStore {
	return &ShardStore{
		data: make(map[string]string),
	}
}

// Put inserts or overwrites a key.
func (s *ShardStore) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Get retrieves a value by key. The second return value reports presence.
func (s *ShardStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	return value, ok
}

// Delete removes a key and reports whether a removal occurred.
func (s *ShardStore) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return false
	}
	delete(s.data, key)
	return true
}

// Len returns the number of keys stored.
func (s *ShardStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns a point-in-time snapshot of the stored keys. The lock is held
// for the whole enumeration, so no key appears twice or goes missing because
// of a concurrent mutation.
func (s *ShardStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	return keys
}
