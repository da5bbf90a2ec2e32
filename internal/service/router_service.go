// Package service contains the cluster facade that routes key operations to
// shard stores via the consistent hash ring.
package service

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/algorithm"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/errors"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/metrics"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/model"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/store"
)

// RouterService owns the hash ring and the set of shard stores, and routes
// every key operation to the store of the owning shard.
//
// Two independent locking domains: the service mutex guards the shard
// registry, each ShardStore and the ring carry their own locks. Key operations
// release the registry lock before touching a store, so operations on
// different shards run in parallel.
type RouterService struct {
	ring    *algorithm.HashRing
	mu      sync.RWMutex
	shards  map[string]*store.ShardStore
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewRouterService creates a router with an empty ring.
// virtualNodes is the replica count per shard; metrics may be nil.
func NewRouterService(virtualNodes int, m *metrics.Metrics, logger *zap.Logger) *RouterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouterService{
		ring:    algorithm.NewHashRing(virtualNodes),
		shards:  make(map[string]*store.ShardStore),
		metrics: m,
		logger:  logger,
	}
}

// AddShard creates an empty store for the shard and registers it on the ring.
// The store is inserted before the ring entry so a concurrent lookup that
// routes to the new shard always finds a backing store.
func (s *RouterService) AddShard(shardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.shards[shardID]; exists {
		s.metrics.RecordError("add_shard", errors.ErrCodeShardExists.String())
		return errors.ShardExists(shardID)
	}

	s.shards[shardID] = store.NewShardStore()
	if err := s.ring.AddShard(shardID); err != nil {
		delete(s.shards, shardID)
		return err
	}

	placed, _ := s.ring.VirtualNodesOf(shardID)
	s.metrics.SetShardsActive(len(s.shards))
	s.metrics.SetVirtualNodes(s.ring.VirtualNodeCount())
	s.metrics.SetKeysStored(shardID, 0)
	s.logger.Info("shard added",
		zap.String("shard_id", shardID),
		zap.Int("virtual_nodes", placed))
	return nil
}

// RemoveShard unregisters the shard from the ring and discards its store.
// Stored entries are not migrated; keys previously owned by this shard are
// re-routed to their new owners on the next write.
func (s *RouterService) RemoveShard(shardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.shards[shardID]; !exists {
		s.metrics.RecordError("remove_shard", errors.ErrCodeShardNotFound.String())
		return errors.ShardNotFound(shardID)
	}

	if err := s.ring.RemoveShard(shardID); err != nil {
		return err
	}

	orphaned := s.shards[shardID].Len()
	delete(s.shards, shardID)

	s.metrics.SetShardsActive(len(s.shards))
	s.metrics.SetVirtualNodes(s.ring.VirtualNodeCount())
	s.metrics.RemoveShard(shardID)
	s.logger.Info("shard removed",
		zap.String("shard_id", shardID),
		zap.Int("orphaned_keys", orphaned))
	return nil
}

// RemoveOneVirtualNode removes the single virtual node at the smallest ring
// position, modeling partial degradation of one shard.
func (s *RouterService) RemoveOneVirtualNode() (model.VirtualNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vnode, err := s.ring.RemoveOneVirtualNode()
	if err != nil {
		s.metrics.RecordError("remove_virtual_node", errors.GetCode(err).String())
		return model.VirtualNode{}, err
	}

	s.metrics.SetVirtualNodes(s.ring.VirtualNodeCount())
	s.logger.Info("virtual node removed",
		zap.String("shard_id", vnode.ShardID),
		zap.Int("replica_index", vnode.ReplicaIndex),
		zap.Uint64("position", vnode.Position))
	return vnode, nil
}

// Put writes a key to the store of its owning shard.
func (s *RouterService) Put(key, value string) error {
	st, shardID, err := s.route("put", key)
	if err != nil {
		return err
	}
	st.Put(key, value)
	s.metrics.RecordOperation("put", shardID)
	s.metrics.SetKeysStored(shardID, st.Len())
	return nil
}

// Get reads a key from the store of its owning shard.
// The second return value reports presence.
func (s *RouterService) Get(key string) (string, bool, error) {
	st, shardID, err := s.route("get", key)
	if err != nil {
		return "", false, err
	}
	value, ok := st.Get(key)
	s.metrics.RecordOperation("get", shardID)
	return value, ok, nil
}

// Delete removes a key from the store of its owning shard and reports whether
// a removal occurred.
func (s *RouterService) Delete(key string) (bool, error) {
	st, shardID, err := s.route("delete", key)
	if err != nil {
		return false, err
	}
	deleted := st.Delete(key)
	s.metrics.RecordOperation("delete", shardID)
	s.metrics.SetKeysStored(shardID, st.Len())
	return deleted, nil
}

// OwnerOf returns the shard currently owning the key.
func (s *RouterService) OwnerOf(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.shards) == 0 {
		return "", errors.NoShardsAvailable("owner_of")
	}
	return s.ring.OwnerOf(key)
}

// KeyDistribution returns the current key count per shard. The counts are a
// per-shard snapshot, not a transactionally consistent view across shards.
func (s *RouterService) KeyDistribution() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dist := make(map[string]int, len(s.shards))
	for shardID, st := range s.shards {
		dist[shardID] = st.Len()
	}
	return dist
}

// Shards returns diagnostics for every registered shard, sorted by id.
func (s *RouterService) Shards() []model.ShardInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]model.ShardInfo, 0, len(s.shards))
	for shardID, st := range s.shards {
		placed, _ := s.ring.VirtualNodesOf(shardID)
		infos = append(infos, model.ShardInfo{
			ShardID:      shardID,
			VirtualNodes: placed,
			Keys:         st.Len(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ShardID < infos[j].ShardID })
	return infos
}

// ShardCount returns the number of registered shards.
func (s *RouterService) ShardCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shards)
}

// VirtualNodeCount returns the number of occupied ring positions.
func (s *RouterService) VirtualNodeCount() int {
	return s.ring.VirtualNodeCount()
}

// route resolves the owning shard and its store for a key operation.
func (s *RouterService) route(operation, key string) (*store.ShardStore, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.shards) == 0 {
		s.metrics.RecordError(operation, errors.ErrCodeNoShardsAvailable.String())
		return nil, "", errors.NoShardsAvailable(operation)
	}

	shardID, err := s.ring.OwnerOf(key)
	if err != nil {
		// Shards registered but every virtual node removed: to a caller of
		// put/get/delete this is the same no-capacity condition.
		s.metrics.RecordError(operation, errors.ErrCodeNoShardsAvailable.String())
		return nil, "", errors.NoShardsAvailable(operation)
	}

	st, ok := s.shards[shardID]
	if !ok {
		s.metrics.RecordError(operation, errors.ErrCodeInternal.String())
		return nil, "", errors.InternalError("ring owner has no backing store", nil).
			WithDetail("shard_id", shardID)
	}
	return st, shardID, nil
}
