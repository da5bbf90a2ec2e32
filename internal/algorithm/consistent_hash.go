package algorithm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/errors"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/model"
)

// DefaultVirtualNodes is the replica count used when none is configured.
const DefaultVirtualNodes = 150

// vnodeRef identifies the owner of an occupied ring position.
type vnodeRef struct {
	shardID      string
	replicaIndex int
}

// HashRing implements consistent hashing with virtual nodes.
//
// Each shard is placed on the ring at up to `replicas` positions. A key is
// owned by the first occupied position strictly greater than the key's hash,
// wrapping around at the top of the position space. Lookup is O(log N) in the
// number of occupied positions.
type HashRing struct {
	replicas    int
	ring        []uint64            // sorted occupied positions
	ringMap     map[uint64]vnodeRef // position -> owning virtual node
	shardVNodes map[string][]uint64 // shardID -> positions it occupies
	mu          sync.RWMutex
}

// NewHashRing creates an empty ring with the given virtual node count per shard.
func NewHashRing(replicas int) *HashRing {
	if replicas <= 0 {
		replicas = DefaultVirtualNodes
	}
	return &HashRing{
		replicas:    replicas,
		ring:        make([]uint64, 0),
		ringMap:     make(map[uint64]vnodeRef),
		shardVNodes: make(map[string][]uint64),
	}
}

// vnodeID derives the deterministic hash input for one replica of a shard.
func vnodeID(shardID string, replica int) string {
	return fmt.Sprintf("%s-vnode-%d", shardID, replica)
}

// AddShard places `replicas` virtual nodes for the shard on the ring.
// Returns ErrCodeShardExists if the shard is already registered. A replica
// whose position is already occupied is dropped, so a shard may legitimately
// end up with fewer placements than the configured replica count.
func (r *HashRing) AddShard(shardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.shardVNodes[shardID]; exists {
		return errors.ShardExists(shardID)
	}

	positions := make([]uint64, 0, r.replicas)
	for i := 0; i < r.replicas; i++ {
		pos := Sum(vnodeID(shardID, i))
		if _, occupied := r.ringMap[pos]; occupied {
			// Position collision: drop this replica.
			continue
		}
		r.ringMap[pos] = vnodeRef{shardID: shardID, replicaIndex: i}
		positions = append(positions, pos)

		idx := sort.Search(len(r.ring), func(j int) bool { return r.ring[j] >= pos })
		r.ring = append(r.ring, 0)
		copy(r.ring[idx+1:], r.ring[idx:])
		r.ring[idx] = pos
	}
	r.shardVNodes[shardID] = positions

	return nil
}

// RemoveShard removes every virtual node belonging to the shard.
// Returns ErrCodeShardNotFound if the shard is not registered. Stored entries
// are not touched; data migration is the caller's concern.
func (r *HashRing) RemoveShard(shardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	positions, exists := r.shardVNodes[shardID]
	if !exists {
		return errors.ShardNotFound(shardID)
	}

	removed := make(map[uint64]bool, len(positions))
	for _, pos := range positions {
		removed[pos] = true
		delete(r.ringMap, pos)
	}

	newRing := make([]uint64, 0, len(r.ring)-len(positions))
	for _, pos := range r.ring {
		if !removed[pos] {
			newRing = append(newRing, pos)
		}
	}
	r.ring = newRing

	delete(r.shardVNodes, shardID)
	return nil
}

// RemoveOneVirtualNode removes the virtual node at the numerically smallest
// position and returns its identity. The choice is deterministic so partial
// degradation scenarios are reproducible. Returns ErrCodeEmptyRing if no
// virtual nodes remain. The owning shard stays registered even if this was
// its last placement.
func (r *HashRing) RemoveOneVirtualNode() (model.VirtualNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.ring) == 0 {
		return model.VirtualNode{}, errors.EmptyRing("remove_virtual_node")
	}

	pos := r.ring[0]
	ref := r.ringMap[pos]

	delete(r.ringMap, pos)
	r.ring = r.ring[1:]

	owned := r.shardVNodes[ref.shardID]
	for i, p := range owned {
		if p == pos {
			r.shardVNodes[ref.shardID] = append(owned[:i], owned[i+1:]...)
			break
		}
	}

	return model.VirtualNode{
		VNodeID:      vnodeID(ref.shardID, ref.replicaIndex),
		ShardID:      ref.shardID,
		ReplicaIndex: ref.replicaIndex,
		Position:     pos,
	}, nil
}

// OwnerOf returns the shard that owns the key.
// Returns ErrCodeEmptyRing if the ring has no virtual nodes.
func (r *HashRing) OwnerOf(key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ownerAt(Sum(key))
}

// ownerAt resolves the owner of a hash position. Caller holds r.mu.
// The successor search is strict: a key whose hash lands exactly on an
// occupied position belongs to the next position clockwise, not that one.
func (r *HashRing) ownerAt(h uint64) (string, error) {
	if len(r.ring) == 0 {
		return "", errors.EmptyRing("owner_of")
	}

	idx := sort.Search(len(r.ring), func(i int) bool { return r.ring[i] > h })
	if idx == len(r.ring) {
		idx = 0
	}
	return r.ringMap[r.ring[idx]].shardID, nil
}

// VirtualNodeCount returns the number of occupied positions on the ring.
func (r *HashRing) VirtualNodeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ring)
}

// ShardCount returns the number of registered shards.
func (r *HashRing) ShardCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shardVNodes)
}

// VirtualNodesOf returns how many placements the shard currently owns,
// and whether the shard is registered at all.
func (r *HashRing) VirtualNodesOf(shardID string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	positions, exists := r.shardVNodes[shardID]
	return len(positions), exists
}

// Shards returns the registered shard ids in sorted order.
func (r *HashRing) Shards() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shards := make([]string, 0, len(r.shardVNodes))
	for shardID := range r.shardVNodes {
		shards = append(shards, shardID)
	}
	sort.Strings(shards)
	return shards
}
