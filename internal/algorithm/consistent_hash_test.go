package algorithm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/errors"
)

func TestSum_Deterministic(t *testing.T) {
	assert.Equal(t, Sum("user_1"), Sum("user_1"))
	assert.NotEqual(t, Sum("user_1"), Sum("user_2"))
}

func TestHashRing_AddShard(t *testing.T) {
	ring := NewHashRing(50)

	require.NoError(t, ring.AddShard("shard-a"))
	assert.Equal(t, 1, ring.ShardCount())
	assert.Equal(t, 50, ring.VirtualNodeCount())

	placed, exists := ring.VirtualNodesOf("shard-a")
	assert.True(t, exists)
	assert.Equal(t, 50, placed)
}

func TestHashRing_AddShardDuplicate(t *testing.T) {
	ring := NewHashRing(50)
	require.NoError(t, ring.AddShard("shard-a"))

	err := ring.AddShard("shard-a")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeShardExists, errors.GetCode(err))
	assert.Equal(t, 50, ring.VirtualNodeCount())
}

func TestHashRing_RemoveShard(t *testing.T) {
	ring := NewHashRing(50)
	require.NoError(t, ring.AddShard("shard-a"))
	require.NoError(t, ring.AddShard("shard-b"))

	require.NoError(t, ring.RemoveShard("shard-a"))
	assert.Equal(t, 1, ring.ShardCount())
	assert.Equal(t, 50, ring.VirtualNodeCount())
	assert.Equal(t, []string{"shard-b"}, ring.Shards())

	_, exists := ring.VirtualNodesOf("shard-a")
	assert.False(t, exists)
}

func TestHashRing_RemoveShardUnknown(t *testing.T) {
	ring := NewHashRing(50)

	err := ring.RemoveShard("shard-x")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeShardNotFound, errors.GetCode(err))
}

func TestHashRing_EmptyRingErrors(t *testing.T) {
	ring := NewHashRing(50)

	_, err := ring.OwnerOf("user_1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEmptyRing, errors.GetCode(err))

	_, err = ring.RemoveOneVirtualNode()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEmptyRing, errors.GetCode(err))
}

func TestHashRing_Determinism(t *testing.T) {
	ring1 := NewHashRing(50)
	ring2 := NewHashRing(50)
	for _, shardID := range []string{"shard-a", "shard-b", "shard-c"} {
		require.NoError(t, ring1.AddShard(shardID))
		require.NoError(t, ring2.AddShard(shardID))
	}

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("user_%d", i)
		owner1, err := ring1.OwnerOf(key)
		require.NoError(t, err)
		owner2, err := ring2.OwnerOf(key)
		require.NoError(t, err)
		assert.Equal(t, owner1, owner2, "key %s", key)

		again, err := ring1.OwnerOf(key)
		require.NoError(t, err)
		assert.Equal(t, owner1, again, "key %s", key)
	}
}

func TestHashRing_Coverage(t *testing.T) {
	ring := NewHashRing(50)
	shards := map[string]bool{"shard-a": true, "shard-b": true, "shard-c": true}
	for shardID := range shards {
		require.NoError(t, ring.AddShard(shardID))
	}

	for i := 0; i < 1000; i++ {
		owner, err := ring.OwnerOf(fmt.Sprintf("user_%d", i))
		require.NoError(t, err)
		assert.True(t, shards[owner], "owner %q is not a registered shard", owner)
	}

	require.NoError(t, ring.RemoveShard("shard-b"))
	for i := 0; i < 1000; i++ {
		owner, err := ring.OwnerOf(fmt.Sprintf("user_%d", i))
		require.NoError(t, err)
		assert.NotEqual(t, "shard-b", owner)
	}
}

func TestHashRing_StrictSuccessor(t *testing.T) {
	ring := NewHashRing(50)
	require.NoError(t, ring.AddShard("shard-a"))
	require.NoError(t, ring.AddShard("shard-b"))
	require.NoError(t, ring.AddShard("shard-c"))

	// A hash landing exactly on an occupied position belongs to the next
	// position clockwise, not to the position it hit.
	for idx := 0; idx < len(ring.ring)-1; idx += 17 {
		pos := ring.ring[idx]
		owner, err := ring.ownerAt(pos)
		require.NoError(t, err)
		expected := ring.ringMap[ring.ring[idx+1]].shardID
		assert.Equal(t, expected, owner, "position index %d", idx)
	}

	// The maximum occupied position wraps to the smallest one.
	maxPos := ring.ring[len(ring.ring)-1]
	owner, err := ring.ownerAt(maxPos)
	require.NoError(t, err)
	assert.Equal(t, ring.ringMap[ring.ring[0]].shardID, owner)

	// A hash between two occupied positions belongs to the upper neighbor.
	if ring.ring[1]-ring.ring[0] > 1 {
		owner, err := ring.ownerAt(ring.ring[0] + 1)
		require.NoError(t, err)
		assert.Equal(t, ring.ringMap[ring.ring[1]].shardID, owner)
	}
}

func TestHashRing_RemoveOneVirtualNode(t *testing.T) {
	ring := NewHashRing(50)
	require.NoError(t, ring.AddShard("shard-a"))
	require.NoError(t, ring.AddShard("shard-b"))
	require.NoError(t, ring.AddShard("shard-c"))

	smallest := ring.ring[0]
	before := ring.VirtualNodeCount()

	vnode, err := ring.RemoveOneVirtualNode()
	require.NoError(t, err)
	assert.Equal(t, smallest, vnode.Position)
	assert.Equal(t, before-1, ring.VirtualNodeCount())
	assert.Contains(t, []string{"shard-a", "shard-b", "shard-c"}, vnode.ShardID)
	assert.Equal(t, fmt.Sprintf("%s-vnode-%d", vnode.ShardID, vnode.ReplicaIndex), vnode.VNodeID)

	placed, exists := ring.VirtualNodesOf(vnode.ShardID)
	assert.True(t, exists, "shard stays registered after losing one replica")
	assert.Equal(t, 49, placed)

	// Removal order is deterministic and ascending.
	next, err := ring.RemoveOneVirtualNode()
	require.NoError(t, err)
	assert.Greater(t, next.Position, vnode.Position)
}

func TestHashRing_DrainToEmpty(t *testing.T) {
	ring := NewHashRing(3)
	require.NoError(t, ring.AddShard("shard-a"))

	for i := 0; i < 3; i++ {
		_, err := ring.RemoveOneVirtualNode()
		require.NoError(t, err)
	}

	assert.Equal(t, 0, ring.VirtualNodeCount())
	assert.Equal(t, 1, ring.ShardCount())

	_, err := ring.OwnerOf("user_1")
	assert.Equal(t, errors.ErrCodeEmptyRing, errors.GetCode(err))
}

func TestHashRing_Distribution(t *testing.T) {
	ring := NewHashRing(150)
	shards := []string{"shard-a", "shard-b", "shard-c"}
	for _, shardID := range shards {
		require.NoError(t, ring.AddShard(shardID))
	}

	counts := make(map[string]int)
	numKeys := 3000
	for i := 0; i < numKeys; i++ {
		owner, err := ring.OwnerOf(fmt.Sprintf("key-%d", i))
		require.NoError(t, err)
		counts[owner]++
	}

	assert.Len(t, counts, len(shards))
	for shardID, count := range counts {
		share := float64(count) / float64(numKeys) * 100
		assert.Greater(t, share, 10.0, "shard %s starved: %.2f%%", shardID, share)
		assert.Less(t, share, 60.0, "shard %s overloaded: %.2f%%", shardID, share)
	}
}

func TestHashRing_BoundedRemapping(t *testing.T) {
	ring := NewHashRing(50)
	for i := 0; i < 4; i++ {
		require.NoError(t, ring.AddShard(fmt.Sprintf("shard-%d", i)))
	}

	numKeys := 10000
	before := make([]string, numKeys)
	for i := 0; i < numKeys; i++ {
		owner, err := ring.OwnerOf(fmt.Sprintf("user_%d", i))
		require.NoError(t, err)
		before[i] = owner
	}

	require.NoError(t, ring.RemoveShard("shard-2"))

	remapped := 0
	for i := 0; i < numKeys; i++ {
		owner, err := ring.OwnerOf(fmt.Sprintf("user_%d", i))
		require.NoError(t, err)
		if owner != before[i] {
			remapped++
		}
	}

	// Removing 1 of 4 shards should move close to 1/4 of the keys,
	// nowhere near the naive-modulo (N-1)/N.
	percent := float64(remapped) / float64(numKeys) * 100
	assert.Greater(t, percent, 15.0, "remapped %.2f%%", percent)
	assert.Less(t, percent, 35.0, "remapped %.2f%%", percent)
}
