package model

// VirtualNode represents one placement of a shard on the hash ring
type VirtualNode struct {
	VNodeID      string
	ShardID      string
	ReplicaIndex int
	Position     uint64
}

// ShardInfo describes a registered shard for diagnostics
type ShardInfo struct {
	ShardID      string `json:"shard_id"`
	VirtualNodes int    `json:"virtual_nodes"`
	Keys         int    `json:"keys"`
}
