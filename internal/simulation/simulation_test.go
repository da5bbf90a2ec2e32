package simulation

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/config"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/metrics"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/service"
)

func newTestCluster(t *testing.T, virtualNodes, shardCount int) *service.RouterService {
	t.Helper()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	svc := service.NewRouterService(virtualNodes, m, zap.NewNop())
	for i := 0; i < shardCount; i++ {
		require.NoError(t, svc.AddShard(fmt.Sprintf("shard-%d", i)))
	}
	return svc
}

func TestSimulator_RemoveShardScenario(t *testing.T) {
	svc := newTestCluster(t, 50, 4)
	sim := New(svc, config.SimulationConfig{
		Keys:      10000,
		KeyPrefix: "user_",
		Workers:   8,
		QueueSize: 256,
		Scenario:  config.ScenarioRemoveShard,
		Target:    "shard-2",
	}, zap.NewNop())

	report, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10000, report.TotalKeys)
	assert.Equal(t, 4, report.ShardsBefore)
	assert.Equal(t, 3, report.ShardsAfter)
	assert.Equal(t, "shard-2", report.RemovedShard)
	assert.NotContains(t, report.OwnersAfter, "shard-2")
	assert.Equal(t, report.TotalKeys, report.Remapped+report.Unaffected)

	// Removing 1 of 4 shards remaps ~1/4 of the keys.
	assert.Greater(t, report.RemappedPercent, 15.0, "remapped %.2f%%", report.RemappedPercent)
	assert.Less(t, report.RemappedPercent, 35.0, "remapped %.2f%%", report.RemappedPercent)
}

func TestSimulator_RemoveVirtualNodeScenario(t *testing.T) {
	svc := newTestCluster(t, 50, 3)
	vnodesBefore := svc.VirtualNodeCount()

	sim := New(svc, config.SimulationConfig{
		Keys:      2000,
		KeyPrefix: "user_",
		Workers:   4,
		QueueSize: 128,
		Scenario:  config.ScenarioRemoveVirtualNode,
	}, zap.NewNop())

	report, err := sim.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, report.RemovedVNode)
	assert.Equal(t, vnodesBefore-1, svc.VirtualNodeCount(), "exactly one virtual node removed")
	assert.Equal(t, report.ShardsBefore, report.ShardsAfter, "no whole shard removed")

	// Dropping one of 150 virtual nodes touches only that node's arc.
	assert.Less(t, report.RemappedPercent, 10.0, "remapped %.2f%%", report.RemappedPercent)
}

func TestSimulator_DistributionAccounting(t *testing.T) {
	svc := newTestCluster(t, 50, 3)
	sim := New(svc, config.SimulationConfig{
		Keys:      1000,
		KeyPrefix: "k_",
		Workers:   4,
		QueueSize: 64,
		Scenario:  config.ScenarioRemoveVirtualNode,
	}, zap.NewNop())

	report, err := sim.Run(context.Background())
	require.NoError(t, err)

	totalBefore := 0
	for _, count := range report.OwnersBefore {
		totalBefore += count
	}
	assert.Equal(t, report.TotalKeys, totalBefore)

	totalAfter := 0
	for _, count := range report.OwnersAfter {
		totalAfter += count
	}
	assert.Equal(t, report.TotalKeys, totalAfter)

	text := report.String()
	assert.Contains(t, text, "SIMULATION RESULTS REPORT")
	assert.Contains(t, text, "Percentage remapped")
}

func TestSimulator_NoShards(t *testing.T) {
	svc := newTestCluster(t, 50, 0)
	sim := New(svc, config.SimulationConfig{
		Keys:      10,
		KeyPrefix: "k_",
		Workers:   2,
		QueueSize: 8,
		Scenario:  config.ScenarioRemoveShard,
	}, zap.NewNop())

	_, err := sim.Run(context.Background())
	assert.Error(t, err)
}
