// Package simulation drives a synthetic workload against the cluster and
// reports how many keys a topology change remaps. It is a pure consumer of
// the router service.
package simulation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/config"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/errors"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/model"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/service"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/util/workerpool"
)

// Report summarizes one simulation run.
type Report struct {
	RunID           string
	Scenario        string
	TotalKeys       int
	ShardsBefore    int
	ShardsAfter     int
	RemovedShard    string
	RemovedVNode    *model.VirtualNode
	Remapped        int
	Unaffected      int
	RemappedPercent float64
	OwnersBefore    map[string]int
	OwnersAfter     map[string]int
	LoadDuration    time.Duration
}

// Simulator loads keys into a cluster, applies a degradation scenario and
// measures the resulting ownership churn.
type Simulator struct {
	router *service.RouterService
	cfg    config.SimulationConfig
	logger *zap.Logger
}

// New creates a simulator over an already-populated topology.
func New(router *service.RouterService, cfg config.SimulationConfig, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		router: router,
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes the configured scenario and returns the remapping report.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:        uuid.NewString(),
		Scenario:     s.cfg.Scenario,
		TotalKeys:    s.cfg.Keys,
		ShardsBefore: s.router.ShardCount(),
	}

	keys := make([]string, s.cfg.Keys)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s%d", s.cfg.KeyPrefix, i)
	}

	s.logger.Info("loading keys",
		zap.String("run_id", report.RunID),
		zap.Int("keys", len(keys)),
		zap.Int("workers", s.cfg.Workers))

	start := time.Now()
	if err := s.load(ctx, keys); err != nil {
		return nil, err
	}
	report.LoadDuration = time.Since(start)

	ownersBefore, err := s.owners(keys)
	if err != nil {
		return nil, err
	}
	report.OwnersBefore = countByOwner(ownersBefore)

	switch s.cfg.Scenario {
	case config.ScenarioRemoveVirtualNode:
		vnode, err := s.router.RemoveOneVirtualNode()
		if err != nil {
			return nil, err
		}
		report.RemovedVNode = &vnode
	case config.ScenarioRemoveShard:
		target := s.cfg.Target
		if target == "" {
			shards := s.router.Shards()
			if len(shards) == 0 {
				return nil, errors.NoShardsAvailable("simulation")
			}
			target = shards[len(shards)-1].ShardID
		}
		if err := s.router.RemoveShard(target); err != nil {
			return nil, err
		}
		report.RemovedShard = target
	default:
		return nil, errors.InternalError("unknown simulation scenario", nil).
			WithDetail("scenario", s.cfg.Scenario)
	}

	ownersAfter, err := s.owners(keys)
	if err != nil {
		return nil, err
	}
	report.OwnersAfter = countByOwner(ownersAfter)
	report.ShardsAfter = s.router.ShardCount()

	for i := range keys {
		if ownersBefore[i] != ownersAfter[i] {
			report.Remapped++
		}
	}
	report.Unaffected = report.TotalKeys - report.Remapped
	report.RemappedPercent = float64(report.Remapped) / float64(report.TotalKeys) * 100

	s.logger.Info("simulation complete",
		zap.String("run_id", report.RunID),
		zap.String("scenario", report.Scenario),
		zap.Int("remapped", report.Remapped),
		zap.Float64("remapped_percent", report.RemappedPercent))

	return report, nil
}

// load writes every key concurrently through the worker pool.
func (s *Simulator) load(ctx context.Context, keys []string) error {
	pool := workerpool.NewWorkerPool(&workerpool.Config{
		Name:       "simulation-load",
		MaxWorkers: s.cfg.Workers,
		QueueSize:  s.cfg.QueueSize,
		Logger:     s.logger,
	})
	defer pool.Stop(5 * time.Second)

	for _, key := range keys {
		key := key
		task := workerpool.Task{
			ID: key,
			Fn: func(context.Context) error {
				return s.router.Put(key, "data_"+uuid.NewString())
			},
		}
		if err := pool.Submit(ctx, task); err != nil {
			return err
		}
	}

	if err := pool.Drain(ctx); err != nil {
		return err
	}
	if failed := pool.FailedTasks(); failed > 0 {
		return errors.InternalError("workload puts failed", nil).
			WithDetail("failed", failed)
	}
	return nil
}

// owners resolves the current owning shard per key, index-aligned with keys.
func (s *Simulator) owners(keys []string) ([]string, error) {
	owners := make([]string, len(keys))
	for i, key := range keys {
		owner, err := s.router.OwnerOf(key)
		if err != nil {
			return nil, err
		}
		owners[i] = owner
	}
	return owners, nil
}

func countByOwner(owners []string) map[string]int {
	counts := make(map[string]int)
	for _, owner := range owners {
		counts[owner]++
	}
	return counts
}

// String renders the text report.
func (r *Report) String() string {
	var b strings.Builder
	line := strings.Repeat("=", 44)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "        SIMULATION RESULTS REPORT")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Run ID:               %s\n", r.RunID)
	fmt.Fprintf(&b, "Scenario:             %s\n", r.Scenario)
	fmt.Fprintf(&b, "Total keys:           %d\n", r.TotalKeys)
	fmt.Fprintf(&b, "Shards before/after:  %d / %d\n", r.ShardsBefore, r.ShardsAfter)
	if r.RemovedShard != "" {
		fmt.Fprintf(&b, "Shard removed:        %s\n", r.RemovedShard)
	}
	if r.RemovedVNode != nil {
		fmt.Fprintf(&b, "Virtual node removed: %s (position %d)\n", r.RemovedVNode.VNodeID, r.RemovedVNode.Position)
	}
	fmt.Fprintf(&b, "Load duration:        %s\n", r.LoadDuration)
	fmt.Fprintln(&b, strings.Repeat("-", 44))
	fmt.Fprintf(&b, "Keys remapped:        %d\n", r.Remapped)
	fmt.Fprintf(&b, "Keys unaffected:      %d\n", r.Unaffected)
	fmt.Fprintf(&b, "Percentage remapped:  %.2f%%\n", r.RemappedPercent)
	fmt.Fprintln(&b, strings.Repeat("-", 44))

	fmt.Fprintln(&b, "Ownership before:")
	writeDistribution(&b, r.OwnersBefore)
	fmt.Fprintln(&b, "Ownership after:")
	writeDistribution(&b, r.OwnersAfter)

	return b.String()
}

func writeDistribution(b *strings.Builder, counts map[string]int) {
	shards := make([]string, 0, len(counts))
	total := 0
	for shard, count := range counts {
		shards = append(shards, shard)
		total += count
	}
	sort.Strings(shards)
	for _, shard := range shards {
		count := counts[shard]
		fmt.Fprintf(b, "  - %-12s %6d keys (%.2f%%)\n", shard+":", count, float64(count)/float64(total)*100)
	}
}
