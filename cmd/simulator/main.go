package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/config"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/metrics"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/service"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/simulation"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	scenario := flag.String("scenario", "", "override simulation scenario (remove_shard or remove_virtual_node)")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "./config.yaml"
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *scenario != "" {
		cfg.Simulation.Scenario = *scenario
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	m := metrics.NewMetrics(prometheus.NewRegistry())
	routerSvc := service.NewRouterService(cfg.HashRing.VirtualNodes, m, logger)

	for _, shardID := range cfg.Cluster.InitialShards {
		if err := routerSvc.AddShard(shardID); err != nil {
			logger.Fatal("Failed to register initial shard",
				zap.String("shard_id", shardID),
				zap.Error(err))
		}
	}

	sim := simulation.New(routerSvc, cfg.Simulation, logger)
	report, err := sim.Run(context.Background())
	if err != nil {
		logger.Fatal("Simulation failed", zap.Error(err))
	}

	fmt.Print(report.String())
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
