package config

import (
	"errors"
	"time"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// HashRingConfig holds consistent hashing configuration
type HashRingConfig struct {
	VirtualNodes int `yaml:"virtual_nodes"`
}

// ClusterConfig holds the initial shard topology
type ClusterConfig struct {
	InitialShards []string `yaml:"initial_shards"`
}

// SimulationConfig holds the workload used by the simulation driver
type SimulationConfig struct {
	Keys      int    `yaml:"keys"`
	KeyPrefix string `yaml:"key_prefix"`
	Workers   int    `yaml:"workers"`
	QueueSize int    `yaml:"queue_size"`
	Scenario  string `yaml:"scenario"`
	Target    string `yaml:"target"`
}

// RateLimiterConfig holds request rate limiting configuration
type RateLimiterConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config represents the complete configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	HashRing    HashRingConfig    `yaml:"hash_ring"`
	Cluster     ClusterConfig     `yaml:"cluster"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	RateLimiter RateLimiterConfig `yaml:"rate_limiter"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// Scenario names accepted by simulation.scenario
const (
	ScenarioRemoveShard       = "remove_shard"
	ScenarioRemoveVirtualNode = "remove_virtual_node"
)

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("server.port must be between 1 and 65535")
	}
	if c.HashRing.VirtualNodes <= 0 {
		return errors.New("hash_ring.virtual_nodes must be positive")
	}
	for _, shardID := range c.Cluster.InitialShards {
		if shardID == "" {
			return errors.New("cluster.initial_shards must not contain empty ids")
		}
	}
	if c.Simulation.Keys <= 0 {
		return errors.New("simulation.keys must be positive")
	}
	if c.Simulation.Workers <= 0 {
		return errors.New("simulation.workers must be positive")
	}
	switch c.Simulation.Scenario {
	case ScenarioRemoveShard, ScenarioRemoveVirtualNode:
	default:
		return errors.New("simulation.scenario must be one of: remove_shard, remove_virtual_node")
	}
	if c.RateLimiter.Enabled && c.RateLimiter.RequestsPerSecond <= 0 {
		return errors.New("rate_limiter.requests_per_second must be positive when enabled")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	return nil
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		HashRing: HashRingConfig{
			VirtualNodes: 150,
		},
		Cluster: ClusterConfig{
			InitialShards: []string{"shard-a", "shard-b", "shard-c"},
		},
		Simulation: SimulationConfig{
			Keys:      10000,
			KeyPrefix: "user_",
			Workers:   8,
			QueueSize: 256,
			Scenario:  ScenarioRemoveShard,
		},
		RateLimiter: RateLimiterConfig{
			Enabled:           false,
			RequestsPerSecond: 1000,
			BurstSize:         200,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
