package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file and environment variables.
// The file is optional; missing files fall back to defaults. Environment
// variables take precedence over file contents.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	applyEnvironmentOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvironmentOverrides applies HASHKV_* environment variable overrides
func applyEnvironmentOverrides(cfg *Config) {
	if host := os.Getenv("HASHKV_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("HASHKV_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if vnodes := os.Getenv("HASHKV_VIRTUAL_NODES"); vnodes != "" {
		if n, err := strconv.Atoi(vnodes); err == nil {
			cfg.HashRing.VirtualNodes = n
		}
	}
	if shards := os.Getenv("HASHKV_INITIAL_SHARDS"); shards != "" {
		parts := strings.Split(shards, ",")
		ids := make([]string, 0, len(parts))
		for _, part := range parts {
			if id := strings.TrimSpace(part); id != "" {
				ids = append(ids, id)
			}
		}
		cfg.Cluster.InitialShards = ids
	}
	if level := os.Getenv("HASHKV_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("HASHKV_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}
}
