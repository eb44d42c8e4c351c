// Package ddpconfig is the YAML configuration for the interactive/daemon
// CLI mode, adapted from shadowmesh's pkg/config/config.go (same
// struct-with-yaml-tags, LoadConfig(path), setDefaults/validate shape),
// repointed from a Kademlia discovery node's settings to this library's
// poll/backoff/heartbeat/store settings.
package ddpconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete daemon configuration.
type Config struct {
	Discovery DiscoveryConfig `yaml:"discovery"`
	Session   SessionConfig   `yaml:"session"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Store     StoreConfig     `yaml:"store"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DiscoveryConfig holds DDP multiplexer tuning.
type DiscoveryConfig struct {
	MaxPolls       int           `yaml:"max_polls"`
	StandbyBackoff time.Duration `yaml:"standby_backoff"`
}

// SessionConfig holds TCP session tuning.
type SessionConfig struct {
	HeartbeatTimeout time.Duration `yaml:"heartbeat_timeout"`
}

// MetricsConfig holds the Prometheus /metrics HTTP listener settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// StoreConfig selects and configures the pkg/store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // "json" (default), "redis", "postgres"

	JSONDir string `yaml:"json_dir"`

	RedisHost     string        `yaml:"redis_host"`
	RedisPort     int           `yaml:"redis_port"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisTTL      time.Duration `yaml:"redis_ttl"`

	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     int    `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresDBName   string `yaml:"postgres_dbname"`
	PostgresSSLMode  string `yaml:"postgres_sslmode"`
}

// LoggingConfig holds structured-logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	OutputFile string `yaml:"output_file"`
}

// LoadConfig loads and validates configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ddpconfig: read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ddpconfig: parse config file: %w", err)
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("ddpconfig: invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Discovery.MaxPolls == 0 {
		c.Discovery.MaxPolls = 5
	}
	if c.Discovery.StandbyBackoff == 0 {
		c.Discovery.StandbyBackoff = 5 * time.Second
	}
	if c.Session.HeartbeatTimeout == 0 {
		c.Session.HeartbeatTimeout = 15 * time.Second
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9987"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "json"
	}
	if c.Store.RedisPort == 0 {
		c.Store.RedisPort = 6379
	}
	if c.Store.RedisTTL == 0 {
		c.Store.RedisTTL = 5 * time.Minute
	}
	if c.Store.PostgresPort == 0 {
		c.Store.PostgresPort = 5432
	}
	if c.Store.PostgresSSLMode == "" {
		c.Store.PostgresSSLMode = "disable"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "json", "redis", "postgres":
	default:
		return fmt.Errorf("unknown store backend: %s", c.Store.Backend)
	}
	if c.Store.Backend == "postgres" {
		if c.Store.PostgresHost == "" {
			return fmt.Errorf("postgres store backend requires postgres_host")
		}
		if c.Store.PostgresDBName == "" {
			return fmt.Errorf("postgres store backend requires postgres_dbname")
		}
	}
	if c.Store.Backend == "redis" && c.Store.RedisHost == "" {
		return fmt.Errorf("redis store backend requires redis_host")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	return nil
}
