package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port     string `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type GraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type EmbedderConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type CacheConfig struct {
	// Backend is one of "memory", "redis" or "none".
	Backend       string `toml:"backend"`
	TTLSeconds    int    `toml:"ttl_seconds"`
	MaxCostBytes  int64  `toml:"max_cost_bytes"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

type SessionConfig struct {
	TimeoutSeconds       int `toml:"timeout_seconds"`
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`
	MaxHistory           int `toml:"max_history"`
}

type EngineConfig struct {
	BackendTimeoutMillis int `toml:"backend_timeout_millis"`
	DefaultLimit         int `toml:"default_limit"`
	MaxGraphDepth        int `toml:"max_graph_depth"`
	PoolSize             int `toml:"pool_size"`
	TopK                 int `toml:"top_k"`
}

type ProcessorConfig struct {
	MaxExpansions int `toml:"max_expansions"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Graph     GraphConfig     `toml:"graph"`
	Embedder  EmbedderConfig  `toml:"embedder"`
	Cache     CacheConfig     `toml:"cache"`
	Session   SessionConfig   `toml:"session"`
	Engine    EngineConfig    `toml:"engine"`
	Processor ProcessorConfig `toml:"processor"`
}

// Default returns a configuration that works against local backends.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     "8080",
			LogLevel: "info",
		},
		Graph: GraphConfig{
			URI: "bolt://localhost:7687",
		},
		Embedder: EmbedderConfig{
			Provider: "ollama",
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		Cache: CacheConfig{
			Backend:      "memory",
			TTLSeconds:   300,
			MaxCostBytes: 64 << 20,
		},
		Session: SessionConfig{
			TimeoutSeconds:       1800,
			SweepIntervalSeconds: 60,
			MaxHistory:           20,
		},
		Engine: EngineConfig{
			BackendTimeoutMillis: 5000,
			DefaultLimit:         10,
			MaxGraphDepth:        2,
			PoolSize:             64,
			TopK:                 5,
		},
		Processor: ProcessorConfig{
			MaxExpansions: 3,
		},
	}
}

// Load reads a TOML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

func (c *EngineConfig) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutMillis) * time.Millisecond
}

func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func (c *SessionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *SessionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
