package flowgraph

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/flowgraph/graph/redisstore"
	"github.com/zero-day-ai/flowgraph/registry"
	"github.com/zero-day-ai/flowgraph/registry/etcdregistry"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendEtcd   = "etcd"
)

// Environment variables that override the configuration file.
const (
	EnvStoreBackend      = "FLOWGRAPH_STORE_BACKEND"
	EnvRedisURL          = "FLOWGRAPH_REDIS_URL"
	EnvRegistryEndpoints = "FLOWGRAPH_REGISTRY_ENDPOINTS"
	EnvDefinitions       = "FLOWGRAPH_DEFINITIONS"
)

// Defaults.
const (
	DefaultLogLevel     = "info"
	DefaultRedisTimeout = 5 * time.Second
	DefaultEtcdTimeout  = 5 * time.Second
)

// Config is the platform configuration.
//
// Example YAML:
//
//	log_level: debug
//	store:
//	  backend: redis
//	  redis:
//	    url: redis://localhost:6379/0
//	    prefix: "flowgraph:"
//	registry:
//	  type_check: true
//	  cache_expiration: 10m
//	  etcd:
//	    endpoints: ["localhost:2379"]
//	    namespace: flowgraph
//	definitions:
//	  - ./definitions
type Config struct {
	// LogLevel is one of debug, info, warn, error. Default: info.
	LogLevel string `yaml:"log_level"`

	Store StoreConfig `yaml:"store"`

	Registry RegistryConfig `yaml:"registry"`

	// Definitions lists definition files or directories loaded on Open.
	Definitions []string `yaml:"definitions"`
}

// StoreConfig selects and configures the graph store.
type StoreConfig struct {
	// Backend is memory or redis. Default: memory.
	Backend string `yaml:"backend"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the Redis graph store.
type RedisConfig struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379/0").
	URL string `yaml:"url"`

	// Prefix is prepended to every key. Default: "flowgraph:".
	Prefix string `yaml:"prefix"`

	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// RegistryConfig selects and configures the type registries.
type RegistryConfig struct {
	// Backend is memory or etcd. Default: etcd when endpoints are set, memory otherwise.
	Backend string `yaml:"backend"`

	// TypeCheck makes the managers reject instances of unregistered types.
	TypeCheck bool `yaml:"type_check"`

	// CacheExpiration is the lifetime of cached etcd lookups. Default: 10m.
	CacheExpiration time.Duration `yaml:"cache_expiration"`

	Etcd etcdregistry.Config `yaml:"etcd"`
}

// LoadConfig reads a YAML configuration file and applies environment overrides.
// An empty path yields the defaults plus environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides fields from FLOWGRAPH_* environment variables. List values are
// comma separated.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvStoreBackend); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Store.Redis.URL = v
	}
	if v := os.Getenv(EnvRegistryEndpoints); v != "" {
		c.Registry.Etcd.Endpoints = splitList(v)
	}
	if v := os.Getenv(EnvDefinitions); v != "" {
		c.Definitions = splitList(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks backend names and the settings each backend requires.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.GetLogLevel()); err != nil {
		return err
	}

	switch c.Store.GetBackend() {
	case BackendMemory:
	case BackendRedis:
		if c.Store.Redis.URL == "" {
			return fmt.Errorf("%w: store.redis.url is required for the redis backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: store %q", ErrUnknownBackend, c.Store.Backend)
	}

	switch c.Registry.GetBackend() {
	case BackendMemory:
	case BackendEtcd:
		if len(c.Registry.Etcd.Endpoints) == 0 {
			return fmt.Errorf("%w: registry.etcd.endpoints is required for the etcd backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: registry %q", ErrUnknownBackend, c.Registry.Backend)
	}
	return nil
}

// GetLogLevel returns the log level or the default.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return DefaultLogLevel
	}
	return c.LogLevel
}

// SlogLevel returns the configured level as a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	return parseLevel(c.GetLogLevel())
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
	}
	return level, nil
}

// GetBackend returns the store backend or the default.
func (c *StoreConfig) GetBackend() string {
	if c.Backend == "" {
		return BackendMemory
	}
	return strings.ToLower(c.Backend)
}

// GetPrefix returns the Redis key prefix or the default.
func (c *RedisConfig) GetPrefix() string {
	if c.Prefix == "" {
		return redisstore.DefaultPrefix
	}
	return c.Prefix
}

// GetConnectTimeout returns the connect timeout or the default.
func (c *RedisConfig) GetConnectTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return DefaultRedisTimeout
	}
	return c.ConnectTimeout
}

// Options converts the configuration to redisstore connection options.
func (c *RedisConfig) Options() redisstore.Options {
	return redisstore.Options{
		URL:            c.URL,
		ConnectTimeout: c.GetConnectTimeout(),
		ReadTimeout:    c.ReadTimeout,
		WriteTimeout:   c.WriteTimeout,
	}
}

// GetBackend returns the registry backend or the default.
func (c *RegistryConfig) GetBackend() string {
	if c.Backend != "" {
		return strings.ToLower(c.Backend)
	}
	if len(c.Etcd.Endpoints) > 0 {
		return BackendEtcd
	}
	return BackendMemory
}

// GetCacheExpiration returns the registry cache lifetime or the default.
func (c *RegistryConfig) GetCacheExpiration() time.Duration {
	if c.CacheExpiration <= 0 {
		return registry.DefaultExpiration
	}
	return c.CacheExpiration
}

// GetNamespace returns the etcd key namespace or the default.
func (c *RegistryConfig) GetNamespace() string {
	if c.Etcd.Namespace == "" {
		return etcdregistry.DefaultNamespace
	}
	return c.Etcd.Namespace
}

// GetDialTimeout returns the etcd dial timeout or the default.
func (c *RegistryConfig) GetDialTimeout() time.Duration {
	if c.Etcd.DialTimeout <= 0 {
		return DefaultEtcdTimeout
	}
	return c.Etcd.DialTimeout
}
