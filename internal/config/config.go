package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rook-computer/socialcard/internal/settings"
)

const (
	EnvLogLevel      = "SOCIALCARD_LOG_LEVEL"
	EnvStoreBackend  = "SOCIALCARD_STORE"
	EnvStorePath     = "SOCIALCARD_STORE_PATH"
	EnvRedisAddr     = "SOCIALCARD_REDIS_ADDR"
	EnvRedisPassword = "SOCIALCARD_REDIS_PASSWORD"
	EnvFramebuffer   = "SOCIALCARD_FRAMEBUFFER"
	EnvSeed          = "SOCIALCARD_SEED"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config represents the application configuration
type Config struct {
	Listen      string            `yaml:"listen"`
	Dev         bool              `yaml:"dev"`
	StaticDir   string            `yaml:"static_dir"`
	PublicURL   string            `yaml:"public_url"`
	LogLevel    string            `yaml:"log_level"`
	Store       StoreConfig       `yaml:"store"`
	Framebuffer FramebufferConfig `yaml:"framebuffer"`

	// Seed fixes the grain noise. Nil means a random seed per process.
	Seed *uint64 `yaml:"seed"`
}

type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// FramebufferConfig enables the framebuffer preview when Device is set.
type FramebufferConfig struct {
	Device string `yaml:"device"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:   ":8080",
		LogLevel: "info",
		Store: StoreConfig{
			Backend: BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379", Key: settings.StorageKey},
		},
	}
}

// Load reads the configuration file over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from SOCIALCARD_* variables. Listen address and
// dev mode are read by the web package.
func (c *Config) ApplyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(EnvLogLevel, &c.LogLevel)
	setString(EnvStoreBackend, &c.Store.Backend)
	setString(EnvStorePath, &c.Store.Path)
	setString(EnvRedisAddr, &c.Store.Redis.Addr)
	setString(EnvRedisPassword, &c.Store.Redis.Password)
	setString(EnvFramebuffer, &c.Framebuffer.Device)

	if raw := os.Getenv(EnvSeed); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%s must be an unsigned integer (got %q): %w", EnvSeed, raw, err)
		}
		c.Seed = &seed
	}
	return nil
}

// Validate checks enumerations and backend requirements.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error (got %q)", c.LogLevel)
	}
	switch c.Store.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis backend")
		}
		if c.Store.Redis.DB < 0 {
			return fmt.Errorf("store.redis.db must not be negative")
		}
	default:
		return fmt.Errorf("store.backend must be file, redis or memory (got %q)", c.Store.Backend)
	}
	return nil
}
