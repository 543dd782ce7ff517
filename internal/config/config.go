// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// RBO computation defaults
	RBO RBOConfig `yaml:"rbo"`

	// Batch evaluation
	Batch BatchConfig `yaml:"batch"`

	// Result cache
	Cache CacheConfig `yaml:"cache"`

	// HTTP API
	Server ServerConfig `yaml:"server"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// RBOConfig holds the default comparison parameters.
type RBOConfig struct {
	P           float64 `envconfig:"RBO_P" yaml:"p"`
	OverlapMode string  `envconfig:"RBO_OVERLAP_MODE" yaml:"overlap_mode"` // corrected or raw
}

// BatchConfig holds batch runner settings.
type BatchConfig struct {
	Workers int `envconfig:"RBO_BATCH_WORKERS" yaml:"workers"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Type     string `envconfig:"RBO_CACHE_TYPE" yaml:"type"`
	Size     int    `envconfig:"RBO_CACHE_SIZE" yaml:"size"`
	TTL      int    `envconfig:"RBO_CACHE_TTL" yaml:"ttl"` // seconds, 0 = no expiry
	RedisURL string `envconfig:"RBO_REDIS_URL" yaml:"redis_url"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host      string `envconfig:"RBO_HOST" yaml:"host"`
	Port      int    `envconfig:"RBO_PORT" yaml:"port"`
	RateLimit int    `envconfig:"RBO_RATE_LIMIT" yaml:"rate_limit"` // requests/sec per client, 0 = disabled
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"RBO_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"RBO_LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.RBO = RBOConfig{
		P:           0.9,
		OverlapMode: "corrected",
	}

	cfg.Batch = BatchConfig{
		Workers: 4,
	}

	cfg.Cache = CacheConfig{
		Type:     "none",
		Size:     10000,
		TTL:      0,
		RedisURL: "redis://localhost:6379",
	}

	cfg.Server = ServerConfig{
		Host:      "0.0.0.0",
		Port:      8080,
		RateLimit: 0,
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if !(c.RBO.P > 0 && c.RBO.P < 1) {
		errs = append(errs, fmt.Sprintf("rbo.p must be strictly between 0 and 1, got %g", c.RBO.P))
	}

	validModes := map[string]bool{"corrected": true, "raw": true}
	if !validModes[c.RBO.OverlapMode] {
		errs = append(errs, fmt.Sprintf("invalid overlap mode: %s (must be corrected or raw)", c.RBO.OverlapMode))
	}

	if c.Batch.Workers < 1 {
		errs = append(errs, "batch.workers must be positive")
	}

	validCacheTypes := map[string]bool{"none": true, "memory": true, "redis": true}
	if !validCacheTypes[c.Cache.Type] {
		errs = append(errs, fmt.Sprintf("invalid cache type: %s (must be none, memory, or redis)", c.Cache.Type))
	}

	if c.Cache.Type == "memory" && c.Cache.Size < 1 {
		errs = append(errs, "cache.size must be positive for the memory cache")
	}

	if c.Cache.TTL < 0 {
		errs = append(errs, "cache.ttl must not be negative")
	}

	if c.Cache.Type == "redis" && c.Cache.RedisURL == "" {
		errs = append(errs, "cache.redis_url is required for the redis cache")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}

	if c.Server.RateLimit < 0 {
		errs = append(errs, "rate_limit must not be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Address returns the server listen address as host:port.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
