// Package config provides configuration management for LedgerTrace.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all LedgerTrace configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Redis      RedisConfig      `yaml:"redis"`
	Collectors CollectorsConfig `yaml:"collectors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Export     ExportConfig     `yaml:"export"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RedisConfig holds Redis connection settings. Redis backs the signal
// cache, the rate limiter, and monitoring history; when disabled, the
// service runs with in-memory fallbacks.
type RedisConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Addr        string        `yaml:"addr"`
	PasswordEnv string        `yaml:"password_env"`
	DB          int           `yaml:"db"`
	PoolSize    int           `yaml:"pool_size"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

// Password resolves the redis password from the configured env var.
func (c RedisConfig) Password() string {
	if c.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(c.PasswordEnv)
}

// CollectorsConfig holds per-source collector settings.
type CollectorsConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	Property bool          `yaml:"property"`
	Court    bool          `yaml:"court"`
	Domain   bool          `yaml:"domain"`
	Officer  bool          `yaml:"officer"`
	Grants   bool          `yaml:"grants"`
}

// RateLimitConfig holds per-endpoint request limits.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	AnalyzePerMinute  int  `yaml:"analyze_per_minute"`
	ExportPerMinute   int  `yaml:"export_per_minute"`
	DownloadPerMinute int  `yaml:"download_per_minute"`
	IncludeHeaders    bool `yaml:"include_headers"`
}

// ExportConfig holds report export settings.
type ExportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// TelemetryConfig holds logging and metrics settings.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat      string `yaml:"log_format"` // json, console
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Enabled:     false,
			Addr:        "localhost:6379",
			PasswordEnv: "REDIS_PASSWORD",
			DB:          0,
			PoolSize:    10,
			CacheTTL:    1 * time.Hour,
		},
		Collectors: CollectorsConfig{
			Timeout:  10 * time.Second,
			Property: true,
			Court:    true,
			Domain:   true,
			Officer:  true,
			Grants:   true,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			AnalyzePerMinute:  20,
			ExportPerMinute:   5,
			DownloadPerMinute: 30,
			IncludeHeaders:    true,
		},
		Export: ExportConfig{
			Enabled: true,
			Dir:     "exports",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "ledgertrace",
			Environment:    "development",
			LogLevel:       "info",
			LogFormat:      "json",
			MetricsEnabled: true,
		},
	}
}
