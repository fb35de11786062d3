// Package config provides configuration management for the FilmVault server.
// Configuration can be loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Blob    BlobConfig    `mapstructure:"blob"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address in host:port format.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig holds key/value store settings.
// The driver selects where user records and the session key live.
type StoreConfig struct {
	// Driver is one of "memory", "sqlite", "postgres" or "redis".
	Driver string `mapstructure:"driver"`

	// SQLite settings (used when Driver is "sqlite")
	Path        string `mapstructure:"path"`
	BusyTimeout int    `mapstructure:"busy_timeout"` // milliseconds

	// PostgreSQL settings (used when Driver is "postgres")
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// RedisConfig holds Redis connection settings. Redis backs the store
// when store.driver is "redis", and the shared catalog cache when
// catalog.cache is "redis".
type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// Addr returns the Redis address in host:port format.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CatalogConfig holds external movie catalog settings.
type CatalogConfig struct {
	// BaseURL is the OMDb endpoint. Leave empty for the public API.
	BaseURL string `mapstructure:"base_url"`

	// APIKey is the OMDb API key. Required.
	APIKey string `mapstructure:"api_key"`

	Timeout time.Duration `mapstructure:"timeout"`

	// Cache selects the response cache: "memory", "redis" or "none".
	Cache    string        `mapstructure:"cache"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// BlobConfig holds profile picture storage settings.
type BlobConfig struct {
	// Backend is "filesystem" or "s3".
	Backend string `mapstructure:"backend"`

	// DataDir is the root directory for the filesystem backend.
	DataDir string `mapstructure:"data_dir"`

	S3 S3BlobConfig `mapstructure:"s3"`
}

// S3BlobConfig holds S3 backend settings.
type S3BlobConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from the specified file and environment variables.
// Environment variables take precedence over file values.
// Environment variables are prefixed with FILMVAULT_ and use _ as separator.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("FILMVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/filmvault")
	}

	// Config file is optional; env vars and defaults can carry it.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	// Store defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "./data/filmvault.db")
	v.SetDefault("store.busy_timeout", 5000)
	v.SetDefault("store.host", "localhost")
	v.SetDefault("store.port", 5432)
	v.SetDefault("store.user", "filmvault")
	v.SetDefault("store.password", "")
	v.SetDefault("store.database", "filmvault")
	v.SetDefault("store.ssl_mode", "prefer")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)

	// Catalog defaults
	v.SetDefault("catalog.base_url", "")
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.timeout", 10*time.Second)
	v.SetDefault("catalog.cache", "memory")
	v.SetDefault("catalog.cache_ttl", 15*time.Minute)

	// Blob defaults
	v.SetDefault("blob.backend", "filesystem")
	v.SetDefault("blob.data_dir", "./data/pictures")
	v.SetDefault("blob.s3.region", "us-east-1")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks the configuration for required values and valid ranges.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	validDrivers := map[string]bool{"memory": true, "sqlite": true, "postgres": true, "redis": true}
	if !validDrivers[c.Store.Driver] {
		return fmt.Errorf("store.driver must be 'memory', 'sqlite', 'postgres' or 'redis'")
	}

	if c.Store.Driver == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for sqlite driver")
	}
	if c.Store.Driver == "postgres" {
		if c.Store.Host == "" {
			return fmt.Errorf("store.host is required for postgres driver")
		}
		if c.Store.User == "" {
			return fmt.Errorf("store.user is required for postgres driver")
		}
		if c.Store.Database == "" {
			return fmt.Errorf("store.database is required for postgres driver")
		}
	}

	validCaches := map[string]bool{"memory": true, "redis": true, "none": true}
	if !validCaches[c.Catalog.Cache] {
		return fmt.Errorf("catalog.cache must be 'memory', 'redis' or 'none'")
	}

	validBackends := map[string]bool{"filesystem": true, "s3": true}
	if !validBackends[c.Blob.Backend] {
		return fmt.Errorf("blob.backend must be 'filesystem' or 's3'")
	}
	if c.Blob.Backend == "filesystem" && c.Blob.DataDir == "" {
		return fmt.Errorf("blob.data_dir is required for filesystem backend")
	}
	if c.Blob.Backend == "s3" && c.Blob.S3.Bucket == "" {
		return fmt.Errorf("blob.s3.bucket is required for s3 backend")
	}

	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error, fatal, panic")
	}

	return nil
}

// MustLoad loads configuration or panics on error.
// Useful for main function initialization.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
