package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "MANMARU"

// Dataset source types
const (
	DatasetEmbedded = "embedded"
	DatasetFile     = "file"
	DatasetURL      = "url"
)

// DefaultCountUnmatched is the aggregation.count_unmatched default, shared
// with entry points that run without Load
const DefaultCountUnmatched = true

// Cache types
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Log         LogConfig
	Dataset     DatasetConfig
	Cache       CacheConfig
	Matching    MatchingConfig
	Aggregation AggregationConfig
	RateLimit   RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Environment    string        `mapstructure:"environment"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// IsProduction reports whether the server runs in production mode
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// DatasetConfig selects where the food dataset is loaded from
type DatasetConfig struct {
	Source  string        `mapstructure:"source"` // "embedded", "file" or "url"
	Path    string        `mapstructure:"path"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "none", "memory" or "redis"
	RedisURL   string        `mapstructure:"redis_url"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// MatchingConfig tunes food name matching
type MatchingConfig struct {
	MinSimilarity float64 `mapstructure:"min_similarity"`
	Limit         int     `mapstructure:"limit"`
	Workers       int     `mapstructure:"workers"`
	Debug         bool    `mapstructure:"debug"`
}

// AggregationConfig tunes nutrition aggregation
type AggregationConfig struct {
	CountUnmatched bool `mapstructure:"count_unmatched"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/manmaru/")

	// Environment variable settings: server.port -> MANMARU_SERVER_PORT
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.Log.Format == "" {
		config.Log.Format = "console"
		if config.Server.IsProduction() {
			config.Log.Format = "json"
		}
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory when present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.request_timeout", "10s")

	// Log defaults; an empty format is resolved from the environment
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")

	// Dataset defaults
	v.SetDefault("dataset.source", DatasetEmbedded)
	v.SetDefault("dataset.path", "")
	v.SetDefault("dataset.url", "")
	v.SetDefault("dataset.timeout", "30s")

	// Cache defaults
	v.SetDefault("cache.type", CacheMemory)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.max_entries", 1000)

	// Matching defaults
	v.SetDefault("matching.min_similarity", 0.5)
	v.SetDefault("matching.limit", 1)
	v.SetDefault("matching.workers", 8)
	v.SetDefault("matching.debug", false)

	// Aggregation defaults
	v.SetDefault("aggregation.count_unmatched", DefaultCountUnmatched)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Dataset.Source {
	case DatasetEmbedded:
	case DatasetFile:
		if config.Dataset.Path == "" {
			return fmt.Errorf("dataset path is required when dataset source is 'file' (set %s_DATASET_PATH)", EnvPrefix)
		}
	case DatasetURL:
		if config.Dataset.URL == "" {
			return fmt.Errorf("dataset URL is required when dataset source is 'url' (set %s_DATASET_URL)", EnvPrefix)
		}
	default:
		return fmt.Errorf("dataset source must be 'embedded', 'file' or 'url', got: %s", config.Dataset.Source)
	}

	switch config.Cache.Type {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if config.Cache.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when cache type is 'redis'")
		}
	default:
		return fmt.Errorf("cache type must be 'none', 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Matching.MinSimilarity < 0.35 || config.Matching.MinSimilarity > 1 {
		return fmt.Errorf("matching min_similarity must be within [0.35, 1], got: %v", config.Matching.MinSimilarity)
	}
	if config.Matching.Workers <= 0 {
		return fmt.Errorf("matching workers must be positive, got: %d", config.Matching.Workers)
	}

	if config.Log.Format != "" && config.Log.Format != "console" && config.Log.Format != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got: %s", config.Log.Format)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit per_ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
