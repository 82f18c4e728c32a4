package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures everything obsctl needs for one invocation. Credentials
// and region are resolved once at process start and passed down explicitly;
// nothing mutates the config afterwards.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Retry       RetryConfig       `yaml:"retry"`
	Investigate InvestigateConfig `yaml:"investigate"`
	Cache       CacheConfig       `yaml:"cache"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// APIConfig configures access to the observability platform.
type APIConfig struct {
	Site      string        `yaml:"site"`
	BaseURL   string        `yaml:"baseURL"`
	APIKey    string        `yaml:"apiKey"`
	AppKey    string        `yaml:"appKey"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rateLimit"`
	RateBurst int           `yaml:"rateBurst"`
}

// RetryConfig tunes the transient-failure backoff loop.
type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseDelay   time.Duration `yaml:"baseDelay"`
	MaxDelay    time.Duration `yaml:"maxDelay"`
	Jitter      bool          `yaml:"jitter"`
}

// InvestigateConfig tunes the investigation engine.
type InvestigateConfig struct {
	GapTolerance  time.Duration `yaml:"gapTolerance"`
	ScaleGap      bool          `yaml:"scaleGap"`
	MaxConcurrent int           `yaml:"maxConcurrent"`
}

// CacheConfig sizes the in-memory lookup cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from a YAML file and environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("OBSCTL_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			Site:      "us1.obskit.io",
			Timeout:   10 * time.Second,
			RateLimit: 8,
			RateBurst: 4,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   250 * time.Millisecond,
			MaxDelay:    10 * time.Second,
			Jitter:      true,
		},
		Investigate: InvestigateConfig{
			GapTolerance:  5 * time.Minute,
			ScaleGap:      false,
			MaxConcurrent: 4,
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    128,
			TTL:     time.Minute,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OBSCTL_SITE"); v != "" {
		cfg.API.Site = v
	}
	if v := os.Getenv("OBSCTL_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("OBSCTL_API_KEY"); v != "" {
		cfg.API.APIKey = v
	}
	if v := os.Getenv("OBSCTL_APP_KEY"); v != "" {
		cfg.API.AppKey = v
	}
	if v := os.Getenv("OBSCTL_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		}
	}
	if v := os.Getenv("OBSCTL_RATE_LIMIT"); v != "" {
		if limit, err := strconv.ParseFloat(v, 64); err == nil && limit > 0 {
			cfg.API.RateLimit = limit
		}
	}
	if v := os.Getenv("OBSCTL_RETRY_MAX_ATTEMPTS"); v != "" {
		if attempts, err := strconv.Atoi(v); err == nil && attempts >= 1 {
			cfg.Retry.MaxAttempts = attempts
		}
	}
	if v := os.Getenv("OBSCTL_RETRY_BASE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Retry.BaseDelay = d
		}
	}
	if v := os.Getenv("OBSCTL_RETRY_MAX_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Retry.MaxDelay = d
		}
	}
	if v := os.Getenv("OBSCTL_RETRY_JITTER"); v != "" {
		cfg.Retry.Jitter = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("OBSCTL_GAP_TOLERANCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Investigate.GapTolerance = d
		}
	}
	if v := os.Getenv("OBSCTL_SCALE_GAP"); v != "" {
		cfg.Investigate.ScaleGap = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("OBSCTL_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Investigate.MaxConcurrent = n
		}
	}
	if v := os.Getenv("OBSCTL_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("OBSCTL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("OBSCTL_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
}
