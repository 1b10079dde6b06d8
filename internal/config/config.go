package config

import (
	"fmt"
	"time"
)

// Cache backend types.
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

// Config is the root configuration for the performance-calculation core.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Cache      CacheConfig      `yaml:"cache"`
	BanStore   BanStoreConfig   `yaml:"banStore"`
	Fetcher    FetcherConfig    `yaml:"fetcher"`
	Calculator CalculatorConfig `yaml:"calculator"`
	Checks     ChecksConfig     `yaml:"checks"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Address   string `yaml:"address"`
	Namespace string `yaml:"namespace"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// CacheConfig configures the raw beatmap cache.
type CacheConfig struct {
	Enabled bool               `yaml:"enabled"`
	Type    string             `yaml:"type"`
	TTL     Duration           `yaml:"ttl"`
	Memory  *MemoryCacheConfig `yaml:"memory,omitempty"`
	Redis   *RedisConfig       `yaml:"redis,omitempty"`
}

// MemoryCacheConfig configures the in-memory cache backend.
type MemoryCacheConfig struct {
	MaxEntries      int      `yaml:"maxEntries"`
	CleanupInterval Duration `yaml:"cleanupInterval"`
}

// RedisConfig configures a Redis connection.
type RedisConfig struct {
	URL            string   `yaml:"url"`
	KeyPrefix      string   `yaml:"keyPrefix"`
	PoolSize       int      `yaml:"poolSize"`
	ConnectTimeout Duration `yaml:"connectTimeout"`
	ReadTimeout    Duration `yaml:"readTimeout"`
	WriteTimeout   Duration `yaml:"writeTimeout"`
}

// BanStoreConfig configures the banned-beatmap store.
type BanStoreConfig struct {
	Type  string       `yaml:"type"`
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

// FetcherConfig configures the raw beatmap fetcher.
type FetcherConfig struct {
	Mirrors        []string `yaml:"mirrors"`
	RequestTimeout Duration `yaml:"requestTimeout"`
	RatePerSecond  float64  `yaml:"ratePerSecond"`
	RateBurst      int      `yaml:"rateBurst"`
}

// CalculatorConfig selects and configures the performance calculator backend.
type CalculatorConfig struct {
	Backend string            `yaml:"backend"`
	Server  *ServerConfig     `yaml:"server,omitempty"`
	Options map[string]string `yaml:"options,omitempty"`
}

// ServerConfig configures the osu-performance-server backend.
type ServerConfig struct {
	URL            string   `yaml:"url"`
	RequestTimeout Duration `yaml:"requestTimeout"`
	BreakerEnabled bool     `yaml:"breakerEnabled"`
}

// ChecksConfig holds the feature flags guarding PP calculation.
type ChecksConfig struct {
	// SuspiciousScoreCheck enables ban lookups, suspicion analysis, and
	// the PP sanity cap.
	SuspiciousScoreCheck bool `yaml:"suspiciousScoreCheck"`

	// FallbackPP enables the analytic PP estimate when no backend
	// supports a game mode.
	FallbackPP bool `yaml:"fallbackPP"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Address:   ":9100",
			Namespace: "scorepp",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			ServiceName:  "scorepp",
			SamplingRate: 0.1,
		},
		Cache: CacheConfig{
			Enabled: true,
			Type:    CacheTypeMemory,
			TTL:     Duration(time.Hour),
		},
		BanStore: BanStoreConfig{
			Type: CacheTypeMemory,
		},
		Fetcher: FetcherConfig{
			Mirrors: []string{
				"https://osu.ppy.sh/osu/%d",
				"https://osu.direct/api/osu/%d",
				"https://catboy.best/osu/%d",
			},
			RequestTimeout: Duration(15 * time.Second),
			RatePerSecond:  10,
			RateBurst:      20,
		},
		Calculator: CalculatorConfig{
			Backend: "server",
			Server: &ServerConfig{
				URL:            "http://localhost:5225",
				RequestTimeout: Duration(15 * time.Second),
				BreakerEnabled: true,
			},
		},
		Checks: ChecksConfig{
			SuspiciousScoreCheck: true,
			FallbackPP:           true,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.BanStore.Validate(); err != nil {
		return err
	}
	if err := c.Fetcher.Validate(); err != nil {
		return err
	}
	return c.Calculator.Validate()
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Type {
	case CacheTypeMemory, "":
	case CacheTypeRedis:
		if c.Redis == nil || c.Redis.URL == "" {
			return fmt.Errorf("cache: redis cache requires a redis url")
		}
	default:
		return fmt.Errorf("cache: unknown cache type %q", c.Type)
	}
	return nil
}

// Validate validates the ban store configuration.
func (c *BanStoreConfig) Validate() error {
	switch c.Type {
	case CacheTypeMemory, "":
	case CacheTypeRedis:
		if c.Redis == nil || c.Redis.URL == "" {
			return fmt.Errorf("banStore: redis store requires a redis url")
		}
	default:
		return fmt.Errorf("banStore: unknown store type %q", c.Type)
	}
	return nil
}

// Validate validates the fetcher configuration.
func (c *FetcherConfig) Validate() error {
	if len(c.Mirrors) == 0 {
		return fmt.Errorf("fetcher: at least one mirror is required")
	}
	if c.RatePerSecond < 0 {
		return fmt.Errorf("fetcher: ratePerSecond must not be negative")
	}
	return nil
}

// Validate validates the calculator configuration.
func (c *CalculatorConfig) Validate() error {
	if c.Backend == "" {
		return fmt.Errorf("calculator: backend must be set")
	}
	if c.Backend == "server" {
		if c.Server == nil || c.Server.URL == "" {
			return fmt.Errorf("calculator: server backend requires a url")
		}
	}
	return nil
}
