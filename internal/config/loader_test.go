package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
logging:
  level: debug
  format: console

cache:
  enabled: true
  type: redis
  ttl: 30m
  redis:
    url: "redis://localhost:6379/0"
    keyPrefix: "scorepp:"

banStore:
  type: memory

fetcher:
  mirrors:
    - "https://osu.ppy.sh/osu/%d"
  requestTimeout: 5s
  ratePerSecond: 2
  rateBurst: 4

calculator:
  backend: server
  server:
    url: "http://calc:5225"
    requestTimeout: 20s
    breakerEnabled: false

checks:
  suspiciousScoreCheck: false
  fallbackPP: true
`

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromReader(strings.NewReader(validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)

	assert.Equal(t, CacheTypeRedis, cfg.Cache.Type)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL.Duration())
	require.NotNil(t, cfg.Cache.Redis)
	assert.Equal(t, "scorepp:", cfg.Cache.Redis.KeyPrefix)

	assert.Equal(t, []string{"https://osu.ppy.sh/osu/%d"}, cfg.Fetcher.Mirrors)
	assert.Equal(t, 5*time.Second, cfg.Fetcher.RequestTimeout.Duration())

	assert.Equal(t, "server", cfg.Calculator.Backend)
	assert.Equal(t, "http://calc:5225", cfg.Calculator.Server.URL)
	assert.False(t, cfg.Calculator.Server.BreakerEnabled)

	assert.False(t, cfg.Checks.SuspiciousScoreCheck)
	assert.True(t, cfg.Checks.FallbackPP)

	// Sections the file omits keep their defaults.
	assert.Equal(t, "scorepp", cfg.Metrics.Namespace)

	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(validConfigYAML), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromReader_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := LoadFromReader(strings.NewReader("logging: [not: a: mapping"))
	assert.Error(t, err)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("SCOREPP_TEST_REDIS_HOST", "redis.internal")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "set variable",
			input: "url: redis://${SCOREPP_TEST_REDIS_HOST}:6379",
			want:  "url: redis://redis.internal:6379",
		},
		{
			name:  "unset variable with default",
			input: "url: ${SCOREPP_TEST_UNSET:-localhost}",
			want:  "url: localhost",
		},
		{
			name:  "unset variable without default",
			input: "url: ${SCOREPP_TEST_UNSET}",
			want:  "url: ",
		},
		{
			name:  "escaped dollar",
			input: "pattern: $${literal}",
			want:  "pattern: ${literal}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, substituteEnvVars(tt.input))
		})
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "redis cache without url",
			mutate:  func(cfg *Config) { cfg.Cache.Type = CacheTypeRedis; cfg.Cache.Redis = nil },
			wantErr: "redis cache requires",
		},
		{
			name:    "unknown cache type",
			mutate:  func(cfg *Config) { cfg.Cache.Type = "bogus" },
			wantErr: "unknown cache type",
		},
		{
			name:    "unknown ban store type",
			mutate:  func(cfg *Config) { cfg.BanStore.Type = "bogus" },
			wantErr: "unknown store type",
		},
		{
			name:    "no mirrors",
			mutate:  func(cfg *Config) { cfg.Fetcher.Mirrors = nil },
			wantErr: "at least one mirror",
		},
		{
			name:    "negative rate",
			mutate:  func(cfg *Config) { cfg.Fetcher.RatePerSecond = -1 },
			wantErr: "ratePerSecond",
		},
		{
			name:    "empty backend",
			mutate:  func(cfg *Config) { cfg.Calculator.Backend = "" },
			wantErr: "backend must be set",
		},
		{
			name:    "server backend without url",
			mutate:  func(cfg *Config) { cfg.Calculator.Server = nil },
			wantErr: "server backend requires",
		},
		{
			name:   "disabled cache skips cache validation",
			mutate: func(cfg *Config) { cfg.Cache.Enabled = false; cfg.Cache.Type = "bogus" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDuration_YAML(t *testing.T) {
	t.Parallel()

	c, err := LoadFromReader(strings.NewReader("fetcher:\n  requestTimeout: 1h30m\n"))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, c.Fetcher.RequestTimeout.Duration())

	assert.Equal(t, "1h30m0s", Duration(90*time.Minute).String())
}
