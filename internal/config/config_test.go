package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestDefaultsNeedOnlyASecret(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate())

	cfg.Auth.JWTSecret = secret
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sporthub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
store:
  kind: sqlite
  dsn: /tmp/sporthub.db
latency:
  min: 10ms
  max: 20ms
rate_limit:
  per_second: 5
  burst: 5
`), 0o600))

	t.Setenv("PORT", "9191")
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("SPORTHUB_LATENCY_MAX", "75")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9191", cfg.Port)
	assert.Equal(t, StoreSQLite, cfg.Store.Kind)
	assert.Equal(t, "/tmp/sporthub.db", cfg.Store.DSN)
	assert.Equal(t, 10*time.Millisecond, cfg.Latency.Min)
	assert.Equal(t, 75*time.Millisecond, cfg.Latency.Max)
	assert.Equal(t, 5.0, cfg.RateLimit.PerSecond)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoadBadEnvDuration(t *testing.T) {
	t.Setenv("SPORTHUB_LATENCY_MIN", "soon")
	_, err := Load("")
	assert.ErrorContains(t, err, "SPORTHUB_LATENCY_MIN")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
		want string
	}{
		{"sql without dsn", func(c *Config) { c.Store.Kind = StorePostgres }, "needs a dsn"},
		{"unknown store", func(c *Config) { c.Store.Kind = "redis" }, "unknown store kind"},
		{"inverted latency", func(c *Config) { c.Latency.Min = time.Second }, "latency range"},
		{"bad port", func(c *Config) { c.Port = "http" }, "not a number"},
		{"no burst", func(c *Config) { c.RateLimit.Burst = 0 }, "rate_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Auth.JWTSecret = secret
			tt.mod(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
