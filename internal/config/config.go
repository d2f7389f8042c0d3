// Package config loads service settings: built-in defaults, then an optional
// YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRemote   = "remote"
)

const minSecretLen = 32

type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Latency   LatencyConfig   `yaml:"latency"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type StoreConfig struct {
	// Kind is memory, postgres, sqlite or remote.
	Kind string `yaml:"kind"`
	// DSN is the database connection string, or the base URL of another
	// SportHub instance when Kind is remote.
	DSN string `yaml:"dsn"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

// LatencyConfig is the simulated delay range of every catalog call.
type LatencyConfig struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

func Default() Config {
	return Config{
		Port:     "8080",
		LogLevel: "info",
		Store:    StoreConfig{Kind: StoreMemory},
		Auth:     AuthConfig{TokenTTL: 24 * time.Hour},
		Metrics:  MetricsConfig{Enabled: true},
		Latency:  LatencyConfig{Min: 50 * time.Millisecond, Max: 200 * time.Millisecond},
		RateLimit: RateLimitConfig{
			PerSecond: 10,
			Burst:     20,
		},
	}
}

// Load reads path (skipped when empty) over the defaults and applies
// environment overrides. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	setString("PORT", &c.Port)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("SPORTHUB_STORE", &c.Store.Kind)
	setString("SPORTHUB_DSN", &c.Store.DSN)
	setString("JWT_SECRET", &c.Auth.JWTSecret)
	setString("METRICS_TOKEN", &c.Metrics.Token)

	return errors.Join(
		setDuration("SPORTHUB_LATENCY_MIN", &c.Latency.Min),
		setDuration("SPORTHUB_LATENCY_MAX", &c.Latency.Max),
	)
}

// parseDuration also accepts a bare number of milliseconds.
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

func (c Config) Validate() error {
	var errs []error

	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("port %q is not a number", c.Port))
	}

	switch c.Store.Kind {
	case StoreMemory:
	case StorePostgres, StoreSQLite, StoreRemote:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store %s needs a dsn (SPORTHUB_DSN)", c.Store.Kind))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q", c.Store.Kind))
	}

	if len(c.Auth.JWTSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET is required and must be at least %d chars", minSecretLen))
	}
	if c.Latency.Min < 0 || c.Latency.Max < c.Latency.Min {
		errs = append(errs, fmt.Errorf("latency range [%s, %s] is invalid", c.Latency.Min, c.Latency.Max))
	}
	if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("rate_limit needs a positive per_second and burst"))
	}

	return errors.Join(errs...)
}

func (c Config) Addr() string { return ":" + c.Port }
