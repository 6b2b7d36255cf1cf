package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Environment variables naming the single API key the service accepts.
const (
	APIKeyPrefixEnv  = "ZEBRA_API_KEY_PREFIX"
	APIKeyHashEnv    = "ZEBRA_API_KEY_HASH"
	APIKeyExpiresEnv = "ZEBRA_API_KEY_EXPIRES"
)

// ExpiryLayout is the format of APIKeyExpiresEnv, in UTC.
const ExpiryLayout = "2006-01-02 15:04:05"

// ServerConfig holds the HTTP pricing service settings.
type ServerConfig struct {
	Address       string  `yaml:"address"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
	// The API key is read from the environment, never from the file.
	APIKeyPrefix    string    `yaml:"-"`
	APIKeyHash      string    `yaml:"-"`
	APIKeyExpiresAt time.Time `yaml:"-"`
}

// LogConfig holds the configuration for logging.
type LogConfig struct {
	LogLevel   string `yaml:"log_level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// EngineConfig holds the Monte Carlo defaults used when a request does not override them.
type EngineConfig struct {
	MaxTimeStepsPerYear int     `yaml:"max_time_steps_per_year"`
	Antithetic          bool    `yaml:"antithetic"`
	ControlVariate      bool    `yaml:"control_variate"`
	RequiredSamples     int     `yaml:"required_samples"`
	RequiredTolerance   float64 `yaml:"required_tolerance"`
	MaxSamples          int     `yaml:"max_samples"`
	Seed                uint64  `yaml:"seed"`
	RNG                 string  `yaml:"rng"`
}

type Config struct {
	Server *ServerConfig `yaml:"server"`
	Logs   *LogConfig    `yaml:"logs"`
	Engine *EngineConfig `yaml:"engine"`
}

// NewConfig returns the defaults a missing file or section falls back to.
func NewConfig() *Config {
	return &Config{
		Server: &ServerConfig{
			Address:       ":8080",
			RatePerSecond: 5,
			Burst:         10,
		},
		Logs: &LogConfig{
			LogLevel:   "info",
			File:       "logs/zebra.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Engine: &EngineConfig{
			MaxTimeStepsPerYear: 252,
			RequiredSamples:     100000,
			Seed:                42,
			RNG:                 "pseudo",
		},
	}
}

// Load reads the YAML file at path over the defaults, then the API key from the
// environment after loading envFile. Missing files are not an error.
func Load(path, envFile string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			var raw Config
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
			}
			if raw.Server != nil {
				cfg.Server = raw.Server
			}
			if raw.Logs != nil {
				cfg.Logs = raw.Logs
			}
			if raw.Engine != nil {
				cfg.Engine = raw.Engine
			}
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	cfg.Server.APIKeyPrefix = os.Getenv(APIKeyPrefixEnv)
	cfg.Server.APIKeyHash = os.Getenv(APIKeyHashEnv)
	if v := os.Getenv(APIKeyExpiresEnv); v != "" {
		t, err := time.Parse(ExpiryLayout, v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", APIKeyExpiresEnv, err)
		}
		cfg.Server.APIKeyExpiresAt = t
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the logical consistency of the configuration. The engine section must
// name exactly one stopping criterion.
func (c *Config) Validate() error {
	if c.Server == nil || c.Logs == nil || c.Engine == nil {
		return fmt.Errorf("config error: server, logs and engine sections are required")
	}
	if c.Server.Address == "" {
		return fmt.Errorf("config error: 'server.address' must be set")
	}
	if c.Server.RatePerSecond <= 0 || c.Server.Burst <= 0 {
		return fmt.Errorf("config error: 'server.rate_per_second' and 'server.burst' must be positive")
	}

	if c.Logs.LogLevel == "" {
		return fmt.Errorf("config error: 'logs.log_level' must be set (e.g. 'info', 'debug')")
	}
	if c.Logs.MaxSizeMB <= 0 || c.Logs.MaxBackups < 0 || c.Logs.MaxAgeDays < 0 {
		return fmt.Errorf("config error: 'logs' rotation settings must not be negative and max_size_mb must be positive")
	}

	return c.Engine.Validate()
}

// MaxSamplesLimit caps a tolerance-driven run.
const MaxSamplesLimit = 5000000

// Validate checks the engine settings on their own, so request overrides can be
// checked the same way as the file.
func (e *EngineConfig) Validate() error {
	if e.MaxTimeStepsPerYear < 1 {
		return fmt.Errorf("config error: 'engine.max_time_steps_per_year' must be at least 1")
	}
	if (e.RequiredSamples > 0) == (e.RequiredTolerance > 0) {
		return fmt.Errorf("config error: exactly one of 'engine.required_samples' and 'engine.required_tolerance' must be set")
	}
	if e.RequiredSamples < 0 || e.RequiredTolerance < 0 || e.MaxSamples < 0 {
		return fmt.Errorf("config error: 'engine' sample settings cannot be negative")
	}
	if e.RequiredTolerance > 0 && (e.MaxSamples == 0 || e.MaxSamples > MaxSamplesLimit) {
		return fmt.Errorf("config error: 'engine.required_tolerance' needs 'engine.max_samples' between 1 and %d", MaxSamplesLimit)
	}
	switch e.RNG {
	case "pseudo", "halton":
	default:
		return fmt.Errorf("config error: 'engine.rng' must be 'pseudo' or 'halton', got %q", e.RNG)
	}
	if e.RNG == "halton" && e.RequiredTolerance > 0 {
		return fmt.Errorf("config error: 'engine.required_tolerance' needs an error estimate, which 'halton' does not give")
	}
	return nil
}
