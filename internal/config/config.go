package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Market   MarketConfig   `yaml:"market"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Sessions SessionsConfig `yaml:"sessions"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"` // public URL; enables A2A endpoints when set
}

// MarketConfig holds price-search API settings.
type MarketConfig struct {
	URL             string        `yaml:"url"`
	Timeout         time.Duration `yaml:"timeout"`
	DefaultDistance float64       `yaml:"default_distance"` // km (default: 5)
	DefaultPage     int           `yaml:"default_page"`
	DefaultSize     int           `yaml:"default_size"` // default: 24
}

// GeocoderConfig holds geocoding API settings.
type GeocoderConfig struct {
	URL       string        `yaml:"url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// SessionsConfig controls idle session cleanup.
type SessionsConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	PruneSchedule string        `yaml:"prune_schedule"` // cron spec, e.g. "@every 10m"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Market: MarketConfig{
			URL:             "https://api.marketfiyati.org.tr",
			Timeout:         30 * time.Second,
			DefaultDistance: 5,
			DefaultPage:     0,
			DefaultSize:     24,
		},
		Geocoder: GeocoderConfig{
			URL:       "https://nominatim.openstreetmap.org",
			UserAgent: "market-finder/1.0",
			Timeout:   30 * time.Second,
		},
		Sessions: SessionsConfig{
			IdleTTL:       24 * time.Hour,
			PruneSchedule: "@every 10m",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML configuration file at path and returns a Config.
// Environment overrides are applied on top of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadDefault tries to load "config.yaml" from the current directory.
// If the file does not exist, it returns defaults with environment overrides.
// Any other error (e.g. permission denied, malformed YAML) is returned.
func LoadDefault() (*Config, error) {
	cfg, err := Load("config.yaml")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = defaults()
			if err := cfg.applyEnv(os.LookupEnv); err != nil {
				return nil, err
			}
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that would make the service unusable.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Market.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("market.timeout must be positive"))
	}
	if c.Geocoder.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("geocoder.timeout must be positive"))
	}
	if c.Market.DefaultDistance <= 0 {
		errs = append(errs, fmt.Errorf("market.default_distance must be positive"))
	}
	if c.Market.DefaultSize <= 0 {
		errs = append(errs, fmt.Errorf("market.default_size must be positive"))
	}
	if c.Market.DefaultPage < 0 {
		errs = append(errs, fmt.Errorf("market.default_page must not be negative"))
	}
	if c.Sessions.IdleTTL <= 0 {
		errs = append(errs, fmt.Errorf("sessions.idle_ttl must be positive"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps Log.Level to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// envPrefix prefixes every environment override.
const envPrefix = "MARKETFINDER_"

// applyEnv overrides fields from MARKETFINDER_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(envPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(envPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str("HOST", &c.Server.Host)
	num("PORT", &c.Server.Port)
	str("BASE_URL", &c.Server.BaseURL)
	str("MARKET_URL", &c.Market.URL)
	dur("MARKET_TIMEOUT", &c.Market.Timeout)
	str("GEOCODER_URL", &c.Geocoder.URL)
	str("GEOCODER_USER_AGENT", &c.Geocoder.UserAgent)
	dur("GEOCODER_TIMEOUT", &c.Geocoder.Timeout)
	dur("SESSION_IDLE_TTL", &c.Sessions.IdleTTL)
	str("SESSION_PRUNE_SCHEDULE", &c.Sessions.PruneSchedule)
	str("LOG_LEVEL", &c.Log.Level)
	return errors.Join(errs...)
}
