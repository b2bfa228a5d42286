// Package config loads and validates the application configuration from a
// JSON file, with defaults suitable for running against the public
// datafeed out of the box.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config represents the complete application configuration.
type Config struct {
	Feed     FeedConfig     `json:"feed"`
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Data     DataConfig     `json:"data"`
	Log      LogConfig      `json:"log"`
}

// FeedConfig contains datafeed polling settings.
type FeedConfig struct {
	// URL is the station/pilot snapshot endpoint.
	URL string `json:"url"`

	// CoverageURL is the coverage-summary endpoint.
	CoverageURL string `json:"coverage_url"`

	// IntervalSeconds between refresh cycles (default: 15).
	IntervalSeconds int `json:"interval_seconds"`

	// RequestsPerMinute caps outgoing datafeed requests (default: 30).
	RequestsPerMinute int `json:"requests_per_minute"`

	// TimeoutSeconds for individual requests (default: 10).
	TimeoutSeconds int `json:"timeout_seconds"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	// Host is the bind address (default: "0.0.0.0").
	Host string `json:"host"`

	// Port is the HTTP server port (default: 8080).
	Port int `json:"port"`

	// AllowedOrigins for CORS (default: ["*"]).
	AllowedOrigins []string `json:"allowed_origins"`
}

// DatabaseConfig contains PostgreSQL settings for the airport lookup
// table. The database is optional: when Enabled is false the application
// falls back to the static airports file.
type DatabaseConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`

	// Password should normally come from the environment, not the file.
	Password string `json:"password"`

	// SSLMode for PostgreSQL connections (disable, require, verify-ca,
	// verify-full).
	SSLMode string `json:"ssl_mode"`

	MaxOpenConns int `json:"max_open_conns"`
	MaxIdleConns int `json:"max_idle_conns"`
}

// DataConfig points at local reference files.
type DataConfig struct {
	// CountriesFile is the ICAO-prefix -> country-name CSV.
	CountriesFile string `json:"countries_file"`

	// AirportsFile is the ident,lat,lng CSV used when the database is
	// disabled, and as input for the importer.
	AirportsFile string `json:"airports_file"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info).
	Level string `json:"level"`

	// Dir is the log directory; empty logs to stderr.
	Dir string `json:"dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			IntervalSeconds:   15,
			RequestsPerMinute: 30,
			TimeoutSeconds:    10,
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the configuration file at path, applies defaults for unset
// fields and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyDefaults restores defaults for fields the file set to zero values.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Feed.IntervalSeconds <= 0 {
		c.Feed.IntervalSeconds = d.Feed.IntervalSeconds
	}
	if c.Feed.RequestsPerMinute <= 0 {
		c.Feed.RequestsPerMinute = d.Feed.RequestsPerMinute
	}
	if c.Feed.TimeoutSeconds <= 0 {
		c.Feed.TimeoutSeconds = d.Feed.TimeoutSeconds
	}
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = d.Server.AllowedOrigins
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = d.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = d.Database.MaxIdleConns
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// Validate checks the configuration for fatal inconsistencies.
func (c *Config) Validate() error {
	if c.Feed.URL == "" {
		return fmt.Errorf("feed.url is required")
	}
	if c.Feed.CoverageURL == "" {
		return fmt.Errorf("feed.coverage_url is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Enabled {
		if c.Database.Host == "" || c.Database.Database == "" {
			return fmt.Errorf("database.host and database.database are required when the database is enabled")
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// ConnString builds the lib/pq connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
	)
}
