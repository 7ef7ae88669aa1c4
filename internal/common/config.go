// Package common provides shared utilities for EventStock
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for EventStock
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Report      ReportConfig  `toml:"report"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	ReadTimeout  string `toml:"read_timeout"`
	WriteTimeout string `toml:"write_timeout"`
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetReadTimeout returns the request read timeout, 30s by default
func (c *ServerConfig) GetReadTimeout() time.Duration {
	return parsePositiveDuration(c.ReadTimeout, 30*time.Second)
}

// GetWriteTimeout returns the response write timeout, 300s by default.
// Aggregate streams and reports are written within this bound.
func (c *ServerConfig) GetWriteTimeout() time.Duration {
	return parsePositiveDuration(c.WriteTimeout, 300*time.Second)
}

// StorageConfig holds the source cache location.
// An empty path keeps the cache in memory for the lifetime of the process.
type StorageConfig struct {
	Path          string `toml:"path"`
	PurgeInterval string `toml:"purge_interval"`
}

// GetPurgeInterval returns how often the cache is emptied. Zero disables
// scheduled purging.
func (c *StorageConfig) GetPurgeInterval() time.Duration {
	if c.PurgeInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.PurgeInterval)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Profile      SourceConfig `toml:"profile"`
	Wikipedia    SourceConfig `toml:"wikipedia"`
	AlphaVantage SourceConfig `toml:"alphavantage"`
	Guardian     SourceConfig `toml:"guardian"`
}

// SourceConfig holds configuration shared by all upstream data sources
type SourceConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *SourceConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ReportConfig holds document properties written into generated reports
type ReportConfig struct {
	Title       string `toml:"title"`
	Author      string `toml:"author"`
	Creator     string `toml:"creator"`
	LoadTimeout string `toml:"load_timeout"`
}

// GetLoadTimeout returns how long to wait for every source of an event to load
func (c *ReportConfig) GetLoadTimeout() time.Duration {
	return parsePositiveDuration(c.LoadTimeout, 60*time.Second)
}

func parsePositiveDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  "30s",
			WriteTimeout: "300s",
		},
		Clients: ClientsConfig{
			Profile: SourceConfig{
				BaseURL:   "https://unassigned-api.herokuapp.com/api",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Wikipedia: SourceConfig{
				BaseURL:   "https://en.wikipedia.org/w/api.php",
				RateLimit: 10,
				Timeout:   "15s",
			},
			AlphaVantage: SourceConfig{
				BaseURL:   "https://www.alphavantage.co/query",
				RateLimit: 1,
				Timeout:   "30s",
			},
			Guardian: SourceConfig{
				BaseURL:   "https://content.guardianapis.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Report: ReportConfig{
			Title:       "EventStock Event Report",
			Author:      "EventStock",
			Creator:     "EventStock",
			LoadTimeout: "60s",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"console"},
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("EVENTSTOCK_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("EVENTSTOCK_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("EVENTSTOCK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("EVENTSTOCK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("EVENTSTOCK_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		config.Clients.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("GUARDIAN_API_KEY"); v != "" {
		config.Clients.Guardian.APIKey = v
	}
	if v := os.Getenv("EVENTSTOCK_PROFILE_URL"); v != "" {
		config.Clients.Profile.BaseURL = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ValidateRequired returns the config keys that must be set before the
// external sources can be reached.
func (c *Config) ValidateRequired() []string {
	var missing []string
	if c.Clients.AlphaVantage.APIKey == "" {
		missing = append(missing, "clients.alphavantage.api_key")
	}
	if c.Clients.Guardian.APIKey == "" {
		missing = append(missing, "clients.guardian.api_key")
	}
	return missing
}
