package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// It replaces every interactive question of the download flow (create folder? naming convention?) with a documented default.
type Config struct {
	Download    DownloadConfig    `toml:"download"`
	Retry       RetryConfig       `toml:"retry"`
	API         APIConfig         `toml:"api"`
	Cover       CoverConfig       `toml:"cover"`
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Log         LogConfig         `toml:"log"`
	Sync        SyncConfig        `toml:"sync"`
}

// DownloadConfig contains defaults for where and how tracks are written.
type DownloadConfig struct {
	Output            string `toml:"output"`
	CreateFolder      bool   `toml:"create_folder"`
	CreateMissingDirs bool   `toml:"create_missing_dirs"`
	Convention        int    `toml:"convention"`
	Workers           int    `toml:"workers"`
}

// RetryConfig contains the bounded retry policy used by the download collaborators.
type RetryConfig struct {
	Attempts     int     `toml:"attempts"`
	BackoffMS    int     `toml:"backoff_ms"`
	MaxBackoffMS int     `toml:"max_backoff_ms"`
	Multiplier   float64 `toml:"multiplier"`
}

// Backoff returns the initial delay between attempts.
func (c RetryConfig) Backoff() time.Duration { return time.Duration(c.BackoffMS) * time.Millisecond }

// MaxBackoff returns the delay cap between attempts.
func (c RetryConfig) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffMS) * time.Millisecond
}

// APIConfig contains settings for the downloader API.
type APIConfig struct {
	BaseURL        string  `toml:"base_url"`
	Referer        string  `toml:"referer"`
	Origin         string  `toml:"origin"`
	RateLimit      float64 `toml:"rate_limit"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Timeout returns the per-request HTTP timeout.
func (c APIConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSeconds) * time.Second }

// CoverConfig controls cover art embedding.
type CoverConfig struct {
	Embed   bool `toml:"embed"`
	MaxSize int  `toml:"max_size"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify Web API client credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Configured reports whether both client credentials are present.
func (c SpotifyConfig) Configured() bool { return c.ClientID != "" && c.ClientSecret != "" }

// DatabaseConfig contains settings for the download history database.
type DatabaseConfig struct {
	Path    string `toml:"path"`
	Enabled bool   `toml:"enabled"`
}

// LogConfig contains log file settings.
type LogConfig struct {
	File       string `toml:"file"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// SyncConfig contains sync manifest settings.
type SyncConfig struct {
	Manifest string `toml:"manifest"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks value ranges that would otherwise surface as confusing runtime behavior.
func (c *Config) Validate() error {
	if c.Download.Convention != 1 && c.Download.Convention != 2 {
		return fmt.Errorf("%w: download.convention must be 1 or 2, got %d", ErrInvalidConfig, c.Download.Convention)
	}
	if c.Download.Workers < 1 {
		return fmt.Errorf("%w: download.workers must be at least 1", ErrInvalidConfig)
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("%w: retry.attempts must be at least 1", ErrInvalidConfig)
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("%w: retry.multiplier must be >= 1", ErrInvalidConfig)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url is empty", ErrInvalidConfig)
	}
	return nil
}

// Environment variables that override the config file.
const (
	EnvSpotifyClientID     = "SPDL_SPOTIFY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPDL_SPOTIFY_CLIENT_SECRET"
	EnvAPIBaseURL          = "SPDL_API_BASE_URL"
	EnvLogLevel            = "SPDL_LOG_LEVEL"
	EnvWorkers             = "SPDL_WORKERS"
)

// LoadEnv loads a .env file (if present) into the process environment.
func LoadEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// ApplyEnv overrides config values with SPDL_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvSpotifyClientID); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv(EnvSpotifyClientSecret); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s must be a positive integer", ErrInvalidConfig, EnvWorkers)
		}
		c.Download.Workers = n
	}
	return nil
}
