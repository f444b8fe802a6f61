package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()
		if config.Database.Path != "./spdl.db" {
			t.Errorf("expected database path ./spdl.db, got %s", config.Database.Path)
		}
		if config.Retry.Attempts != 3 {
			t.Errorf("expected 3 retry attempts, got %d", config.Retry.Attempts)
		}
		if config.Download.Convention != 1 {
			t.Errorf("expected default convention 1, got %d", config.Download.Convention)
		}
		if !config.Download.CreateFolder {
			t.Error("expected create_folder to default to true")
		}
		if config.Sync.Manifest != "sync.json" {
			t.Errorf("expected sync manifest sync.json, got %s", config.Sync.Manifest)
		}
		if config.Log.File != "spdl.log" {
			t.Errorf("expected log file spdl.log, got %s", config.Log.File)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.API.BaseURL != DefaultConfig().API.BaseURL {
			t.Errorf("created config base url doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[download]
convention = 2
workers = 4

[retry]
attempts = 5

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Download.Convention != 2 {
			t.Errorf("expected convention 2, got %d", config.Download.Convention)
		}
		if config.Download.Workers != 4 {
			t.Errorf("expected 4 workers, got %d", config.Download.Workers)
		}
		if config.Retry.Attempts != 5 {
			t.Errorf("expected 5 attempts, got %d", config.Retry.Attempts)
		}
		if config.Retry.Multiplier != 2.0 {
			t.Errorf("expected default multiplier 2.0, got %v", config.Retry.Multiplier)
		}
		if !config.Credentials.Spotify.Configured() {
			t.Error("expected spotify credentials to be configured")
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{name: "bad convention", body: "[download]\nconvention = 3\n"},
			{name: "zero workers", body: "[download]\nworkers = 0\n"},
			{name: "zero attempts", body: "[retry]\nattempts = 0\n"},
			{name: "not toml", body: "this is = = not toml"},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				configPath := filepath.Join(t.TempDir(), "config.toml")
				if err := os.WriteFile(configPath, []byte(tc.body), 0644); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}
				_, err := LoadConfig(configPath)
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvSpotifyClientID, "env_id")
		t.Setenv(EnvSpotifyClientSecret, "env_secret")
		t.Setenv(EnvAPIBaseURL, "http://127.0.0.1:9999")
		t.Setenv(EnvWorkers, "3")

		config := DefaultConfig()
		if err := config.ApplyEnv(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Credentials.Spotify.ClientID != "env_id" || config.Credentials.Spotify.ClientSecret != "env_secret" {
			t.Errorf("expected credentials from env, got %+v", config.Credentials.Spotify)
		}
		if config.API.BaseURL != "http://127.0.0.1:9999" {
			t.Errorf("expected base url from env, got %s", config.API.BaseURL)
		}
		if config.Download.Workers != 3 {
			t.Errorf("expected 3 workers, got %d", config.Download.Workers)
		}
	})

	t.Run("ApplyEnv rejects bad worker count", func(t *testing.T) {
		t.Setenv(EnvWorkers, "many")
		if err := DefaultConfig().ApplyEnv(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
