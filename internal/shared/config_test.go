package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "https://api.m.nintendo.com" {
			t.Errorf("expected default base URL, got %s", config.API.BaseURL)
		}
		if config.API.Country != "JP" {
			t.Errorf("expected country JP, got %s", config.API.Country)
		}
		if config.Fetch.MaxAttempts != 5 {
			t.Errorf("expected 5 max attempts, got %d", config.Fetch.MaxAttempts)
		}
		if config.Fetch.Timeout != 10*time.Second {
			t.Errorf("expected 10s timeout, got %v", config.Fetch.Timeout)
		}
		if config.Export.OutputDir != "output" {
			t.Errorf("expected output dir 'output', got %s", config.Export.OutputDir)
		}
		if len(config.Export.Locales) != 3 {
			t.Errorf("expected 3 default locales, got %v", config.Export.Locales)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "http://localhost:9090"

[fetch]
max_attempts = 2
retry_delay = "0s"

[export]
output_dir = "/tmp/nm"
locales = ["en-US"]
parallel = true
game_workers = 4
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "http://localhost:9090" {
			t.Errorf("expected overridden base URL, got %s", config.API.BaseURL)
		}
		if config.API.Country != "JP" {
			t.Errorf("expected default country to survive partial file, got %s", config.API.Country)
		}
		if config.Fetch.MaxAttempts != 2 {
			t.Errorf("expected 2 max attempts, got %d", config.Fetch.MaxAttempts)
		}
		if config.Fetch.RetryDelay != 0 {
			t.Errorf("expected zero retry delay, got %v", config.Fetch.RetryDelay)
		}
		if len(config.Export.Locales) != 1 || config.Export.Locales[0] != "en-US" {
			t.Errorf("expected locales [en-US], got %v", config.Export.Locales)
		}
		if !config.Export.Parallel || config.Export.GameWorkers != 4 {
			t.Errorf("expected parallel export with 4 workers, got %+v", config.Export)
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[fetch]\nmax_attempts = 0\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvToken, "secret")
		t.Setenv(EnvUserID, "user-1")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.API.Token != "secret" {
			t.Errorf("expected token from env, got %q", config.API.Token)
		}
		if config.API.UserID != "user-1" {
			t.Errorf("expected user id from env, got %q", config.API.UserID)
		}
	})

	t.Run("LoadEnvFile", func(t *testing.T) {
		if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Errorf("missing env file should be ignored: %v", err)
		}

		t.Setenv(EnvBaseURL, "")
		os.Unsetenv(EnvBaseURL)
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte(EnvBaseURL+"=http://env.example\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		if err := LoadEnvFile(envPath); err != nil {
			t.Fatalf("failed to load env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv(EnvBaseURL) })

		config := DefaultConfig()
		config.ApplyEnv()
		if config.API.BaseURL != "http://env.example" {
			t.Errorf("expected base URL from env file, got %s", config.API.BaseURL)
		}
	})
}
