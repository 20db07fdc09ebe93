package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables overlaid onto a loaded [Config] by [Config.ApplyEnv].
const (
	EnvToken   = "NMDB_TOKEN"
	EnvUserID  = "NMDB_USER_ID"
	EnvBaseURL = "NMDB_BASE_URL"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Fetch    FetchConfig    `toml:"fetch"`
	Export   ExportConfig   `toml:"export"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// APIConfig contains the upstream catalog API selectors.
type APIConfig struct {
	BaseURL     string `toml:"base_url"`
	Country     string `toml:"country"`
	Membership  string `toml:"membership"`
	PackageType string `toml:"package_type"`
	SDKVersion  string `toml:"sdk_version"`
	UserAgent   string `toml:"user_agent"`
	UserID      string `toml:"user_id"`
	Token       string `toml:"token"`
}

// FetchConfig contains retry and pacing settings for catalog requests.
type FetchConfig struct {
	Timeout           time.Duration `toml:"timeout"`
	MaxAttempts       int           `toml:"max_attempts"`
	RetryDelay        time.Duration `toml:"retry_delay"`
	MaxRetryDelay     time.Duration `toml:"max_retry_delay"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
}

// ExportConfig contains output and enrichment settings.
type ExportConfig struct {
	OutputDir    string   `toml:"output_dir"`
	SectionsPath string   `toml:"sections_path"`
	ListenTitle  string   `toml:"listen_title"`
	Locales      []string `toml:"locales"`
	Parallel     bool     `toml:"parallel"`
	GameWorkers  int      `toml:"game_workers"`
}

// DatabaseConfig contains the run ledger location. An empty path disables the ledger.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
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
		return fmt.Errorf("config file already exists at %s: %w", path, fs.ErrExist)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process environment.
//
// A missing file is not an error. Variables already set in the environment win.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays secrets and overrides from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvToken); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv(EnvUserID); v != "" {
		c.API.UserID = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.API.BaseURL = v
	}
}

// Validate checks the values the exporter cannot run without.
func (c *Config) Validate() error {
	switch {
	case c.API.BaseURL == "":
		return fmt.Errorf("%w: api.base_url is required", ErrInvalidConfig)
	case c.API.Country == "":
		return fmt.Errorf("%w: api.country is required", ErrInvalidConfig)
	case c.Fetch.MaxAttempts < 1:
		return fmt.Errorf("%w: fetch.max_attempts must be at least 1", ErrInvalidConfig)
	case c.Fetch.RetryDelay < 0 || c.Fetch.MaxRetryDelay < 0:
		return fmt.Errorf("%w: retry delays must not be negative", ErrInvalidConfig)
	case c.Fetch.RequestsPerSecond < 0:
		return fmt.Errorf("%w: fetch.requests_per_second must not be negative", ErrInvalidConfig)
	case c.Export.OutputDir == "":
		return fmt.Errorf("%w: export.output_dir is required", ErrInvalidConfig)
	case c.Export.GameWorkers < 1:
		return fmt.Errorf("%w: export.game_workers must be at least 1", ErrInvalidConfig)
	}
	return nil
}
