package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Project-Sylos/Folio/internal/types"
	"github.com/caarlos0/env/v9"
)

// EnvPrefix is prepended to every environment override, e.g. FOLIO_REMOTE_BASE_URL
const EnvPrefix = "FOLIO_"

// DefaultConfig returns a default configuration
func DefaultConfig() types.Config {
	return types.Config{
		API: types.APIConfig{
			Host: "localhost",
			Port: 5001,
		},
		Remote: types.RemoteConfig{
			BaseURL: "http://localhost:5001/api",
			Timeout: types.Duration(30 * time.Second),
			Retries: 3,
		},
		Store: types.StoreConfig{
			DBPath:       "./folio.db",
			StorageLimit: 1 << 30,
			Username:     "admin",
			Email:        "admin@localhost",
			Admin:        true,
		},
		Seed: types.SeedConfig{
			Enabled:      false,
			MaxDepth:     3,
			MinFolders:   1,
			MaxFolders:   3,
			MinHistories: 1,
			MaxHistories: 4,
			Seed:         42,
		},
		Banner: types.BannerConfig{
			DismissAfter: types.Duration(5 * time.Second),
		},
		Log: types.LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// LoadFromFile loads configuration from a JSON file, applies environment
// overrides and validates the result. Fields missing from the file keep
// their DefaultConfig values.
func LoadFromFile(configPath string) (*types.Config, error) {
	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := finish(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load returns the file configuration when configPath is non-empty, or the
// defaults otherwise; environment overrides apply in both cases.
func Load(configPath string) (*types.Config, error) {
	if configPath != "" {
		return LoadFromFile(configPath)
	}
	cfg := DefaultConfig()
	if err := finish(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func finish(cfg *types.Config) error {
	if err := ApplyEnv(cfg); err != nil {
		return err
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Set default DB path if not specified
	if cfg.Store.DBPath == "" {
		cfg.Store.DBPath = "./folio.db"
	}

	// Ensure DB path is absolute
	if !filepath.IsAbs(cfg.Store.DBPath) {
		absPath, err := filepath.Abs(cfg.Store.DBPath)
		if err != nil {
			return fmt.Errorf("failed to resolve DB path: %w", err)
		}
		cfg.Store.DBPath = absPath
	}

	if cfg.API.Host == "" {
		cfg.API.Host = "localhost"
	}
	return nil
}

// ApplyEnv overrides cfg with FOLIO_* environment variables
func ApplyEnv(cfg *types.Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to load config from env: %w", err)
	}
	return nil
}

// Validate checks that the configuration parameters are valid
func Validate(cfg *types.Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.API.Port < 1 || cfg.API.Port > 65535 {
		return fmt.Errorf("API port must be between 1 and 65535, got %d", cfg.API.Port)
	}

	u, err := url.Parse(cfg.Remote.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("remote base_url must be an absolute URL, got %q", cfg.Remote.BaseURL)
	}
	if cfg.Remote.Timeout < 0 {
		return fmt.Errorf("remote timeout must be non-negative, got %s", cfg.Remote.Timeout.Std())
	}
	if cfg.Remote.Retries < 1 {
		return fmt.Errorf("remote retries must be at least 1, got %d", cfg.Remote.Retries)
	}

	if cfg.Store.StorageLimit <= 0 {
		return fmt.Errorf("storage_limit must be positive, got %d", cfg.Store.StorageLimit)
	}

	if cfg.Seed.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", cfg.Seed.MaxDepth)
	}
	if cfg.Seed.MinFolders < 0 {
		return fmt.Errorf("min_folders must be non-negative, got %d", cfg.Seed.MinFolders)
	}
	if cfg.Seed.MaxFolders < cfg.Seed.MinFolders {
		return fmt.Errorf("max_folders (%d) must be >= min_folders (%d)", cfg.Seed.MaxFolders, cfg.Seed.MinFolders)
	}
	if cfg.Seed.MinHistories < 0 {
		return fmt.Errorf("min_histories must be non-negative, got %d", cfg.Seed.MinHistories)
	}
	if cfg.Seed.MaxHistories < cfg.Seed.MinHistories {
		return fmt.Errorf("max_histories (%d) must be >= min_histories (%d)", cfg.Seed.MaxHistories, cfg.Seed.MinHistories)
	}

	if cfg.Banner.DismissAfter <= 0 {
		return fmt.Errorf("banner dismiss_after must be positive, got %s", cfg.Banner.DismissAfter.Std())
	}

	return nil
}

// SaveToFile saves configuration to a JSON file
func SaveToFile(cfg *types.Config, configPath string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
