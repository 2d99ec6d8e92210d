package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	apperr "github.com/tessro/showcase/internal/errors"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.showcaserc, $XDG_CONFIG_HOME/showcase/config.toml, ~/.config/showcase/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := FindConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidConfig, path, err)
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	loadDotEnv()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidConfig, path, err)
	}
	cfg.ApplyDefaults()
	loadDotEnv()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// DefaultPath returns the path `config init` writes to.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".showcaserc"
	}
	return filepath.Join(home, ".showcaserc")
}

// FindConfigFile returns the first existing config file path.
func FindConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".showcaserc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "showcase", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// loadDotEnv loads .env from the working directory if present. Variables
// already set in the environment win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Backend
	if v := os.Getenv("SHOWCASE_API_URL"); v != "" {
		cfg.Backend.APIURL = v
	}
	if v := os.Getenv("SHOWCASE_MEDIA_URL"); v != "" {
		cfg.Backend.MediaURL = v
	}
	if v := os.Getenv("SHOWCASE_BACKEND_TIMEOUT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Backend.Timeout = i
		}
	}

	// Player
	if v := os.Getenv("SHOWCASE_PLAYER_ENGINE"); v != "" {
		cfg.Player.Engine = v
	}
	if v := os.Getenv("SHOWCASE_MPV_PATH"); v != "" {
		cfg.Player.MPVPath = v
	}

	// TUI
	if v := os.Getenv("SHOWCASE_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
	if v := os.Getenv("SHOWCASE_TUI_REFRESH_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.RefreshInterval = i
		}
	}

	// Remote
	if v := os.Getenv("SHOWCASE_REMOTE_LISTEN"); v != "" {
		cfg.Remote.Listen = v
	}

	// Log
	if v := os.Getenv("SHOWCASE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SHOWCASE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("SHOWCASE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
