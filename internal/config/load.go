package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < overrides.
// An empty configPath falls back to the standard search locations.
func Load(configPath string, o Overrides) (*Config, error) {
	// Start with defaults
	cfg := Default()

	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Command-line overrides have the highest priority
	cfg.Apply(o)

	return cfg, nil
}

// findConfigFile looks for config in standard locations. A per-model
// brickscene.yaml in the working directory wins over the user config.
func findConfigFile() string {
	candidates := []string{
		"./brickscene.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "BrickScene")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "BrickScene")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "brickscene")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "brickscene")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
