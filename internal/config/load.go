package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working and config directories.
const FileName = "modelconv.yaml"

// Load loads configuration with priority: defaults < file < flags.
// flags may be nil.
func Load(flags *Flags) (*Config, error) {
	cfg := Default()

	configPath := flags.ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg, flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the converter cannot work with.
func (c *Config) Validate() error {
	if c.Output.Directory == "" {
		return fmt.Errorf("output.directory must not be empty")
	}
	if c.Output.BinarySuffix == c.Output.ManifestSuffix {
		return fmt.Errorf("output.binary_suffix and output.manifest_suffix are both %q", c.Output.BinarySuffix)
	}
	if c.Convert.MaxDepth < 0 {
		return fmt.Errorf("convert.max_depth must not be negative, got %d", c.Convert.MaxDepth)
	}
	if ext := c.Textures.RewriteExtension; ext != "" && ext[0] != '.' {
		return fmt.Errorf("textures.rewrite_extension must start with '.', got %q", ext)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		filepath.Join(".", FileName),
		filepath.Join(ConfigDir(), FileName),
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
		return filepath.Join(home, "Library", "Application Support", "modelconv")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "modelconv")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "modelconv")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "modelconv")
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
