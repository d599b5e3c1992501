package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// RawConfig mirrors Config with optional fields so the loader can tell
// "absent" apart from "zero" when applying defaults.
type RawConfig struct {
	Side                  *Side     `yaml:"side"`
	Thickness             *int      `yaml:"thickness"`
	HideMode              *HideMode `yaml:"hide_mode"`
	PollInterval          *string   `yaml:"poll_interval"`
	IconCacheDir          *string   `yaml:"icon_cache_dir"`
	OverlapExcludedTitles []string  `yaml:"overlap_excluded_titles"`
	OverlapExcludedExes   []string  `yaml:"overlap_excluded_exes"`
	Apps                  []AppRule `yaml:"apps"`
	LogLevel              *string   `yaml:"log_level"`
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "ledge", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads, defaults, and validates the configuration at path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	var raw RawConfig
	if err := decodeStrictYAML(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := applyRaw(cfg, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func applyRaw(cfg *Config, raw *RawConfig) error {
	if raw.Side != nil {
		cfg.Side = *raw.Side
	}
	if raw.Thickness != nil {
		cfg.Thickness = *raw.Thickness
	}
	if raw.HideMode != nil {
		cfg.HideMode = *raw.HideMode
	}
	if raw.PollInterval != nil {
		d, err := time.ParseDuration(*raw.PollInterval)
		if err != nil {
			return &ValidationError{Path: "poll_interval", Err: err}
		}
		cfg.PollInterval = d
	}
	if raw.IconCacheDir != nil {
		cfg.IconCacheDir = *raw.IconCacheDir
	}
	if raw.OverlapExcludedTitles != nil {
		cfg.OverlapExcludedTitles = raw.OverlapExcludedTitles
	}
	if raw.OverlapExcludedExes != nil {
		cfg.OverlapExcludedExes = raw.OverlapExcludedExes
	}
	if raw.Apps != nil {
		cfg.Apps = raw.Apps
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	return nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return nil
}
