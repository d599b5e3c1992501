// Package config loads and validates the dock configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Side is the screen edge the dock is attached to.
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// HideMode controls when the dock surrenders its reserved screen region.
type HideMode string

const (
	// HideNever keeps the dock permanently visible and permanently
	// reserving its full thickness.
	HideNever HideMode = "never"
	// HideAlways keeps the dock collapsed unless the pointer summons it.
	HideAlways HideMode = "always"
	// HideOnOverlap collapses the dock only while the foreground window
	// overlaps its region.
	HideOnOverlap HideMode = "on-overlap"
)

// AppRule is a per-application override, matched by executable basename
// (case-insensitive).
type AppRule struct {
	Exe    string `yaml:"exe"`
	Hidden bool   `yaml:"hidden,omitempty"`
}

// Config is the effective dock configuration.
type Config struct {
	Side         Side          `yaml:"side"`
	Thickness    int           `yaml:"thickness"` // device-independent units
	HideMode     HideMode      `yaml:"hide_mode"`
	PollInterval time.Duration `yaml:"-"`

	// IconCacheDir overrides the default icon cache location.
	IconCacheDir string `yaml:"icon_cache_dir,omitempty"`

	// OverlapExcludedTitles and OverlapExcludedExes list foreground windows
	// that never drive auto-hide.
	OverlapExcludedTitles []string `yaml:"overlap_excluded_titles,omitempty"`
	OverlapExcludedExes   []string `yaml:"overlap_excluded_exes,omitempty"`

	Apps []AppRule `yaml:"apps,omitempty"`

	LogLevel string `yaml:"log_level"`
}

// ValidationError reports an invalid configuration value with its YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DefaultConfig returns the built-in defaults, matching a conventional
// bottom dock.
func DefaultConfig() *Config {
	return &Config{
		Side:         SideBottom,
		Thickness:    40,
		HideMode:     HideOnOverlap,
		PollInterval: 250 * time.Millisecond,
		LogLevel:     "info",
	}
}

// IsAppHidden reports whether a per-application rule marks the executable as
// hidden from the dock.
func (c *Config) IsAppHidden(exePath string) bool {
	if exePath == "" {
		return false
	}
	base := strings.ToLower(ExeBaseName(exePath))
	for _, rule := range c.Apps {
		if strings.ToLower(rule.Exe) == base && rule.Hidden {
			return true
		}
	}
	return false
}

// ExeBaseName returns the basename of a Windows executable path. Paths are
// split on both separators so behavior does not depend on the build host.
func ExeBaseName(exePath string) string {
	if i := strings.LastIndexAny(exePath, `\/`); i >= 0 {
		return exePath[i+1:]
	}
	return exePath
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Side {
	case SideLeft, SideRight, SideTop, SideBottom:
	default:
		return &ValidationError{Path: "side", Err: fmt.Errorf("side must be one of: left, right, top, bottom")}
	}
	if c.Thickness <= 0 {
		return &ValidationError{Path: "thickness", Err: fmt.Errorf("thickness must be > 0")}
	}
	switch c.HideMode {
	case HideNever, HideAlways, HideOnOverlap:
	default:
		return &ValidationError{Path: "hide_mode", Err: fmt.Errorf("hide_mode must be one of: never, always, on-overlap")}
	}
	if c.PollInterval <= 0 {
		return &ValidationError{Path: "poll_interval", Err: fmt.Errorf("poll_interval must be > 0")}
	}
	for i, rule := range c.Apps {
		if strings.TrimSpace(rule.Exe) == "" {
			return &ValidationError{Path: fmt.Sprintf("apps[%d].exe", i), Err: fmt.Errorf("exe must not be empty")}
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	return nil
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments
// from the original YAML.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MarshalYAML renders PollInterval as a duration string so saved files stay
// loadable by the strict decoder.
func (c Config) MarshalYAML() (any, error) {
	type alias Config
	out := struct {
		alias        `yaml:",inline"`
		PollInterval string `yaml:"poll_interval"`
	}{
		alias:        alias(c),
		PollInterval: c.PollInterval.String(),
	}
	return out, nil
}
