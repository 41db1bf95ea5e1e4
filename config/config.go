// Package config loads the project settings of a GFC workspace.
//
// Settings are read from .gfcedit.kdl in the project root, or from
// gfcedit.toml when no KDL file exists. Missing files yield Default().
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	KDLFile  = ".gfcedit.kdl"
	TOMLFile = "gfcedit.toml"
)

// DefaultSchemaPatterns are searched, in order, below the project root when
// no schema path is configured.
var DefaultSchemaPatterns = []string{
	"resource/GFC*.exp",
	"resource/*.exp",
	"**/*.exp",
}

// Config holds the workspace settings.
type Config struct {
	// Root is the directory the config was loaded from.
	Root string `toml:"-"`
	// Schema is the .exp file to load. Relative paths are resolved against Root.
	Schema string `toml:"schema"`
	// SchemaPatterns are doublestar globs used to discover a schema.
	SchemaPatterns []string `toml:"schema_patterns"`
	// DebounceMs coalesces edits arriving within the window into one reparse.
	DebounceMs int `toml:"debounce_ms"`
	// HideEmpty drops classes without instances from the class tree.
	HideEmpty bool `toml:"hide_empty"`
	// SuggestThreshold is the minimum similarity for unknown-class hints.
	SuggestThreshold float64 `toml:"suggest_threshold"`
	LogFile          string  `toml:"log_file"`
	Verbosity        int     `toml:"verbosity"`
}

// Default returns the built-in settings for root.
func Default(root string) *Config {
	return &Config{
		Root:             root,
		SchemaPatterns:   append([]string(nil), DefaultSchemaPatterns...),
		DebounceMs:       300,
		HideEmpty:        true,
		SuggestThreshold: 0.8,
	}
}

// Load reads the config of the project rooted at root.
func Load(root string) (*Config, error) {
	abs, err := filepath.Abs(root)
	if err == nil {
		root = abs
	}

	if cfg, err := LoadKDL(root); cfg != nil || err != nil {
		if err != nil {
			return nil, err
		}
		return cfg.finish()
	}
	if cfg, err := LoadTOML(root); cfg != nil || err != nil {
		if err != nil {
			return nil, err
		}
		return cfg.finish()
	}
	return Default(root), nil
}

// LoadFile reads an explicit config file, choosing the format by extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	root := filepath.Dir(path)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	var cfg *Config
	switch filepath.Ext(path) {
	case ".kdl":
		cfg, err = parseKDL(root, data)
	case ".toml":
		cfg, err = parseTOML(root, data)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return nil, err
	}
	return cfg.finish()
}

// Debounce returns DebounceMs as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// SchemaPath returns the configured schema path made absolute, or "".
func (c *Config) SchemaPath() string {
	if c.Schema == "" {
		return ""
	}
	if filepath.IsAbs(c.Schema) {
		return c.Schema
	}
	return filepath.Join(c.Root, c.Schema)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMs))
	}
	if c.SuggestThreshold < 0 || c.SuggestThreshold > 1 {
		errs = append(errs, fmt.Errorf("suggest_threshold must be within [0,1], got %g", c.SuggestThreshold))
	}
	if c.Verbosity < 0 {
		errs = append(errs, fmt.Errorf("verbosity must not be negative, got %d", c.Verbosity))
	}
	return errors.Join(errs...)
}

func (c *Config) finish() (*Config, error) {
	if len(c.SchemaPatterns) == 0 {
		c.SchemaPatterns = append([]string(nil), DefaultSchemaPatterns...)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}
