package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// LoadTOML reads root/gfcedit.toml. It returns nil, nil when the file does
// not exist.
func LoadTOML(root string) (*Config, error) {
	path := filepath.Join(root, TOMLFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TOMLFile, err)
	}
	return parseTOML(root, data)
}

func parseTOML(root string, data []byte) (*Config, error) {
	cfg := Default(root)
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse TOML config: %w", err)
	}
	cfg.Root = root
	return cfg, nil
}
