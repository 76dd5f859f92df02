// Package config reads the optional swpatch configuration file. Command line
// flags override the values it holds.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the command line flags
type Config struct {
	GamePath string `yaml:"game"`
	Verbose  bool   `yaml:"verbose"`

	Translate Translate `yaml:"translate"`
	Update    Update    `yaml:"update"`
}

// Translate holds the translate command settings
type Translate struct {
	OutputPath string `yaml:"output"`
	DataPath   string `yaml:"data"`
	Manifest   string `yaml:"manifest"`
	Passwords  string `yaml:"passwords"`
}

// Update holds the update command settings
type Update struct {
	Server         string `yaml:"server"`
	RepositoryPath string `yaml:"repo-path"`
	LogDir         string `yaml:"log-dir"`
	Engine         string `yaml:"engine"`
	RateLimit      int64  `yaml:"rate-limit"`
}

// Load reads the file at path. A missing file yields an empty Config.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
