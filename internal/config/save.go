package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with durations as strings so saved files read
// naturally ("30s" rather than nanoseconds).
type fileConfig struct {
	Registry struct {
		URL           string                   `yaml:"url"`
		Timeout       string                   `yaml:"timeout"`
		Offline       bool                     `yaml:"offline"`
		ManifestCache string                   `yaml:"manifest_cache,omitempty"`
		Libraries     map[string]LibraryConfig `yaml:"libraries,omitempty"`
	} `yaml:"registry"`
	Cache  CacheConfig `yaml:"cache"`
	Update struct {
		Workers     int    `yaml:"workers"`
		PullTimeout string `yaml:"pull_timeout,omitempty"`
	} `yaml:"update"`
	Log LogConfig `yaml:"log"`
}

func toFile(cfg *Config) *fileConfig {
	fc := &fileConfig{}
	fc.Registry.URL = cfg.Registry.URL
	fc.Registry.Timeout = cfg.Registry.Timeout.String()
	fc.Registry.Offline = cfg.Registry.Offline
	fc.Registry.ManifestCache = cfg.Registry.ManifestCache
	fc.Registry.Libraries = cfg.Registry.Libraries
	fc.Cache = cfg.Cache
	fc.Update.Workers = cfg.Update.Workers
	if cfg.Update.PullTimeout > 0 {
		fc.Update.PullTimeout = cfg.Update.PullTimeout.String()
	}
	fc.Log = cfg.Log
	return fc
}

// Marshal renders cfg as weave.yaml content.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(toFile(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes cfg to path, creating parent directories.
// If path is empty, it uses DefaultConfigFile in the working directory.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
