// Package config provides configuration loading and management for weave.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile is the config file name looked up in the project directory.
	DefaultConfigFile = "weave.yaml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "WEAVE"
)

// Loader handles loading configuration from files and environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader with defaults registered so
// every key can be overridden from the environment (WEAVE_REGISTRY_URL, ...).
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := NewConfig()
	v.SetDefault("registry.url", d.Registry.URL)
	v.SetDefault("registry.timeout", d.Registry.Timeout)
	v.SetDefault("registry.offline", d.Registry.Offline)
	v.SetDefault("registry.manifest_cache", d.Registry.ManifestCache)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("update.workers", d.Update.Workers)
	v.SetDefault("update.pull_timeout", d.Update.PullTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.console", d.Log.Console)

	return &Loader{v: v}
}

// LoadConfig loads configuration from the specified path, applies defaults,
// merges environment variables, and validates the result.
// A missing file is an error; see LoadConfigFromDir for the lenient variant.
func (l *Loader) LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{
			Path:    path,
			Message: "config file not found",
			Err:     err,
		}
	}

	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "failed to read config file",
			Err:     err,
		}
	}

	return l.decode(path)
}

// LoadConfigFromDir loads weave.yaml from dir. When the file does not exist
// the defaults (plus environment overrides) are returned.
func (l *Loader) LoadConfigFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, DefaultConfigFile)
	cfg, err := l.LoadConfig(path)
	if err == nil {
		return cfg, nil
	}

	var loadErr *LoadError
	if errors.As(err, &loadErr) && os.IsNotExist(loadErr.Err) {
		return l.decode(path)
	}
	return nil, err
}

func (l *Loader) decode(path string) (*Config, error) {
	cfg := NewConfig()
	if err := l.v.Unmarshal(cfg, viperDecodeHook); err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "failed to parse config file",
			Err:     err,
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return cfg, nil
}

// viperDecodeHook composes the mapstructure hooks weave.yaml needs.
func viperDecodeHook(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// LoadError represents an error that occurred while loading configuration.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load is a convenience function that creates a new Loader and loads configuration.
func Load(path string) (*Config, error) {
	return NewLoader().LoadConfig(path)
}

// LoadFromDir is a convenience function that loads configuration from a directory.
func LoadFromDir(dir string) (*Config, error) {
	return NewLoader().LoadConfigFromDir(dir)
}
