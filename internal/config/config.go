// Package config provides configuration data structures for weave.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/velvet-lang/weave/internal/logging"
)

// Config represents the complete weave configuration loaded from weave.yaml.
type Config struct {
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Cache    CacheConfig    `yaml:"cache"    mapstructure:"cache"`
	Update   UpdateConfig   `yaml:"update"   mapstructure:"update"`
	Log      LogConfig      `yaml:"log"      mapstructure:"log"`
}

// RegistryConfig configures where library names are looked up.
type RegistryConfig struct {
	// URL is the plain-text manifest location.
	URL string `yaml:"url" mapstructure:"url"`
	// Timeout bounds the manifest fetch (default: 30s).
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Offline skips the manifest fetch and uses fallback libraries only.
	Offline bool `yaml:"offline" mapstructure:"offline"`
	// ManifestCache is where the raw fetched manifest is written.
	// Empty means <tmp>/library.weave.
	ManifestCache string `yaml:"manifest_cache" mapstructure:"manifest_cache"`
	// Libraries are extra fallback entries. They override the built-in
	// fallback set and are overridden by the remote manifest.
	Libraries map[string]LibraryConfig `yaml:"libraries" mapstructure:"libraries"`
}

// LibraryConfig is a single fallback registry entry.
type LibraryConfig struct {
	URL     string `yaml:"url"               mapstructure:"url"`
	Version string `yaml:"version,omitempty" mapstructure:"version"`
}

// CacheConfig configures the per-project library cache.
type CacheConfig struct {
	// Dir is the cache directory name, relative to the source file's directory.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// UpdateConfig configures `weave update`.
type UpdateConfig struct {
	// Workers is the number of libraries updated in parallel (default: 4).
	Workers int `yaml:"workers" mapstructure:"workers"`
	// PullTimeout bounds each library's stash/pull/reapply run. Zero means no limit.
	PullTimeout time.Duration `yaml:"pull_timeout" mapstructure:"pull_timeout"`
}

// LogConfig configures file logging.
type LogConfig struct {
	Level   string `yaml:"level"   mapstructure:"level"`
	Dir     string `yaml:"dir"     mapstructure:"dir"`
	JSON    bool   `yaml:"json"    mapstructure:"json"`
	Console bool   `yaml:"console" mapstructure:"console"`
}

// Default values.
const (
	DefaultRegistryURL     = "https://raw.githubusercontent.com/Velvet-Lang/velvet/main/weave/library.weave"
	DefaultRegistryTimeout = 30 * time.Second
	DefaultManifestName    = "library.weave"
	DefaultCacheDir        = "weave-library"
	DefaultUpdateWorkers   = 4
	DefaultLogLevel        = "info"
	DefaultLogDir          = ".weave/logs"
)

// NewConfig returns a new Config with default values applied.
func NewConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			URL:       DefaultRegistryURL,
			Timeout:   DefaultRegistryTimeout,
			Libraries: map[string]LibraryConfig{},
		},
		Cache: CacheConfig{
			Dir: DefaultCacheDir,
		},
		Update: UpdateConfig{
			Workers: DefaultUpdateWorkers,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
			Dir:   DefaultLogDir,
		},
	}
}

// ApplyDefaults applies default values to any unset fields.
func (c *Config) ApplyDefaults() {
	defaults := NewConfig()

	if c.Registry.URL == "" {
		c.Registry.URL = defaults.Registry.URL
	}
	if c.Registry.Timeout == 0 {
		c.Registry.Timeout = defaults.Registry.Timeout
	}
	if c.Registry.Libraries == nil {
		c.Registry.Libraries = map[string]LibraryConfig{}
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = defaults.Cache.Dir
	}
	if c.Update.Workers == 0 {
		c.Update.Workers = defaults.Update.Workers
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Dir == "" {
		c.Log.Dir = defaults.Log.Dir
	}
}

// ManifestCachePath returns where the raw fetched manifest is written.
func (c *Config) ManifestCachePath() string {
	if c.Registry.ManifestCache != "" {
		return c.Registry.ManifestCache
	}
	return filepath.Join(os.TempDir(), DefaultManifestName)
}

// LibraryNames returns the configured fallback library names, sorted.
func (c *Config) LibraryNames() []string {
	names := make([]string, 0, len(c.Registry.Libraries))
	for name := range c.Registry.Libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoggingConfig converts the log section into a logging.Config rooted at projectDir.
func (c *Config) LoggingConfig(projectDir string) (*logging.Config, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Console = c.Log.Console
	lc.JSONFormat = c.Log.JSON
	lc.LogDir = c.Log.Dir
	if !filepath.IsAbs(lc.LogDir) {
		lc.LogDir = filepath.Join(projectDir, lc.LogDir)
	}
	return lc, nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := "multiple validation errors:"
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Registry.Timeout < 0 {
		errs = append(errs, &ValidationError{Field: "registry.timeout", Message: "must be non-negative"})
	}
	for _, name := range c.LibraryNames() {
		if name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
			errs = append(errs, &ValidationError{
				Field:   "registry.libraries." + name,
				Message: "library name must be a single path element",
			})
			continue
		}
		if c.Registry.Libraries[name].URL == "" {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("registry.libraries.%s.url", name),
				Message: "is required",
			})
		}
	}

	if filepath.IsAbs(c.Cache.Dir) || c.Cache.Dir == ".." || c.Cache.Dir == "." {
		errs = append(errs, &ValidationError{Field: "cache.dir", Message: "must be a relative directory name"})
	}

	if c.Update.Workers < 1 {
		errs = append(errs, &ValidationError{Field: "update.workers", Message: "must be at least 1"})
	}
	if c.Update.PullTimeout < 0 {
		errs = append(errs, &ValidationError{Field: "update.pull_timeout", Message: "must be non-negative"})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "log.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
