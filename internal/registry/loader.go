package registry

import (
	"context"
	"os"
	"path/filepath"

	"github.com/velvet-lang/weave/internal/config"
	weaveerrors "github.com/velvet-lang/weave/internal/errors"
	"github.com/velvet-lang/weave/internal/logging"
	"github.com/velvet-lang/weave/internal/ports"
)

// Loader refreshes a snapshot from the remote manifest.
type Loader struct {
	fetcher   ports.HTTPFetcher
	url       string
	cachePath string
	offline   bool
	logger    *logging.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithURL sets the manifest URL.
func WithURL(url string) LoaderOption {
	return func(l *Loader) { l.url = url }
}

// WithCachePath sets where the raw manifest is written after a fetch.
// An empty path disables the write.
func WithCachePath(path string) LoaderOption {
	return func(l *Loader) { l.cachePath = path }
}

// WithOffline disables the network fetch.
func WithOffline(offline bool) LoaderOption {
	return func(l *Loader) { l.offline = offline }
}

// WithLogger sets the logger. Nil uses the global logger.
func WithLogger(logger *logging.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader using fetcher for HTTP.
func NewLoader(fetcher ports.HTTPFetcher, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher:   fetcher,
		url:       config.DefaultRegistryURL,
		cachePath: filepath.Join(os.TempDir(), config.DefaultManifestName),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewLoaderFromConfig creates a Loader from the registry section of cfg.
func NewLoaderFromConfig(fetcher ports.HTTPFetcher, cfg *config.Config, logger *logging.Logger) *Loader {
	return NewLoader(fetcher,
		WithURL(cfg.Registry.URL),
		WithCachePath(cfg.ManifestCachePath()),
		WithOffline(cfg.Registry.Offline),
		WithLogger(logger),
	)
}

// Fetch downloads and parses the remote manifest. The raw body is written
// to the cache path before parsing. Errors are RegistryFetchFailure.
func (l *Loader) Fetch(ctx context.Context) ([]Entry, error) {
	log := logging.OrGlobal(l.logger)

	body, err := l.fetcher.Get(ctx, l.url)
	if err != nil {
		return nil, weaveerrors.RegistryFetchFailure(l.url, err)
	}

	if l.cachePath != "" {
		if err := os.WriteFile(l.cachePath, body, 0644); err != nil {
			// The cached copy is informational only.
			log.Warn("failed to cache registry manifest", "path", l.cachePath, "error", err)
		} else {
			log.Debug("cached registry manifest", "path", l.cachePath, "bytes", len(body))
		}
	}

	entries := ParseManifest(string(body))
	log.Debug("fetched registry manifest", "url", l.url, "entries", len(entries))
	return entries, nil
}

// Load merges the remote manifest over fallback. A failed fetch is logged
// and the fallback entries are returned alone; Load never fails.
func (l *Loader) Load(ctx context.Context, fallback []Entry) *Snapshot {
	log := logging.OrGlobal(l.logger)

	if l.offline {
		log.Debug("registry offline, using fallback", "entries", len(fallback))
		return Merge(fallback, nil)
	}

	remote, err := l.Fetch(ctx)
	if err != nil {
		log.Warn("registry fetch failed, using fallback", "url", l.url, "error", err)
		return Merge(fallback, nil)
	}
	return Merge(fallback, remote)
}

// Fallback returns the built-in fallback entries overlaid with the
// libraries configured in cfg. Config entries win on collision.
func Fallback(cfg *config.Config) []Entry {
	entries := DefaultFallback()
	if cfg == nil {
		return entries
	}

	for _, name := range cfg.LibraryNames() {
		lib := cfg.Registry.Libraries[name]
		entries = append(entries, Entry{Name: name, Version: lib.Version, URL: lib.URL})
	}
	return entries
}
