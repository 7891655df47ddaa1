// Package materialize clones registry libraries into the library cache.
package materialize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	weaveerrors "github.com/velvet-lang/weave/internal/errors"
	"github.com/velvet-lang/weave/internal/logging"
	"github.com/velvet-lang/weave/internal/ports"
	"github.com/velvet-lang/weave/internal/registry"
)

// Materializer clones libraries on first reference.
type Materializer struct {
	scm    ports.SourceControl
	logger *logging.Logger
}

// New creates a Materializer. A nil logger uses the global logger.
func New(scm ports.SourceControl, logger *logging.Logger) *Materializer {
	return &Materializer{scm: scm, logger: logger}
}

// Target returns the cache path for the library name.
func Target(cacheRoot, name string) string {
	return filepath.Join(cacheRoot, name)
}

// Materialize ensures cacheRoot/name holds a clone of url. If the target
// already exists nothing is done, even when pin differs from what was
// checked out originally. Otherwise url is cloned and, if pin is set, pin is
// checked out. Failures are returned as MaterializationFailed and leave no
// target behind. An existing target that is not a repository belongs to a
// local copy or an archive and is reported as a failure.
func (m *Materializer) Materialize(ctx context.Context, name, url, pin, cacheRoot string) error {
	if !registry.ValidName(name) {
		return weaveerrors.MaterializationFailed(name, fmt.Errorf("invalid library name %q", name))
	}

	log := logging.OrGlobal(m.logger).With("library", name)
	target := Target(cacheRoot, name)

	if _, err := os.Stat(target); err == nil {
		if !m.scm.IsRepository(target) {
			return weaveerrors.MaterializationFailed(name, fmt.Errorf("%s exists and is not a repository", target))
		}
		log.Debug("library already materialized", "path", target)
		return nil
	} else if !os.IsNotExist(err) {
		return weaveerrors.MaterializationFailed(name, err)
	}

	if err := os.MkdirAll(cacheRoot, 0755); err != nil {
		return weaveerrors.MaterializationFailed(name, fmt.Errorf("failed to create cache directory: %w", err))
	}

	log.Info("cloning library", "url", url, "path", target)
	if err := m.scm.Clone(ctx, url, target); err != nil {
		_ = os.RemoveAll(target)
		return weaveerrors.MaterializationFailed(name, err).WithDetails("url", url)
	}

	if pin != "" {
		log.Info("checking out pinned version", "version", pin)
		if err := m.scm.Checkout(ctx, target, pin); err != nil {
			// Remove the clone so a later resolve retries instead of
			// skipping an unpinned working copy.
			_ = os.RemoveAll(target)
			return weaveerrors.MaterializationFailed(name, err).WithDetails("version", pin)
		}
	}
	return nil
}
