// Package cachelock serializes mutating commands on a library cache.
//
// The lock is an advisory file lock on <cache>.lock, a sibling of the cache
// directory, so it can be taken before the cache exists.
package cachelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	weaveerrors "github.com/velvet-lang/weave/internal/errors"
)

// Lock is a held cache lock.
type Lock struct {
	fl *flock.Flock
}

// Path returns the lock file path for cacheRoot.
func Path(cacheRoot string) string {
	return filepath.Clean(cacheRoot) + ".lock"
}

// Acquire takes the lock for cacheRoot without blocking. It returns a
// CacheLocked error if another process holds it.
func Acquire(cacheRoot string) (*Lock, error) {
	path := Path(cacheRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !ok {
		return nil, weaveerrors.CacheLocked(path)
	}
	return &Lock{fl: fl}, nil
}

// Release releases the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
