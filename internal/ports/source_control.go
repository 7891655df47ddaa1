// Package ports declares the external capabilities weave depends on:
// source control, HTTP, and archive fetching. Production implementations
// live in internal/git and internal/fetch; in-memory fakes in internal/testutil.
package ports

import (
	"context"
	"errors"
)

// ErrStashConflict is returned by SourceControl.StashPop when reapplying
// stashed changes conflicts with the working tree. The stash entry is kept.
var ErrStashConflict = errors.New("stash pop conflict")

// SourceControl clones, pins, and refreshes library working copies.
type SourceControl interface {
	// Clone clones url into dest. dest must not exist.
	Clone(ctx context.Context, url, dest string) error
	// Checkout checks out ref (tag, branch, or commit) in the repository at dir.
	Checkout(ctx context.Context, dir, ref string) error
	// IsRepository reports whether dir is the root of a repository.
	IsRepository(dir string) bool
	// Stash stashes local modifications in dir. It reports false without
	// error when the working tree is clean.
	Stash(ctx context.Context, dir string) (bool, error)
	// Pull pulls from the repository's configured upstream.
	Pull(ctx context.Context, dir string) error
	// StashPop reapplies the most recent stash. It returns an error wrapping
	// ErrStashConflict when the reapply conflicts.
	StashPop(ctx context.Context, dir string) error
}
