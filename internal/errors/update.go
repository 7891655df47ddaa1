// Package errors provides error types for weave.
// This file contains library update errors.
package errors

import "fmt"

// UpdateSkipped creates an error for a cache entry that is not a repository.
func UpdateSkipped(name string) *WeaveError {
	return &WeaveError{
		Kind:    ErrUpdateSkipped,
		Message: fmt.Sprintf("%s is not a git repository", name),
		Details: map[string]string{
			"library": name,
		},
	}
}

// StashReapplyConflict creates an error for local edits that conflicted after a pull.
func StashReapplyConflict(name string, cause error) *WeaveError {
	return &WeaveError{
		Kind:    ErrStashReapplyConflict,
		Message: fmt.Sprintf("local changes to %s conflict with upstream", name),
		Cause:   cause,
		Details: map[string]string{
			"library": name,
		},
		Suggestion: `Your edits are still in the stash. Resolve the conflict by hand:
  cd weave-library/` + name + `
  git status
  git stash drop   # once the conflict is resolved`,
	}
}

// UpdateFailed creates an error for a failed stash or pull step.
func UpdateFailed(name, step string, cause error) *WeaveError {
	return &WeaveError{
		Kind:    ErrUpdateFailed,
		Message: fmt.Sprintf("%s failed for %s", step, name),
		Cause:   cause,
		Details: map[string]string{
			"library": name,
			"step":    step,
		},
	}
}

// CacheLocked creates an error when the cache lock is held by another process.
func CacheLocked(path string) *WeaveError {
	return &WeaveError{
		Kind:    ErrLocked,
		Message: "library cache is in use by another weave command",
		Details: map[string]string{
			"lock": path,
		},
		Suggestion: "Wait for the other command to finish. If none is running, remove the lock file.",
	}
}
