package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/velvet-lang/weave/internal/ports"
)

// FakeSourceControl is an in-memory ports.SourceControl.
//
// A clone is a directory holding a .git subdirectory plus the files listed
// in Remotes for that URL. Per-library behavior is keyed by the base name
// of the working copy directory.
type FakeSourceControl struct {
	// Remotes maps clone URLs to the files a fresh clone contains.
	// URLs not listed clone to an empty working copy.
	Remotes map[string]map[string]string
	// CloneErrs fails Clone for the given URL.
	CloneErrs map[string]error
	// CheckoutErrs fails Checkout for the given ref.
	CheckoutErrs map[string]error
	// Dirty marks libraries whose working tree has local edits.
	Dirty map[string]bool
	// StashErrs fails Stash for the given library.
	StashErrs map[string]error
	// PullErrs fails Pull for the given library.
	PullErrs map[string]error
	// Conflicts makes StashPop conflict for the given library.
	Conflicts map[string]bool

	mu    sync.Mutex
	calls []string
}

// NewFakeSourceControl returns a fake with all maps initialized.
func NewFakeSourceControl() *FakeSourceControl {
	return &FakeSourceControl{
		Remotes:      map[string]map[string]string{},
		CloneErrs:    map[string]error{},
		CheckoutErrs: map[string]error{},
		Dirty:        map[string]bool{},
		StashErrs:    map[string]error{},
		PullErrs:     map[string]error{},
		Conflicts:    map[string]bool{},
	}
}

var _ ports.SourceControl = (*FakeSourceControl)(nil)

func (f *FakeSourceControl) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// Calls returns every recorded call, e.g. "clone <url> <dest>" or "pull <name>".
func (f *FakeSourceControl) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Count returns how many recorded calls start with op (e.g. "clone").
func (f *FakeSourceControl) Count(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if len(c) >= len(op) && c[:len(op)] == op {
			n++
		}
	}
	return n
}

// Clone implements ports.SourceControl.
func (f *FakeSourceControl) Clone(ctx context.Context, url, dest string) error {
	f.record("clone %s %s", url, dest)
	if err := f.CloneErrs[url]; err != nil {
		return err
	}
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("destination %s already exists", dest)
	}
	if err := os.MkdirAll(filepath.Join(dest, ".git"), 0755); err != nil {
		return err
	}
	for name, content := range f.Remotes[url] {
		path := filepath.Join(dest, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// Checkout implements ports.SourceControl. The ref is written to .git/HEAD.
func (f *FakeSourceControl) Checkout(ctx context.Context, dir, ref string) error {
	f.record("checkout %s %s", filepath.Base(dir), ref)
	if err := f.CheckoutErrs[ref]; err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte(ref), 0644)
}

// IsRepository implements ports.SourceControl.
func (f *FakeSourceControl) IsRepository(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

// Stash implements ports.SourceControl.
func (f *FakeSourceControl) Stash(ctx context.Context, dir string) (bool, error) {
	name := filepath.Base(dir)
	f.record("stash %s", name)
	if err := f.StashErrs[name]; err != nil {
		return false, err
	}
	return f.Dirty[name], nil
}

// Pull implements ports.SourceControl.
func (f *FakeSourceControl) Pull(ctx context.Context, dir string) error {
	name := filepath.Base(dir)
	f.record("pull %s", name)
	return f.PullErrs[name]
}

// StashPop implements ports.SourceControl.
func (f *FakeSourceControl) StashPop(ctx context.Context, dir string) error {
	name := filepath.Base(dir)
	f.record("pop %s", name)
	if f.Conflicts[name] {
		return fmt.Errorf("%w: %s", ports.ErrStashConflict, name)
	}
	return nil
}
