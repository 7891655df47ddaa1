// Package libsync brings materialized libraries up to date with their
// upstream while keeping local edits.
package libsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/velvet-lang/weave/internal/cachelock"
	"github.com/velvet-lang/weave/internal/config"
	weaveerrors "github.com/velvet-lang/weave/internal/errors"
	"github.com/velvet-lang/weave/internal/logging"
	"github.com/velvet-lang/weave/internal/ports"
)

// Outcome is the result of updating one library.
type Outcome struct {
	Name   string
	Path   string
	Status Status
	// State is the final protocol state.
	State State
	// Trace lists every state visited, starting with StateClean.
	Trace []State
	// Stashed reports whether local edits were stashed.
	Stashed bool
	// Err is set for every status except Updated.
	Err      error
	Duration time.Duration
}

// Report holds one Outcome per library directory, in directory order.
type Report struct {
	CacheRoot string
	Outcomes  []Outcome
}

// Count returns the number of outcomes with status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Statuses returns the status of each outcome in order.
func (r *Report) Statuses() []Status {
	out := make([]Status, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Status
	}
	return out
}

// AllFailed reports whether there was at least one library and every one failed.
func (r *Report) AllFailed() bool {
	return len(r.Outcomes) > 0 && r.Count(Failed) == len(r.Outcomes)
}

// Summary returns a one-line count of each status.
func (r *Report) Summary() string {
	parts := make([]string, 0, 4)
	for _, s := range []Status{Updated, Skipped, Conflict, Failed} {
		parts = append(parts, fmt.Sprintf("%d %s", r.Count(s), s))
	}
	return strings.Join(parts, ", ")
}

// Synchronizer updates every library under a cache root.
type Synchronizer struct {
	scm     ports.SourceControl
	workers int
	timeout time.Duration
	locking bool
	logger  *logging.Logger
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithWorkers sets how many libraries are updated at once (default: 4).
func WithWorkers(n int) Option {
	return func(s *Synchronizer) { s.workers = n }
}

// WithTimeout bounds each library's update. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(s *Synchronizer) { s.timeout = d }
}

// WithLocking enables the cache lock for the duration of UpdateAll (default: true).
func WithLocking(enabled bool) Option {
	return func(s *Synchronizer) { s.locking = enabled }
}

// WithLogger sets the logger. Nil uses the global logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Synchronizer) { s.logger = logger }
}

// New creates a Synchronizer.
func New(scm ports.SourceControl, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		scm:     scm,
		workers: config.DefaultUpdateWorkers,
		locking: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// UpdateAll updates each directory directly under cacheRoot. Other entries
// are ignored. A failure in one library never stops the others; each is
// reported in its Outcome. The returned error is set only when cacheRoot
// cannot be listed or locked. A missing cacheRoot yields an empty report.
func (s *Synchronizer) UpdateAll(ctx context.Context, cacheRoot string) (*Report, error) {
	log := logging.OrGlobal(s.logger)
	report := &Report{CacheRoot: cacheRoot}

	entries, err := os.ReadDir(cacheRoot)
	if os.IsNotExist(err) {
		log.Warn("no library cache to update", "path", cacheRoot)
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", cacheRoot, err)
	}

	if s.locking {
		lock, err := cachelock.Acquire(cacheRoot)
		if err != nil {
			return nil, err
		}
		defer lock.Release()
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}

	report.Outcomes = make([]Outcome, len(names))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, name := range names {
		g.Go(func() error {
			report.Outcomes[i] = s.updateOne(ctx, name, filepath.Join(cacheRoot, name))
			return nil
		})
	}
	_ = g.Wait()

	log.Info("library update finished", "path", cacheRoot, "summary", report.Summary())
	return report, nil
}

// updateOne runs the stash, pull, reapply protocol for a single library.
func (s *Synchronizer) updateOne(ctx context.Context, name, dir string) Outcome {
	start := time.Now()
	log := logging.OrGlobal(s.logger).WithContext(logging.WithLibrary(ctx, name))

	m := &machine{out: Outcome{Name: name, Path: dir}}
	m.enter(StateClean)
	defer func() { m.out.Duration = time.Since(start) }()

	if !s.scm.IsRepository(dir) {
		log.Info("skipping, not a repository", "path", dir)
		m.finish(StateSkipped, weaveerrors.UpdateSkipped(name))
		return m.out
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	stashed, err := s.scm.Stash(ctx, dir)
	if err != nil {
		log.Error("stash failed", "error", err)
		m.finish(StateFailed, weaveerrors.UpdateFailed(name, "stash", err))
		return m.out
	}
	if stashed {
		m.out.Stashed = true
		m.enter(StateStashed)
		log.Debug("stashed local changes")
	}

	if err := s.scm.Pull(ctx, dir); err != nil {
		log.Error("pull failed", "error", err)
		if stashed {
			// Put local edits back on the unchanged tree.
			if perr := s.scm.StashPop(ctx, dir); perr != nil {
				log.Warn("failed to restore stashed changes", "error", perr)
			}
		}
		m.finish(StateFailed, weaveerrors.UpdateFailed(name, "pull", err))
		return m.out
	}
	m.enter(StatePulled)

	if stashed {
		if err := s.scm.StashPop(ctx, dir); err != nil {
			if errors.Is(err, ports.ErrStashConflict) {
				log.Warn("local changes conflict with upstream", "error", err)
				m.finish(StateReapplyConflict, weaveerrors.StashReapplyConflict(name, err))
			} else {
				log.Error("stash pop failed", "error", err)
				m.finish(StateFailed, weaveerrors.UpdateFailed(name, "stash pop", err))
			}
			return m.out
		}
		m.enter(StateReapplied)
	}

	m.out.Status = Updated
	log.Info("library updated", "stashed", stashed)
	return m.out
}

type machine struct {
	out Outcome
}

func (m *machine) enter(s State) {
	m.out.State = s
	m.out.Trace = append(m.out.Trace, s)
}

func (m *machine) finish(s State, err error) {
	m.enter(s)
	m.out.Status = statusFor(s)
	m.out.Err = err
}
