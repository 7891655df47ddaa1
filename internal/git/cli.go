package git

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/velvet-lang/weave/internal/logging"
	"github.com/velvet-lang/weave/internal/ports"
)

// run executes git in dir and returns its combined output. Output is also
// logged line by line at debug level.
func (s *SourceControl) run(ctx context.Context, dir string, args ...string) (string, error) {
	binary := s.Binary
	if binary == "" {
		binary = "git"
	}

	var out bytes.Buffer
	lw := s.log().With("dir", dir, "git", args[0]).Writer(logging.LevelDebug)
	defer lw.Flush()

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.Stdout = io.MultiWriter(&out, lw)
	cmd.Stderr = cmd.Stdout

	err := cmd.Run()
	output := strings.TrimSpace(out.String())
	if err != nil {
		if output != "" {
			return output, fmt.Errorf("git %s failed: %w: %s", args[0], err, output)
		}
		return output, fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return output, nil
}

// Stash implements ports.SourceControl. Untracked files are included. The
// result reports whether push added a stash entry, so a push that saved
// nothing never leads to popping an older entry.
func (s *SourceControl) Stash(ctx context.Context, dir string) (bool, error) {
	before, err := s.stashCount(ctx, dir)
	if err != nil {
		return false, err
	}

	if _, err := s.run(ctx, dir, "stash", "push", "--include-untracked", "-m", "weave update"); err != nil {
		return false, err
	}

	after, err := s.stashCount(ctx, dir)
	if err != nil {
		return false, err
	}
	return after > before, nil
}

func (s *SourceControl) stashCount(ctx context.Context, dir string) (int, error) {
	out, err := s.run(ctx, dir, "stash", "list")
	if err != nil {
		return 0, err
	}
	if out == "" {
		return 0, nil
	}
	return len(strings.Split(out, "\n")), nil
}

// Pull implements ports.SourceControl. Only fast-forwards are accepted.
func (s *SourceControl) Pull(ctx context.Context, dir string) error {
	_, err := s.run(ctx, dir, "pull", "--ff-only")
	return err
}

// StashPop implements ports.SourceControl.
func (s *SourceControl) StashPop(ctx context.Context, dir string) error {
	output, err := s.run(ctx, dir, "stash", "pop")
	if err == nil {
		return nil
	}
	if isStashConflict(output) {
		return fmt.Errorf("%w: %v", ports.ErrStashConflict, err)
	}
	return err
}

// isStashConflict reports whether stash pop output describes a conflict
// that left the stash entry in place.
func isStashConflict(output string) bool {
	return strings.Contains(output, "CONFLICT") ||
		strings.Contains(output, "stash entry is kept") ||
		strings.Contains(output, "already exists, no checkout")
}
