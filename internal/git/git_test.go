package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	gogit "github.com/go-git/go-git/v5"

	"github.com/velvet-lang/weave/internal/logging"
	"github.com/velvet-lang/weave/internal/ports"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_AUTHOR_NAME", "Test User")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test User")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v: %s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// setupUpstream creates a repository on branch main with one commit.
func setupUpstream(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "upstream")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "init")
	runGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	writeFile(t, filepath.Join(dir, "lib.vel"), "one\n")
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-m", "initial")
	return dir
}

func commit(t *testing.T, dir, file, content string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, file), content)
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-m", "update "+file)
}

func newTestSourceControl() *SourceControl {
	sc := New(logging.NewNoop())
	sc.auth = nil
	return sc
}

func cloneUpstream(t *testing.T, sc *SourceControl, upstream string) string {
	t.Helper()
	dest := filepath.Join(t.TempDir(), "weave-library", "lib")
	if err := sc.Clone(context.Background(), upstream, dest); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	return dest
}

func TestSourceControl_Clone(t *testing.T) {
	requireGit(t)
	upstream := setupUpstream(t)
	sc := newTestSourceControl()

	dest := cloneUpstream(t, sc, upstream)

	if got := readFile(t, filepath.Join(dest, "lib.vel")); got != "one\n" {
		t.Errorf("lib.vel = %q, want %q", got, "one\n")
	}
	if !sc.IsRepository(dest) {
		t.Error("IsRepository() = false after clone")
	}
}

func TestSourceControl_Clone_Existing(t *testing.T) {
	requireGit(t)
	upstream := setupUpstream(t)
	sc := newTestSourceControl()
	dest := t.TempDir()

	if err := sc.Clone(context.Background(), upstream, dest); err == nil {
		t.Error("Clone() into an existing directory should fail")
	}
}

func TestSourceControl_Clone_FailureCleansUp(t *testing.T) {
	sc := newTestSourceControl()
	dest := filepath.Join(t.TempDir(), "lib")

	err := sc.Clone(context.Background(), filepath.Join(t.TempDir(), "missing"), dest)
	if err == nil {
		t.Fatal("Clone() of a missing repository should fail")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("failed clone left %s behind", dest)
	}
}

func TestSourceControl_IsRepository(t *testing.T) {
	requireGit(t)
	sc := newTestSourceControl()
	upstream := setupUpstream(t)

	plain := filepath.Join(upstream, "plain")
	if err := os.MkdirAll(plain, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		dir  string
		want bool
	}{
		{"repository root", upstream, true},
		{"subdirectory of a repository", plain, false},
		{"missing directory", filepath.Join(upstream, "nope"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sc.IsRepository(tt.dir); got != tt.want {
				t.Errorf("IsRepository(%s) = %v, want %v", tt.dir, got, tt.want)
			}
		})
	}
}

func TestSourceControl_Checkout_Tag(t *testing.T) {
	requireGit(t)
	upstream := setupUpstream(t)
	runGit(t, upstream, "tag", "-a", "v1.0.0", "-m", "release")
	tagged := runGit(t, upstream, "rev-parse", "HEAD")
	commit(t, upstream, "lib.vel", "two\n")

	tests := []string{"v1.0.0", "1.0.0"}
	for _, ref := range tests {
		t.Run(ref, func(t *testing.T) {
			sc := newTestSourceControl()
			dest := cloneUpstream(t, sc, upstream)

			if err := sc.Checkout(context.Background(), dest, ref); err != nil {
				t.Fatalf("Checkout(%s) error = %v", ref, err)
			}
			if got := runGit(t, dest, "rev-parse", "HEAD"); got != tagged {
				t.Errorf("HEAD = %s, want %s", got, tagged)
			}
			if got := readFile(t, filepath.Join(dest, "lib.vel")); got != "one\n" {
				t.Errorf("lib.vel = %q, want tagged content", got)
			}
		})
	}
}

func TestSourceControl_Checkout_RemoteBranch(t *testing.T) {
	requireGit(t)
	upstream := setupUpstream(t)
	runGit(t, upstream, "checkout", "-b", "dev")
	commit(t, upstream, "lib.vel", "dev\n")
	runGit(t, upstream, "checkout", "main")

	sc := newTestSourceControl()
	dest := cloneUpstream(t, sc, upstream)

	if err := sc.Checkout(context.Background(), dest, "dev"); err != nil {
		t.Fatalf("Checkout(dev) error = %v", err)
	}

	repo, err := gogit.PlainOpen(dest)
	if err != nil {
		t.Fatal(err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatal(err)
	}
	if head.Name().Short() != "dev" {
		t.Errorf("HEAD = %s, want dev", head.Name())
	}

	// The branch tracks origin/dev, so a pull picks up new commits.
	runGit(t, upstream, "checkout", "dev")
	commit(t, upstream, "lib.vel", "dev2\n")
	if err := sc.Pull(context.Background(), dest); err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "lib.vel")); got != "dev2\n" {
		t.Errorf("lib.vel = %q, want dev2", got)
	}
}

func TestSourceControl_Checkout_Unknown(t *testing.T) {
	requireGit(t)
	upstream := setupUpstream(t)
	sc := newTestSourceControl()
	dest := cloneUpstream(t, sc, upstream)

	if err := sc.Checkout(context.Background(), dest, "no-such-ref"); err == nil {
		t.Error("Checkout() of an unknown ref should fail")
	}
}

func TestSourceControl_StashPullPop(t *testing.T) {
	requireGit(t)
	upstream := setupUpstream(t)
	sc := newTestSourceControl()
	dest := cloneUpstream(t, sc, upstream)
	ctx := context.Background()

	stashed, err := sc.Stash(ctx, dest)
	if err != nil {
		t.Fatalf("Stash() on clean tree error = %v", err)
	}
	if stashed {
		t.Error("Stash() on clean tree reported a stash")
	}

	writeFile(t, filepath.Join(dest, "notes.vel"), "local\n")
	commit(t, upstream, "lib.vel", "two\n")

	stashed, err = sc.Stash(ctx, dest)
	if err != nil {
		t.Fatalf("Stash() error = %v", err)
	}
	if !stashed {
		t.Fatal("Stash() with local edits reported no stash")
	}
	if _, err := os.Stat(filepath.Join(dest, "notes.vel")); !os.IsNotExist(err) {
		t.Error("untracked file should be stashed")
	}

	if err := sc.Pull(ctx, dest); err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "lib.vel")); got != "two\n" {
		t.Errorf("lib.vel = %q, want upstream content", got)
	}

	if err := sc.StashPop(ctx, dest); err != nil {
		t.Fatalf("StashPop() error = %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "notes.vel")); got != "local\n" {
		t.Errorf("notes.vel = %q, want local edit restored", got)
	}
}

func TestSourceControl_Stash_KeepsOlderEntries(t *testing.T) {
	requireGit(t)
	upstream := setupUpstream(t)
	sc := newTestSourceControl()
	dest := cloneUpstream(t, sc, upstream)
	ctx := context.Background()

	// An entry the user stashed by hand before the update.
	writeFile(t, filepath.Join(dest, "lib.vel"), "manual\n")
	runGit(t, dest, "stash", "push", "-m", "manual")

	stashed, err := sc.Stash(ctx, dest)
	if err != nil {
		t.Fatalf("Stash() error = %v", err)
	}
	if stashed {
		t.Error("Stash() with nothing to save reported a stash")
	}
	if got := runGit(t, dest, "stash", "list"); strings.Count(got, "\n")+1 != 1 || !strings.Contains(got, "manual") {
		t.Errorf("stash list = %q, want only the manual entry", got)
	}

	n, err := sc.stashCount(ctx, dest)
	if err != nil || n != 1 {
		t.Errorf("stashCount() = %d, %v; want 1", n, err)
	}
}

func TestSourceControl_StashPop_Conflict(t *testing.T) {
	requireGit(t)
	upstream := setupUpstream(t)
	sc := newTestSourceControl()
	dest := cloneUpstream(t, sc, upstream)
	ctx := context.Background()

	writeFile(t, filepath.Join(dest, "lib.vel"), "local\n")
	commit(t, upstream, "lib.vel", "two\n")

	if _, err := sc.Stash(ctx, dest); err != nil {
		t.Fatalf("Stash() error = %v", err)
	}
	if err := sc.Pull(ctx, dest); err != nil {
		t.Fatalf("Pull() error = %v", err)
	}

	err := sc.StashPop(ctx, dest)
	if !errors.Is(err, ports.ErrStashConflict) {
		t.Fatalf("StashPop() error = %v, want ErrStashConflict", err)
	}
	if got := runGit(t, dest, "stash", "list"); got == "" {
		t.Error("stash entry should be kept after a conflict")
	}
}

func TestSourceControl_Pull_DetachedFails(t *testing.T) {
	requireGit(t)
	upstream := setupUpstream(t)
	runGit(t, upstream, "tag", "v1.0.0")
	sc := newTestSourceControl()
	dest := cloneUpstream(t, sc, upstream)

	if err := sc.Checkout(context.Background(), dest, "v1.0.0"); err != nil {
		t.Fatal(err)
	}
	if err := sc.Pull(context.Background(), dest); err == nil {
		t.Error("Pull() on a detached HEAD should fail")
	}
}

func TestTagCandidates(t *testing.T) {
	tests := []struct {
		ref  string
		want []string
	}{
		{"v1.2.0", []string{"v1.2.0", "1.2.0"}},
		{"1.2.0", []string{"1.2.0", "v1.2.0"}},
		{"main", []string{"main"}},
	}
	for _, tt := range tests {
		got := tagCandidates(tt.ref)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("tagCandidates(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}

func TestIsStashConflict(t *testing.T) {
	tests := []struct {
		output string
		want   bool
	}{
		{"Auto-merging lib.vel\nCONFLICT (content): Merge conflict in lib.vel", true},
		{"The stash entry is kept in case you need it again.", true},
		{"notes.vel already exists, no checkout", true},
		{"fatal: not a git repository", false},
	}
	for _, tt := range tests {
		if got := isStashConflict(tt.output); got != tt.want {
			t.Errorf("isStashConflict(%q) = %v, want %v", tt.output, got, tt.want)
		}
	}
}
