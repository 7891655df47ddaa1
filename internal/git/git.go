// Package git implements ports.SourceControl.
//
// Clone, checkout, and repository detection use go-git. Stash, pull, and
// stash pop shell out to the git binary, since go-git has no stash support
// and its pull cannot merge local changes.
package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/velvet-lang/weave/internal/logging"
	"github.com/velvet-lang/weave/internal/ports"
)

// Remote is the remote name used for clones.
const Remote = "origin"

// SourceControl is the production ports.SourceControl.
type SourceControl struct {
	// Binary is the git executable used for stash and pull (default: "git").
	Binary string

	auth   transport.AuthMethod
	logger *logging.Logger
}

var _ ports.SourceControl = (*SourceControl)(nil)

// New creates a SourceControl. HTTPS credentials are taken from
// GITHUB_TOKEN or GIT_TOKEN when set. A nil logger uses the global logger.
func New(logger *logging.Logger) *SourceControl {
	return &SourceControl{
		Binary: "git",
		auth:   authFromEnv(),
		logger: logger,
	}
}

func authFromEnv() transport.AuthMethod {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return &http.BasicAuth{Username: "x-access-token", Password: token}
	}
	if token := os.Getenv("GIT_TOKEN"); token != "" {
		return &http.BasicAuth{Username: "git", Password: token}
	}
	return nil
}

func (s *SourceControl) log() *logging.Logger {
	return logging.OrGlobal(s.logger)
}

// Clone implements ports.SourceControl. A failed clone leaves nothing at dest.
func (s *SourceControl) Clone(ctx context.Context, url, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("destination %s already exists", dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	s.log().Debug("cloning", "url", url, "dest", dest)
	_, err := gogit.PlainCloneContext(ctx, dest, false, &gogit.CloneOptions{
		URL:        url,
		RemoteName: Remote,
		Auth:       s.auth,
		Tags:       gogit.AllTags,
	})
	if err != nil {
		_ = os.RemoveAll(dest)
		return fmt.Errorf("clone %s: %w", url, err)
	}
	return nil
}

// IsRepository implements ports.SourceControl. Only dir itself is checked;
// an enclosing repository does not count.
func (s *SourceControl) IsRepository(dir string) bool {
	_, err := gogit.PlainOpen(dir)
	return err == nil
}
