package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// Checkout implements ports.SourceControl. ref is tried, in order, as a tag
// (also with the leading v added or removed for semantic versions), a local
// branch, a remote branch, and finally any revision go-git can resolve.
// Tags and revisions leave HEAD detached. A remote branch gets a local
// tracking branch so that later pulls work.
func (s *SourceControl) Checkout(ctx context.Context, dir, ref string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("open %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if hash, name, ok := findTag(repo, ref); ok {
		s.log().Debug("checking out tag", "dir", dir, "tag", name)
		return wrapCheckout(ref, wt.Checkout(&gogit.CheckoutOptions{Hash: hash}))
	}

	branch := plumbing.NewBranchReferenceName(ref)
	if _, err := repo.Reference(branch, true); err == nil {
		s.log().Debug("checking out branch", "dir", dir, "branch", ref)
		return wrapCheckout(ref, wt.Checkout(&gogit.CheckoutOptions{Branch: branch}))
	}

	if remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(Remote, ref), true); err == nil {
		s.log().Debug("checking out remote branch", "dir", dir, "branch", ref)
		err := wt.Checkout(&gogit.CheckoutOptions{
			Branch: branch,
			Hash:   remoteRef.Hash(),
			Create: true,
		})
		if err != nil {
			return wrapCheckout(ref, err)
		}
		err = repo.CreateBranch(&config.Branch{
			Name:   ref,
			Remote: Remote,
			Merge:  branch,
		})
		if err != nil && err != gogit.ErrBranchExists {
			return fmt.Errorf("failed to track %s/%s: %w", Remote, ref, err)
		}
		return nil
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return fmt.Errorf("ref %q not found: %w", ref, err)
	}
	s.log().Debug("checking out revision", "dir", dir, "hash", hash.String())
	return wrapCheckout(ref, wt.Checkout(&gogit.CheckoutOptions{Hash: *hash}))
}

func wrapCheckout(ref string, err error) error {
	if err != nil {
		return fmt.Errorf("checkout %s: %w", ref, err)
	}
	return nil
}

// tagCandidates returns ref plus its v-prefixed or unprefixed twin when ref
// is a semantic version.
func tagCandidates(ref string) []string {
	candidates := []string{ref}
	if _, err := semver.NewVersion(ref); err != nil {
		return candidates
	}
	if strings.HasPrefix(ref, "v") {
		return append(candidates, strings.TrimPrefix(ref, "v"))
	}
	return append(candidates, "v"+ref)
}

// findTag resolves ref as a tag and returns the commit it points to.
func findTag(repo *gogit.Repository, ref string) (plumbing.Hash, string, bool) {
	for _, name := range tagCandidates(ref) {
		tagRef, err := repo.Reference(plumbing.NewTagReferenceName(name), true)
		if err != nil {
			continue
		}
		// Annotated tags point at a tag object, not the commit.
		if tagObj, err := repo.TagObject(tagRef.Hash()); err == nil {
			commit, err := tagObj.Commit()
			if err != nil {
				continue
			}
			return commit.Hash, name, true
		}
		return tagRef.Hash(), name, true
	}
	return plumbing.ZeroHash, "", false
}
