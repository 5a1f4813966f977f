package vcs

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// FetchBase updates the remote-tracking ref of the base branch.
func (r *Repo) FetchBase(ctx context.Context, base string) (Outcome, error) {
	spec := config.RefSpec(fmt.Sprintf("+%s:%s",
		plumbing.NewBranchReferenceName(base),
		plumbing.NewRemoteReferenceName(r.remote, base)))
	err := r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: r.remote,
		RefSpecs:   []config.RefSpec{spec},
		Tags:       git.NoTags,
		Auth:       r.auth,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return Noop, nil
	}
	if err != nil {
		return "", fmt.Errorf("fetch %s/%s: %w", r.remote, base, err)
	}
	return Applied, nil
}

// ResetBranch points branch at the tip of the fetched base branch, creating
// it if needed, and clears anything staged for a previous branch. The
// checked-out branch is never moved.
func (r *Repo) ResetBranch(ctx context.Context, branch, base string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	baseRef, err := r.repo.Reference(plumbing.NewRemoteReferenceName(r.remote, base), true)
	if err != nil {
		return "", fmt.Errorf("remote ref %s/%s: %w", r.remote, base, err)
	}
	name := plumbing.NewBranchReferenceName(branch)
	if head, err := r.repo.Head(); err == nil && head.Name() == name {
		return "", fmt.Errorf("refusing to reset %s: it is checked out", branch)
	}

	r.branch = name
	r.staged = map[string]stagedFile{}

	current, err := r.repo.Reference(name, true)
	if err == nil && current.Hash() == baseRef.Hash() {
		return Noop, nil
	}
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(name, baseRef.Hash())); err != nil {
		return "", fmt.Errorf("set %s: %w", branch, err)
	}
	return Applied, nil
}

// BranchHash returns the commit the branch points at.
func (r *Repo) BranchHash(branch string) (plumbing.Hash, error) {
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return ref.Hash(), nil
}
