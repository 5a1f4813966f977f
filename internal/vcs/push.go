package vcs

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// ForcePush replaces the remote branch with the local one. Re-running for
// the same document must overwrite a stale attempt, so the push is forced.
func (r *Repo) ForcePush(ctx context.Context, branch string) (Outcome, error) {
	name := plumbing.NewBranchReferenceName(branch)
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(fmt.Sprintf("+%s:%s", name, name))},
		Auth:       r.auth,
		Force:      true,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return Noop, nil
	}
	if err != nil {
		return "", fmt.Errorf("push %s to %s: %w", branch, r.remote, err)
	}
	return Applied, nil
}
