package vcs

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/config"
)

// EnsureIdentity settles the commit author. An explicitly configured
// identity or one already present in any git config scope is a Noop;
// otherwise DefaultIdentity is written to the repository config.
func (r *Repo) EnsureIdentity(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.identity.Name != "" && r.identity.Email != "" {
		return Noop, nil
	}
	if merged, err := r.repo.ConfigScoped(config.SystemScope); err == nil &&
		merged.User.Name != "" && merged.User.Email != "" {
		r.identity = Identity{Name: merged.User.Name, Email: merged.User.Email}
		return Noop, nil
	}

	local, err := r.repo.Config()
	if err != nil {
		return "", fmt.Errorf("read repo config: %w", err)
	}
	local.User.Name = DefaultIdentity.Name
	local.User.Email = DefaultIdentity.Email
	if err := r.repo.SetConfig(local); err != nil {
		return "", fmt.Errorf("write repo config: %w", err)
	}
	r.identity = DefaultIdentity
	return Applied, nil
}
