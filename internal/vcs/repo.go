// Package vcs performs the local version-control steps of publication with
// go-git. Commits are assembled in the object store from the base branch
// tree, so the operator's worktree and HEAD are never modified.
package vcs

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Outcome tells a state change apart from a no-op. Failures are returned as
// errors, never as an Outcome.
type Outcome string

const (
	Applied Outcome = "applied"
	Noop    Outcome = "noop"
)

// Identity is the commit author and committer.
type Identity struct {
	Name  string
	Email string
}

// DefaultIdentity is used when no git identity is configured.
var DefaultIdentity = Identity{
	Name:  "github-actions[bot]",
	Email: "github-actions[bot]@users.noreply.github.com",
}

// Options configures Open.
type Options struct {
	Remote string
	// Token authenticates HTTPS fetch and push. Empty means anonymous.
	Token    string
	Identity Identity
}

type stagedFile struct {
	hash plumbing.Hash
	mode filemode.FileMode
}

// Repo is a local checkout opened for publication.
type Repo struct {
	repo     *git.Repository
	root     string
	remote   string
	auth     transport.AuthMethod
	identity Identity
	now      func() time.Time

	branch plumbing.ReferenceName
	staged map[string]stagedFile
}

// Open finds the repository containing dir.
func Open(dir string, opts Options) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	root, err := canonical(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	if opts.Remote == "" {
		opts.Remote = git.DefaultRemoteName
	}
	r := &Repo{
		repo:     repo,
		root:     root,
		remote:   opts.Remote,
		identity: opts.Identity,
		now:      time.Now,
		staged:   map[string]stagedFile{},
	}
	if opts.Token != "" {
		// GitHub accepts any username with a token password.
		r.auth = &githttp.BasicAuth{Username: "x-access-token", Password: opts.Token}
	}
	return r, nil
}

// Root returns the worktree root directory.
func (r *Repo) Root() string {
	return r.root
}

// RelPath converts a filesystem path into a slash-separated path relative to
// the worktree root.
func (r *Repo) RelPath(path string) (string, error) {
	abs, err := canonical(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", fmt.Errorf("relative path for %s: %w", path, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside the repository at %s", path, r.root)
	}
	return filepath.ToSlash(rel), nil
}

// canonical makes path absolute and resolves symlinks in the longest
// existing prefix, so a root behind a symlink compares equal.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path for %s: %w", path, err)
	}
	existing := abs
	var rest []string
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs, nil
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}
}
