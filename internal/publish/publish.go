// Package publish turns a saved translation into a pushed branch and an open
// pull request against the integration branch.
package publish

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/oukeidos/docsync/internal/apperrors"
	"github.com/oukeidos/docsync/internal/github"
	"github.com/oukeidos/docsync/internal/logger"
	"github.com/oukeidos/docsync/internal/resolve"
	"github.com/oukeidos/docsync/internal/vcs"
)

// DefaultBase is the integration branch pull requests target.
const DefaultBase = "master-ko"

// Repository is the local version-control side of publication.
type Repository interface {
	EnsureIdentity(ctx context.Context) (vcs.Outcome, error)
	FetchBase(ctx context.Context, base string) (vcs.Outcome, error)
	ResetBranch(ctx context.Context, branch, base string) (vcs.Outcome, error)
	RelPath(path string) (string, error)
	Stage(ctx context.Context, paths ...string) (vcs.Outcome, error)
	Commit(ctx context.Context, message string) (vcs.Outcome, plumbing.Hash, error)
	ForcePush(ctx context.Context, branch string) (vcs.Outcome, error)
}

// RequestHost manages pull requests on the hosting service.
type RequestHost interface {
	FindOpenRequest(ctx context.Context, branch string) (github.PullRequest, bool, error)
	CreateRequest(ctx context.Context, pr github.NewPullRequest) (github.PullRequest, error)
	UpdateRequest(ctx context.Context, number int, title, body string) (github.PullRequest, error)
}

var (
	_ Repository  = (*vcs.Repo)(nil)
	_ RequestHost = (*github.Client)(nil)
)

type Stage int

const (
	StageSaved Stage = iota
	StageBranchEnsured
	StageCommitted
	StagePushed
	StagePrEnsured
)

func (s Stage) String() string {
	switch s {
	case StageSaved:
		return "saved"
	case StageBranchEnsured:
		return "branch_ensured"
	case StageCommitted:
		return "committed"
	case StagePushed:
		return "pushed"
	case StagePrEnsured:
		return "pr_ensured"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Request describes one saved translation to publish.
type Request struct {
	// FilePath is the document path relative to the content roots.
	FilePath string
	// SavedPath is the filesystem path of the written translation.
	SavedPath string
	Mode      resolve.Mode
	// Issue is the originating issue number, or 0.
	Issue int
	Model string
}

type PrResult struct {
	FilePath string
	Branch   string
	Commit   plumbing.Hash
	Number   int
	URL      string
	// Created is false when an existing pull request was updated.
	Created bool
	// Unchanged means the translation matched the base branch; nothing was
	// pushed and no pull request was touched.
	Unchanged bool
}

type Publisher struct {
	Repo Repository
	Host RequestHost
	Base string
	// OnStage, when set, is called as each stage completes.
	OnStage func(path string, s Stage)
}

func New(repo Repository, host RequestHost, base string) *Publisher {
	if base == "" {
		base = DefaultBase
	}
	return &Publisher{Repo: repo, Host: host, Base: base}
}

func (p *Publisher) stage(path string, s Stage) {
	logger.Debug("Publish stage", "path", path, "stage", s.String())
	if p.OnStage != nil {
		p.OnStage(path, s)
	}
}

func vcsError(step, path string, err error) error {
	return apperrors.New(apperrors.KindPublish,
		fmt.Sprintf("Publishing %s failed at %s.", path, step),
		fmt.Errorf("%s %s: %w", step, path, err))
}

// Publish commits the saved translation on its deterministic branch, force
// pushes it and creates or updates the pull request for that branch.
func (p *Publisher) Publish(ctx context.Context, req Request) (PrResult, error) {
	branch := BranchName(req.FilePath)
	res := PrResult{FilePath: req.FilePath, Branch: branch}
	p.stage(req.FilePath, StageSaved)

	rel, err := p.Repo.RelPath(req.SavedPath)
	if err != nil {
		return res, vcsError("locate", req.FilePath, err)
	}
	if out, err := p.Repo.EnsureIdentity(ctx); err != nil {
		return res, vcsError("identity", req.FilePath, err)
	} else if out == vcs.Applied {
		logger.Info("Configured default git identity", "name", vcs.DefaultIdentity.Name)
	}
	if out, err := p.Repo.FetchBase(ctx, p.Base); err != nil {
		return res, vcsError("fetch", req.FilePath, err)
	} else if out == vcs.Noop {
		logger.Debug("Base branch already up to date", "base", p.Base)
	}
	if _, err := p.Repo.ResetBranch(ctx, branch, p.Base); err != nil {
		return res, vcsError("branch", req.FilePath, err)
	}
	p.stage(req.FilePath, StageBranchEnsured)

	if _, err := p.Repo.Stage(ctx, rel); err != nil {
		return res, vcsError("stage", req.FilePath, err)
	}
	msg := CommitMessage(req.FilePath, req.Mode)
	out, hash, err := p.Repo.Commit(ctx, msg)
	if err != nil {
		return res, vcsError("commit", req.FilePath, err)
	}
	if out == vcs.Noop {
		logger.Info("Translation matches base branch, nothing to publish", "path", req.FilePath, "base", p.Base)
		res.Unchanged = true
		return res, nil
	}
	res.Commit = hash
	p.stage(req.FilePath, StageCommitted)

	if _, err := p.Repo.ForcePush(ctx, branch); err != nil {
		return res, vcsError("push", req.FilePath, err)
	}
	p.stage(req.FilePath, StagePushed)

	body := PullRequestBody(req.FilePath, req.Mode, req.Issue, req.Model)
	existing, found, err := p.Host.FindOpenRequest(ctx, branch)
	if err != nil {
		// Creating here could open a duplicate next to one we failed to see.
		return res, fmt.Errorf("look up pull request for %s: %w", branch, err)
	}

	var pr github.PullRequest
	if found {
		pr, err = p.Host.UpdateRequest(ctx, existing.Number, msg, body)
		if err != nil {
			return res, fmt.Errorf("update pull request #%d: %w", existing.Number, err)
		}
		if pr.URL == "" {
			pr.URL = existing.URL
		}
	} else {
		pr, err = p.Host.CreateRequest(ctx, github.NewPullRequest{
			Title: msg,
			Body:  body,
			Head:  branch,
			Base:  p.Base,
		})
		if err != nil {
			return res, fmt.Errorf("create pull request for %s: %w", branch, err)
		}
		res.Created = true
	}
	res.Number = pr.Number
	if res.Number == 0 {
		res.Number = existing.Number
	}
	res.URL = pr.URL
	p.stage(req.FilePath, StagePrEnsured)
	logger.Info("Pull request ready", "path", req.FilePath, "branch", branch, "url", res.URL, "created", res.Created)
	return res, nil
}
