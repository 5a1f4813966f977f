package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/oukeidos/docsync/internal/apperrors"
	"github.com/oukeidos/docsync/internal/github"
	"github.com/oukeidos/docsync/internal/resolve"
	"github.com/oukeidos/docsync/internal/vcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	calls     []string
	commitOut vcs.Outcome
	failAt    string
	staged    []string
	message   string
}

func (f *fakeRepo) step(name string) error {
	f.calls = append(f.calls, name)
	if f.failAt == name {
		return errors.New(name + " exploded")
	}
	return nil
}

func (f *fakeRepo) EnsureIdentity(context.Context) (vcs.Outcome, error) {
	return vcs.Noop, f.step("identity")
}

func (f *fakeRepo) FetchBase(_ context.Context, base string) (vcs.Outcome, error) {
	return vcs.Noop, f.step("fetch " + base)
}

func (f *fakeRepo) ResetBranch(_ context.Context, branch, base string) (vcs.Outcome, error) {
	return vcs.Applied, f.step("reset " + branch + " " + base)
}

func (f *fakeRepo) RelPath(path string) (string, error) {
	return "src/content/" + path[len("/work/src/content/"):], f.step("relpath")
}

func (f *fakeRepo) Stage(_ context.Context, paths ...string) (vcs.Outcome, error) {
	f.staged = append(f.staged, paths...)
	return vcs.Applied, f.step("stage")
}

func (f *fakeRepo) Commit(_ context.Context, message string) (vcs.Outcome, plumbing.Hash, error) {
	f.message = message
	out := f.commitOut
	if out == "" {
		out = vcs.Applied
	}
	if err := f.step("commit"); err != nil {
		return "", plumbing.ZeroHash, err
	}
	if out == vcs.Noop {
		return out, plumbing.ZeroHash, nil
	}
	return out, plumbing.NewHash("0123456789abcdef0123456789abcdef01234567"), nil
}

func (f *fakeRepo) ForcePush(_ context.Context, branch string) (vcs.Outcome, error) {
	return vcs.Applied, f.step("push " + branch)
}

type fakeHost struct {
	existing  *github.PullRequest
	lookupErr error
	created   []github.NewPullRequest
	updated   []int
	lastBody  string
}

func (h *fakeHost) FindOpenRequest(context.Context, string) (github.PullRequest, bool, error) {
	if h.lookupErr != nil {
		return github.PullRequest{}, false, h.lookupErr
	}
	if h.existing == nil {
		return github.PullRequest{}, false, nil
	}
	return *h.existing, true, nil
}

func (h *fakeHost) CreateRequest(_ context.Context, pr github.NewPullRequest) (github.PullRequest, error) {
	h.created = append(h.created, pr)
	return github.PullRequest{Number: 11, URL: "https://example.test/pull/11"}, nil
}

func (h *fakeHost) UpdateRequest(_ context.Context, number int, _, body string) (github.PullRequest, error) {
	h.updated = append(h.updated, number)
	h.lastBody = body
	return github.PullRequest{Number: number}, nil
}

func request(mode resolve.Mode) Request {
	return Request{
		FilePath:  "docs/useform/register.mdx",
		SavedPath: "/work/src/content/docs/useform/register.mdx",
		Mode:      mode,
		Issue:     42,
		Model:     "gemini-3-pro-preview",
	}
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "docs/docs-useform-register", BranchName("docs/useform/register.mdx"))
	assert.Equal(t, BranchName("docs/useform/register.mdx"), BranchName("docs/useform/register.mdx"))
	assert.Equal(t, "docs/intro", BranchName("intro.mdx"))

	assert.Equal(t, "docs: sync docs/useform/register", CommitMessage("docs/useform/register.mdx", resolve.ModeSync))
	assert.Equal(t, "docs: translate docs/useform/register", CommitMessage("docs/useform/register.mdx", resolve.ModeNew))
}

func TestPullRequestBody(t *testing.T) {
	body := PullRequestBody("docs/a.mdx", resolve.ModeSync, 42, "gpt-5.2")
	assert.Contains(t, body, "## Synchronization: `docs/a.mdx`")
	assert.Contains(t, body, "Automatically synchronized with gpt-5.2.")
	assert.Contains(t, body, "Closes #42")

	body = PullRequestBody("docs/a.mdx", resolve.ModeNew, 0, "")
	assert.Contains(t, body, "## Translation: `docs/a.mdx`")
	assert.Contains(t, body, "Automatically translated.")
	assert.NotContains(t, body, "Closes")
}

func TestPublish_CreatesRequest(t *testing.T) {
	repo := &fakeRepo{}
	host := &fakeHost{}
	p := New(repo, host, "")
	var stages []Stage
	p.OnStage = func(_ string, s Stage) { stages = append(stages, s) }

	res, err := p.Publish(context.Background(), request(resolve.ModeNew))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"relpath",
		"identity",
		"fetch master-ko",
		"reset docs/docs-useform-register master-ko",
		"stage",
		"commit",
		"push docs/docs-useform-register",
	}, repo.calls)
	assert.Equal(t, []string{"src/content/docs/useform/register.mdx"}, repo.staged)
	assert.Equal(t, "docs: translate docs/useform/register", repo.message)

	require.Len(t, host.created, 1)
	assert.Equal(t, "docs/docs-useform-register", host.created[0].Head)
	assert.Equal(t, "master-ko", host.created[0].Base)
	assert.Equal(t, repo.message, host.created[0].Title)
	assert.Contains(t, host.created[0].Body, "Closes #42")

	assert.True(t, res.Created)
	assert.Equal(t, 11, res.Number)
	assert.Equal(t, "https://example.test/pull/11", res.URL)
	assert.Equal(t, []Stage{StageSaved, StageBranchEnsured, StageCommitted, StagePushed, StagePrEnsured}, stages)
}

func TestPublish_UpdatesExistingRequest(t *testing.T) {
	host := &fakeHost{existing: &github.PullRequest{Number: 7, URL: "https://example.test/pull/7"}}
	res, err := New(&fakeRepo{}, host, "main").Publish(context.Background(), request(resolve.ModeSync))
	require.NoError(t, err)

	assert.Empty(t, host.created)
	assert.Equal(t, []int{7}, host.updated)
	assert.Contains(t, host.lastBody, "Synchronization")
	assert.False(t, res.Created)
	assert.Equal(t, 7, res.Number)
	assert.Equal(t, "https://example.test/pull/7", res.URL)
}

func TestPublish_LookupFailureDoesNotCreate(t *testing.T) {
	lookupErr := apperrors.New(apperrors.KindTransient, "GitHub list pull requests failed (502)", errors.New("bad gateway"))
	host := &fakeHost{lookupErr: lookupErr}
	_, err := New(&fakeRepo{}, host, "").Publish(context.Background(), request(resolve.ModeNew))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindTransient))
	assert.Empty(t, host.created)
	assert.Empty(t, host.updated)
}

func TestPublish_UnchangedTranslationSkipsPushAndRequest(t *testing.T) {
	repo := &fakeRepo{commitOut: vcs.Noop}
	host := &fakeHost{}
	res, err := New(repo, host, "").Publish(context.Background(), request(resolve.ModeSync))
	require.NoError(t, err)

	assert.True(t, res.Unchanged)
	assert.NotContains(t, repo.calls, "push docs/docs-useform-register")
	assert.Empty(t, host.created)
}

func TestPublish_VCSFailureIsPublishError(t *testing.T) {
	for _, step := range []string{"identity", "fetch master-ko", "stage", "commit", "push docs/docs-useform-register"} {
		t.Run(step, func(t *testing.T) {
			host := &fakeHost{}
			_, err := New(&fakeRepo{failAt: step}, host, "").Publish(context.Background(), request(resolve.ModeNew))
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindPublish))
			assert.Empty(t, host.created)
		})
	}
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "branch_ensured", StageBranchEnsured.String())
	assert.Equal(t, "stage(9)", Stage(9).String())
}
