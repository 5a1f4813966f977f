// Package github talks to the GitHub REST API for issue lookups and pull
// request upserts.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/oukeidos/docsync/internal/apperrors"
	"github.com/oukeidos/docsync/internal/httpclient"
)

// DefaultAPIURL is the public GitHub API endpoint.
const DefaultAPIURL = "https://api.github.com"

// Options configures a Client.
type Options struct {
	APIURL string
	Owner  string
	Repo   string
	Token  string
}

// PullRequest is the subset of the pull request resource used here.
type PullRequest struct {
	Number int    `json:"number"`
	URL    string `json:"html_url"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	State  string `json:"state"`
	Head   struct {
		Ref string `json:"ref"`
	} `json:"head"`
}

// NewPullRequest is the payload for CreateRequest.
type NewPullRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Head  string `json:"head"`
	Base  string `json:"base"`
}

type apiError struct {
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (e *apiError) text() string {
	if e == nil {
		return ""
	}
	parts := []string{e.Message}
	for _, item := range e.Errors {
		if item.Message != "" {
			parts = append(parts, item.Message)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "; "))
}

// Client is a GitHub API client bound to one repository.
type Client struct {
	http  *resty.Client
	owner string
	repo  string
}

// NewClient returns a client for opts.Owner/opts.Repo.
func NewClient(opts Options) (*Client, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, apperrors.Config("GitHub repository (owner/repo) is required")
	}
	if opts.Token == "" {
		return nil, apperrors.Config("GitHub token is required")
	}
	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	rc := resty.NewWithClient(httpclient.NewClient(httpclient.APITimeout)).
		SetBaseURL(strings.TrimRight(apiURL, "/")).
		SetAuthToken(opts.Token).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28").
		SetHeader("User-Agent", httpclient.UserAgent())
	return &Client{http: rc, owner: opts.Owner, repo: opts.Repo}, nil
}

// Repository returns "owner/repo".
func (c *Client) Repository() string {
	return c.owner + "/" + c.repo
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"owner": c.owner, "repo": c.repo}).
		ForceContentType("application/json").
		SetError(&apiError{})
}

// IssueTitle returns the title of an issue.
func (c *Client) IssueTitle(ctx context.Context, number int) (string, error) {
	var issue struct {
		Title string `json:"title"`
	}
	resp, err := c.request(ctx).
		SetPathParam("number", strconv.Itoa(number)).
		SetResult(&issue).
		Get("/repos/{owner}/{repo}/issues/{number}")
	if err := checkResponse("get issue", resp, err); err != nil {
		return "", err
	}
	return issue.Title, nil
}

// FindOpenRequest returns the open pull request whose head is branch. found
// is false when there is none; err is set only when the lookup itself failed.
func (c *Client) FindOpenRequest(ctx context.Context, branch string) (PullRequest, bool, error) {
	var prs []PullRequest
	resp, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"state":    "open",
			"head":     c.owner + ":" + branch,
			"per_page": "1",
		}).
		SetResult(&prs).
		Get("/repos/{owner}/{repo}/pulls")
	if err := checkResponse("list pull requests", resp, err); err != nil {
		return PullRequest{}, false, err
	}
	if len(prs) == 0 {
		return PullRequest{}, false, nil
	}
	return prs[0], true, nil
}

// CreateRequest opens a pull request.
func (c *Client) CreateRequest(ctx context.Context, pr NewPullRequest) (PullRequest, error) {
	var out PullRequest
	resp, err := c.request(ctx).
		SetBody(pr).
		SetResult(&out).
		Post("/repos/{owner}/{repo}/pulls")
	if err := checkResponse("create pull request", resp, err); err != nil {
		return PullRequest{}, err
	}
	return out, nil
}

// UpdateRequest replaces the title and body of an open pull request.
func (c *Client) UpdateRequest(ctx context.Context, number int, title, body string) (PullRequest, error) {
	var out PullRequest
	resp, err := c.request(ctx).
		SetPathParam("number", strconv.Itoa(number)).
		SetBody(map[string]string{"title": title, "body": body}).
		SetResult(&out).
		Patch("/repos/{owner}/{repo}/pulls/{number}")
	if err := checkResponse("update pull request", resp, err); err != nil {
		return PullRequest{}, err
	}
	return out, nil
}

func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return apperrors.New(apperrors.KindTransient,
			fmt.Sprintf("GitHub %s failed due to a network error.", op),
			fmt.Errorf("github %s: %w", op, err))
	}
	if !resp.IsError() {
		return nil
	}
	detail := ""
	if e, ok := resp.Error().(*apiError); ok {
		detail = e.text()
	}
	return classifyStatus(op, resp.StatusCode(), resp.Header().Get("X-RateLimit-Remaining"), detail)
}

func classifyStatus(op string, code int, rateRemaining, detail string) error {
	cause := fmt.Errorf("github %s: status=%d message=%s", op, code, detail)
	msg := fmt.Sprintf("GitHub %s failed (%d)", op, code)
	if detail != "" {
		msg += ": " + detail
	}
	switch {
	case code == http.StatusTooManyRequests,
		code == http.StatusForbidden && rateRemaining == "0":
		return apperrors.New(apperrors.KindRateLimit, msg, cause)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return apperrors.New(apperrors.KindAuth, msg, cause)
	case code == http.StatusNotFound:
		return apperrors.New(apperrors.KindNotFound, msg, cause)
	case code >= 500:
		return apperrors.New(apperrors.KindTransient, msg, cause)
	default:
		return apperrors.New(apperrors.KindBadRequest, msg, cause)
	}
}
