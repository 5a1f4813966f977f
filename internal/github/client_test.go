package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oukeidos/docsync/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{APIURL: srv.URL, Owner: "acme", Repo: "docs", Token: "tok"})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresRepoAndToken(t *testing.T) {
	_, err := NewClient(Options{Token: "t"})
	assert.True(t, apperrors.Is(err, apperrors.KindConfig))
	_, err = NewClient(Options{Owner: "a", Repo: "b"})
	assert.True(t, apperrors.Is(err, apperrors.KindConfig))

	c, err := NewClient(Options{Owner: "a", Repo: "b", Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, "a/b", c.Repository())
}

func TestIssueTitle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/acme/docs/issues/42", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("User-Agent"), "docsync/")
		_, _ = w.Write([]byte(`{"number":42,"title":"[Docs] a.mdx — Sync"}`))
	})

	title, err := c.IssueTitle(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "[Docs] a.mdx — Sync", title)
}

func TestFindOpenRequest(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/acme/docs/pulls", r.URL.Path)
			assert.Equal(t, "open", r.URL.Query().Get("state"))
			assert.Equal(t, "acme:docs/guide-intro", r.URL.Query().Get("head"))
			_, _ = w.Write([]byte(`[{"number":7,"html_url":"https://example.test/pull/7","state":"open","head":{"ref":"docs/guide-intro"}}]`))
		})
		pr, found, err := c.FindOpenRequest(context.Background(), "docs/guide-intro")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 7, pr.Number)
		assert.Equal(t, "https://example.test/pull/7", pr.URL)
		assert.Equal(t, "docs/guide-intro", pr.Head.Ref)
	})

	t.Run("none", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})
		_, found, err := c.FindOpenRequest(context.Background(), "docs/x")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("lookup failure is an error, not absence", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"message":"upstream"}`))
		})
		_, found, err := c.FindOpenRequest(context.Background(), "docs/x")
		require.Error(t, err)
		assert.False(t, found)
		assert.True(t, apperrors.Is(err, apperrors.KindTransient))
	})
}

func TestCreateRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/acme/docs/pulls", r.URL.Path)
		var body NewPullRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, NewPullRequest{Title: "t", Body: "b", Head: "docs/a", Base: "master-ko"}, body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number":9,"html_url":"https://example.test/pull/9"}`))
	})

	pr, err := c.CreateRequest(context.Background(), NewPullRequest{Title: "t", Body: "b", Head: "docs/a", Base: "master-ko"})
	require.NoError(t, err)
	assert.Equal(t, 9, pr.Number)
}

func TestUpdateRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/repos/acme/docs/pulls/9", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"title": "t2", "body": "b2"}, body)
		_, _ = w.Write([]byte(`{"number":9,"html_url":"https://example.test/pull/9","title":"t2"}`))
	})

	pr, err := c.UpdateRequest(context.Background(), 9, "t2", "b2")
	require.NoError(t, err)
	assert.Equal(t, "t2", pr.Title)
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		remaining string
		kind      apperrors.Kind
	}{
		{"unauthorized", http.StatusUnauthorized, "", apperrors.KindAuth},
		{"forbidden", http.StatusForbidden, "10", apperrors.KindAuth},
		{"secondary rate limit", http.StatusForbidden, "0", apperrors.KindRateLimit},
		{"not found", http.StatusNotFound, "", apperrors.KindNotFound},
		{"unprocessable", http.StatusUnprocessableEntity, "", apperrors.KindBadRequest},
		{"too many", http.StatusTooManyRequests, "", apperrors.KindRateLimit},
		{"server", http.StatusInternalServerError, "", apperrors.KindTransient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tc.remaining != "" {
					w.Header().Set("X-RateLimit-Remaining", tc.remaining)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"message":"nope","errors":[{"message":"detail"}]}`))
			})
			_, err := c.IssueTitle(context.Background(), 1)
			require.Error(t, err)
			kind, ok := apperrors.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tc.kind, kind)
			assert.Contains(t, apperrors.PublicMessage(err), "nope; detail")
		})
	}
}

func TestCanceledContextPassesThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.IssueTitle(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseRepository(t *testing.T) {
	for _, in := range []string{
		"acme/docs",
		"https://github.com/acme/docs",
		"https://github.com/acme/docs.git",
		"git@github.com:acme/docs.git",
		"ssh://git@github.com/acme/docs.git",
	} {
		owner, repo, err := ParseRepository(in)
		require.NoError(t, err, in)
		assert.Equal(t, "acme", owner, in)
		assert.Equal(t, "docs", repo, in)
	}

	for _, in := range []string{"", "acme", "a/b/c", "/docs"} {
		_, _, err := ParseRepository(in)
		assert.Error(t, err, in)
	}
}
