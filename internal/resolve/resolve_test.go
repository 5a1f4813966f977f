package resolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oukeidos/docsync/internal/apperrors"
	"github.com/oukeidos/docsync/internal/docstore"
)

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	base := t.TempDir()
	return New(docstore.New(filepath.Join(base, "origin"), filepath.Join(base, "translated"), ""))
}

func TestResolvePath_ExactMatch(t *testing.T) {
	r := newResolver(t)
	writeDoc(t, r.Store.OriginRoot, "guide/intro.mdx", "# Intro")

	got, err := r.ResolvePath("guide/intro")
	require.NoError(t, err)
	assert.Equal(t, "guide/intro.mdx", got)

	got, err = r.ResolvePath("guide/intro.mdx")
	require.NoError(t, err)
	assert.Equal(t, "guide/intro.mdx", got)
}

func TestResolvePath_BaseNameFallback(t *testing.T) {
	r := newResolver(t)
	writeDoc(t, r.Store.OriginRoot, "guide/deep/setup.mdx", "# Setup")

	got, err := r.ResolvePath("setup")
	require.NoError(t, err)
	assert.Equal(t, "guide/deep/setup.mdx", got)

	got, err = r.ResolvePath("wrong/dir/setup.mdx")
	require.NoError(t, err)
	assert.Equal(t, "guide/deep/setup.mdx", got)
}

func TestResolvePath_AmbiguousBaseName(t *testing.T) {
	r := newResolver(t)
	writeDoc(t, r.Store.OriginRoot, "a/setup.mdx", "x")
	writeDoc(t, r.Store.OriginRoot, "b/setup.mdx", "x")

	_, err := r.ResolvePath("setup")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindAmbiguous))
	assert.Contains(t, err.Error(), "a/setup.mdx")
	assert.Contains(t, err.Error(), "b/setup.mdx")

	// An exact path still wins over the ambiguity.
	got, err := r.ResolvePath("b/setup")
	require.NoError(t, err)
	assert.Equal(t, "b/setup.mdx", got)
}

func TestResolvePath_NotFound(t *testing.T) {
	r := newResolver(t)
	_, err := r.ResolvePath("missing")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = r.ResolvePath("../outside")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = r.ResolvePath("  ")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestDetermineMode(t *testing.T) {
	r := newResolver(t)
	writeDoc(t, r.Store.OriginRoot, "a.mdx", "x")
	mode, err := r.DetermineMode("a.mdx")
	require.NoError(t, err)
	assert.Equal(t, ModeNew, mode)

	writeDoc(t, r.Store.TranslatedRoot, "a.mdx", "")
	mode, err = r.DetermineMode("a.mdx")
	require.NoError(t, err)
	assert.Equal(t, ModeNew, mode, "an empty translation is treated as missing")

	writeDoc(t, r.Store.TranslatedRoot, "a.mdx", "y")
	mode, err = r.DetermineMode("a.mdx")
	require.NoError(t, err)
	assert.Equal(t, ModeSync, mode)
}

func TestBuildTasks_EmptyTranslationIsNew(t *testing.T) {
	r := newResolver(t)
	writeDoc(t, r.Store.OriginRoot, "a.mdx", "# A\n")
	writeDoc(t, r.Store.TranslatedRoot, "a.mdx", "")

	batch, err := r.BuildTasks([]string{"a"}, 5)
	require.NoError(t, err)
	require.Len(t, batch.Tasks, 1)
	assert.Equal(t, ModeNew, batch.Tasks[0].Mode)
	assert.Nil(t, batch.Tasks[0].ExistingTranslation)
}

func TestBuildTasks_OrderDedupeAndBound(t *testing.T) {
	r := newResolver(t)
	for _, name := range []string{"a", "b", "c", "d"} {
		writeDoc(t, r.Store.OriginRoot, "docs/"+name+".mdx", "# "+name)
	}
	writeDoc(t, r.Store.TranslatedRoot, "docs/b.mdx", "# 비")

	batch, err := r.BuildTasks([]string{"docs/c", "docs/b.mdx", "c", "missing", "docs/a", "docs/d"}, 3)
	require.NoError(t, err)

	var paths []string
	for _, task := range batch.Tasks {
		paths = append(paths, task.FilePath)
	}
	assert.Equal(t, []string{"docs/c.mdx", "docs/b.mdx", "docs/a.mdx"}, paths)
	assert.Equal(t, 1, batch.Truncated)
	require.Len(t, batch.Unresolved, 1)
	assert.Equal(t, "missing", batch.Unresolved[0].Ref)

	for _, task := range batch.Tasks {
		if task.Mode == ModeSync {
			require.NotNil(t, task.ExistingTranslation)
		} else {
			assert.Nil(t, task.ExistingTranslation)
		}
	}
	assert.Equal(t, ModeSync, batch.Tasks[1].Mode)
	assert.Equal(t, "# 비", *batch.Tasks[1].ExistingTranslation)
	assert.Equal(t, "# c", batch.Tasks[0].OriginContent)
}

func TestBuildTasks_AttachesReferenceFiles(t *testing.T) {
	r := newResolver(t)
	writeDoc(t, r.Store.OriginRoot, "a.mdx", "x")
	writeDoc(t, r.Store.TranslatedRoot, "ref.mdx", strings.Repeat("참", 300))

	batch, err := r.BuildTasks([]string{"a"}, 5)
	require.NoError(t, err)
	require.Len(t, batch.Tasks, 1)
	require.Len(t, batch.Tasks[0].ReferenceFiles, 1)
	assert.Equal(t, "ref.mdx", batch.Tasks[0].ReferenceFiles[0].Path)
}

func TestBuildTasks_EmptyInput(t *testing.T) {
	r := newResolver(t)
	batch, err := r.BuildTasks(nil, 5)
	require.NoError(t, err)
	assert.Empty(t, batch.Tasks)
}

type stubIssues struct {
	title string
	err   error
}

func (s stubIssues) IssueTitle(context.Context, int) (string, error) {
	return s.title, s.err
}

func TestFilesFromIssue(t *testing.T) {
	refs, err := FilesFromIssue(context.Background(), stubIssues{title: "[Docs] guide/intro.mdx — Sync"}, 12)
	require.NoError(t, err)
	assert.Equal(t, []string{"guide/intro.mdx"}, refs)

	_, err = FilesFromIssue(context.Background(), stubIssues{title: "Typo in README"}, 12)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "#12")

	boom := errors.New("boom")
	_, err = FilesFromIssue(context.Background(), stubIssues{err: boom}, 12)
	assert.ErrorIs(t, err, boom)
}
