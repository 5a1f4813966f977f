package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var errNoBranch = errors.New("no branch prepared; call ResetBranch first")

// Stage records the current worktree content of the given repository paths
// for the next commit. Paths whose content matches the branch tip are Noop.
func (r *Repo) Stage(ctx context.Context, paths ...string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.branch == "" {
		return "", errNoBranch
	}
	tip, err := r.tipTree()
	if err != nil {
		return "", err
	}

	outcome := Noop
	for _, p := range paths {
		data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(p)))
		if err != nil {
			return "", fmt.Errorf("stage %s: %w", p, err)
		}
		hash, err := r.writeBlob(data)
		if err != nil {
			return "", fmt.Errorf("stage %s: %w", p, err)
		}
		mode := filemode.Regular
		if entry, err := tip.FindEntry(p); err == nil {
			if entry.Hash == hash {
				continue
			}
			if entry.Mode == filemode.Executable {
				mode = entry.Mode
			}
		}
		r.staged[p] = stagedFile{hash: hash, mode: mode}
		outcome = Applied
	}
	return outcome, nil
}

// Commit writes the staged files on top of the branch tip and advances the
// branch. With nothing staged it is a Noop and returns the zero hash.
func (r *Repo) Commit(ctx context.Context, message string) (Outcome, plumbing.Hash, error) {
	if err := ctx.Err(); err != nil {
		return "", plumbing.ZeroHash, err
	}
	if r.branch == "" {
		return "", plumbing.ZeroHash, errNoBranch
	}
	if len(r.staged) == 0 {
		return Noop, plumbing.ZeroHash, nil
	}
	ref, err := r.repo.Reference(r.branch, true)
	if err != nil {
		return "", plumbing.ZeroHash, fmt.Errorf("branch %s: %w", r.branch.Short(), err)
	}
	parent, err := object.GetCommit(r.repo.Storer, ref.Hash())
	if err != nil {
		return "", plumbing.ZeroHash, fmt.Errorf("read commit %s: %w", ref.Hash(), err)
	}
	tree, err := parent.Tree()
	if err != nil {
		return "", plumbing.ZeroHash, fmt.Errorf("read tree: %w", err)
	}
	treeHash, err := r.writeTree(tree, r.staged)
	if err != nil {
		return "", plumbing.ZeroHash, err
	}
	if treeHash == parent.TreeHash {
		r.staged = map[string]stagedFile{}
		return Noop, plumbing.ZeroHash, nil
	}

	id := r.identity
	if id.Name == "" || id.Email == "" {
		id = DefaultIdentity
	}
	sig := object.Signature{Name: id.Name, Email: id.Email, When: r.now()}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     treeHash,
		ParentHashes: []plumbing.Hash{parent.Hash},
	}
	obj := r.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return "", plumbing.ZeroHash, fmt.Errorf("encode commit: %w", err)
	}
	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return "", plumbing.ZeroHash, fmt.Errorf("store commit: %w", err)
	}
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(r.branch, hash)); err != nil {
		return "", plumbing.ZeroHash, fmt.Errorf("advance %s: %w", r.branch.Short(), err)
	}
	r.staged = map[string]stagedFile{}
	return Applied, hash, nil
}

func (r *Repo) tipTree() (*object.Tree, error) {
	ref, err := r.repo.Reference(r.branch, true)
	if err != nil {
		return nil, fmt.Errorf("branch %s: %w", r.branch.Short(), err)
	}
	commit, err := object.GetCommit(r.repo.Storer, ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", ref.Hash(), err)
	}
	return commit.Tree()
}

func (r *Repo) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := r.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return plumbing.ZeroHash, err
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, err
	}
	return r.repo.Storer.SetEncodedObject(obj)
}

// writeTree stores a copy of base with files (slash paths relative to base)
// replaced or added, and returns the new tree hash. base may be nil.
func (r *Repo) writeTree(base *object.Tree, files map[string]stagedFile) (plumbing.Hash, error) {
	entries := map[string]object.TreeEntry{}
	if base != nil {
		for _, e := range base.Entries {
			entries[e.Name] = e
		}
	}

	nested := map[string]map[string]stagedFile{}
	for p, f := range files {
		dir, rest, ok := strings.Cut(p, "/")
		if !ok {
			entries[p] = object.TreeEntry{Name: p, Mode: f.mode, Hash: f.hash}
			continue
		}
		if nested[dir] == nil {
			nested[dir] = map[string]stagedFile{}
		}
		nested[dir][rest] = f
	}
	for dir, sub := range nested {
		var child *object.Tree
		if e, ok := entries[dir]; ok && e.Mode == filemode.Dir {
			t, err := object.GetTree(r.repo.Storer, e.Hash)
			if err != nil {
				return plumbing.ZeroHash, fmt.Errorf("read tree %s: %w", dir, err)
			}
			child = t
		}
		hash, err := r.writeTree(child, sub)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries[dir] = object.TreeEntry{Name: dir, Mode: filemode.Dir, Hash: hash}
	}

	tree := &object.Tree{Entries: make([]object.TreeEntry, 0, len(entries))}
	for _, e := range entries {
		tree.Entries = append(tree.Entries, e)
	}
	sort.Slice(tree.Entries, func(i, j int) bool {
		return treeSortKey(tree.Entries[i]) < treeSortKey(tree.Entries[j])
	})

	obj := r.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode tree: %w", err)
	}
	return r.repo.Storer.SetEncodedObject(obj)
}

// treeSortKey orders entries the way git does: directories compare as if
// their name ended in "/".
func treeSortKey(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}
