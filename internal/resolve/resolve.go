// Package resolve turns issue titles and file lists into translation tasks.
package resolve

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/oukeidos/docsync/internal/apperrors"
	"github.com/oukeidos/docsync/internal/docstore"
)

// Mode is the kind of translation work a document needs.
type Mode string

const (
	// ModeNew means no translation exists yet.
	ModeNew Mode = "new"
	// ModeSync means an existing translation is updated in place.
	ModeSync Mode = "sync"
)

// TranslationTask is one unit of work for the orchestrator.
// ExistingTranslation is non-nil exactly when Mode is ModeSync.
type TranslationTask struct {
	FilePath            string
	Mode                Mode
	OriginContent       string
	ExistingTranslation *string
	ReferenceFiles      []docstore.Document
}

// Unresolved records a reference that did not map to an origin document.
type Unresolved struct {
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
}

// Batch is the ordered, bounded task list for one run.
type Batch struct {
	Tasks      []TranslationTask
	Unresolved []Unresolved
	// Truncated counts resolved documents dropped by the size bound.
	Truncated int
}

// IssueSource looks up issue titles on the hosting service.
type IssueSource interface {
	IssueTitle(ctx context.Context, number int) (string, error)
}

// Resolver maps references onto the document store.
type Resolver struct {
	Store *docstore.Store
}

func New(store *docstore.Store) *Resolver {
	return &Resolver{Store: store}
}

// ResolvePath maps a reference to a path relative to the origin root. An
// exact match wins; otherwise the origin tree is searched by base name. More
// than one base-name match is reported as ambiguous.
func (r *Resolver) ResolvePath(ref string) (string, error) {
	ref = strings.TrimSpace(strings.TrimPrefix(strings.ReplaceAll(ref, "\\", "/"), "/"))
	if ref == "" {
		return "", apperrors.New(apperrors.KindNotFound, "empty document reference", nil)
	}
	rel := r.Store.WithExtension(path.Clean(ref))
	if strings.HasPrefix(rel, "../") {
		return "", apperrors.New(apperrors.KindNotFound, fmt.Sprintf("reference %q escapes the origin root", ref), nil)
	}
	if r.Store.OriginExists(rel) {
		return rel, nil
	}

	matches, err := r.Store.FindByBaseName(path.Base(rel))
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", apperrors.New(apperrors.KindNotFound, fmt.Sprintf("no origin document matches %q", ref), nil)
	case 1:
		return matches[0], nil
	default:
		return "", apperrors.New(apperrors.KindAmbiguous,
			fmt.Sprintf("reference %q matches %d documents: %s", ref, len(matches), strings.Join(matches, ", ")), nil)
	}
}

// DetermineMode reports ModeSync when a translation already exists.
func (r *Resolver) DetermineMode(rel string) (Mode, error) {
	_, ok, err := r.Store.Translated(rel)
	if err != nil {
		return "", err
	}
	if ok {
		return ModeSync, nil
	}
	return ModeNew, nil
}

// BuildTasks resolves refs in order, drops duplicates and unresolved entries,
// and keeps at most max tasks. Reference exemplars are sampled once per batch.
func (r *Resolver) BuildTasks(refs []string, max int) (Batch, error) {
	var batch Batch
	seen := make(map[string]bool)
	var resolved []string
	for _, ref := range refs {
		rel, err := r.ResolvePath(ref)
		if err != nil {
			kind, ok := apperrors.KindOf(err)
			if !ok || (kind != apperrors.KindNotFound && kind != apperrors.KindAmbiguous) {
				return Batch{}, err
			}
			batch.Unresolved = append(batch.Unresolved, Unresolved{Ref: ref, Reason: apperrors.PublicMessage(err)})
			continue
		}
		if seen[rel] {
			continue
		}
		seen[rel] = true
		resolved = append(resolved, rel)
	}

	if max > 0 && len(resolved) > max {
		batch.Truncated = len(resolved) - max
		resolved = resolved[:max]
	}
	if len(resolved) == 0 {
		return batch, nil
	}

	exemplars, err := r.Store.ReferenceFiles()
	if err != nil {
		return Batch{}, err
	}
	for _, rel := range resolved {
		task, err := r.buildTask(rel, exemplars)
		if err != nil {
			return Batch{}, err
		}
		batch.Tasks = append(batch.Tasks, task)
	}
	return batch, nil
}

func (r *Resolver) buildTask(rel string, exemplars []docstore.Document) (TranslationTask, error) {
	origin, err := r.Store.Origin(rel)
	if err != nil {
		return TranslationTask{}, err
	}
	task := TranslationTask{
		FilePath:       rel,
		Mode:           ModeNew,
		OriginContent:  origin,
		ReferenceFiles: exemplars,
	}
	existing, ok, err := r.Store.Translated(rel)
	if err != nil {
		return TranslationTask{}, err
	}
	if ok {
		task.Mode = ModeSync
		task.ExistingTranslation = &existing
	}
	return task, nil
}

// FilesFromIssue fetches the issue title and extracts its references. A title
// that yields nothing is an error: there is no work to do.
func FilesFromIssue(ctx context.Context, src IssueSource, number int) ([]string, error) {
	title, err := src.IssueTitle(ctx, number)
	if err != nil {
		return nil, err
	}
	refs := ParseIssueTitle(title)
	if len(refs) == 0 {
		return nil, apperrors.New(apperrors.KindNotFound,
			fmt.Sprintf("issue #%d title does not name a document: %q", number, title), nil)
	}
	return refs, nil
}
