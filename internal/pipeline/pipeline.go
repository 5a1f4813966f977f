// Package pipeline drives a batch of documents through comparison,
// translation, saving and publication, one document at a time.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oukeidos/docsync/internal/apperrors"
	"github.com/oukeidos/docsync/internal/config"
	"github.com/oukeidos/docsync/internal/docstore"
	"github.com/oukeidos/docsync/internal/llm"
	"github.com/oukeidos/docsync/internal/logger"
	"github.com/oukeidos/docsync/internal/metadata"
	"github.com/oukeidos/docsync/internal/metrics"
	"github.com/oukeidos/docsync/internal/publish"
	"github.com/oukeidos/docsync/internal/resolve"
	"github.com/oukeidos/docsync/internal/structure"
	"github.com/oukeidos/docsync/internal/translate"
)

// Translator produces one translation per task.
type Translator interface {
	Translate(ctx context.Context, task resolve.TranslationTask) (translate.TranslationResult, translate.ValidationReport, llm.Usage, error)
}

// Publisher pushes a saved translation and upserts its pull request.
type Publisher interface {
	Publish(ctx context.Context, req publish.Request) (publish.PrResult, error)
}

var (
	_ Translator = (*translate.Orchestrator)(nil)
	_ Publisher  = (*publish.Publisher)(nil)
)

// Runner processes documents strictly in order. Publication shares one
// checkout, so tasks never overlap.
type Runner struct {
	Store      *docstore.Store
	Resolver   *resolve.Resolver
	Translator Translator
	// Publisher may be nil, in which case translations are only saved.
	Publisher Publisher
	Metrics   metrics.Recorder

	Policy config.FailurePolicy
	DryRun bool
	// Issue is the originating issue number, or 0.
	Issue int
	Model string
	// Pricing estimates the cost of the reported usage.
	Pricing metadata.Model

	// OnDocument, if set, is called once per finished document.
	OnDocument func(DocumentResult)
}

// Run resolves refs and processes at most maxFiles documents. With the halt
// policy the first translation or publication error ends the run and is
// returned together with the partial summary.
func (r *Runner) Run(ctx context.Context, refs []string, maxFiles int) (summary Summary, err error) {
	start := time.Now()
	rec := r.Metrics
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	summary.RunID = uuid.NewString()
	log := logger.With("run_id", summary.RunID)
	defer func() {
		summary.Elapsed = time.Since(start)
		rec.ObserveRunDuration(summary.Elapsed)
	}()

	batch, err := r.Resolver.BuildTasks(refs, maxFiles)
	if err != nil {
		return summary, err
	}
	summary.Unresolved = batch.Unresolved
	summary.Truncated = batch.Truncated
	for _, u := range batch.Unresolved {
		log.Warn("Skipping unresolved reference", "ref", u.Ref, "reason", u.Reason)
		rec.IncDocument("", metrics.OutcomeUnresolved)
	}
	if batch.Truncated > 0 {
		log.Warn("Batch truncated by max-files", "max_files", maxFiles, "dropped", batch.Truncated)
	}
	if len(batch.Tasks) == 0 {
		return summary, apperrors.New(apperrors.KindNotFound, "no documents to process", nil)
	}
	log.Info("Batch resolved", "tasks", len(batch.Tasks), "dry_run", r.DryRun, "policy", string(r.policy()))

	for i, task := range batch.Tasks {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		tlog := log.With("path", task.FilePath, "mode", string(task.Mode), "index", i+1, "total", len(batch.Tasks))
		doc := r.process(ctx, tlog, task)
		summary.add(doc)
		rec.IncDocument(string(doc.Mode), outcomeOf(doc.Status))
		rec.IncValidationWarnings(len(doc.Warnings))
		if r.OnDocument != nil {
			r.OnDocument(doc)
		}
		if doc.Err != nil {
			tlog.Error("Document failed", "error", apperrors.PublicMessage(doc.Err))
			if r.policy() == config.PolicyHalt {
				summary.Cost = r.Pricing.EstimateCost(summary.Usage.InputTokens, summary.Usage.OutputTokens)
				return summary, fmt.Errorf("%s: %w", task.FilePath, doc.Err)
			}
		}
	}

	summary.Cost = r.Pricing.EstimateCost(summary.Usage.InputTokens, summary.Usage.OutputTokens)
	log.Info("Run finished",
		"translated", summary.Translated,
		"published", summary.Published,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"warnings", summary.Warnings)
	return summary, nil
}

func (r *Runner) policy() config.FailurePolicy {
	if r.Policy == "" {
		return config.PolicyHalt
	}
	return r.Policy
}

func (r *Runner) process(ctx context.Context, log *slog.Logger, task resolve.TranslationTask) DocumentResult {
	doc := DocumentResult{FilePath: task.FilePath, Mode: task.Mode}

	if task.Mode == resolve.ModeSync {
		cmp := structure.Classify(task.FilePath, task.OriginContent, task.ExistingTranslation)
		if cmp.Status == structure.StatusDone {
			log.Info("Already synchronized, skipping")
			doc.Status = StatusSkipped
			return doc
		}
		doc.Reasons = cmp.Reasons
		log.Info("Structural drift detected", "reasons", cmp.Reasons)
	}

	if r.DryRun {
		log.Info("Dry run, not translating")
		doc.Status = StatusDryRun
		return doc
	}

	log.Info("Translating")
	result, report, usage, err := r.Translator.Translate(ctx, task)
	doc.Usage = usage
	if err != nil {
		doc.Status = StatusFailed
		doc.Err = err
		return doc
	}
	doc.Warnings = report.Warnings

	saved, err := r.Store.Save(task.FilePath, result.TranslatedContent)
	if err != nil {
		doc.Status = StatusFailed
		doc.Err = err
		return doc
	}
	doc.SavedTo = saved
	doc.Status = StatusTranslated
	log.Info("Saved translation", "saved_to", saved)

	if r.Publisher == nil {
		return doc
	}
	pr, err := r.Publisher.Publish(ctx, publish.Request{
		FilePath:  task.FilePath,
		SavedPath: saved,
		Mode:      task.Mode,
		Issue:     r.Issue,
		Model:     r.Model,
	})
	if err != nil {
		doc.Status = StatusFailed
		doc.Err = err
		return doc
	}
	doc.PR = &pr
	if pr.Unchanged {
		doc.Status = StatusUnchanged
	} else {
		doc.Status = StatusPublished
	}
	return doc
}

func outcomeOf(s DocumentStatus) metrics.Outcome {
	switch s {
	case StatusSkipped:
		return metrics.OutcomeSkipped
	case StatusDryRun:
		return metrics.OutcomeDryRun
	case StatusPublished:
		return metrics.OutcomePublished
	case StatusUnchanged:
		return metrics.OutcomeUnchanged
	case StatusFailed:
		return metrics.OutcomeFailed
	default:
		return metrics.OutcomeTranslated
	}
}
