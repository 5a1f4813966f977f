// Package translate turns a translation task into validated translated text
// through a single backend call.
package translate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/oukeidos/docsync/internal/apperrors"
	"github.com/oukeidos/docsync/internal/llm"
	"github.com/oukeidos/docsync/internal/logger"
	"github.com/oukeidos/docsync/internal/resolve"
)

// DefaultRulesPath is the translation rules document at the repository root.
const DefaultRulesPath = "AGENTS.md"

// Stage is the lifecycle position of one document inside Translate.
type Stage int

const (
	StageDiscovered Stage = iota
	StagePromptBuilt
	StageInvoked
	StageSanitized
	StageValidated
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageDiscovered:
		return "discovered"
	case StagePromptBuilt:
		return "prompt_built"
	case StageInvoked:
		return "invoked"
	case StageSanitized:
		return "sanitized"
	case StageValidated:
		return "validated"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// TruncationWarning is added to the report when the backend hit its output limit.
const TruncationWarning = "backend output reached the token limit and may be incomplete"

// TranslationResult is the sanitized output for one document.
type TranslationResult struct {
	FilePath          string
	TranslatedContent string
	Mode              resolve.Mode
}

// Orchestrator runs the prompt, invoke, sanitize and validate steps.
type Orchestrator struct {
	Generator       llm.Generator
	Rules           string
	Prompt          PromptOptions
	MaxOutputTokens int

	// OnStage, if set, is called as a document moves through each stage.
	OnStage func(path string, stage Stage)
	// OnInvoke, if set, receives the backend latency and usage of each call.
	OnInvoke func(elapsed time.Duration, usage llm.Usage, err error)
}

// LoadRules reads the translation rules document. A missing file is a
// configuration error.
func LoadRules(path string) (string, error) {
	if path == "" {
		path = DefaultRulesPath
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", apperrors.New(apperrors.KindConfig, fmt.Sprintf("translation rules not found at %s", path), err)
	}
	if err != nil {
		return "", apperrors.New(apperrors.KindConfig, fmt.Sprintf("failed to read translation rules at %s", path), err)
	}
	return string(data), nil
}

// Translate makes exactly one backend call for task. On error nothing is
// returned for saving; usage is still reported when the backend produced it.
func (o *Orchestrator) Translate(ctx context.Context, task resolve.TranslationTask) (TranslationResult, ValidationReport, llm.Usage, error) {
	o.stage(task.FilePath, StageDiscovered)
	if task.Mode == resolve.ModeSync && task.ExistingTranslation == nil {
		return TranslationResult{}, ValidationReport{}, llm.Usage{}, fmt.Errorf("sync task %s has no existing translation", task.FilePath)
	}

	system := BuildSystemPrompt(o.Rules, o.Prompt, task.ReferenceFiles)
	var user string
	if task.Mode == resolve.ModeSync {
		user = BuildSyncPrompt(task.OriginContent, *task.ExistingTranslation, o.Prompt)
	} else {
		user = BuildNewPrompt(task.OriginContent, o.Prompt)
	}
	o.stage(task.FilePath, StagePromptBuilt)

	maxTokens := o.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxOutputTokens
	}
	start := time.Now()
	resp, err := o.Generator.Generate(ctx, llm.Request{
		System:          system,
		Prompt:          user,
		MaxOutputTokens: maxTokens,
	})
	var usage llm.Usage
	if resp != nil {
		usage = resp.Usage
	}
	if o.OnInvoke != nil {
		o.OnInvoke(time.Since(start), usage, err)
	}
	if err != nil {
		return TranslationResult{}, ValidationReport{}, usage, err
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return TranslationResult{}, ValidationReport{}, usage,
			apperrors.New(apperrors.KindValidation, fmt.Sprintf("backend returned no text content for %s", task.FilePath), nil)
	}
	o.stage(task.FilePath, StageInvoked)
	logger.Debug("Backend call finished", "path", task.FilePath, "model", o.Generator.ModelID(),
		"input_tokens", usage.InputTokens, "output_tokens", usage.OutputTokens, "elapsed", time.Since(start))

	content := Sanitize(resp.Text)
	o.stage(task.FilePath, StageSanitized)

	report := Validate(task.OriginContent, content)
	if resp.Truncated {
		report.Warnings = append(report.Warnings, TruncationWarning)
		report.Passed = false
	}
	for _, w := range report.Warnings {
		logger.Warn("Validation warning", "path", task.FilePath, "warning", w)
	}
	o.stage(task.FilePath, StageValidated)

	result := TranslationResult{
		FilePath:          task.FilePath,
		TranslatedContent: content,
		Mode:              task.Mode,
	}
	o.stage(task.FilePath, StageDone)
	return result, report, usage, nil
}

func (o *Orchestrator) stage(path string, s Stage) {
	if o.OnStage != nil {
		o.OnStage(path, s)
	}
}
