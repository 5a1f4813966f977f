package pipeline

import (
	"time"

	"github.com/oukeidos/docsync/internal/llm"
	"github.com/oukeidos/docsync/internal/publish"
	"github.com/oukeidos/docsync/internal/resolve"
)

// DocumentStatus is the terminal state of one document in a run.
type DocumentStatus string

const (
	StatusSkipped    DocumentStatus = "Skipped"
	StatusDryRun     DocumentStatus = "Dry Run"
	StatusTranslated DocumentStatus = "Translated"
	StatusPublished  DocumentStatus = "Published"
	StatusUnchanged  DocumentStatus = "Unchanged"
	StatusFailed     DocumentStatus = "Failed"
)

// DocumentResult records what happened to one task.
type DocumentResult struct {
	FilePath string
	Mode     resolve.Mode
	Status   DocumentStatus
	// Reasons are the structural drift reasons for sync tasks.
	Reasons  []string
	Warnings []string
	Usage    llm.Usage
	SavedTo  string
	PR       *publish.PrResult
	Err      error
}

// Summary aggregates a run.
type Summary struct {
	RunID      string
	Documents  []DocumentResult
	Unresolved []resolve.Unresolved
	// Truncated counts resolved documents dropped by the max-files ceiling.
	Truncated int

	Skipped    int
	DryRun     int
	Translated int
	Published  int
	Unchanged  int
	Failed     int
	Warnings   int

	Usage   llm.Usage
	Cost    float64
	Elapsed time.Duration
}

func (s *Summary) add(doc DocumentResult) {
	s.Documents = append(s.Documents, doc)
	s.Usage = s.Usage.Add(doc.Usage)
	s.Warnings += len(doc.Warnings)
	switch doc.Status {
	case StatusSkipped:
		s.Skipped++
	case StatusDryRun:
		s.DryRun++
	case StatusTranslated:
		s.Translated++
	case StatusPublished:
		s.Translated++
		s.Published++
	case StatusUnchanged:
		s.Translated++
		s.Unchanged++
	case StatusFailed:
		s.Failed++
	}
}

// PRs returns the pull requests created or updated during the run.
func (s Summary) PRs() []publish.PrResult {
	var out []publish.PrResult
	for _, d := range s.Documents {
		if d.PR != nil && d.PR.URL != "" {
			out = append(out, *d.PR)
		}
	}
	return out
}
