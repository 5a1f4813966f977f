// Package metrics records per-run counters for the translation pipeline.
package metrics

import "time"

// Outcome labels the final state of one document in a run.
type Outcome string

const (
	OutcomeSkipped    Outcome = "skipped"
	OutcomeDryRun     Outcome = "dry_run"
	OutcomeTranslated Outcome = "translated"
	OutcomePublished  Outcome = "published"
	OutcomeUnchanged  Outcome = "unchanged"
	OutcomeFailed     Outcome = "failed"
	OutcomeUnresolved Outcome = "unresolved"
)

// Recorder receives pipeline observations. NoopRecorder is used when
// metrics are not configured.
type Recorder interface {
	IncDocument(mode string, outcome Outcome)
	ObserveBackendCall(model string, d time.Duration, success bool)
	AddTokens(model string, input, output int)
	IncValidationWarnings(n int)
	ObserveRunDuration(d time.Duration)
}

type NoopRecorder struct{}

func (NoopRecorder) IncDocument(string, Outcome)                     {}
func (NoopRecorder) ObserveBackendCall(string, time.Duration, bool) {}
func (NoopRecorder) AddTokens(string, int, int)                      {}
func (NoopRecorder) IncValidationWarnings(int)                       {}
func (NoopRecorder) ObserveRunDuration(time.Duration)                {}
