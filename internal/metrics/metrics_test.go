package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, pr *PrometheusRecorder) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docsync.prom")
	if err := pr.WriteTextfile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func requireLines(t *testing.T, text string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(text, w) {
			t.Fatalf("metrics missing %q:\n%s", w, text)
		}
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncDocument("sync", OutcomePublished)
	r.ObserveBackendCall("m", time.Second, true)
	r.AddTokens("m", 1, 2)
	r.IncValidationWarnings(3)
	r.ObserveRunDuration(time.Second)
}

func TestPrometheusRecorder_Counts(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncDocument("sync", OutcomePublished)
	pr.IncDocument("sync", OutcomePublished)
	pr.IncDocument("", OutcomeUnresolved)
	pr.AddTokens("gpt-5.2", 100, 40)
	pr.AddTokens("gpt-5.2", 0, 10)
	pr.IncValidationWarnings(2)
	pr.IncValidationWarnings(0)
	pr.ObserveBackendCall("gpt-5.2", 3*time.Second, true)

	requireLines(t, scrape(t, pr),
		`docsync_documents_total{mode="sync",outcome="published"} 2`,
		`docsync_documents_total{mode="unknown",outcome="unresolved"} 1`,
		`docsync_backend_tokens_total{direction="input",model="gpt-5.2"} 100`,
		`docsync_backend_tokens_total{direction="output",model="gpt-5.2"} 50`,
		"docsync_validation_warnings_total 2",
		`docsync_backend_call_duration_seconds_count{model="gpt-5.2",result="success"} 1`,
	)
}

func TestPrometheusRecorder_RunDuration(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.ObserveRunDuration(1500 * time.Millisecond)
	requireLines(t, scrape(t, pr), "docsync_run_duration_seconds 1.5")

	mfs, err := pr.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatal("expected metrics, got none")
	}
}
