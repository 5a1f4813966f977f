package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docsync"

// PrometheusRecorder implements Recorder with a private registry so a run can
// be written out as a node-exporter textfile.
type PrometheusRecorder struct {
	reg            *prom.Registry
	documents      *prom.CounterVec
	backendLatency *prom.HistogramVec
	tokens         *prom.CounterVec
	warnings       prom.Counter
	runDuration    prom.Gauge
	lastRun        prom.Gauge
}

// NewPrometheusRecorder registers the run metrics on reg, or on a fresh
// registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		documents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed by mode and final outcome",
		}, []string{"mode", "outcome"}),
		backendLatency: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_call_duration_seconds",
			Help:      "Duration of translation backend calls",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"model", "result"}),
		tokens: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "backend_tokens_total",
			Help:      "Tokens consumed by direction",
		}, []string{"model", "direction"}),
		warnings: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "validation_warnings_total",
			Help:      "Structural validation warnings on translated output",
		}),
		runDuration: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		lastRun: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
	reg.MustRegister(pr.documents, pr.backendLatency, pr.tokens, pr.warnings, pr.runDuration, pr.lastRun)
	return pr
}

func (p *PrometheusRecorder) IncDocument(mode string, outcome Outcome) {
	if p == nil {
		return
	}
	if mode == "" {
		mode = "unknown"
	}
	p.documents.WithLabelValues(mode, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveBackendCall(model string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.backendLatency.WithLabelValues(model, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddTokens(model string, input, output int) {
	if p == nil {
		return
	}
	if input > 0 {
		p.tokens.WithLabelValues(model, "input").Add(float64(input))
	}
	if output > 0 {
		p.tokens.WithLabelValues(model, "output").Add(float64(output))
	}
}

func (p *PrometheusRecorder) IncValidationWarnings(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.warnings.Add(float64(n))
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Set(d.Seconds())
	p.lastRun.SetToCurrentTime()
}

// Registry exposes the underlying registry for gathering.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

// WriteTextfile writes all gathered metrics to path in the text exposition
// format, replacing the file atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
