// Package metrics defines the execution metrics hooks and their Prometheus
// implementation.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder records execution metrics.
type Recorder interface {
	// ObserveRun records one native program run.
	ObserveRun(ctx context.Context, languageID, outcome string, d time.Duration)
	// ObserveExecution records one dispatched request. status is "ok" or
	// the error class that ended it.
	ObserveExecution(ctx context.Context, languageID, source, status string)
}

// Noop discards everything.
type Noop struct{}

func (Noop) ObserveRun(context.Context, string, string, time.Duration) {}
func (Noop) ObserveExecution(context.Context, string, string, string) {}

// Gauges exposes live admission state.
type Gauges interface {
	Running() int
	Waiting() int
}

// Prometheus records into Prometheus collectors.
type Prometheus struct {
	runs       *prometheus.CounterVec
	runSeconds *prometheus.HistogramVec
	executions *prometheus.CounterVec
}

// NewPrometheus registers the counters and histogram with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coderunner",
			Name:      "native_runs_total",
			Help:      "Native program runs by language and outcome.",
		}, []string{"language", "outcome"}),
		runSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coderunner",
			Name:      "native_run_duration_seconds",
			Help:      "Wall-clock duration of native program runs.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 20},
		}, []string{"language"}),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coderunner",
			Name:      "executions_total",
			Help:      "Execution requests by language, serving path and status.",
		}, []string{"language", "source", "status"}),
	}
	reg.MustRegister(p.runs, p.runSeconds, p.executions)
	return p
}

// RegisterGauges exports gauges, read at scrape time.
func RegisterGauges(reg prometheus.Registerer, gauges Gauges) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "coderunner",
			Name:      "native_running",
			Help:      "Native programs currently running.",
		}, func() float64 { return float64(gauges.Running()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "coderunner",
			Name:      "native_queued",
			Help:      "Requests waiting for a native execution slot.",
		}, func() float64 { return float64(gauges.Waiting()) }),
	)
}

func (p *Prometheus) ObserveRun(_ context.Context, languageID, outcome string, d time.Duration) {
	p.runs.WithLabelValues(languageID, outcome).Inc()
	p.runSeconds.WithLabelValues(languageID).Observe(d.Seconds())
}

func (p *Prometheus) ObserveExecution(_ context.Context, languageID, source, status string) {
	p.executions.WithLabelValues(languageID, source, status).Inc()
}
