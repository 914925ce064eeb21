// Package metrics exposes Prometheus collectors for job ingestion.
//
// jobtrack is a short-lived CLI, so collectors live in a private registry
// that is written to a node_exporter textfile instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cwygoda/jobtrack/internal/domain"
)

// Submission results.
const (
	ResultInserted  = "inserted"
	ResultDuplicate = "duplicate"
	ResultFailed    = "failed"
)

// Metrics groups the ingestion collectors. A nil *Metrics is a no-op.
type Metrics struct {
	registry     *prometheus.Registry
	submissions  *prometheus.CounterVec
	extractions  *prometheus.CounterVec
	fetchSeconds *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobtrack_submissions_total",
				Help: "Total number of submitted URLs, labeled by result.",
			},
			[]string{"result"},
		),
		extractions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobtrack_extractions_total",
				Help: "Total number of extractions, labeled by the stage that produced the record.",
			},
			[]string{"outcome"},
		),
		fetchSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobtrack_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by status.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"status"},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveSubmission counts one submission result.
func (m *Metrics) ObserveSubmission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

// ObserveExtraction counts the stage that produced a record.
func (m *Metrics) ObserveExtraction(outcome domain.Outcome) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(string(outcome)).Inc()
}

// ObserveFetch records the latency of a fetch.
func (m *Metrics) ObserveFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.fetchSeconds.WithLabelValues(status).Observe(d.Seconds())
}

// WriteTextfile writes the registry in text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
