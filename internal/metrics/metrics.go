// Package metrics provides Prometheus metrics for the analysis pipeline
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Ingestion and extraction
	DocumentsProcessed prometheus.Counter
	PagesProcessed     prometheus.Counter
	DegradedPages      prometheus.Counter
	SectionsExtracted  *prometheus.CounterVec

	// Ranking and selection
	SectionsSelected prometheus.Histogram
	StageDuration    *prometheus.HistogramVec
	BudgetExceeded   prometheus.Counter

	// HTTP
	RequestsTotal *prometheus.CounterVec
}

// New creates all metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.DocumentsProcessed = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "docintel_documents_processed_total",
			Help: "Total number of documents run through section extraction",
		},
	)

	m.PagesProcessed = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "docintel_pages_processed_total",
			Help: "Total number of pages run through section extraction",
		},
	)

	m.DegradedPages = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "docintel_degraded_pages_total",
			Help: "Pages that produced no sections after every extraction tier",
		},
	)

	m.SectionsExtracted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docintel_sections_extracted_total",
			Help: "Sections extracted, by extraction tier",
		},
		[]string{"origin"},
	)

	m.SectionsSelected = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docintel_sections_selected",
			Help:    "Number of sections selected per request",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 10, 15, 20, 50},
		},
	)

	m.StageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docintel_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	m.BudgetExceeded = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "docintel_budget_exceeded_total",
			Help: "Requests that finished after the soft time budget",
		},
	)

	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docintel_requests_total",
			Help: "Total number of analysis requests by outcome",
		},
		[]string{"status"},
	)

	return m
}

// RecordDocument records one extracted document
func (m *Metrics) RecordDocument(pages, degraded int) {
	if m == nil {
		return
	}
	m.DocumentsProcessed.Inc()
	m.PagesProcessed.Add(float64(pages))
	m.DegradedPages.Add(float64(degraded))
}

// RecordSections counts extracted sections by origin
func (m *Metrics) RecordSections(origin string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.SectionsExtracted.WithLabelValues(origin).Add(float64(n))
}

// RecordSelected observes the size of a selection
func (m *Metrics) RecordSelected(n int) {
	if m == nil {
		return
	}
	m.SectionsSelected.Observe(float64(n))
}

// ObserveStage records how long a pipeline stage took
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordBudgetExceeded counts a request that overran the time budget
func (m *Metrics) RecordBudgetExceeded() {
	if m == nil {
		return
	}
	m.BudgetExceeded.Inc()
}

// RecordRequest counts an API request by status
func (m *Metrics) RecordRequest(status string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(status).Inc()
}
