// Package metrics provides Prometheus metrics for the application layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics recorded by the handlers.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	RequirementsCreated prometheus.Counter
	VersionsAppended    prometheus.Counter
	ReviewsRecorded     *prometheus.CounterVec
	ChecksRun           prometheus.Counter
	IngestBatchesTotal  prometheus.Counter
	SearchQueriesTotal  prometheus.Counter
}

// New creates and registers all metrics on the given registerer. Passing
// prometheus.DefaultRegisterer gives the usual global registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{}

	m.OperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cathedral_operations_total",
			Help: "Total number of application operations",
		},
		[]string{"operation", "status"},
	)

	m.OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cathedral_operation_duration_seconds",
			Help:    "Duration of application operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	m.RequirementsCreated = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "cathedral_requirements_created_total",
			Help: "Total number of requirements created",
		},
	)

	m.VersionsAppended = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "cathedral_versions_appended_total",
			Help: "Total number of requirement versions appended",
		},
	)

	m.ReviewsRecorded = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cathedral_reviews_recorded_total",
			Help: "Total number of review endorsements recorded",
		},
		[]string{"category", "status"},
	)

	m.ChecksRun = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "cathedral_checks_run_total",
			Help: "Total number of automated check runs",
		},
	)

	m.IngestBatchesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "cathedral_ingest_batches_total",
			Help: "Total number of ingestion batches processed",
		},
	)

	m.SearchQueriesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "cathedral_search_queries_total",
			Help: "Total number of semantic search queries",
		},
	)

	return m
}

// All recording methods are safe on a nil receiver so callers without
// metrics wired can skip instrumentation.

// RecordOperation records one application operation.
func (m *Metrics) RecordOperation(operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRequirementCreated counts a created requirement.
func (m *Metrics) RecordRequirementCreated() {
	if m == nil {
		return
	}
	m.RequirementsCreated.Inc()
}

// RecordVersionAppended counts an appended version.
func (m *Metrics) RecordVersionAppended() {
	if m == nil {
		return
	}
	m.VersionsAppended.Inc()
}

// RecordReview counts a recorded endorsement by category and status.
func (m *Metrics) RecordReview(category, status string) {
	if m == nil {
		return
	}
	m.ReviewsRecorded.WithLabelValues(category, status).Inc()
}

// RecordCheckRun counts an automated check run.
func (m *Metrics) RecordCheckRun() {
	if m == nil {
		return
	}
	m.ChecksRun.Inc()
}

// RecordIngestBatch counts a processed ingestion batch.
func (m *Metrics) RecordIngestBatch() {
	if m == nil {
		return
	}
	m.IngestBatchesTotal.Inc()
}

// RecordSearchQuery counts a semantic search query.
func (m *Metrics) RecordSearchQuery() {
	if m == nil {
		return
	}
	m.SearchQueriesTotal.Inc()
}
