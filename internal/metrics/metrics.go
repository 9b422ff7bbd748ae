// Package metrics exposes Prometheus instrumentation for the data quality
// engine. All methods are nil-receiver safe so instrumentation stays optional
// in tests and tools.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	itemsTotal        *prometheus.CounterVec
	rollbacksTotal    *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	embeddingFailures prometheus.Counter
}

// New creates and registers the engine collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careerbase_operations_total",
			Help: "Bulk operations by type and terminal status.",
		}, []string{"type", "status"}),
		itemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careerbase_operation_items_total",
			Help: "Per-item outcomes within bulk operations.",
		}, []string{"type", "result"}),
		rollbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careerbase_rollbacks_total",
			Help: "Rollback attempts by outcome.",
		}, []string{"outcome"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "careerbase_operation_duration_seconds",
			Help:    "Wall-clock duration of bulk operations.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"type"}),
		embeddingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careerbase_embedding_soft_failures_total",
			Help: "Embedding refresh soft failures (stale embeddings kept).",
		}),
	}

	registry.MustRegister(
		m.operationsTotal,
		m.itemsTotal,
		m.rollbacksTotal,
		m.operationDuration,
		m.embeddingFailures,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OperationFinished records a terminal status and the operation duration.
func (m *Metrics) OperationFinished(opType, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(opType, status).Inc()
	m.operationDuration.WithLabelValues(opType).Observe(d.Seconds())
}

// ItemProcessed records one per-item outcome ("success" or "failure").
func (m *Metrics) ItemProcessed(opType, result string) {
	if m == nil {
		return
	}
	m.itemsTotal.WithLabelValues(opType, result).Inc()
}

// RollbackFinished records a rollback outcome ("rolled_back" or
// "rollback_failed").
func (m *Metrics) RollbackFinished(outcome string) {
	if m == nil {
		return
	}
	m.rollbacksTotal.WithLabelValues(outcome).Inc()
}

// EmbeddingSoftFailure counts a refresh that kept a stale embedding.
func (m *Metrics) EmbeddingSoftFailure() {
	if m == nil {
		return
	}
	m.embeddingFailures.Inc()
}
