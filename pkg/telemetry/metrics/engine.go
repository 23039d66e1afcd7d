package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineMetrics tracks metrics for text processing and rule evaluation.
//
// Metrics:
//   - rulegate_texts_processed_total: process-text calls by final status
//   - rulegate_process_duration_seconds: process-text call duration
//   - rulegate_rule_matches_total: matches recorded per rule and action
//   - rulegate_rule_errors_total: per-rule application failures
type EngineMetrics struct {
	processedTotal  *prometheus.CounterVec
	processDuration prometheus.Histogram
	ruleMatches     *prometheus.CounterVec
	ruleErrors      *prometheus.CounterVec
}

// NewEngineMetrics creates and registers engine metrics with the
// provided registry.
func NewEngineMetrics(namespace string, registry *prometheus.Registry) *EngineMetrics {
	m := &EngineMetrics{
		processedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "texts_processed_total",
				Help:      "Total number of process-text calls by status",
			},
			[]string{"status"},
		),

		processDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "process_duration_seconds",
				Help:      "Duration of process-text calls in seconds",
				// Matching is in-process regex work, normally sub-millisecond.
				Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12),
			},
		),

		ruleMatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rule_matches_total",
				Help:      "Total matches recorded per rule and action",
			},
			[]string{"rule_id", "action"},
		),

		ruleErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rule_errors_total",
				Help:      "Total per-rule application failures",
			},
			[]string{"rule_id"},
		),
	}

	registry.MustRegister(
		m.processedTotal,
		m.processDuration,
		m.ruleMatches,
		m.ruleErrors,
	)

	return m
}

// RecordProcess records a completed process-text call.
func (m *EngineMetrics) RecordProcess(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.processedTotal.WithLabelValues(status).Inc()
	m.processDuration.Observe(duration.Seconds())
}

// RecordMatches records n matches for a rule.
func (m *EngineMetrics) RecordMatches(ruleID, action string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ruleMatches.WithLabelValues(ruleID, action).Add(float64(n))
}

// RecordRuleError records a per-rule application failure.
func (m *EngineMetrics) RecordRuleError(ruleID string) {
	if m == nil {
		return
	}
	m.ruleErrors.WithLabelValues(ruleID).Inc()
}

// Handler returns an HTTP handler exposing the registry in Prometheus
// text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
