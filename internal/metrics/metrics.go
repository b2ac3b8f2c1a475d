// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the Prometheus collectors for pipeline runs. The CLI
// is short-lived, so collectors live in a private registry that is written
// to a node-exporter textfile after a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status values for source outcomes.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Pipeline records per-run counters and stage durations. A nil *Pipeline
// is valid and records nothing.
type Pipeline struct {
	registry *prometheus.Registry

	candidatesTotal *prometheus.CounterVec
	outcomesTotal   *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	recordsTotal    prometheus.Counter
	clustersTotal   *prometheus.CounterVec
}

// NewPipeline builds the collectors and registers them in a new registry.
func NewPipeline(service string) *Pipeline {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	candidatesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "keyword_engine",
			Subsystem:   "pipeline",
			Name:        "candidates_total",
			Help:        "Candidates generated before dedupe, by source.",
			ConstLabels: constLabels,
		},
		[]string{"source"},
	)
	outcomesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "keyword_engine",
			Subsystem:   "pipeline",
			Name:        "source_outcomes_total",
			Help:        "Source and enrichment task outcomes by status.",
			ConstLabels: constLabels,
		},
		[]string{"source", "status"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "keyword_engine",
			Subsystem:   "pipeline",
			Name:        "stage_duration_seconds",
			Help:        "Pipeline stage duration in seconds.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			ConstLabels: constLabels,
		},
		[]string{"stage"},
	)
	recordsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "keyword_engine",
			Subsystem:   "pipeline",
			Name:        "records_total",
			Help:        "Unique records produced after dedupe and cap.",
			ConstLabels: constLabels,
		},
	)
	clustersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "keyword_engine",
			Subsystem:   "cluster",
			Name:        "clusters_total",
			Help:        "Clusters produced, by kind (group or noise).",
			ConstLabels: constLabels,
		},
		[]string{"kind"},
	)

	registry.MustRegister(candidatesTotal, outcomesTotal, stageDuration, recordsTotal, clustersTotal)

	return &Pipeline{
		registry:        registry,
		candidatesTotal: candidatesTotal,
		outcomesTotal:   outcomesTotal,
		stageDuration:   stageDuration,
		recordsTotal:    recordsTotal,
		clustersTotal:   clustersTotal,
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Pipeline) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Pipeline) ObserveCandidates(source string, n int) {
	if m == nil {
		return
	}
	m.candidatesTotal.WithLabelValues(source).Add(float64(n))
}

func (m *Pipeline) ObserveOutcome(source, status string) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(source, status).Inc()
}

func (m *Pipeline) ObserveStage(stage string, d time.Duration) {
	if m == nil || d < 0 {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Pipeline) ObserveRecords(n int) {
	if m == nil {
		return
	}
	m.recordsTotal.Add(float64(n))
}

// ObserveClusters counts noise separately from real groups.
func (m *Pipeline) ObserveClusters(groups, noise int) {
	if m == nil {
		return
	}
	m.clustersTotal.WithLabelValues("group").Add(float64(groups))
	m.clustersTotal.WithLabelValues("noise").Add(float64(noise))
}

// WriteTextfile writes the registry in text exposition format to path,
// atomically, for the node-exporter textfile collector.
func (m *Pipeline) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
