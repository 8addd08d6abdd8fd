// Package metrics exposes Prometheus counters for the poll cycle, the
// interaction coordinator and the async worker.
//
// Every Record method is safe on a nil *Metrics so components can run
// without instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "boardwatch"

// Metrics holds all boardwatch collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Poll cycle
	PollCycles    *prometheus.CounterVec
	PollDuration  prometheus.Histogram
	PostsDetected *prometheus.CounterVec
	Extractions   *prometheus.CounterVec

	// Delivery
	Deliveries *prometheus.CounterVec

	// Interactions
	Interactions *prometheus.CounterVec
	CacheLookups *prometheus.CounterVec

	// Worker
	Jobs         *prometheus.CounterVec
	JobDuration  *prometheus.HistogramVec
	Translations *prometheus.CounterVec
}

// New registers every collector on a fresh registry, plus the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		PollCycles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Poll cycles by trigger (startup, schedule, manual, cli)",
		}, []string{"trigger"}),
		PollDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_cycle_duration_seconds",
			Help:      "Time to process every category once",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		PostsDetected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_detected_total",
			Help:      "New posts detected per category",
		}, []string{"category"}),
		Extractions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Content extractions by strategy, failed when every strategy missed",
		}, []string{"strategy"}),
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Channel deliveries by result",
		}, []string{"result"}),
		Interactions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_total",
			Help:      "Inbound interactions by kind and outcome",
		}, []string{"kind", "outcome"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_cache_lookups_total",
			Help:      "Translate button cache lookups by result (hit, miss, expired)",
		}, []string{"result"}),
		Jobs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Deferred jobs processed by kind and result",
		}, []string{"kind", "result"}),
		JobDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Deferred job processing time",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"kind"}),
		Translations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Backend translations by language and result (ok, fallback)",
		}, []string{"language", "result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordPollCycle(trigger string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.PollCycles.WithLabelValues(trigger).Inc()
	m.PollDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordPostDetected(category string) {
	if m == nil {
		return
	}
	m.PostsDetected.WithLabelValues(category).Inc()
}

func (m *Metrics) RecordExtraction(strategy string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(strategy).Inc()
}

func (m *Metrics) RecordDelivery(ok bool) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(result(ok, "success", "failure")).Inc()
}

func (m *Metrics) RecordInteraction(kind, outcome string) {
	if m == nil {
		return
	}
	m.Interactions.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RecordCacheLookup(res string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(res).Inc()
}

func (m *Metrics) RecordJob(kind string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Jobs.WithLabelValues(kind, result(ok, "success", "failure")).Inc()
	m.JobDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordTranslation(language string, ok bool) {
	if m == nil {
		return
	}
	m.Translations.WithLabelValues(language, result(ok, "ok", "fallback")).Inc()
}

func result(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
