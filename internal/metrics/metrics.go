package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	routeDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_route_decisions_total",
		Help: "Router decisions by intent",
	}, []string{"intent"})

	parseFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_parse_fallbacks_total",
		Help: "Model completions that could not be parsed and fell back to a default",
	}, []string{"task"})

	llmLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_llm_latency_ms",
		Help:    "Latency of language model calls in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	}, []string{"task", "outcome"})

	indexRebuilds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_index_rebuilds_total",
		Help: "Document index builds by result",
	}, []string{"result"})

	indexFragments = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "assistant_index_fragments",
		Help: "Number of fragments in the active document index",
	})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_cache_lookups_total",
		Help: "QA result cache lookups (hit/miss/error)",
	}, []string{"result"})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(Collectors()...)
	})
}

// IncRouteDecision counts a routing decision.
func IncRouteDecision(intent string) {
	ensureRegistered()
	routeDecisions.WithLabelValues(intent).Inc()
}

// IncParseFallback counts a completion that fell back to its default value.
func IncParseFallback(task string) {
	ensureRegistered()
	parseFallbacks.WithLabelValues(task).Inc()
}

// ObserveLLM records the latency of a model call for task.
func ObserveLLM(task string, start time.Time, err error) {
	ensureRegistered()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	llmLatency.WithLabelValues(task, outcome).Observe(float64(time.Since(start).Milliseconds()))
}

// ObserveIndexBuild records a build attempt and, on success, the fragment count.
func ObserveIndexBuild(fragments int, err error) {
	ensureRegistered()
	if err != nil {
		indexRebuilds.WithLabelValues("error").Inc()
		return
	}
	indexRebuilds.WithLabelValues("ok").Inc()
	indexFragments.Set(float64(fragments))
}

// SetIndexFragments sets the active index size, e.g. after loading a stored index.
func SetIndexFragments(n int) {
	ensureRegistered()
	indexFragments.Set(float64(n))
}

// IncCacheLookup counts a cache lookup result.
func IncCacheLookup(result string) {
	ensureRegistered()
	cacheLookups.WithLabelValues(result).Inc()
}

// Collectors exposes all collectors for registration with a custom registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		routeDecisions, parseFallbacks, llmLatency, indexRebuilds, indexFragments, cacheLookups,
	}
}
