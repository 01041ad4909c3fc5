// Package metrics exposes Prometheus instrumentation for the question engine.
// A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds medqa metrics on a private registry
type Collector struct {
	registry *prometheus.Registry

	chatTotal          *prometheus.CounterVec
	graphQueries       *prometheus.CounterVec
	graphQueryDuration *prometheus.HistogramVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	llmRequests        *prometheus.CounterVec
	llmDuration        *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// NewCollector creates a collector registered under namespace
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		chatTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_requests_total",
				Help:      "Questions answered, by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		graphQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_queries_total",
				Help:      "Graph queries issued, by status",
			},
			[]string{"status"},
		),
		graphQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_query_duration_seconds",
				Help:      "Graph query latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"status"},
		),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Graph result cache hits",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Graph result cache misses",
		}),
		llmRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "LLM completion requests, by provider and status",
			},
			[]string{"provider", "status"},
		),
		llmDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_request_duration_seconds",
				Help:      "LLM request duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "API requests, by route and status code",
			},
			[]string{"route", "code"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "API request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// RecordChat counts one answered question
func (c *Collector) RecordChat(method, outcome string) {
	if c == nil {
		return
	}
	c.chatTotal.WithLabelValues(method, outcome).Inc()
}

// ObserveGraphQuery records one graph round trip
func (c *Collector) ObserveGraphQuery(err error, d time.Duration) {
	if c == nil {
		return
	}
	status := statusLabel(err)
	c.graphQueries.WithLabelValues(status).Inc()
	c.graphQueryDuration.WithLabelValues(status).Observe(d.Seconds())
}

// RecordCache counts a cache lookup
func (c *Collector) RecordCache(hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.cacheHits.Inc()
	} else {
		c.cacheMisses.Inc()
	}
}

// ObserveLLM records one completion request
func (c *Collector) ObserveLLM(provider string, err error, d time.Duration) {
	if c == nil {
		return
	}
	c.llmRequests.WithLabelValues(provider, statusLabel(err)).Inc()
	c.llmDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveHTTP records one API request. route is the matched pattern, not
// the raw path.
func (c *Collector) ObserveHTTP(route string, code int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
