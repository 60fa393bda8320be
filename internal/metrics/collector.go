package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"versecache/internal/content"
)

// Collector holds the Prometheus metrics for chapter resolution.
// Each Collector owns its registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	Resolutions        *prometheus.CounterVec
	ResolutionFailures prometheus.Counter
	CacheErrors        *prometheus.CounterVec
	FetchDuration      *prometheus.HistogramVec
}

// NewCollector creates a collector with metrics under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	resolutions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Chapters served, by the tier that produced them",
		},
		[]string{"provenance"},
	)

	resolutionFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_failures_total",
			Help:      "Requests for which no tier could produce content",
		},
	)

	cacheErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Local cache failures absorbed by the resolver",
		},
		[]string{"op"},
	)

	fetchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Remote chapter fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	registry.MustRegister(
		resolutions,
		resolutionFailures,
		cacheErrors,
		fetchDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry:           registry,
		Resolutions:        resolutions,
		ResolutionFailures: resolutionFailures,
		CacheErrors:        cacheErrors,
		FetchDuration:      fetchDuration,
	}
}

// ResolutionServed counts a chapter served from provenance.
func (c *Collector) ResolutionServed(provenance content.Provenance) {
	c.Resolutions.WithLabelValues(string(provenance)).Inc()
}

// ResolutionFailed counts a request where every tier was exhausted.
func (c *Collector) ResolutionFailed() {
	c.ResolutionFailures.Inc()
}

// CacheError counts a failed cache operation ("get" or "put").
func (c *Collector) CacheError(op string) {
	c.CacheErrors.WithLabelValues(op).Inc()
}

// FetchObserved records how long a remote fetch took.
func (c *Collector) FetchObserved(success bool, d time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.FetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
