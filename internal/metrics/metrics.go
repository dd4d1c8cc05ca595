// Package metrics exposes Prometheus counters for the server and the
// inference client.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ziadkadry99/netviz/internal/inference"
)

// Collector holds all Prometheus metrics for the application. Each collector
// owns its registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Calls to the training server, by operation and outcome.
	InferenceCalls    *prometheus.CounterVec
	InferenceDuration *prometheus.HistogramVec

	CategoryChanges prometheus.Counter
	FramesPublished prometheus.Counter
	StreamClients   prometheus.Gauge

	TopologyCacheHits   prometheus.Counter
	TopologyCacheMisses prometheus.Counter
}

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		InferenceCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inference_calls_total",
				Help:      "Total number of calls to the training server",
			},
			[]string{"operation", "outcome"},
		),
		InferenceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "inference_call_duration_seconds",
				Help:      "Training server call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CategoryChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_changes_total",
			Help:      "Total number of category list changes",
		}),
		FramesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_published_total",
			Help:      "Total number of frames pushed to subscribers",
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Number of connected websocket clients",
		}),
		TopologyCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "topology_cache_hits_total",
			Help:      "Total number of topology cache hits",
		}),
		TopologyCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "topology_cache_misses_total",
			Help:      "Total number of topology cache misses",
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.InferenceCalls,
		c.InferenceDuration,
		c.CategoryChanges,
		c.FramesPublished,
		c.StreamClients,
		c.TopologyCacheHits,
		c.TopologyCacheMisses,
	)
	return c
}

// Registry returns the Prometheus registry for this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// CacheHooks returns hit and miss callbacks for the topology cache.
func (c *Collector) CacheHooks() (onHit, onMiss func()) {
	return c.TopologyCacheHits.Inc, c.TopologyCacheMisses.Inc
}

// ObserveInference records one training server call. It matches
// inference.Observer.
func (c *Collector) ObserveInference(op string, elapsed time.Duration, err error) {
	c.InferenceCalls.WithLabelValues(op, Outcome(err)).Inc()
	c.InferenceDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Outcome classifies a training server error for the outcome label.
func Outcome(err error) string {
	var (
		serr *inference.ServerError
		terr *inference.TransportError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &serr):
		return "server_error"
	case errors.As(err, &terr):
		return "transport_error"
	default:
		return "error"
	}
}
