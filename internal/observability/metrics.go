package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "megaverse",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Megaverse API requests issued by the client.",
		},
		[]string{"method", "route", "status"},
	)
	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "megaverse",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Megaverse API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	apiRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "megaverse",
			Subsystem: "api",
			Name:      "retries_total",
			Help:      "Megaverse API requests retried after a rate-limit response.",
		},
		[]string{"method", "route"},
	)
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "megaverse",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Map cache lookups by cache and result.",
		},
		[]string{"cache", "result"},
	)
	reconcileOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "megaverse",
			Subsystem: "reconcile",
			Name:      "operations_total",
			Help:      "Entity operations applied by the reconciler.",
		},
		[]string{"action", "kind"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "megaverse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests served by the sandbox.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "megaverse",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Sandbox HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(apiRequests, apiDuration, apiRetries, cacheLookups, reconcileOps, httpRequests, httpDuration)
	})
}

// RecordAPIRequest records one client attempt. status 0 means no response was received.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	apiRequests.WithLabelValues(method, route, statusLabel).Inc()
	apiDuration.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
}

func RecordAPIRetry(method, route string) {
	RegisterMetrics()
	apiRetries.WithLabelValues(method, route).Inc()
}

func RecordCacheLookup(cache string, hit bool) {
	RegisterMetrics()
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(cache, result).Inc()
}

func RecordReconcileOperation(action, kind string) {
	RegisterMetrics()
	reconcileOps.WithLabelValues(action, kind).Inc()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
