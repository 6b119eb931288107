// Package metrics exposes Prometheus instrumentation for outbound TAXII calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taxiiproxy_upstream_requests_total",
			Help: "Number of TAXII calls that received a response, by operation and status code",
		},
		[]string{"operation", "code"},
	)
	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taxiiproxy_upstream_request_duration_seconds",
			Help:    "Latency of TAXII calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taxiiproxy_failures_total",
			Help: "Number of proxy operations that failed, by operation and error kind",
		},
		[]string{"operation", "kind"},
	)
)

func init() {
	prometheus.MustRegister(upstreamRequests)
	prometheus.MustRegister(upstreamDuration)
	prometheus.MustRegister(failures)
}

// ObserveUpstream records a TAXII call that got an HTTP response.
func ObserveUpstream(operation string, code int, d time.Duration) {
	upstreamRequests.WithLabelValues(operation, strconv.Itoa(code)).Inc()
	upstreamDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// CountFailure records a failed proxy operation. kind is one of
// validation, upstream, transport or internal.
func CountFailure(operation, kind string) {
	failures.WithLabelValues(operation, kind).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
