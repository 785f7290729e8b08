// Package metrics exposes Prometheus collectors for geocoding, routing and HTTP traffic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foodcart"

var (
	GeocodeCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "geocode",
		Name:      "cache_lookups_total",
		Help:      "Geocode cache lookups by result (hit, miss, stale).",
	}, []string{"result"})

	GeocodeRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "geocode",
		Name:      "upstream_requests_total",
		Help:      "Calls to the external geocoding service by outcome (found, not_found, error).",
	}, []string{"outcome"})

	RoutingPassDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "routing",
		Name:      "pass_duration_seconds",
		Help:      "Duration of one order routing pass in seconds.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	RoutingResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "routing",
		Name:      "results_total",
		Help:      "Per-order routing outcomes (ranked, geo_failed, assigned).",
	}, []string{"status"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "status"})

	HTTPLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(
		GeocodeCacheLookups,
		GeocodeRequests,
		RoutingPassDuration,
		RoutingResults,
		HTTPRequests,
		HTTPLatency,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
