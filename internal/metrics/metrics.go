// Package metrics exposes Prometheus instruments for the homepage pipeline.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	trailerCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marquee_trailer_cache_lookups_total",
		Help: "Trailer availability cache lookups by result",
	}, []string{"result"}) // result=hit|miss

	trailerProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marquee_trailer_probes_total",
		Help: "Trailer probes that reached the catalog API by outcome",
	}, []string{"outcome"}) // outcome=found|none|error

	tmdbRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marquee_tmdb_requests_total",
		Help: "Catalog API requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"}) // outcome=success|failure

	homepageSections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "marquee_homepage_sections",
		Help: "Number of rows in the current homepage snapshot",
	})

	homepageBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "marquee_homepage_build_seconds",
		Help:    "Duration of homepage snapshot builds",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	})

	rowNavigations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marquee_row_navigations_total",
		Help: "Row navigation requests by direction",
	}, []string{"direction"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marquee_rate_limited_requests_total",
		Help: "Inbound requests rejected by the per-IP rate limiter",
	})

	httpRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marquee_http_request_duration_seconds",
		Help:    "Inbound HTTP request latency by method and status class",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// RecordTrailerCacheLookup counts a cache hit or miss.
func RecordTrailerCacheLookup(hit bool) {
	if hit {
		trailerCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	trailerCacheLookups.WithLabelValues("miss").Inc()
}

// RecordTrailerProbe counts a probe outcome: found, none or error.
func RecordTrailerProbe(outcome string) {
	trailerProbes.WithLabelValues(outcome).Inc()
}

// RecordTMDBRequest counts a catalog request.
func RecordTMDBRequest(endpoint string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	tmdbRequests.WithLabelValues(endpoint, outcome).Inc()
}

// RecordHomepageBuild records a finished build.
func RecordHomepageBuild(sections int, seconds float64) {
	homepageSections.Set(float64(sections))
	homepageBuildSeconds.Observe(seconds)
}

// RecordRowNavigation counts a row navigation.
func RecordRowNavigation(direction string) {
	rowNavigations.WithLabelValues(direction).Inc()
}

// RecordRateLimited counts a rejected inbound request.
func RecordRateLimited() {
	rateLimited.Inc()
}

// RecordHTTPRequest observes a served request. status is grouped by class (2xx, 4xx, ...).
func RecordHTTPRequest(method string, status int, seconds float64) {
	class := strconv.Itoa(status/100) + "xx"
	httpRequests.WithLabelValues(method, class).Observe(seconds)
}
