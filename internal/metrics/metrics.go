// Package metrics collects and exposes Prometheus metrics for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by services and middleware.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordFavoriteAdded()
	RecordFavoriteRemoved()
	RecordLoginFailure()
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	requests         *prometheus.CounterVec
	requestLatency   *prometheus.HistogramVec
	favoritesAdded   prometheus.Counter
	favoritesRemoved prometheus.Counter
	loginFailures    prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketplace_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		favoritesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_favorites_added_total",
			Help: "Favorites successfully added.",
		}),
		favoritesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_favorites_removed_total",
			Help: "Favorite removals processed.",
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_login_failures_total",
			Help: "Rejected login attempts.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestLatency,
		c.favoritesAdded,
		c.favoritesRemoved,
		c.loginFailures,
	)
	return c
}

// RecordRequest counts one HTTP request and observes its latency.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordFavoriteAdded() {
	c.favoritesAdded.Inc()
}

func (c *Collector) RecordFavoriteRemoved() {
	c.favoritesRemoved.Inc()
}

func (c *Collector) RecordLoginFailure() {
	c.loginFailures.Inc()
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop is a Recorder that discards everything.
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordFavoriteAdded()                             {}
func (Nop) RecordFavoriteRemoved()                           {}
func (Nop) RecordLoginFailure()                              {}
