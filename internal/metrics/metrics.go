// Package metrics holds the Prometheus collectors for submissions,
// aggregation and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "course_conditions"

// Submission outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeNoop     = "noop"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)

// Metrics groups every collector the service exports. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	submissionsTotal    *prometheus.CounterVec
	aggregationDuration *prometheus.HistogramVec
	bulkSize            prometheus.Histogram
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,
		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Total number of course submissions by outcome",
			},
			[]string{"outcome"},
		),
		aggregationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aggregation_duration_seconds",
				Help:      "Time taken to build course summaries",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"kind"}, // kind: course, bulk
		),
		bulkSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bulk_request_courses",
				Help:      "Number of courses requested per bulk call",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Time taken for HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.submissionsTotal.Describe(ch)
	m.aggregationDuration.Describe(ch)
	m.bulkSize.Describe(ch)
	m.httpRequestsTotal.Describe(ch)
	m.httpRequestDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.submissionsTotal.Collect(ch)
	m.aggregationDuration.Collect(ch)
	m.bulkSize.Collect(ch)
	m.httpRequestsTotal.Collect(ch)
	m.httpRequestDuration.Collect(ch)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordSubmission counts one submission outcome.
func (m *Metrics) RecordSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveAggregation records how long a summary computation took.
func (m *Metrics) ObserveAggregation(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.aggregationDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveBulkSize records the number of course ids in a bulk request.
func (m *Metrics) ObserveBulkSize(n int) {
	if m == nil {
		return
	}
	m.bulkSize.Observe(float64(n))
}

// ObserveHTTPRequest records one served request. route is the chi route
// pattern, never the raw path.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
