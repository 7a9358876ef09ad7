// Package metrics defines the Prometheus collectors exposed by the payment gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeRejected labels requests that failed validation and never got a status
const OutcomeRejected = "REJECTED"

type Metrics struct {
	registry        *prometheus.Registry
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	paymentOutcomes *prometheus.CounterVec
}

// New registers the gateway collectors, plus process and Go runtime collectors, on registry
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		paymentOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_outcomes_total",
				Help: "Payment initiation results by assigned status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		m.requestCounter,
		m.requestDuration,
		m.paymentOutcomes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	m.requestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// RecordOutcome counts one payment result
func (m *Metrics) RecordOutcome(status string) {
	m.paymentOutcomes.WithLabelValues(status).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
