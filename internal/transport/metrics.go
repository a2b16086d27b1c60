package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts executor activity. A nil *Metrics records nothing.
type Metrics struct {
	// Attempts tracks physical calls per HTTP method
	Attempts *prometheus.CounterVec

	// Retries tracks retried attempts by reason (timeout, io, status)
	Retries *prometheus.CounterVec

	// Failures tracks logical requests that ended in a failure, by category
	Failures *prometheus.CounterVec

	// Latency tracks the duration of each physical call
	Latency *prometheus.HistogramVec
}

// NewMetrics registers the executor collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Attempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailagent_http_attempts_total",
				Help: "Total number of physical HTTP attempts",
			},
			[]string{"method"},
		),
		Retries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailagent_http_retries_total",
				Help: "Total number of retried HTTP attempts",
			},
			[]string{"reason"},
		),
		Failures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailagent_http_failures_total",
				Help: "Total number of requests that ended in a failure",
			},
			[]string{"category"},
		),
		Latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mailagent_http_attempt_seconds",
				Help:    "Physical HTTP attempt latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

func (m *Metrics) attempt(method string, seconds float64) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(method).Inc()
	m.Latency.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) retry(reason string) {
	if m == nil {
		return
	}
	m.Retries.WithLabelValues(reason).Inc()
}

func (m *Metrics) failure(category string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(category).Inc()
}
