// Package metric provides Prometheus metrics for sessprobe.
//
// It exposes request counts, outcome classification, latencies, and the
// live virtual-user population so long load runs can be observed from
// the optional /metrics listener.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all application metrics.
type Registry struct {
	// Requests counts every issued request by action and outcome
	// (success, failure).
	Requests *prometheus.CounterVec

	// RequestDuration observes request latency by action.
	RequestDuration *prometheus.HistogramVec

	// UsersActive tracks the live virtual-user population.
	UsersActive prometheus.Gauge

	// ProtocolViolations counts observations contradicting the session
	// state model.
	ProtocolViolations prometheus.Counter

	// StubRequests counts requests served by the built-in stub server,
	// by HTTP status code.
	StubRequests *prometheus.CounterVec

	reg *prometheus.Registry
}

// Outcome label values for Requests.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// NewRegistry creates a new metrics registry with all collectors registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sessprobe_requests_total",
			Help: "Requests issued against the endpoint, by action and outcome.",
		}, []string{"action", "outcome"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sessprobe_request_duration_seconds",
			Help:    "Request latency by action.",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),

		UsersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sessprobe_users_active",
			Help: "Currently running virtual users.",
		}),

		ProtocolViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sessprobe_protocol_violations_total",
			Help: "Observed transitions contradicting the session state model.",
		}),

		StubRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sessprobe_stub_requests_total",
			Help: "Requests served by the built-in stub server, by status code.",
		}, []string{"code"}),

		reg: reg,
	}

	reg.MustRegister(
		r.Requests,
		r.RequestDuration,
		r.UsersActive,
		r.ProtocolViolations,
		r.StubRequests,
	)

	return r
}

// Handler returns an HTTP handler serving the registry in Prometheus format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying gatherer, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
