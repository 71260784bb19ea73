// Package metrics registers the Prometheus metrics used by the gateway.
// The instruments register with the default Prometheus registry when the
// package is loaded, and the gateway updates them on every attempt. No
// route in this module serves them over HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CircuitBreakerState tracks per-provider circuit breaker state as a
	// gauge: 0 = closed, 1 = open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relaybridge_circuit_breaker_state",
			Help: "Circuit breaker state per provider (0=closed 1=open).",
		},
		[]string{"provider"},
	)

	// CascadeAttemptsTotal counts every per-provider attempt made during a
	// cascade, labelled by provider and outcome ("success", "failure").
	CascadeAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relaybridge_cascade_attempts_total",
			Help: "Total per-provider cascade attempts by outcome.",
		},
		[]string{"provider", "outcome"},
	)

	// ForwardDuration observes the duration of a single provider attempt in
	// seconds, labelled by provider.
	ForwardDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relaybridge_forward_duration_seconds",
			Help:    "Duration of a single provider attempt in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)
)
