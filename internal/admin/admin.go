// Package admin implements the gateway's two administrative endpoints:
// a health snapshot of every circuit breaker, and a reset-all trigger.
package admin

import (
	"encoding/json"
	"net/http"

	"github.com/relaybridge/relaybridge/internal/circuitbreaker"
	"github.com/relaybridge/relaybridge/internal/logging"
)

// Reporter is the subset of the gateway the admin handlers need.
type Reporter interface {
	Registry() *circuitbreaker.Registry
	ProviderNames() []string
}

type breakerStatus struct {
	IsOpen        bool     `json:"is_open"`
	FailureCount  int      `json:"failure_count"`
	RemainingTime *float64 `json:"remaining_time"`
}

type healthResponse struct {
	Status          string                   `json:"status"`
	Providers       []string                 `json:"providers"`
	CircuitBreakers map[string]breakerStatus `json:"circuit_breakers"`
}

// HealthHandler serves GET /_health.
func HealthHandler(g Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:          "ok",
			Providers:       g.ProviderNames(),
			CircuitBreakers: make(map[string]breakerStatus),
		}
		for _, snap := range g.Registry().SnapshotAll() {
			var remaining *float64
			if snap.IsOpen {
				secs := snap.RemainingTimeUntilAutoReset.Seconds()
				remaining = &secs
			}
			resp.CircuitBreakers[snap.Name] = breakerStatus{
				IsOpen:        snap.IsOpen,
				FailureCount:  snap.ConsecutiveFailures,
				RemainingTime: remaining,
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// ResetCircuitHandler serves POST /_reset_circuit.
func ResetCircuitHandler(g Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.Registry().ResetAll()
		for _, name := range g.ProviderNames() {
			logging.FromContext(r.Context()).Warn("circuit_breaker", "provider", name, "action", "reset", "failure_count", 0)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "reset"})
	}
}
