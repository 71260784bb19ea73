package admin

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/relaybridge/relaybridge/internal/circuitbreaker"
)

type fakeReporter struct {
	registry *circuitbreaker.Registry
	names    []string
}

func (f *fakeReporter) Registry() *circuitbreaker.Registry { return f.registry }
func (f *fakeReporter) ProviderNames() []string             { return f.names }

func TestHealthHandlerReportsBreakerState(t *testing.T) {
	reg := circuitbreaker.NewRegistry([]string{"a", "b"}, 1, time.Minute)
	reg.For("a").RecordFailure()
	r := &fakeReporter{registry: reg, names: []string{"a", "b"}}

	req := httptest.NewRequest("GET", "/_health", nil)
	rec := httptest.NewRecorder()
	HealthHandler(r)(rec, req)

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected status ok, got %q", resp.Status)
	}
	if !resp.CircuitBreakers["a"].IsOpen {
		t.Fatal("expected provider a to report open")
	}
	if resp.CircuitBreakers["b"].IsOpen {
		t.Fatal("expected provider b to report closed")
	}
}

func TestResetCircuitHandlerResetsAllBreakers(t *testing.T) {
	reg := circuitbreaker.NewRegistry([]string{"a"}, 1, time.Hour)
	reg.For("a").RecordFailure()
	r := &fakeReporter{registry: reg, names: []string{"a"}}

	req := httptest.NewRequest("POST", "/_reset_circuit", nil)
	rec := httptest.NewRecorder()
	ResetCircuitHandler(r)(rec, req)

	if reg.For("a").IsOpen() {
		t.Fatal("expected breaker reset after /_reset_circuit")
	}
}
