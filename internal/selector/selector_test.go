package selector

import (
	"math/rand"
	"testing"
	"time"

	"github.com/relaybridge/relaybridge/internal/circuitbreaker"
)

// attempted mirrors what the forward engine does with a Plan: walk Order(),
// keep only the names that are Eligible at the moment they are reached.
func attempted(p Plan) []string {
	var out []string
	for _, name := range p.Order() {
		if p.Eligible(name) {
			out = append(out, name)
		}
	}
	return out
}

func TestSelectAllClosedYieldsPriorityOrder(t *testing.T) {
	reg := circuitbreaker.NewRegistry([]string{"a", "b", "c"}, 1, time.Hour)
	s := New(reg, 0, nil)
	got := attempted(s.Select([]string{"a", "b", "c"}))
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSelectSkipsOpenNonFallbackProviders(t *testing.T) {
	reg := circuitbreaker.NewRegistry([]string{"a", "b", "c"}, 1, time.Hour)
	reg.For("a").RecordFailure()
	s := New(reg, 0, nil)
	got := attempted(s.Select([]string{"a", "b", "c"}))
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("expected [b c], got %v", got)
	}
}

func TestSelectAlwaysIncludesFallbackEvenIfOpen(t *testing.T) {
	reg := circuitbreaker.NewRegistry([]string{"a", "b"}, 1, time.Hour)
	reg.For("a").RecordFailure()
	reg.For("b").RecordFailure()
	s := New(reg, 0, nil)
	got := attempted(s.Select([]string{"a", "b"}))
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected [b] (fallback always selectable), got %v", got)
	}
}

func TestSelectProbeAlwaysPicksAnOpenProviderFirst(t *testing.T) {
	reg := circuitbreaker.NewRegistry([]string{"a", "b", "c"}, 1, time.Hour)
	reg.For("a").RecordFailure()
	s := New(reg, 1, rand.New(rand.NewSource(1)))
	plan := s.Select([]string{"a", "b", "c"})
	if plan.Probe != "a" {
		t.Fatalf("expected probe to pick the only open provider, got %q", plan.Probe)
	}
	got := attempted(plan)
	if got[0] != "a" {
		t.Fatalf("expected probe to be attempted first, got %v", got)
	}
	// probed provider must not appear twice
	count := 0
	for _, name := range got {
		if name == "a" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected probed provider to appear exactly once, got %d times in %v", count, got)
	}
}

func TestSelectProbeWithNoOpenProvidersFallsBackToNormalOrder(t *testing.T) {
	reg := circuitbreaker.NewRegistry([]string{"a", "b"}, 1, time.Hour)
	s := New(reg, 1, rand.New(rand.NewSource(1)))
	got := attempted(s.Select([]string{"a", "b"}))
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected normal priority order when nothing is open, got %v", got)
	}
}

func TestSelectNeverReturnsEmpty(t *testing.T) {
	reg := circuitbreaker.NewRegistry([]string{"only"}, 1, time.Hour)
	reg.For("only").RecordFailure()
	s := New(reg, 0, nil)
	got := attempted(s.Select([]string{"only"}))
	if len(got) != 1 {
		t.Fatalf("expected fallback invariant to guarantee non-empty result, got %v", got)
	}
}

func TestPlanDoesNotFilterNames(t *testing.T) {
	reg := circuitbreaker.NewRegistry([]string{"a", "b", "c"}, 1, time.Hour)
	reg.For("a").RecordFailure()
	s := New(reg, 0, nil)
	plan := s.Select([]string{"a", "b", "c"})
	if len(plan.Names) != 3 {
		t.Fatalf("expected Select to leave Names unfiltered, got %v", plan.Names)
	}
}

func TestEligibleReflectsBreakerStateAtCallTime(t *testing.T) {
	reg := circuitbreaker.NewRegistry([]string{"a", "b"}, 1, 10*time.Millisecond)
	reg.For("a").RecordFailure()
	s := New(reg, 0, nil)
	plan := s.Select([]string{"a", "b"})

	if plan.Eligible("a") {
		t.Fatal("expected a to be ineligible immediately after tripping")
	}

	// Simulate the breaker auto-resetting partway through a long cascade:
	// the same Plan, built before the reset, must reflect it without a new
	// Select call.
	time.Sleep(15 * time.Millisecond)
	if !plan.Eligible("a") {
		t.Fatal("expected a to become eligible once reset_timeout elapses, even mid-plan")
	}
}
