package circuitbreaker

import (
	"testing"
	"time"
)

func TestInitialStateClosed(t *testing.T) {
	b := New(3, 10*time.Second)
	if b.IsOpen() {
		t.Fatal("expected closed initially")
	}
}

func TestOpensAtThreshold(t *testing.T) {
	b := New(3, 10*time.Second)
	b.RecordFailure()
	b.RecordFailure()
	if b.IsOpen() {
		t.Fatal("expected still closed before threshold")
	}
	b.RecordFailure()
	if !b.IsOpen() {
		t.Fatal("expected open at threshold")
	}
}

func TestCountingContinuesPastThresholdWithoutRetripping(t *testing.T) {
	b := New(2, time.Hour)
	b.RecordFailure()
	b.RecordFailure()
	snap := b.Snapshot()
	openedAt := snap.RemainingTimeUntilAutoReset
	b.RecordFailure()
	snap2 := b.Snapshot()
	if snap2.ConsecutiveFailures != 3 {
		t.Fatalf("expected counter to keep incrementing, got %d", snap2.ConsecutiveFailures)
	}
	// remaining time should not have been pushed back out by the 3rd failure
	if snap2.RemainingTimeUntilAutoReset > openedAt {
		t.Fatal("expected opened_at not to reset on repeated failures while already open")
	}
}

func TestSuccessResetsCounterAndCloses(t *testing.T) {
	b := New(2, time.Hour)
	b.RecordFailure()
	b.RecordFailure()
	if !b.IsOpen() {
		t.Fatal("expected open")
	}
	b.RecordSuccess()
	if b.IsOpen() {
		t.Fatal("expected closed after success")
	}
	if b.Snapshot().ConsecutiveFailures != 0 {
		t.Fatal("expected counter reset to 0")
	}
}

func TestAutoResetAfterTimeout(t *testing.T) {
	b := New(1, 5*time.Millisecond)
	b.RecordFailure()
	if !b.IsOpen() {
		t.Fatal("expected open immediately")
	}
	time.Sleep(10 * time.Millisecond)
	if b.IsOpen() {
		t.Fatal("expected auto-reset to closed after reset_timeout")
	}
	if b.Snapshot().ConsecutiveFailures != 0 {
		t.Fatal("expected counter cleared by auto-reset")
	}
}

func TestExplicitReset(t *testing.T) {
	b := New(1, time.Hour)
	b.RecordFailure()
	if !b.IsOpen() {
		t.Fatal("expected open")
	}
	b.Reset()
	if b.IsOpen() {
		t.Fatal("expected closed after explicit reset")
	}
}

func TestMarkFallbackSuppressesIsOpenButNotCounter(t *testing.T) {
	b := New(1, time.Hour)
	b.MarkFallback()
	b.RecordFailure()
	if b.IsOpen() {
		t.Fatal("expected fallback breaker to never report open")
	}
	if b.Snapshot().IsOpen {
		t.Fatal("expected fallback breaker's snapshot to never report open")
	}
	if b.Snapshot().ConsecutiveFailures != 1 {
		t.Fatal("expected fallback breaker's counter to still update")
	}
}

func TestHalfOpenProbeFailureKeepsBreakerOpenWithoutExtendingDeadline(t *testing.T) {
	b := New(1, time.Hour)
	b.RecordFailure()
	snap1 := b.Snapshot()
	b.RecordFailure() // simulates a failed half-open probe
	snap2 := b.Snapshot()
	if !snap2.IsOpen {
		t.Fatal("expected breaker to remain open after a failed probe")
	}
	if snap2.RemainingTimeUntilAutoReset > snap1.RemainingTimeUntilAutoReset {
		t.Fatal("a failed probe must not push the auto-reset deadline further out")
	}
}
