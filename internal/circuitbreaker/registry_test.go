package circuitbreaker

import (
	"testing"
	"time"
)

func TestFallbackInvariantNeverReportsOpen(t *testing.T) {
	r := NewRegistry([]string{"a", "b"}, 1, time.Hour)
	// trip both breakers' underlying counters
	r.For("a").RecordFailure()
	r.For("b").RecordFailure()

	if !r.IsOpenForSelection("a") {
		t.Fatal("expected non-last provider to report open")
	}
	if r.IsOpenForSelection("b") {
		t.Fatal("expected last provider to never report open for selection purposes")
	}
	// the fallback invariant holds for every observation, not just selection
	if r.For("b").IsOpen() {
		t.Fatal("expected last provider's own breaker to never report open")
	}
	// but the underlying counter still updated for observability
	if r.For("b").Snapshot().ConsecutiveFailures != 1 {
		t.Fatal("expected last provider's failure counter to keep incrementing")
	}
}

func TestForPanicsOnUnknownProvider(t *testing.T) {
	r := NewRegistry([]string{"a"}, 1, time.Hour)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown provider")
		}
	}()
	r.For("nope")
}

func TestResetAllIsIdempotent(t *testing.T) {
	r := NewRegistry([]string{"a", "b"}, 1, time.Hour)
	r.For("a").RecordFailure()
	r.ResetAll()
	snapshotOnce := r.SnapshotAll()
	r.ResetAll()
	snapshotTwice := r.SnapshotAll()
	for i := range snapshotOnce {
		if snapshotOnce[i] != snapshotTwice[i] {
			t.Fatalf("reset_all should be idempotent: %+v != %+v", snapshotOnce[i], snapshotTwice[i])
		}
	}
}

func TestSnapshotAllOrder(t *testing.T) {
	r := NewRegistry([]string{"a", "b", "c"}, 1, time.Hour)
	snaps := r.SnapshotAll()
	names := []string{snaps[0].Name, snaps[1].Name, snaps[2].Name}
	want := []string{"a", "b", "c"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected priority order %v, got %v", want, names)
		}
	}
}
