// Package circuitbreaker implements the per-provider circuit breaker used by
// the forward engine to skip providers that have been failing.
//
// A breaker has exactly two observable states, closed and open:
//
//	closed → open   when consecutive failures reach the failure threshold
//	open   → closed when reset_timeout elapses, observed lazily on the next
//	                 inspection, on a recorded success, or on an
//	                 explicit Reset
//
// There is no internal half-open state here: the half-open probe is a
// selection-time decision made by the provider selector (see
// internal/selector), not a breaker state. A breaker only ever reports
// closed or open.
package circuitbreaker

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time, lock-free view of a breaker's state.
type Snapshot struct {
	IsOpen              bool
	ConsecutiveFailures int
	// RemainingTimeUntilAutoReset is zero when the breaker is closed.
	RemainingTimeUntilAutoReset time.Duration
}

// Breaker tracks consecutive failures for a single provider and derives an
// open/closed verdict from them. All methods are safe for concurrent use;
// each breaker serializes only its own state, never another breaker's.
type Breaker struct {
	mu                  sync.Mutex
	consecutiveFailures int
	openedAt            time.Time // zero value means "unset"
	failureThreshold    int
	resetTimeout        time.Duration
	// fallback marks the last-resort provider's breaker: IsOpen and
	// Snapshot always report closed for it, even though the counter below
	// keeps updating for observability. Set once via MarkFallback, never
	// unset.
	fallback bool
}

// New creates a Breaker with the given failure threshold and reset timeout.
// failureThreshold must be >= 1 and resetTimeout must be > 0; config
// validation (see config_load.go) enforces this before a Breaker is built.
func New(failureThreshold int, resetTimeout time.Duration) *Breaker {
	return &Breaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
	}
}

// RecordSuccess resets the failure counter and closes the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures = 0
	b.openedAt = time.Time{}
}

// RecordFailure increments the failure counter and, the instant the count
// reaches the threshold, trips the breaker open. Counting continues past
// the threshold (for observability) but does not re-trip an already-open
// breaker's opened_at.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures++
	if b.consecutiveFailures >= b.failureThreshold && b.openedAt.IsZero() {
		b.openedAt = time.Now()
	}
}

// IsOpen reports whether the breaker is currently open. If the breaker was
// open but reset_timeout has elapsed, this call has the side effect of
// clearing the trip (lazy auto-reset) before returning false.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isOpenLocked(time.Now())
}

// isOpenLocked must be called with b.mu held.
func (b *Breaker) isOpenLocked(now time.Time) bool {
	if b.openedAt.IsZero() {
		return false
	}
	if now.Sub(b.openedAt) >= b.resetTimeout {
		b.openedAt = time.Time{}
		b.consecutiveFailures = 0
		return false
	}
	if b.fallback {
		return false
	}
	return true
}

// MarkFallback flags this breaker as belonging to the fallback-invariant
// provider: every subsequent IsOpen/Snapshot call reports closed for it,
// regardless of its failure counter. The counter itself keeps updating
// normally so the open state is still observable via Snapshot's
// ConsecutiveFailures field.
func (b *Breaker) MarkFallback() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fallback = true
}

// Snapshot returns a consistent view of the breaker's state, applying the
// same lazy auto-reset as IsOpen.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	open := b.isOpenLocked(now)
	var remaining time.Duration
	if open {
		remaining = b.resetTimeout - now.Sub(b.openedAt)
	}
	return Snapshot{
		IsOpen:                      open,
		ConsecutiveFailures:         b.consecutiveFailures,
		RemainingTimeUntilAutoReset: remaining,
	}
}

// Reset hard-resets the breaker to its initial closed state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures = 0
	b.openedAt = time.Time{}
}
