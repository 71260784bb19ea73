package circuitbreaker

import (
	"fmt"
	"time"
)

// Registry owns exactly one Breaker per provider name, created eagerly at
// construction time and never added to afterward. Looking up a name that
// was not part of the original provider list is a programmer error, not a
// request error, and panics accordingly.
type Registry struct {
	order    []string
	breakers map[string]*Breaker
}

// NewRegistry builds a Registry with one Breaker per name in names, in
// order. names must be non-empty; the last name is the fallback-invariant
// provider, and its breaker is marked accordingly so every IsOpen/Snapshot
// observation of it — not just selection — reports closed.
func NewRegistry(names []string, failureThreshold int, resetTimeout time.Duration) *Registry {
	if len(names) == 0 {
		panic("circuitbreaker: NewRegistry requires at least one provider name")
	}
	breakers := make(map[string]*Breaker, len(names))
	for _, name := range names {
		breakers[name] = New(failureThreshold, resetTimeout)
	}
	breakers[names[len(names)-1]].MarkFallback()
	return &Registry{
		order:    append([]string(nil), names...),
		breakers: breakers,
	}
}

// For returns the breaker for the given provider name. It panics if name
// was not part of the provider list the registry was built from.
func (r *Registry) For(name string) *Breaker {
	b, ok := r.breakers[name]
	if !ok {
		panic(fmt.Sprintf("circuitbreaker: unknown provider %q", name))
	}
	return b
}

// IsOpenForSelection reports whether the named provider's breaker should be
// treated as open when the selector is deciding which providers to skip.
// The fallback invariant is enforced at the breaker itself (MarkFallback),
// so this is a plain passthrough.
func (r *Registry) IsOpenForSelection(name string) bool {
	return r.breakers[name].IsOpen()
}

// Names returns the provider names in priority order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// ResetAll hard-resets every breaker. Idempotent: calling it twice in a row
// leaves the registry in the same state as calling it once.
func (r *Registry) ResetAll() {
	for _, b := range r.breakers {
		b.Reset()
	}
}

// ProviderSnapshot pairs a provider name with its breaker's Snapshot, for
// the /_health response.
type ProviderSnapshot struct {
	Name string
	Snapshot
}

// SnapshotAll returns a Snapshot for every provider, in priority order.
func (r *Registry) SnapshotAll() []ProviderSnapshot {
	out := make([]ProviderSnapshot, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, ProviderSnapshot{Name: name, Snapshot: r.breakers[name].Snapshot()})
	}
	return out
}
