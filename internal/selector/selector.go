// Package selector implements the provider attempt-ordering algorithm: an
// optional half-open probe against one open provider, followed by every
// other provider in priority order. The open/closed filter is deliberately
// not applied by Select itself — the forward engine re-checks each
// provider's breaker state immediately before attempting it, so a breaker
// whose reset_timeout elapses mid-cascade becomes eligible within the same
// request instead of being frozen out by a snapshot taken at request
// entry.
package selector

import (
	"math/rand"

	"github.com/relaybridge/relaybridge/internal/circuitbreaker"
)

// Selector produces the ordered attempt sequence for one request.
type Selector struct {
	registry         *circuitbreaker.Registry
	probeProbability float64
	rng              *rand.Rand
}

// New creates a Selector. rng should be a single process-seeded source
// shared across requests, not a fresh one per request; passing nil uses
// the package-level default source.
func New(registry *circuitbreaker.Registry, probeProbability float64, rng *rand.Rand) *Selector {
	return &Selector{registry: registry, probeProbability: probeProbability, rng: rng}
}

func (s *Selector) float64() float64 {
	if s.rng == nil {
		return rand.Float64()
	}
	return s.rng.Float64()
}

func (s *Selector) intn(n int) int {
	if s.rng == nil {
		return rand.Intn(n)
	}
	return s.rng.Intn(n)
}

// Plan is the per-request attempt plan. Probe, if non-empty, is the one
// open provider chosen to be probed this request — it is always eligible,
// regardless of what its breaker reports at attempt time, since probing it
// is the point. Names is the full priority-ordered provider list,
// deliberately unfiltered by breaker state: the caller must call Eligible
// on each name immediately before attempting it.
type Plan struct {
	Probe string
	Names []string

	registry *circuitbreaker.Registry
}

// Eligible reports whether name should be attempted right now. It re-reads
// the breaker's current state rather than any state captured when the
// Plan was built, so a breaker that auto-resets partway through the
// cascade is picked up within the same request.
func (p Plan) Eligible(name string) bool {
	if name == p.Probe {
		return true
	}
	return !p.registry.IsOpenForSelection(name)
}

// Order returns the provider names in the sequence the forward engine
// should consider them: the probe first (if any), then the rest of the
// priority list. This is pure reordering, not filtering — the caller
// still calls Eligible on each name as it is reached.
func (p Plan) Order() []string {
	if p.Probe == "" {
		return p.Names
	}
	out := make([]string, 0, len(p.Names))
	out = append(out, p.Probe)
	for _, name := range p.Names {
		if name != p.Probe {
			out = append(out, name)
		}
	}
	return out
}

// Select decides, once per request, whether to probe one currently-open
// provider, then returns a Plan carrying that decision plus the full
// priority-ordered provider list. names is the full priority-ordered
// provider list.
func (s *Selector) Select(names []string) Plan {
	if len(names) == 0 {
		panic("selector: Select requires at least one provider")
	}

	var probed string
	if s.float64() < s.probeProbability {
		var openNames []string
		for _, name := range names {
			if s.registry.IsOpenForSelection(name) {
				openNames = append(openNames, name)
			}
		}
		if len(openNames) > 0 {
			probed = openNames[s.intn(len(openNames))]
		}
	}

	return Plan{Probe: probed, Names: names, registry: s.registry}
}
