package collector

import (
	"fmt"

	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// Registry is an ordered set of collectors. Registration order is the
// order findings are reported downstream. It is passed explicitly to the
// orchestrator; there is no package-level registry.
type Registry struct {
	collectors []Collector
	names      map[string]bool
}

// NewRegistry registers cs in order. It panics on duplicate names, which
// is a wiring bug.
func NewRegistry(cs ...Collector) *Registry {
	r := &Registry{names: make(map[string]bool, len(cs))}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// Register appends c.
func (r *Registry) Register(c Collector) error {
	if r.names == nil {
		r.names = make(map[string]bool)
	}
	if r.names[c.Name()] {
		return fmt.Errorf("collector %q already registered", c.Name())
	}
	r.names[c.Name()] = true
	r.collectors = append(r.collectors, c)
	return nil
}

// Select returns the collectors applicable to t, in registration order.
// For unknown queries only collectors that declare themselves applicable
// to unknown input (the source-agnostic ones) are returned.
func (r *Registry) Select(t domain.QueryType) []Collector {
	selected := make([]Collector, 0, len(r.collectors))
	for _, c := range r.collectors {
		if c.Applicable(t) {
			selected = append(selected, c)
		}
	}
	return selected
}

// Names lists registered collectors in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.collectors))
	for i, c := range r.collectors {
		names[i] = c.Name()
	}
	return names
}

// Len returns the number of registered collectors.
func (r *Registry) Len() int { return len(r.collectors) }
