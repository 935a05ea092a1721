package collector

import "fmt"

// Registry keeps adapters by name in registration order.
type Registry struct {
	collectors map[string]Collector
	order      []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{collectors: map[string]Collector{}}
}

// Register adds or replaces a collector implementation.
func (r *Registry) Register(c Collector) {
	if r.collectors == nil {
		r.collectors = map[string]Collector{}
	}
	if _, exists := r.collectors[c.Name()]; !exists {
		r.order = append(r.order, c.Name())
	}
	r.collectors[c.Name()] = c
}

// Resolve returns a collector by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Collector, error) {
	if c, ok := r.collectors[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCollector, name)
}

// All lists every registered collector.
func (r *Registry) All() []Collector {
	out := make([]Collector, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.collectors[name])
	}
	return out
}

// Enabled lists the collectors whose configuration turns them on.
func (r *Registry) Enabled() []Collector {
	var out []Collector
	for _, c := range r.All() {
		if c.Enabled() {
			out = append(out, c)
		}
	}
	return out
}
