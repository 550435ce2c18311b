package taskweaver

import "strings"

// Registry maps kind names to the Kind that builds them. Lookups ignore case.
type Registry struct {
	byName map[string]Kind
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]Kind{}}
}

// DefaultRegistry returns a registry holding the built-in run, copy and
// echo kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(commandKind{})
	r.Register(copyKind{})
	r.Register(echoKind{})
	return r
}

// Register adds k under each of its names. A later registration for the
// same name replaces the earlier one.
func (r *Registry) Register(k Kind) {
	if k == nil {
		return
	}
	for _, n := range k.Names() {
		r.byName[strings.ToLower(n)] = k
	}
}

func (r *Registry) get(name string) (Kind, bool) {
	k, ok := r.byName[strings.ToLower(name)]
	return k, ok
}
