package p7

import "github.com/prop7/p7/internal/persist"

// Gamma is the persistent typing context threaded through a derivation: a
// map from bound identifier names (lambda parameters, let-bindings, imp
// variable declarations) to their Type. Extending Gamma never mutates the
// parent derivation's context, so two sibling branches of the frontier that
// share a prefix can each extend Gamma independently without copying.
type Gamma struct {
	bindings *persist.Map
}

// EmptyGamma is the typing context with no bindings, the starting context
// for every fresh Recognizer session.
var EmptyGamma = Gamma{}

// Bind returns a new Gamma with name bound to t, shadowing any existing
// binding for name. g itself is unchanged.
func (g Gamma) Bind(name string, t Type) Gamma {
	return Gamma{bindings: g.bindings.Insert(name, t)}
}

// Lookup returns the Type bound to name and true, or the zero Type and
// false if name is unbound in g.
func (g Gamma) Lookup(name string) (Type, bool) {
	v, ok := g.bindings.Lookup(name)
	if !ok {
		return nil, false
	}
	return v.(Type), true
}

// Names returns every bound name in g, most-recently-bound first.
func (g Gamma) Names() []string {
	return g.bindings.Keys()
}
