// Package persist implements a small persistent (immutable, parent-chained)
// string-keyed map. It backs the typing context (Gamma) used while a
// derivation is in flight: extending a binding must not disturb any sibling
// derivation that shares the same prefix of the parse, and rolling back a
// derivation must not require copying the whole map.
package persist

// Map is an immutable map from string keys to arbitrary values. A Map is
// either nil (empty) or a single key/value pair layered on top of a parent
// Map. Lookup walks the parent chain; Insert never mutates the receiver, it
// returns a new Map sharing the receiver as its parent.
type Map struct {
	parent *Map
	key    string
	value  any
	depth  int
}

// Insert returns a new Map with key bound to value, shadowing any existing
// binding for key without disturbing m. A nil receiver is the empty map.
func (m *Map) Insert(key string, value any) *Map {
	depth := 0
	if m != nil {
		depth = m.depth + 1
	}
	return &Map{parent: m, key: key, value: value, depth: depth}
}

// Lookup walks the parent chain for the nearest binding of key. The second
// return value is false if no binding exists.
func (m *Map) Lookup(key string) (any, bool) {
	for n := m; n != nil; n = n.parent {
		if n.key == key {
			return n.value, true
		}
	}
	return nil, false
}

// Depth reports how many insertions separate m from the empty map, i.e. the
// worst-case number of hops a Lookup on m would walk.
func (m *Map) Depth() int {
	if m == nil {
		return 0
	}
	return m.depth + 1
}

// Keys returns every key reachable from m, most-recently-inserted first.
// A key shadowed by a later insertion appears once, at its most recent
// position.
func (m *Map) Keys() []string {
	seen := make(map[string]bool)
	var out []string
	for n := m; n != nil; n = n.parent {
		if !seen[n.key] {
			seen[n.key] = true
			out = append(out, n.key)
		}
	}
	return out
}

// Each calls fn for every binding reachable from m, most-recently-inserted
// first, skipping keys already shadowed by a more recent binding. Iteration
// stops early if fn returns false.
func (m *Map) Each(fn func(key string, value any) bool) {
	seen := make(map[string]bool)
	for n := m; n != nil; n = n.parent {
		if seen[n.key] {
			continue
		}
		seen[n.key] = true
		if !fn(n.key, n.value) {
			return
		}
	}
}
