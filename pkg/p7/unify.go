package p7

import "sync/atomic"

var metaCounter int64

// freshMeta allocates a MetaType with a process-wide unique ID.
func freshMeta(name string) MetaType {
	id := atomic.AddInt64(&metaCounter, 1)
	return MetaType{ID: id, Name: name}
}

// TypeSubst is a substitution from metavariable ID to Type, built up while
// unifying a typing rule's premises against a completed derivation's actual
// child types. It plays the same role core.go's Substitution plays for
// logic variables: Walk resolves chained bindings, Bind extends, Clone
// snapshots for backtracking.
type TypeSubst struct {
	bindings map[int64]Type
}

// NewTypeSubst returns an empty substitution.
func NewTypeSubst() *TypeSubst {
	return &TypeSubst{bindings: make(map[int64]Type)}
}

// Clone returns an independent copy of s, so a failed unification attempt
// can be discarded without disturbing the substitution it started from.
func (s *TypeSubst) Clone() *TypeSubst {
	cp := make(map[int64]Type, len(s.bindings))
	for k, v := range s.bindings {
		cp[k] = v
	}
	return &TypeSubst{bindings: cp}
}

// Walk follows t through s until it reaches a non-metavariable type or an
// unbound metavariable, resolving chains of metavariable-to-metavariable
// bindings.
func (s *TypeSubst) Walk(t Type) Type {
	for {
		mv, ok := t.(MetaType)
		if !ok {
			return t
		}
		bound, ok := s.bindings[mv.ID]
		if !ok {
			return t
		}
		t = bound
	}
}

// Bind records mv := t in s, returning a new substitution (s itself is
// unchanged). Callers needing the extended substitution to stick should use
// the returned value.
func (s *TypeSubst) Bind(mv MetaType, t Type) *TypeSubst {
	next := s.Clone()
	next.bindings[mv.ID] = t
	return next
}

// Unify attempts to unify a and b under s, returning the extended
// substitution on success or (s, false) on failure. Two base types unify
// only if their names match; two function types unify if their parameters
// and results unify; a union, on either side, unifies with anything that
// unifies with at least one of its branches; an unbound metavariable unifies with anything
// by binding to it (occurs-check is unnecessary here: the type algebra is
// finite-depth per grammar, grammars do not construct self-referential
// types).
func (s *TypeSubst) Unify(a, b Type) (*TypeSubst, bool) {
	a = s.Walk(a)
	b = s.Walk(b)

	if amv, ok := a.(MetaType); ok {
		if bmv, ok := b.(MetaType); ok && bmv.ID == amv.ID {
			return s, true
		}
		return s.Bind(amv, b), true
	}
	if bmv, ok := b.(MetaType); ok {
		return s.Bind(bmv, a), true
	}
	if bu, ok := b.(UnionType); ok {
		if _, aIsUnion := a.(UnionType); !aIsUnion {
			for _, member := range bu.Members {
				if next, ok := s.Clone().Unify(a, member); ok {
					return next, true
				}
			}
			return s, false
		}
	}

	switch av := a.(type) {
	case BaseType:
		bv, ok := b.(BaseType)
		return s, ok && av.Name == bv.Name
	case FuncType:
		bv, ok := b.(FuncType)
		if !ok {
			return s, false
		}
		next, ok := s.Unify(av.Param, bv.Param)
		if !ok {
			return s, false
		}
		return next.Unify(av.Result, bv.Result)
	case UnionType:
		for _, member := range av.Members {
			if next, ok := s.Clone().Unify(member, b); ok {
				return next, true
			}
		}
		return s, false
	default:
		return s, false
	}
}

// Resolve fully substitutes t through s, replacing every resolvable
// metavariable with its bound type. Metavariables left unbound remain as
// MetaType values in the result.
func (s *TypeSubst) Resolve(t Type) Type {
	t = s.Walk(t)
	switch v := t.(type) {
	case FuncType:
		return FuncType{Param: s.Resolve(v.Param), Result: s.Resolve(v.Result)}
	case UnionType:
		members := make([]Type, len(v.Members))
		for i, m := range v.Members {
			members[i] = s.Resolve(m)
		}
		return NewUnion(members...)
	default:
		return t
	}
}

// Instantiate converts a TypeExpr into a runtime Type, allocating one fresh
// MetaType per distinct metavariable name seen so far in scope (tracked via
// the scope map, shared across every TypeExpr instantiated for the same
// rule firing so repeated names in one firing refer to the same
// metavariable). child resolves a ChildRefExpr/LookupExpr to the Type of
// the referenced child or binder name; it returns (nil, false) if the
// reference cannot be resolved, and Instantiate then returns (nil, false)
// as well, leaving it to the caller how to treat the unresolved rule.
func Instantiate(expr TypeExpr, scope map[string]MetaType, child func(TypeExpr) (Type, bool)) (Type, bool) {
	switch e := expr.(type) {
	case BaseExpr:
		return BaseType{Name: e.Name}, true
	case VarExpr:
		if mv, ok := scope[e.Name]; ok {
			return mv, true
		}
		mv := freshMeta(e.Name)
		scope[e.Name] = mv
		return mv, true
	case FuncExpr:
		p, ok := Instantiate(e.Param, scope, child)
		if !ok {
			return nil, false
		}
		r, ok := Instantiate(e.Result, scope, child)
		if !ok {
			return nil, false
		}
		return FuncType{Param: p, Result: r}, true
	case UnionExpr:
		members := make([]Type, len(e.Members))
		for i, m := range e.Members {
			t, ok := Instantiate(m, scope, child)
			if !ok {
				return nil, false
			}
			members[i] = t
		}
		return NewUnion(members...), true
	case ChildRefExpr, LookupExpr:
		return child(expr)
	default:
		return nil, false
	}
}
