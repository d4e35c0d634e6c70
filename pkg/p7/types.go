package p7

import (
	"sort"
	"strconv"
	"strings"
)

// Type is the runtime type algebra a grammar's typing rules compute over:
// base names, function types, and canonicalized unions, plus metavariables
// standing for a type not yet determined by unification. Types compare
// structurally, never by identity.
type Type interface {
	isType()
	String() string
	// Equal reports structural equality. Metavariables compare equal only
	// to themselves (same ID); callers that want unification semantics
	// should walk through a TypeSubst first.
	Equal(other Type) bool
}

// BaseType is an atomic, named type such as Int, Bool, or Fizz. Grammars
// declare base types implicitly: any bareword appearing where a TypeExpr is
// expected that never resolves to a metavariable binding is a BaseType.
type BaseType struct {
	Name string
}

func (BaseType) isType() {}
func (b BaseType) String() string { return b.Name }
func (b BaseType) Equal(other Type) bool {
	o, ok := other.(BaseType)
	return ok && o.Name == b.Name
}

// FuncType is a right-associative function type Param -> Result.
type FuncType struct {
	Param  Type
	Result Type
}

func (FuncType) isType() {}
func (f FuncType) String() string {
	return "(" + f.Param.String() + " -> " + f.Result.String() + ")"
}
func (f FuncType) Equal(other Type) bool {
	o, ok := other.(FuncType)
	return ok && f.Param.Equal(o.Param) && f.Result.Equal(o.Result)
}

// UnionType is a canonicalized set of two or more alternative types: sorted
// by String(), deduplicated, and with any nested unions flattened, so that
// two unions built from different orderings or with repeated members still
// compare Equal.
type UnionType struct {
	Members []Type
}

func (UnionType) isType() {}
func (u UnionType) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}
func (u UnionType) Equal(other Type) bool {
	o, ok := other.(UnionType)
	if !ok || len(o.Members) != len(u.Members) {
		return false
	}
	for i := range u.Members {
		if !u.Members[i].Equal(o.Members[i]) {
			return false
		}
	}
	return true
}

// MetaType is a type metavariable: a placeholder introduced by a typing
// rule's unnamed or shared variable names, resolved (or left unresolved)
// through a TypeSubst during unification. Two MetaTypes are Equal only if
// they carry the same ID; comparing metavariables for unification purposes
// must go through Walk, not Equal.
type MetaType struct {
	ID int64
	// Name is the metavariable's spelling in the source typing rule
	// (e.g. "A"), kept only for diagnostics.
	Name string
}

func (MetaType) isType() {}
func (m MetaType) String() string {
	if m.Name != "" {
		return m.Name
	}
	return "?"
}
func (m MetaType) Equal(other Type) bool {
	o, ok := other.(MetaType)
	return ok && o.ID == m.ID
}

// NewUnion builds a canonicalized UnionType from members, flattening nested
// unions, deduplicating structurally-equal members, and sorting by String
// so construction order never affects equality. A single surviving member
// collapses to that member directly (a union is never of size one).
func NewUnion(members ...Type) Type {
	var flat []Type
	var walk func(Type)
	walk = func(t Type) {
		if u, ok := t.(UnionType); ok {
			for _, m := range u.Members {
				walk(m)
			}
			return
		}
		flat = append(flat, t)
	}
	for _, m := range members {
		walk(m)
	}

	sort.Slice(flat, func(i, j int) bool { return flat[i].String() < flat[j].String() })

	var dedup []Type
	for _, t := range flat {
		dup := false
		for _, existing := range dedup {
			if existing.Equal(t) {
				dup = true
				break
			}
		}
		if !dup {
			dedup = append(dedup, t)
		}
	}

	if len(dedup) == 1 {
		return dedup[0]
	}
	return UnionType{Members: dedup}
}

// UnifiesWithUnionBranch reports whether t structurally equals any branch of
// u, the rule by which a concrete type is checked against a union without
// going through the general unifier. Nothing in this package calls it; the
// recognizer's typing-rule checks go through TypeSubst.Unify.
func UnifiesWithUnionBranch(t Type, u UnionType) bool {
	for _, m := range u.Members {
		if t.Equal(m) {
			return true
		}
	}
	return false
}

// --- Type expression AST -----------------------------------------------
//
// TypeExpr is the small language typing rules are written in: base type
// names, function arrows, unions, and metavariables referenced by name.
// Each time a typing rule fires, its TypeExpr premises and result are
// instantiated into runtime Types by allocating one fresh MetaType per
// distinct metavariable name appearing in that rule (see Instantiate in
// unify.go); two occurrences of "A" in the same rule firing refer to
// the same metavariable, but the next firing of the same rule gets fresh
// ones.

// TypeExpr is the parsed form of a type expression appearing in a typing
// rule's premises or result.
type TypeExpr interface {
	isTypeExpr()
	String() string
}

// BaseExpr names a concrete base type, e.g. "Int".
type BaseExpr struct{ Name string }

func (BaseExpr) isTypeExpr()      {}
func (b BaseExpr) String() string { return b.Name }

// FuncExpr is a right-associative function type expression A -> B.
type FuncExpr struct{ Param, Result TypeExpr }

func (FuncExpr) isTypeExpr() {}
func (f FuncExpr) String() string {
	return "(" + f.Param.String() + " -> " + f.Result.String() + ")"
}

// UnionExpr is an alternation of type expressions A | B | ...
type UnionExpr struct{ Members []TypeExpr }

func (UnionExpr) isTypeExpr() {}
func (u UnionExpr) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

// VarExpr is a metavariable reference by name, e.g. "A".
type VarExpr struct{ Name string }

func (VarExpr) isTypeExpr()      {}
func (v VarExpr) String() string { return v.Name }

// ChildRefExpr is a pseudo type-expression referencing the synthesized type
// of a child by its 1-based position in the completing alternative,
// written "$i" in a grammar spec's typing section.
type ChildRefExpr struct{ Index int }

func (ChildRefExpr) isTypeExpr() {}
func (c ChildRefExpr) String() string {
	return "$" + strconv.Itoa(c.Index)
}

// LookupExpr is a pseudo type-expression that resolves to whatever Gamma
// currently binds for the captured text of child Index, written
// "lookup($i)". It is used by binder-sensitive nonterminals like a lambda
// calculus's variable reference production.
type LookupExpr struct{ Index int }

func (LookupExpr) isTypeExpr() {}
func (l LookupExpr) String() string {
	return "lookup($" + strconv.Itoa(l.Index) + ")"
}
