package p7

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifyBaseTypes(t *testing.T) {
	s := NewTypeSubst()
	_, ok := s.Unify(BaseType{Name: "Int"}, BaseType{Name: "Int"})
	assert.True(t, ok, "Int should unify with Int")

	_, ok = s.Unify(BaseType{Name: "Int"}, BaseType{Name: "Bool"})
	assert.False(t, ok, "Int should not unify with Bool")
}

func TestUnifyBindsMetaVariable(t *testing.T) {
	s := NewTypeSubst()
	mv := freshMeta("A")
	next, ok := s.Unify(mv, BaseType{Name: "Int"})
	require.True(t, ok)
	assert.Equal(t, BaseType{Name: "Int"}, next.Walk(mv))
}

func TestUnifyFuncTypesRecurse(t *testing.T) {
	s := NewTypeSubst()
	a := freshMeta("A")
	fn := FuncType{Param: a, Result: BaseType{Name: "Bool"}}
	concrete := FuncType{Param: BaseType{Name: "Int"}, Result: BaseType{Name: "Bool"}}

	next, ok := s.Unify(fn, concrete)
	require.True(t, ok)
	assert.Equal(t, BaseType{Name: "Int"}, next.Walk(a))
}

func TestUnifyFuncTypesMismatchFails(t *testing.T) {
	s := NewTypeSubst()
	fn := FuncType{Param: BaseType{Name: "Int"}, Result: BaseType{Name: "Bool"}}
	notFn := BaseType{Name: "Int"}

	_, ok := s.Unify(fn, notFn)
	assert.False(t, ok)
}

func TestUnifyUnionMatchesAnyBranch(t *testing.T) {
	s := NewTypeSubst()
	union := NewUnion(BaseType{Name: "Int"}, BaseType{Name: "Bool"})

	_, ok := s.Unify(union, BaseType{Name: "Bool"})
	assert.True(t, ok, "Bool should unify against a branch of Int|Bool")

	_, ok = s.Unify(union, BaseType{Name: "Float"})
	assert.False(t, ok, "Float should not unify against Int|Bool")
}

func TestTypeSubstCloneIsIndependent(t *testing.T) {
	s := NewTypeSubst()
	mv := freshMeta("A")
	extended := s.Bind(mv, BaseType{Name: "Int"})

	_, stillUnbound := s.Walk(mv).(MetaType)
	assert.True(t, stillUnbound, "binding on the extended substitution must not leak back to s")

	resolved := extended.Walk(mv)
	assert.Equal(t, BaseType{Name: "Int"}, resolved)
}

func TestResolveSubstitutesNestedMetaVariables(t *testing.T) {
	s := NewTypeSubst()
	a := freshMeta("A")
	b := freshMeta("B")
	s = s.Bind(a, BaseType{Name: "Int"})
	s = s.Bind(b, BaseType{Name: "Bool"})

	fn := FuncType{Param: a, Result: b}
	resolved := s.Resolve(fn)
	assert.Equal(t, FuncType{Param: BaseType{Name: "Int"}, Result: BaseType{Name: "Bool"}}, resolved)
}

func TestInstantiateSharesMetaVariableWithinOneFiring(t *testing.T) {
	scope := make(map[string]MetaType)
	noChild := func(TypeExpr) (Type, bool) { return nil, false }

	first, ok := Instantiate(VarExpr{Name: "A"}, scope, noChild)
	require.True(t, ok)
	second, ok := Instantiate(VarExpr{Name: "A"}, scope, noChild)
	require.True(t, ok)

	assert.Equal(t, first, second, "two occurrences of the same metavariable name in one firing must be the same MetaType")
}

func TestInstantiateChildRefDelegatesToResolver(t *testing.T) {
	scope := make(map[string]MetaType)
	child := func(expr TypeExpr) (Type, bool) {
		ref, ok := expr.(ChildRefExpr)
		if !ok || ref.Index != 1 {
			return nil, false
		}
		return BaseType{Name: "Int"}, true
	}

	got, ok := Instantiate(ChildRefExpr{Index: 1}, scope, child)
	require.True(t, ok)
	assert.Equal(t, BaseType{Name: "Int"}, got)

	_, ok = Instantiate(ChildRefExpr{Index: 2}, scope, child)
	assert.False(t, ok, "an unresolved child reference should report inapplicable, not panic")
}
