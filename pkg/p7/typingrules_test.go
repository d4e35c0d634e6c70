package p7

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appTypeRule builds the grammar+alt+children fixture for an application
// node "(f x)" whose typing rule is "$1 : A -> B, $2 : A => B" (App's rule
// in builtin/stlc.spec, with the parentheses and the whitespace symbol
// dropped and $2/$4 renumbered to $1/$2 for the test's own 2-child shape).
func appTypeRule() (*Grammar, Alt) {
	alt := Alt{Symbols: []Symbol{{NonTerm: "Fn"}, {NonTerm: "Arg"}}}
	rule := &TypingRule{
		Head: "App",
		Premises: []Premise{
			{Kind: PremiseEquate, ChildA: 1, Expr: FuncExpr{Param: VarExpr{Name: "A"}, Result: VarExpr{Name: "B"}}},
			{Kind: PremiseEquate, ChildA: 2, Expr: VarExpr{Name: "A"}},
		},
		Result: VarExpr{Name: "B"},
	}
	g := &Grammar{
		Productions: map[string]*Production{"App": {Head: "App", Alts: []Alt{alt}}},
		Rules:       map[string][]*TypingRule{"App": {rule}},
	}
	return g, alt
}

func TestFireTypingRuleAppliesFuncArgUnification(t *testing.T) {
	g, alt := appTypeRule()
	children := []completedChild{
		{text: "f", typ: FuncType{Param: BaseType{Name: "Int"}, Result: BaseType{Name: "Bool"}}},
		{text: "x", typ: BaseType{Name: "Int"}},
	}
	res := fireTypingRule(g, "App", alt, 0, children, EmptyGamma)
	require.True(t, res.ok)
	assert.Equal(t, BaseType{Name: "Bool"}, res.typ)
}

func TestFireTypingRuleRejectsArgTypeMismatch(t *testing.T) {
	g, alt := appTypeRule()
	children := []completedChild{
		{text: "f", typ: FuncType{Param: BaseType{Name: "Int"}, Result: BaseType{Name: "Bool"}}},
		{text: "x", typ: BaseType{Name: "Bool"}}, // Bool where Int expected
	}
	res := fireTypingRule(g, "App", alt, 0, children, EmptyGamma)
	assert.False(t, res.ok, "applying a Bool-typed argument to an Int->Bool function must fail unification")
}

func TestFireTypingRuleRejectsNonFunctionCallee(t *testing.T) {
	g, alt := appTypeRule()
	children := []completedChild{
		{text: "n", typ: BaseType{Name: "Int"}}, // not a function at all
		{text: "x", typ: BaseType{Name: "Int"}},
	}
	res := fireTypingRule(g, "App", alt, 0, children, EmptyGamma)
	assert.False(t, res.ok, "applying an argument to a non-function value must fail unification")
}

func TestFireTypingRulePassesThroughSoleNonterminalChildWithNoRule(t *testing.T) {
	alt := Alt{Symbols: []Symbol{{Literal: "("}, {NonTerm: "Expr"}, {Literal: ")"}}}
	g := &Grammar{
		Productions: map[string]*Production{"Paren": {Head: "Paren", Alts: []Alt{alt}}},
		Rules:       map[string][]*TypingRule{},
	}
	children := []completedChild{
		{text: "("},
		{text: "1", typ: BaseType{Name: "Int"}},
		{text: ")"},
	}
	res := fireTypingRule(g, "Paren", alt, 0, children, EmptyGamma)
	require.True(t, res.ok)
	assert.Equal(t, BaseType{Name: "Int"}, res.typ, "a head with no typing rule and exactly one nonterminal child passes that child's type through")
}

func TestFireTypingRuleUntypedPureCFGProduction(t *testing.T) {
	alt := Alt{Symbols: []Symbol{{Literal: "x"}, {Literal: "y"}}}
	g := &Grammar{
		Productions: map[string]*Production{"Pair": {Head: "Pair", Alts: []Alt{alt}}},
		Rules:       map[string][]*TypingRule{},
	}
	children := []completedChild{{text: "x"}, {text: "y"}}
	res := fireTypingRule(g, "Pair", alt, 0, children, EmptyGamma)
	assert.True(t, res.ok)
	assert.Nil(t, res.typ, "a head with no typing rule and no single nonterminal child carries no type")
}

func TestGammaAfterChildrenAppliesBindPremise(t *testing.T) {
	alt := Alt{Symbols: []Symbol{{Literal: "λ"}, {NonTerm: "Ident"}, {Literal: ":"}, {NonTerm: "TypeAnnotation"}}}
	rule := &TypingRule{
		Head:     "Lambda",
		Premises: []Premise{{Kind: PremiseBind, ChildA: 2, ChildB: 4}},
		Result:   VarExpr{Name: "B"},
	}
	g := &Grammar{
		Productions: map[string]*Production{"Lambda": {Head: "Lambda", Alts: []Alt{alt}}},
		Rules:       map[string][]*TypingRule{"Lambda": {rule}},
	}
	children := []completedChild{
		{text: "λ"},
		{text: "x"},
		{text: ":"},
		{text: "Int", typ: BaseType{Name: "Int"}},
	}
	gamma := gammaAfterChildren(g, "Lambda", alt, EmptyGamma, children)
	typ, ok := gamma.Lookup("x")
	require.True(t, ok, "the bind premise should have bound the identifier's captured text")
	assert.Equal(t, BaseType{Name: "Int"}, typ)
}

func TestGammaAfterChildrenNoOpWithoutBindPremise(t *testing.T) {
	g, alt := appTypeRule()
	gamma := gammaAfterChildren(g, "App", alt, EmptyGamma, nil)
	assert.Equal(t, EmptyGamma, gamma, "a rule with no bind premise must not alter Gamma")
}
