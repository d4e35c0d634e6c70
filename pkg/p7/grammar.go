package p7

// Symbol is one element of a production's right-hand side: a literal
// string, a compiled regex pattern, or a reference to another nonterminal.
type Symbol struct {
	Literal string // non-empty for a literal terminal
	Pattern *Regex // non-nil for a regex terminal
	NonTerm string // non-empty for a nonterminal reference
}

func (s Symbol) IsTerminal() bool { return s.NonTerm == "" }

func (s Symbol) String() string {
	switch {
	case s.Pattern != nil:
		return s.Pattern.String()
	case s.NonTerm != "":
		return s.NonTerm
	default:
		return `"` + s.Literal + `"`
	}
}

// Alt is one alternative of a production: a sequence of symbols.
type Alt struct {
	Symbols []Symbol
}

// Production is a nonterminal's full set of alternatives, in declared
// order.
type Production struct {
	Head string
	Alts []Alt
}

// PremiseKind discriminates the two premise forms a typing rule supports.
type PremiseKind int

const (
	// PremiseEquate unifies the synthesized type of child ChildA against
	// Expr (which may introduce or reference metavariables).
	PremiseEquate PremiseKind = iota
	// PremiseBind treats child ChildA's captured text as an identifier
	// and child ChildB's synthesized type as its type, extending Gamma
	// for the remainder of the alternative's derivation (in particular,
	// for any child position after max(ChildA, ChildB)).
	PremiseBind
)

// Premise is one constraint or binder clause of a typing rule.
type Premise struct {
	Kind   PremiseKind
	ChildA int
	ChildB int
	Expr   TypeExpr
}

// TypingRule relates a completed alternative's child types to a result
// type. Grammar.RuleFor looks up the rule that structurally applies to a
// given (Head, altIndex) pair.
type TypingRule struct {
	Head     string
	AltIndex int
	Premises []Premise
	Result   TypeExpr
}

// Grammar is a compiled grammar spec: its productions, typing rules, and
// start nonterminal.
type Grammar struct {
	Start       string
	Productions map[string]*Production
	headOrder   []string
	Rules       map[string][]*TypingRule
}

// StartNonterminal returns the grammar's start symbol.
func (g *Grammar) StartNonterminal() string { return g.Start }

// Heads returns every nonterminal with a production, in declaration order.
func (g *Grammar) Heads() []string {
	out := make([]string, len(g.headOrder))
	copy(out, g.headOrder)
	return out
}

// RuleFor returns the typing rule that structurally applies to the given
// alternative of head, or nil if none does (in which case the recognizer
// falls back to single-nonterminal-child passthrough, or to "no
// synthesized type" if the alternative has zero or multiple nonterminal
// children).
func (g *Grammar) RuleFor(head string, alt Alt) *TypingRule {
	for _, rule := range g.Rules[head] {
		if ruleApplies(rule, alt) {
			return rule
		}
	}
	return nil
}

func ruleApplies(rule *TypingRule, alt Alt) bool {
	n := len(alt.Symbols)
	inRange := func(i int) bool { return i >= 1 && i <= n }
	for _, p := range rule.Premises {
		if !inRange(p.ChildA) {
			return false
		}
		if p.Kind == PremiseBind && !inRange(p.ChildB) {
			return false
		}
		if p.Kind == PremiseEquate && !exprRefsInRange(p.Expr, n) {
			return false
		}
	}
	return exprRefsInRange(rule.Result, n)
}

func exprRefsInRange(e TypeExpr, n int) bool {
	switch v := e.(type) {
	case ChildRefExpr:
		return v.Index >= 1 && v.Index <= n
	case LookupExpr:
		return v.Index >= 1 && v.Index <= n
	case FuncExpr:
		return exprRefsInRange(v.Param, n) && exprRefsInRange(v.Result, n)
	case UnionExpr:
		for _, m := range v.Members {
			if !exprRefsInRange(m, n) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// ruleUsesLookup reports whether rule references lookup($idx) anywhere in
// its premises or result, i.e. whether the terminal at child position idx
// must spell a name bound in Gamma for the rule to ever fire.
func ruleUsesLookup(rule *TypingRule, idx int) bool {
	if exprUsesLookup(rule.Result, idx) {
		return true
	}
	for _, p := range rule.Premises {
		if p.Expr != nil && exprUsesLookup(p.Expr, idx) {
			return true
		}
	}
	return false
}

func exprUsesLookup(e TypeExpr, idx int) bool {
	switch v := e.(type) {
	case LookupExpr:
		return v.Index == idx
	case FuncExpr:
		return exprUsesLookup(v.Param, idx) || exprUsesLookup(v.Result, idx)
	case UnionExpr:
		for _, m := range v.Members {
			if exprUsesLookup(m, idx) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// soleNonterminalChild returns the 1-based index of alt's only nonterminal
// symbol, or 0 if alt has zero or more than one.
func soleNonterminalChild(alt Alt) int {
	idx := 0
	for i, s := range alt.Symbols {
		if !s.IsTerminal() {
			if idx != 0 {
				return 0
			}
			idx = i + 1
		}
	}
	return idx
}
