package p7

// fireResult is the outcome of attempting to synthesize a type for a
// completed alternative.
type fireResult struct {
	typ Type
	ok  bool
}

// fireTypingRule synthesizes the type of a completed alternative, given its
// captured children and the Gamma active at completion. It tries the
// grammar's matching rule (if any); on no matching rule, it falls back to
// passing through a sole nonterminal child's type unchanged. A return of
// (nil, true) means "this alternative carries no type" (a pure CFG
// production, never an error by itself); (nil, false) means unification
// failed and the derivation must be dropped.
func fireTypingRule(g *Grammar, head string, alt Alt, altIndex int, children []completedChild, gamma Gamma) fireResult {
	rule := g.RuleFor(head, alt)
	if rule == nil {
		if idx := soleNonterminalChild(alt); idx != 0 {
			return fireResult{typ: children[idx-1].typ, ok: true}
		}
		return fireResult{typ: nil, ok: true}
	}

	scope := make(map[string]MetaType)
	subst := NewTypeSubst()
	childFn := childResolver(children, gamma)

	for _, premise := range rule.Premises {
		if premise.Kind == PremiseBind {
			// Bind premises are applied at predict time (see
			// gammaAfterChildren); by complete time they have already
			// shaped Gamma for any later children, so there is nothing
			// further to check here.
			continue
		}
		if premise.ChildA < 1 || premise.ChildA > len(children) {
			return fireResult{nil, false}
		}
		actual := children[premise.ChildA-1].typ
		if actual == nil {
			return fireResult{nil, false}
		}
		pattern, ok := Instantiate(premise.Expr, scope, childFn)
		if !ok {
			return fireResult{nil, false}
		}
		next, ok := subst.Unify(actual, pattern)
		if !ok {
			return fireResult{nil, false}
		}
		subst = next
	}

	result, ok := Instantiate(rule.Result, scope, childFn)
	if !ok {
		return fireResult{nil, false}
	}
	return fireResult{typ: subst.Resolve(result), ok: true}
}

// childResolver resolves a rule's $i / lookup($i) pseudo-expressions
// against an alternative's matched children and the Gamma in scope. It
// returns (nil, false) for a position not yet matched or a name not bound.
// premisesHoldAt skips (defers) a premise that cannot be resolved yet;
// fireTypingRule, running once every child is matched, drops the
// derivation just as it does on a unification failure.
func childResolver(children []completedChild, gamma Gamma) func(TypeExpr) (Type, bool) {
	return func(e TypeExpr) (Type, bool) {
		switch v := e.(type) {
		case ChildRefExpr:
			if v.Index < 1 || v.Index > len(children) {
				return nil, false
			}
			c := children[v.Index-1]
			if c.typ == nil {
				return nil, false
			}
			return c.typ, true
		case LookupExpr:
			if v.Index < 1 || v.Index > len(children) {
				return nil, false
			}
			return gamma.Lookup(children[v.Index-1].text)
		default:
			return nil, false
		}
	}
}

// premisesHoldAt fires, in isolation, every equate premise anchored at
// child position k against typ, the type just synthesized for that child.
// This is the incremental half of rule firing: a premise that can already
// be shown unsatisfiable drops the derivation the moment its child
// completes, instead of letting a dead branch linger until the whole
// alternative finishes. Each premise gets fresh metavariables here, and a
// premise referencing a child not yet matched is deferred to the full
// firing at completion, so the check narrows but never falsely rejects.
func premisesHoldAt(g *Grammar, head string, alt Alt, k int, typ Type, children []completedChild, gamma Gamma) bool {
	if typ == nil {
		return true
	}
	rule := g.RuleFor(head, alt)
	if rule == nil {
		return true
	}
	resolve := childResolver(children, gamma)
	for _, p := range rule.Premises {
		if p.Kind != PremiseEquate || p.ChildA != k {
			continue
		}
		scope := make(map[string]MetaType)
		pattern, ok := Instantiate(p.Expr, scope, resolve)
		if !ok {
			continue
		}
		if _, ok := NewTypeSubst().Unify(typ, pattern); !ok {
			return false
		}
	}
	return true
}

// gammaAfterChildren computes the Gamma a waiting item should use once
// `completed` of its children have been matched, applying every bind
// premise (from the rule matching this alternative, if any) whose name and
// type children are both already available. Bind premises are idempotent
// to reapply: calling this repeatedly as more children complete only ever
// adds or re-adds bindings.
func gammaAfterChildren(g *Grammar, head string, alt Alt, base Gamma, children []completedChild) Gamma {
	rule := g.RuleFor(head, alt)
	if rule == nil {
		return base
	}
	gamma := base
	for _, premise := range rule.Premises {
		if premise.Kind != PremiseBind {
			continue
		}
		if premise.ChildA > len(children) || premise.ChildB > len(children) {
			continue
		}
		name := children[premise.ChildA-1].text
		typ := children[premise.ChildB-1].typ
		if typ == nil {
			continue
		}
		gamma = gamma.Bind(name, typ)
	}
	return gamma
}
