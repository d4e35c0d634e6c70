package p7

import (
	"github.com/hashicorp/go-multierror"
)

// Compile parses a grammar spec (the two-section text format: a production
// section, a blank line, then an optional typing section) into a Grammar.
// Structural errors (bad production syntax, malformed typing rules,
// references to undefined nonterminals) accumulate into a single
// multierror.Error rather than failing on the first problem, so a caller
// authoring a grammar spec sees every mistake in one pass.
func Compile(spec string) (*Grammar, error) {
	lx := newLexer(spec)
	toks, err := lx.tokens()
	if err != nil {
		return nil, err
	}
	lines, blanks := splitStatements(toks)

	split := len(lines)
	if len(blanks) > 0 {
		// The first blank line (by its position among non-blank lines)
		// marks the section break. splitStatements records blank
		// positions as indices into the already-built lines slice, so
		// the smallest one is where the production section ends.
		split = blanks[0]
		if split > len(lines) {
			split = len(lines)
		}
	}
	productionLines := lines[:split]
	typingLines := lines[split:]

	var errs *multierror.Error

	g := &Grammar{
		Productions: make(map[string]*Production),
		Rules:       make(map[string][]*TypingRule),
	}

	for _, line := range productionLines {
		prod, err := parseProduction(line)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if _, exists := g.Productions[prod.Head]; exists {
			g.Productions[prod.Head].Alts = append(g.Productions[prod.Head].Alts, prod.Alts...)
			continue
		}
		g.Productions[prod.Head] = prod
		g.headOrder = append(g.headOrder, prod.Head)
	}

	for _, line := range typingLines {
		rule, err := parseTypingRule(line, g)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		g.Rules[rule.Head] = append(g.Rules[rule.Head], rule)
	}

	// Validate every nonterminal reference resolves, and record on each
	// typing rule its declaration index among its head's rules (AltIndex).
	// AltIndex is informational only: RuleFor ignores it and picks the
	// first declared rule whose $n references fit the alternative's shape.
	for head, prod := range g.Productions {
		for altIdx, alt := range prod.Alts {
			for _, sym := range alt.Symbols {
				if sym.NonTerm != "" {
					if _, ok := g.Productions[sym.NonTerm]; !ok {
						errs = multierror.Append(errs, newErr(KindUndefinedNonterminal, 0,
							"nonterminal %q (referenced by %s, alternative %d) has no production", sym.NonTerm, head, altIdx+1))
					}
				}
			}
		}
	}
	for head, rules := range g.Rules {
		prod, hasProd := g.Productions[head]
		if !hasProd {
			errs = multierror.Append(errs, newErr(KindUndefinedNonterminal, 0,
				"typing rule given for %q, which has no production", head))
		}
		for i, r := range rules {
			r.AltIndex = i
			if !hasProd {
				continue
			}
			matchesSome := false
			for _, alt := range prod.Alts {
				if ruleApplies(r, alt) {
					matchesSome = true
					break
				}
			}
			if !matchesSome {
				errs = multierror.Append(errs, newErr(KindUndefinedNonterminal, 0,
					"typing rule for %q (rule %d) references unknown arity: no alternative of %q has enough children for every $n it uses",
					head, i+1, head))
			}
		}
	}

	if len(g.headOrder) == 0 {
		errs = multierror.Append(errs, newErr(KindGrammarParse, 0, "grammar spec defines no productions"))
	} else {
		g.Start = g.headOrder[0]
	}

	if errs.ErrorOrNil() != nil {
		return nil, errs
	}
	return g, nil
}

func parseProduction(line []token) (*Production, error) {
	if len(line) < 2 || line[0].kind != tokIdent || line[1].kind != tokAssign {
		return nil, newErr(KindGrammarParse, 0, "line %d: expected 'Head ::= ...'", line[0].line)
	}
	head := line[0].text
	rest := line[2:]

	var alts []Alt
	var cur Alt
	for _, t := range rest {
		switch t.kind {
		case tokPipe:
			alts = append(alts, cur)
			cur = Alt{}
		case tokLiteral:
			cur.Symbols = append(cur.Symbols, Symbol{Literal: t.text})
		case tokPattern:
			re, err := CompileRegex(t.text)
			if err != nil {
				return nil, newErr(KindGrammarParse, 0, "line %d: %v", t.line, err)
			}
			cur.Symbols = append(cur.Symbols, Symbol{Pattern: re})
		case tokIdent:
			cur.Symbols = append(cur.Symbols, Symbol{NonTerm: t.text})
		default:
			return nil, newErr(KindGrammarParse, 0, "line %d: unexpected %s in production for %q", t.line, tokKindName(t.kind), head)
		}
	}
	alts = append(alts, cur)
	return &Production{Head: head, Alts: alts}, nil
}

func parseTypingRule(line []token, g *Grammar) (*TypingRule, error) {
	if len(line) < 2 || line[0].kind != tokIdent || line[1].kind != tokColon {
		return nil, newErr(KindGrammarParse, 0, "line %d: expected 'Head : ...'", line[0].line)
	}
	head := line[0].text
	p := &tparser{toks: line[2:]}

	rule := &TypingRule{Head: head}
	if len(p.toks) == 0 {
		return nil, newErr(KindGrammarParse, 0, "line %d: typing rule for %q has no body", line[0].line, head)
	}

	// Premises, if any, precede the mandatory '=>'.
	for p.pos < len(p.toks) && p.toks[p.pos].kind != tokDArrow {
		premise, err := p.parsePremise()
		if err != nil {
			return nil, err
		}
		rule.Premises = append(rule.Premises, premise)
		if p.pos < len(p.toks) && p.toks[p.pos].kind == tokComma {
			p.pos++
		}
	}
	if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokDArrow {
		return nil, newErr(KindGrammarParse, 0, "line %d: expected '=>' in typing rule for %q", line[0].line, head)
	}
	p.pos++
	result, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	rule.Result = result
	return rule, nil
}

// tparser parses premises and TypeExprs from a typing-rule line.
type tparser struct {
	toks []token
	pos  int
}

func (p *tparser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *tparser) parsePremise() (Premise, error) {
	t, ok := p.peek()
	if !ok {
		return Premise{}, newErr(KindGrammarParse, 0, "expected premise")
	}
	if t.kind == tokKeyword && t.text == "bind" {
		p.pos++
		if err := p.expect(tokLParen); err != nil {
			return Premise{}, err
		}
		a, err := p.expectDollar()
		if err != nil {
			return Premise{}, err
		}
		if err := p.expect(tokComma); err != nil {
			return Premise{}, err
		}
		b, err := p.expectDollar()
		if err != nil {
			return Premise{}, err
		}
		if err := p.expect(tokRParen); err != nil {
			return Premise{}, err
		}
		return Premise{Kind: PremiseBind, ChildA: a, ChildB: b}, nil
	}

	a, err := p.expectDollar()
	if err != nil {
		return Premise{}, err
	}
	// A bare equate premise is written "$i : TypeExpr" — ':' rather than
	// '=' as the equals marker, since '=' only lexes as its own token
	// when immediately followed by '>' (the rule's "=>" separator).
	if err := p.expect(tokColon); err != nil {
		return Premise{}, err
	}
	expr, err := p.parseTypeExpr()
	if err != nil {
		return Premise{}, err
	}
	return Premise{Kind: PremiseEquate, ChildA: a, Expr: expr}, nil
}

func (p *tparser) expect(k tokKind) error {
	t, ok := p.peek()
	if !ok || t.kind != k {
		return newErr(KindGrammarParse, 0, "expected %s", tokKindName(k))
	}
	p.pos++
	return nil
}

func (p *tparser) expectDollar() (int, error) {
	t, ok := p.peek()
	if !ok || t.kind != tokDollar {
		return 0, newErr(KindGrammarParse, 0, "expected $n")
	}
	p.pos++
	return t.num, nil
}

// parseTypeExpr := arrowExpr ('|' arrowExpr)*
func (p *tparser) parseTypeExpr() (TypeExpr, error) {
	first, err := p.parseArrow()
	if err != nil {
		return nil, err
	}
	members := []TypeExpr{first}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokPipe {
			break
		}
		p.pos++
		next, err := p.parseArrow()
		if err != nil {
			return nil, err
		}
		members = append(members, next)
	}
	if len(members) == 1 {
		return members[0], nil
	}
	return UnionExpr{Members: members}, nil
}

// parseArrow := atom ('->' arrowExpr)?   (right-associative)
func (p *tparser) parseArrow() (TypeExpr, error) {
	atom, err := p.parseTypeAtom()
	if err != nil {
		return nil, err
	}
	t, ok := p.peek()
	if ok && t.kind == tokArrow {
		p.pos++
		rest, err := p.parseArrow()
		if err != nil {
			return nil, err
		}
		return FuncExpr{Param: atom, Result: rest}, nil
	}
	return atom, nil
}

func (p *tparser) parseTypeAtom() (TypeExpr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, newErr(KindGrammarParse, 0, "expected type expression")
	}
	switch {
	case t.kind == tokLParen:
		p.pos++
		inner, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case t.kind == tokDollar:
		p.pos++
		return ChildRefExpr{Index: t.num}, nil
	case t.kind == tokKeyword && t.text == "lookup":
		p.pos++
		if err := p.expect(tokLParen); err != nil {
			return nil, err
		}
		idx, err := p.expectDollar()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return LookupExpr{Index: idx}, nil
	case t.kind == tokIdent:
		p.pos++
		if len([]rune(t.text)) == 1 {
			return VarExpr{Name: t.text}, nil
		}
		return BaseExpr{Name: t.text}, nil
	default:
		return nil, newErr(KindGrammarParse, 0, "unexpected %s in type expression", tokKindName(t.kind))
	}
}
